package main

import (
	"fmt"

	"unreal-mcp-go/internal/constants"
	"unreal-mcp-go/internal/engine"
	"unreal-mcp-go/internal/netutil"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newEngineCmd(a *app) *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "engine",
		Short: "Serve an in-memory fake editor on the command socket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			if !netutil.IsLoopbackListen(listen) {
				log.WithField("addr", listen).Warn("fake editor reachable beyond loopback")
			}
			e := engine.New(engine.DefaultOptions())
			fmt.Fprintf(a.stdout, "fake editor listening on %s (%d commands)\n", listen, len(e.Commands()))
			err := e.ListenAndServe(ctx, listen)
			if err != nil && isCanceled(err) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().StringVar(&listen, "listen", constants.DefaultEngineListen, "listen address")
	return cmd
}
