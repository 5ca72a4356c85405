package main

import (
	"bytes"
	"encoding/json"
	"fmt"

	apperrors "unreal-mcp-go/internal/errors"

	"github.com/spf13/cobra"
)

func newSendCmd(a *app) *cobra.Command {
	var paramsJSON string
	cmd := &cobra.Command{
		Use:   "send TYPE",
		Short: "Send one raw command and print the editor's reply",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			params := map[string]any{}
			if paramsJSON != "" {
				if err := json.Unmarshal([]byte(paramsJSON), &params); err != nil {
					return apperrors.Wrap(apperrors.KindInvalidArgument, "params", args[0], err)
				}
			}
			resp, err := a.client().Call(ctx, args[0], params)
			if resp != nil {
				var pretty bytes.Buffer
				if json.Indent(&pretty, resp.Raw, "", "  ") == nil {
					fmt.Fprintln(a.stdout, pretty.String())
				} else {
					fmt.Fprintln(a.stdout, string(resp.Raw))
				}
			}
			return err
		},
	}
	cmd.Flags().StringVar(&paramsJSON, "params", "", `command params as a JSON object, e.g. '{"name":"BP_X"}'`)
	return cmd
}
