package main

import (
	"unreal-mcp-go/internal/mcpserver"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
)

func newMCPCmd(a *app) *cobra.Command {
	var record bool
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve the editor commands as MCP tools over stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			client := a.client()
			deps := mcpserver.Dependencies{
				Caller:          client,
				Address:         client.Address(),
				BlueprintPrefix: a.cfg.Scenario.BlueprintPrefix,
				SuffixLength:    a.cfg.Scenario.SuffixLength,
			}
			if record {
				backend, err := a.storage(ctx)
				if err != nil {
					return err
				}
				defer backend.Close()
				deps.Recorder = backend
			}
			err := mcpserver.New(deps).Run(ctx, &mcp.StdioTransport{})
			if err != nil && isCanceled(err) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().BoolVar(&record, "record", false, "store run_smoke_test runs in the configured backend")
	return cmd
}
