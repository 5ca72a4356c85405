package main

import (
	"fmt"

	"unreal-mcp-go/internal/version"

	"github.com/spf13/cobra"
)

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			fmt.Fprintln(a.stdout, "unrealmcp", version.String())
			return nil
		},
	}
}
