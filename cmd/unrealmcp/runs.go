package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"unreal-mcp-go/internal/constants"

	"github.com/spf13/cobra"
)

func newRunsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect recorded smoke runs",
	}
	cmd.AddCommand(newRunsListCmd(a), newRunsShowCmd(a), newRunsDeleteCmd(a))
	return cmd
}

func newRunsListCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			backend, err := a.storage(cmd.Context())
			if err != nil {
				return err
			}
			defer backend.Close()

			runs, err := backend.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tSTATUS\tSCENARIO\tBLUEPRINT\tSTARTED\tDURATION")
			for _, r := range runs {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%dms\n",
					r.ID, statusLabel(r.Status), r.Scenario, r.Blueprint,
					r.StartedAt.Local().Format(time.DateTime), r.DurationMS)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", constants.DefaultRunListLimit, "maximum runs to list")
	return cmd
}

func newRunsShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Print one run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, err := a.storage(cmd.Context())
			if err != nil {
				return err
			}
			defer backend.Close()

			run, err := backend.GetRun(cmd.Context(), args[0])
			if err != nil {
				return notFound(err)
			}
			enc := json.NewEncoder(a.stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(run)
		},
	}
}

func newRunsDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete one run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, err := a.storage(cmd.Context())
			if err != nil {
				return err
			}
			defer backend.Close()

			if err := backend.DeleteRun(cmd.Context(), args[0]); err != nil {
				return notFound(err)
			}
			fmt.Fprintf(a.stdout, "deleted %s\n", args[0])
			return nil
		},
	}
}
