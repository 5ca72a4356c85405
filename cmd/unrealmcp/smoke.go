package main

import (
	"context"
	"fmt"

	"unreal-mcp-go/internal/events"
	"unreal-mcp-go/internal/scenario"
	"unreal-mcp-go/internal/storage"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	log "github.com/sirupsen/logrus"
)

var (
	passLabel = color.New(color.FgGreen, color.Bold).SprintFunc()
	failLabel = color.New(color.FgRed, color.Bold).SprintFunc()
	skipLabel = color.New(color.FgYellow).SprintFunc()
	dimLabel  = color.New(color.Faint).SprintFunc()
)

func statusLabel(status string) string {
	switch status {
	case storage.StatusPassed:
		return passLabel("PASS")
	case storage.StatusFailed:
		return failLabel("FAIL")
	default:
		return skipLabel("SKIP")
	}
}

func newSmokeCmd(a *app) *cobra.Command {
	var (
		blueprintName string
		scenarioFile  string
		record        bool
	)
	cmd := &cobra.Command{
		Use:   "smoke",
		Short: "Run the component reference smoke test (or a scenario file)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			var sc *scenario.Scenario
			if scenarioFile != "" {
				var err error
				if sc, err = scenario.Load(scenarioFile); err != nil {
					return err
				}
			} else {
				name := blueprintName
				if name == "" {
					name = scenario.BlueprintName(a.cfg.Scenario.BlueprintPrefix, a.cfg.Scenario.SuffixLength)
				}
				sc = scenario.ComponentReference(name)
			}

			client := a.client()
			hub := events.NewHub()
			hub.Subscribe(events.TopicStepFinished, func(_ context.Context, ev events.Event) {
				if se, ok := ev.Payload.(scenario.StepEvent); ok {
					a.printStep(se)
				}
			})
			runner := &scenario.Runner{Caller: client, Publisher: hub, Address: client.Address()}

			if record || (!cmd.Flags().Changed("record") && a.cfg.Scenario.Record) {
				backend, err := a.storage(ctx)
				if err != nil {
					return err
				}
				defer backend.Close()
				runner.Recorder = backend
			}

			fmt.Fprintf(a.stdout, "%s %s against %s\n", dimLabel("running"), sc.Name, client.Address())
			report, err := runner.Run(ctx, sc)
			if report == nil {
				return err
			}
			for _, st := range report.Steps {
				if st.Status == storage.StatusSkipped {
					a.printStep(scenario.StepEvent{Step: st})
				}
			}
			fmt.Fprintf(a.stdout, "%s %s run=%s blueprint=%s %dms\n",
				statusLabel(report.Status), report.Scenario, report.ID, report.Blueprint, report.DurationMS)
			if err != nil {
				log.WithField("run_id", report.ID).Debug("smoke test failed")
			}
			return err
		},
	}
	cmd.Flags().StringVar(&blueprintName, "blueprint", "", "blueprint name (default: prefix plus random suffix)")
	cmd.Flags().StringVar(&scenarioFile, "scenario", "", "YAML or JSON scenario file to run instead")
	cmd.Flags().BoolVar(&record, "record", false, "store the run in the configured backend")
	return cmd
}

func (a *app) printStep(se scenario.StepEvent) {
	st := se.Step
	line := fmt.Sprintf("  %s %-32s %-44s", statusLabel(st.Status), st.Name, st.Command)
	if st.Status != storage.StatusSkipped {
		line += dimLabel(fmt.Sprintf(" %dms", st.DurationMS))
	}
	if st.Error != "" {
		line += " " + failLabel(st.Error)
	}
	fmt.Fprintln(a.stdout, line)
}
