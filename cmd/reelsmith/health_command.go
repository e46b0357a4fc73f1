package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"reelsmith/internal/deps"
	"reelsmith/internal/logging"
	"reelsmith/internal/pipeline"
	"reelsmith/internal/queue"
)

func newHealthCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check external binaries and stage readiness",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			failures := 0

			for _, line := range renderSectionHeader("External binaries", colorize) {
				fmt.Fprintln(out, line)
			}
			for _, status := range deps.CheckBinaries(deps.Requirements(cfg)) {
				kind := statusOK
				message := status.Command
				if !status.Available {
					kind = statusError
					message = status.Detail
					failures++
				}
				fmt.Fprintln(out, renderStatusLine(status.Name, kind, message, colorize))
			}

			for _, line := range renderSectionHeader("Pipeline stages", colorize) {
				fmt.Fprintln(out, line)
			}
			store, err := queue.Open(cfg)
			if err != nil {
				return fmt.Errorf("open run ledger: %w", err)
			}
			defer store.Close()

			runner := pipeline.NewRunner(store, logging.NewNop(), pipeline.DefaultSteps(cfg, logging.NewNop()))
			for _, health := range runner.HealthChecks(cmd.Context()) {
				kind := statusOK
				if !health.Ready {
					kind = statusError
					failures++
				}
				fmt.Fprintln(out, renderStatusLine(health.Name, kind, health.Detail, colorize))
			}

			if failures > 0 {
				return fmt.Errorf("%d health check(s) failed", failures)
			}
			return nil
		},
	}
}
