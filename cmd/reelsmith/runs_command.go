package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"reelsmith/internal/queue"
)

func newRunsCommand(ctx *commandContext) *cobra.Command {
	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect the run ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			return listRuns(ctx, cmd, 0)
		},
	}

	var limit int
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List runs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return listRuns(ctx, cmd, limit)
		},
	}
	listCmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum runs to show (0 for all)")

	showCmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one run in detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(strings.TrimSpace(args[0]), 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid run id %q", args[0])
			}
			return showRun(ctx, cmd, id)
		},
	}

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize run counts by lifecycle state",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(ctx, cmd)
		},
	}

	runsCmd.AddCommand(listCmd, showCmd, statsCmd)
	return runsCmd
}

func listRuns(ctx *commandContext, cmd *cobra.Command, limit int) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	store, err := queue.Open(cfg)
	if err != nil {
		return fmt.Errorf("open run ledger: %w", err)
	}
	defer store.Close()

	runs, err := store.List(cmd.Context(), limit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded")
		return nil
	}

	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			strconv.FormatInt(run.ID, 10),
			run.Topic,
			string(run.Mode),
			string(run.Status),
			fmt.Sprintf("%.0f%%", run.ProgressPercent),
			run.UpdatedAt.Local().Format(time.DateTime),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"ID", "Topic", "Mode", "Status", "Progress", "Updated"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
	))
	return nil
}

func showRun(ctx *commandContext, cmd *cobra.Command, id int64) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	store, err := queue.Open(cfg)
	if err != nil {
		return fmt.Errorf("open run ledger: %w", err)
	}
	defer store.Close()

	run, err := store.GetByID(cmd.Context(), id)
	if err != nil {
		return err
	}
	if run == nil {
		return fmt.Errorf("run %d not found", id)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run %d\n", run.ID)
	fmt.Fprintf(out, "  Topic:      %s\n", valueOrDash(run.Topic))
	fmt.Fprintf(out, "  Mode:       %s\n", run.Mode)
	fmt.Fprintf(out, "  Status:     %s\n", run.Status)
	fmt.Fprintf(out, "  Asset root: %s\n", run.AssetRoot)
	fmt.Fprintf(out, "  Progress:   %s (%.0f%%)\n", valueOrDash(run.ProgressStage), run.ProgressPercent)
	if run.ProgressMessage != "" {
		fmt.Fprintf(out, "  Detail:     %s\n", run.ProgressMessage)
	}
	if run.FinalFile != "" {
		fmt.Fprintf(out, "  Output:     %s\n", run.FinalFile)
	}
	if run.ThumbnailFile != "" {
		fmt.Fprintf(out, "  Thumbnail:  %s\n", run.ThumbnailFile)
	}
	if run.ErrorMessage != "" {
		fmt.Fprintf(out, "  Error:      %s\n", run.ErrorMessage)
	}
	fmt.Fprintf(out, "  Created:    %s\n", run.CreatedAt.Local().Format(time.DateTime))
	fmt.Fprintf(out, "  Updated:    %s\n", run.UpdatedAt.Local().Format(time.DateTime))
	return nil
}

func runStats(ctx *commandContext, cmd *cobra.Command) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	store, err := queue.Open(cfg)
	if err != nil {
		return fmt.Errorf("open run ledger: %w", err)
	}
	defer store.Close()

	summary, err := store.Summary(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, renderTable(
		[]string{"Total", "Pending", "Processing", "Completed", "Failed"},
		[][]string{{
			strconv.Itoa(summary.Total),
			strconv.Itoa(summary.Pending),
			strconv.Itoa(summary.Processing),
			strconv.Itoa(summary.Completed),
			strconv.Itoa(summary.Failed),
		}},
		[]columnAlignment{alignRight, alignRight, alignRight, alignRight, alignRight},
	))
	return nil
}

func valueOrDash(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}
