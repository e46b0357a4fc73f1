package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"reelsmith/internal/deps"
	"reelsmith/internal/logging"
	"reelsmith/internal/pipeline"
	"reelsmith/internal/queue"
	"reelsmith/internal/services"
)

func newRenderCommand(ctx *commandContext) *cobra.Command {
	var modeFlag string
	var topicFlag string
	var nameFlag string

	cmd := &cobra.Command{
		Use:   "render [asset-root]",
		Short: "Assemble a video from the assets under a root directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			mode, ok := queue.ParseMode(modeFlag)
			if !ok {
				return fmt.Errorf("invalid mode %q (use live or test)", modeFlag)
			}

			root := cfg.Paths.AssetRoot
			if len(args) == 1 && strings.TrimSpace(args[0]) != "" {
				root = args[0]
			}
			if strings.TrimSpace(root) == "" {
				return fmt.Errorf("no asset root: pass one or set paths.asset_root")
			}

			statuses := deps.CheckBinaries(deps.Requirements(cfg))
			if missing := deps.MissingRequired(statuses); len(missing) > 0 {
				return fmt.Errorf("missing required binaries: %s", strings.Join(missing, ", "))
			}

			// One render at a time per installation.
			renderLock := flock.New(filepath.Join(cfg.Paths.LogDir, "render.lock"))
			locked, err := renderLock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire render lock: %w", err)
			}
			if !locked {
				return fmt.Errorf("another render is already running")
			}
			defer renderLock.Unlock()

			logging.CleanupOldLogs(logger, cfg.Logging.RetentionDays, logging.RetentionTarget{
				Dir:     cfg.Paths.LogDir,
				Pattern: "*.log",
				Exclude: []string{filepath.Join(cfg.Paths.LogDir, "reelsmith.log")},
			})

			store, err := queue.Open(cfg)
			if err != nil {
				return fmt.Errorf("open run ledger: %w", err)
			}
			defer store.Close()

			runCtx := services.WithRequestID(cmd.Context(), uuid.NewString())

			if failed, err := store.FailAbandoned(runCtx, "interrupted by process exit"); err == nil && failed > 0 {
				logger.Warn("marked abandoned runs as failed", logging.Int64("count", failed))
			}

			run, err := store.NewRun(runCtx, topicFlag, mode, root, nameFlag)
			if err != nil {
				return fmt.Errorf("create run: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Run %d started (%s mode) on %s\n", run.ID, run.Mode, root)

			runner := pipeline.NewRunner(store, logger, pipeline.DefaultSteps(cfg, logger))
			finished, err := runner.Run(runCtx, run.ID)
			if err != nil {
				if finished != nil && finished.ErrorMessage != "" {
					return fmt.Errorf("run %d failed: %s", finished.ID, finished.ErrorMessage)
				}
				return err
			}

			fmt.Fprintf(out, "Run %d completed: %s\n", finished.ID, finished.FinalFile)
			if finished.ThumbnailFile != "" {
				fmt.Fprintf(out, "Thumbnail: %s\n", finished.ThumbnailFile)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&modeFlag, "mode", string(queue.ModeTest), "Asset mode: live (generate) or test (pre-placed)")
	cmd.Flags().StringVar(&topicFlag, "topic", "", "Topic passed to the generator in live mode")
	cmd.Flags().StringVar(&nameFlag, "name", "", "Output filename (without extension)")
	return cmd
}
