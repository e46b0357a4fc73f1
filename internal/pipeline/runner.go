package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"reelsmith/internal/assets"
	"reelsmith/internal/captions"
	"reelsmith/internal/compositor"
	"reelsmith/internal/config"
	"reelsmith/internal/export"
	"reelsmith/internal/logging"
	"reelsmith/internal/queue"
	"reelsmith/internal/services"
	"reelsmith/internal/stage"
	"reelsmith/internal/timeline"
)

// Step binds a stage handler to its lifecycle statuses.
type Step struct {
	Name       string
	Processing queue.Status
	Done       queue.Status
	Handler    stage.Handler
}

// DefaultSteps assembles the full stage sequence.
func DefaultSteps(cfg *config.Config, logger *slog.Logger) []Step {
	return []Step{
		{Name: "assets", Processing: queue.StatusResolving, Done: queue.StatusResolved,
			Handler: assets.NewResolver(cfg, logger)},
		{Name: "timeline", Processing: queue.StatusBuildingTimeline, Done: queue.StatusTimelineBuilt,
			Handler: timeline.NewBuilder(cfg, logger)},
		{Name: "captions", Processing: queue.StatusSyncingCaptions, Done: queue.StatusCaptionsSynced,
			Handler: captions.NewSynchronizer(cfg, logger)},
		{Name: "compositor", Processing: queue.StatusCompositing, Done: queue.StatusComposited,
			Handler: compositor.New(cfg, logger)},
		{Name: "export", Processing: queue.StatusExporting, Done: queue.StatusCompleted,
			Handler: export.New(cfg, logger)},
	}
}

// Runner executes the stage sequence against a persisted run.
type Runner struct {
	store  *queue.Store
	logger *slog.Logger
	steps  []Step
}

// NewRunner builds a runner over the given store and steps.
func NewRunner(store *queue.Store, logger *slog.Logger, steps []Step) *Runner {
	return &Runner{
		store:  store,
		logger: logging.NewComponentLogger(logger, "pipeline"),
		steps:  steps,
	}
}

// Run drives the identified run from pending to completed. The returned run
// reflects its final persisted state; the error, when non-nil, is the stage
// failure already recorded on it.
func (r *Runner) Run(ctx context.Context, runID int64) (*queue.Run, error) {
	run, err := r.store.GetByID(ctx, runID)
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, fmt.Errorf("run %d: %w", runID, services.ErrNotFound)
	}
	if run.Status != queue.StatusPending {
		return run, fmt.Errorf("run %d is %s, not pending: %w", runID, run.Status, services.ErrValidation)
	}

	ctx = services.WithRunID(ctx, run.ID)
	started := time.Now()
	r.logger.Info("run started",
		slog.Int64(logging.FieldRunID, run.ID),
		slog.String("topic", run.Topic),
		slog.String("mode", string(run.Mode)))

	for _, step := range r.steps {
		if err := r.runStep(ctx, run, step); err != nil {
			return run, err
		}
	}

	r.logger.Info("run completed",
		slog.Int64(logging.FieldRunID, run.ID),
		slog.String("file", run.FinalFile),
		slog.Duration("elapsed", time.Since(started)))
	return run, nil
}

func (r *Runner) runStep(ctx context.Context, run *queue.Run, step Step) error {
	ctx = services.WithStage(ctx, step.Name)

	run.Status = step.Processing
	run.SetProgress(queue.StageLabel(step.Processing), "", run.ProgressPercent)
	if err := r.store.Update(ctx, run); err != nil {
		return r.fail(ctx, run, step, fmt.Errorf("persist %s transition: %w", step.Processing, err))
	}

	r.logger.Info("stage started",
		slog.Int64(logging.FieldRunID, run.ID),
		slog.String(logging.FieldStage, step.Name))

	if err := step.Handler.Prepare(ctx, run); err != nil {
		return r.fail(ctx, run, step, err)
	}
	if err := step.Handler.Execute(ctx, run); err != nil {
		return r.fail(ctx, run, step, err)
	}

	run.Status = step.Done
	if err := r.store.Update(ctx, run); err != nil {
		return r.fail(ctx, run, step, fmt.Errorf("persist %s transition: %w", step.Done, err))
	}

	r.logger.Info("stage finished",
		slog.Int64(logging.FieldRunID, run.ID),
		slog.String(logging.FieldStage, step.Name),
		slog.String("status", string(run.Status)))
	return nil
}

func (r *Runner) fail(ctx context.Context, run *queue.Run, step Step, err error) error {
	details := services.Details(err)
	run.Status = queue.FailureStatus(err)
	run.SetFailed(details.Message)

	r.logger.Error("stage failed",
		slog.Int64(logging.FieldRunID, run.ID),
		slog.String(logging.FieldStage, step.Name),
		slog.String("kind", details.Kind),
		logging.Error(err))

	if updateErr := r.store.Update(ctx, run); updateErr != nil {
		r.logger.Error("failed to record run failure",
			slog.Int64(logging.FieldRunID, run.ID),
			logging.Error(updateErr))
	}
	return err
}

// HealthChecks collects every stage's readiness report.
func (r *Runner) HealthChecks(ctx context.Context) []stage.Health {
	checks := make([]stage.Health, 0, len(r.steps))
	for _, step := range r.steps {
		checks = append(checks, step.Handler.HealthCheck(ctx))
	}
	return checks
}
