package timeline

import (
	"context"
	"fmt"
	"log/slog"

	"reelsmith/internal/assets"
	"reelsmith/internal/config"
	"reelsmith/internal/logging"
	"reelsmith/internal/queue"
	"reelsmith/internal/services"
	"reelsmith/internal/stage"
)

// Builder is the pipeline stage that turns resolved assets into a timeline.
type Builder struct {
	cfg    *config.Config
	logger *slog.Logger
}

// NewBuilder constructs the timeline stage.
func NewBuilder(cfg *config.Config, logger *slog.Logger) *Builder {
	return &Builder{cfg: cfg, logger: logging.NewComponentLogger(logger, "timeline")}
}

// SetLogger replaces the stage logger.
func (b *Builder) SetLogger(logger *slog.Logger) {
	b.logger = logging.NewComponentLogger(logger, "timeline")
}

// Prepare checks the resolver snapshot is present on the run.
func (b *Builder) Prepare(_ context.Context, run *queue.Run) error {
	if run.ScenesJSON == "" {
		return services.Wrap(services.ErrValidation, "building_timeline", "check-snapshot",
			"run carries no resolved assets", ErrEmptyTimeline)
	}
	return nil
}

// Execute computes the timeline and persists it on the run.
func (b *Builder) Execute(_ context.Context, run *queue.Run) error {
	resolved, err := assets.DecodeResolved(run.ScenesJSON)
	if err != nil {
		return services.Wrap(services.ErrValidation, "building_timeline", "decode-snapshot", "", err)
	}

	run.SetProgress("Building Timeline", "placing scenes", 25)

	tl, err := Build(resolved, b.cfg)
	if err != nil {
		return services.Wrap(services.ErrValidation, "building_timeline", "build", "", err)
	}

	encoded, err := tl.Encode()
	if err != nil {
		return services.Wrap(services.ErrValidation, "building_timeline", "encode", "", err)
	}
	run.TimelineJSON = encoded
	run.SetProgress("Building Timeline", fmt.Sprintf("%.1fs across %d scenes", tl.Total, len(resolved.Scenes)), 35)

	b.logger.Info("timeline built",
		slog.Int64(logging.FieldRunID, run.ID),
		slog.Float64("total_seconds", tl.Total),
		slog.Int("entries", len(tl.Entries)),
		slog.Bool("music", tl.Music != nil))
	return nil
}

// HealthCheck always reports ready; the builder has no external dependencies.
func (b *Builder) HealthCheck(context.Context) stage.Health {
	return stage.Healthy("timeline")
}
