package captions

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
	"reelsmith/internal/timeline"
)

// Synchronizer is the pipeline stage that times narration text against the
// built timeline.
type Synchronizer struct {
	cfg    *config.Config
	logger *slog.Logger
}

// NewSynchronizer constructs the caption stage.
func NewSynchronizer(cfg *config.Config, logger *slog.Logger) *Synchronizer {
	return &Synchronizer{cfg: cfg, logger: logging.NewComponentLogger(logger, "captions")}
}

// SetLogger replaces the stage logger.
func (s *Synchronizer) SetLogger(logger *slog.Logger) {
	s.logger = logging.NewComponentLogger(logger, "captions")
}

// Prepare checks the run carries both upstream snapshots.
func (s *Synchronizer) Prepare(_ context.Context, run *queue.Run) error {
	if run.ScenesJSON == "" || run.TimelineJSON == "" {
		return services.Wrap(services.ErrValidation, "syncing_captions", "check-snapshots",
			"run is missing resolved assets or timeline", timeline.ErrEmptyTimeline)
	}
	return nil
}

// Execute computes caption spans and persists them on the run.
func (s *Synchronizer) Execute(_ context.Context, run *queue.Run) error {
	resolved, err := assets.DecodeResolved(run.ScenesJSON)
	if err != nil {
		return services.Wrap(services.ErrValidation, "syncing_captions", "decode-assets", "", err)
	}
	tl, err := timeline.Decode(run.TimelineJSON)
	if err != nil {
		return services.Wrap(services.ErrValidation, "syncing_captions", "decode-timeline", "", err)
	}

	run.SetProgress("Syncing Captions", "timing narration", 45)

	spans := Synchronize(resolved, tl, s.cfg)
	encoded, err := Encode(spans)
	if err != nil {
		return services.Wrap(services.ErrValidation, "syncing_captions", "encode-spans", "", err)
	}
	run.CaptionsJSON = encoded
	run.SetProgress("Syncing Captions", fmt.Sprintf("%d caption spans", len(spans)), 50)

	s.logger.Info("captions synchronized",
		slog.Int64(logging.FieldRunID, run.ID),
		slog.Int("spans", len(spans)),
		slog.Bool("enabled", s.cfg.Content.Captions.Enabled))
	return nil
}

// HealthCheck always reports ready; synchronization is pure computation.
func (s *Synchronizer) HealthCheck(context.Context) stage.Health {
	return stage.Healthy("captions")
}
