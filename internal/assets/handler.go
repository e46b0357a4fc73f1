package assets

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"reelsmith/internal/config"
	"reelsmith/internal/logging"
	"reelsmith/internal/queue"
	"reelsmith/internal/services"
	"reelsmith/internal/stage"
)

// Resolved is the resolver stage's output snapshot, persisted on the run.
type Resolved struct {
	Scenes     []Scene  `json:"scenes"`
	MusicFiles []string `json:"music_files,omitempty"`
	SFXFiles   []string `json:"sfx_files,omitempty"`
}

// DecodeResolved restores a snapshot persisted by the resolver stage.
func DecodeResolved(raw string) (Resolved, error) {
	var resolved Resolved
	if err := json.Unmarshal([]byte(raw), &resolved); err != nil {
		return Resolved{}, fmt.Errorf("decode resolved assets: %w", err)
	}
	return resolved, nil
}

// Resolver is the pipeline stage that turns an asset root into resolved
// scenes plus the global music and sound-effect file lists.
type Resolver struct {
	cfg    *config.Config
	logger *slog.Logger
}

// NewResolver builds the resolver stage.
func NewResolver(cfg *config.Config, logger *slog.Logger) *Resolver {
	return &Resolver{cfg: cfg, logger: logging.NewComponentLogger(logger, "assets")}
}

// SetLogger replaces the stage logger.
func (r *Resolver) SetLogger(logger *slog.Logger) {
	r.logger = logging.NewComponentLogger(logger, "assets")
}

// Prepare verifies the run's asset root exists and is a directory.
func (r *Resolver) Prepare(_ context.Context, run *queue.Run) error {
	info, err := os.Stat(run.AssetRoot)
	if err != nil {
		return services.Wrap(services.ErrValidation, "resolving", "check-root", run.AssetRoot, err)
	}
	if !info.IsDir() {
		return services.Wrap(services.ErrValidation, "resolving", "check-root",
			fmt.Sprintf("%s is not a directory", run.AssetRoot), ErrNotFound)
	}
	return nil
}

// Execute resolves every asset and records the snapshot on the run.
func (r *Resolver) Execute(ctx context.Context, run *queue.Run) error {
	locator := NewLocator(run.AssetRoot)

	var source Source
	switch run.Mode {
	case queue.ModeLive:
		source = NewGeneratingSource(locator, r.cfg, run.Topic, r.logger)
	default:
		source = NewPrecomputedSource(locator, r.cfg, r.logger)
	}

	run.SetProgress("Resolving", "locating scene assets", 5)

	scenes, err := source.ResolveScenes(ctx)
	if err != nil {
		return err
	}

	music, err := locator.MusicFiles(r.cfg.Content.Music.Required)
	if err != nil {
		return services.Wrap(services.ErrValidation, "resolving", "locate-music", "", err)
	}
	if len(music) == 0 {
		r.logger.Warn("no background music found, continuing voiceover-only",
			slog.String("root", run.AssetRoot))
	}

	sfx, err := locator.SFXFiles()
	if err != nil {
		return services.Wrap(services.ErrValidation, "resolving", "locate-sfx", "", err)
	}

	snapshot, err := json.Marshal(Resolved{Scenes: scenes, MusicFiles: music, SFXFiles: sfx})
	if err != nil {
		return services.Wrap(services.ErrValidation, "resolving", "encode-snapshot", "", err)
	}
	run.ScenesJSON = string(snapshot)
	run.SetProgress("Resolving", fmt.Sprintf("%d scenes resolved", len(scenes)), 15)

	r.logger.Info("assets resolved",
		slog.Int64(logging.FieldRunID, run.ID),
		slog.Int("scenes", len(scenes)),
		slog.Int("music_files", len(music)),
		slog.Int("sfx_files", len(sfx)))
	return nil
}

// HealthCheck reports whether the configured asset root is reachable.
func (r *Resolver) HealthCheck(context.Context) stage.Health {
	root := r.cfg.Paths.AssetRoot
	if root == "" {
		return stage.Unhealthy("assets", "paths.asset_root is not configured")
	}
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		return stage.Unhealthy("assets", fmt.Sprintf("asset root %s unavailable", root))
	}
	return stage.Healthy("assets")
}
