package export

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"reelsmith/internal/config"
	"reelsmith/internal/fileutil"
	"reelsmith/internal/logging"
	"reelsmith/internal/queue"
	"reelsmith/internal/services"
	"reelsmith/internal/stage"
)

// TestOutputName is the fixed output filename used by test-mode runs.
const TestOutputName = "test_output.mp4"

// thumbnailSeekSeconds is where the thumbnail frame is grabbed from.
const thumbnailSeekSeconds = 1.0

// Exporter is the pipeline stage that finalizes a composited render.
type Exporter struct {
	cfg    *config.Config
	logger *slog.Logger

	// grabFrame is swapped in tests.
	grabFrame func(ctx context.Context, binary, source, dest string, seek float64) error
}

// New constructs the export stage.
func New(cfg *config.Config, logger *slog.Logger) *Exporter {
	return &Exporter{
		cfg:       cfg,
		logger:    logging.NewComponentLogger(logger, "export"),
		grabFrame: grabFrame,
	}
}

// SetLogger replaces the stage logger.
func (e *Exporter) SetLogger(logger *slog.Logger) {
	e.logger = logging.NewComponentLogger(logger, "export")
}

// Prepare verifies the composited artifact exists and the output directory
// is available.
func (e *Exporter) Prepare(_ context.Context, run *queue.Run) error {
	if run.CompositedFile == "" {
		return services.Wrap(services.ErrValidation, "exporting", "check-artifact",
			"run carries no composited file", os.ErrNotExist)
	}
	if _, err := os.Stat(run.CompositedFile); err != nil {
		return services.Wrap(services.ErrValidation, "exporting", "check-artifact", run.CompositedFile, err)
	}
	if err := os.MkdirAll(e.cfg.Paths.OutputDir, 0o755); err != nil {
		return services.Wrap(services.ErrConfiguration, "exporting", "ensure-output",
			e.cfg.Paths.OutputDir, err)
	}
	return nil
}

// Execute moves the composited file into the output directory and grabs a
// thumbnail next to it.
func (e *Exporter) Execute(ctx context.Context, run *queue.Run) error {
	final := filepath.Join(e.cfg.Paths.OutputDir, OutputName(run))

	run.SetProgress("Exporting", "moving final video", 90)

	if err := fileutil.ReplaceFile(run.CompositedFile, final); err != nil {
		return services.Wrap(services.ErrValidation, "exporting", "move", run.CompositedFile, err)
	}
	run.FinalFile = final
	run.CompositedFile = ""

	thumbnail := strings.TrimSuffix(final, filepath.Ext(final)) + ".jpg"
	if err := e.grabFrame(ctx, e.cfg.FFmpegBinary(), final, thumbnail, thumbnailSeekSeconds); err != nil {
		e.logger.Warn("thumbnail generation failed",
			slog.Int64(logging.FieldRunID, run.ID),
			logging.Error(err))
	} else {
		run.ThumbnailFile = thumbnail
	}

	run.SetProgressComplete("Exporting", "export complete")
	e.logger.Info("run exported",
		slog.Int64(logging.FieldRunID, run.ID),
		slog.String("file", final),
		slog.String("thumbnail", run.ThumbnailFile))
	return nil
}

// HealthCheck reports whether the output directory is configured.
func (e *Exporter) HealthCheck(context.Context) stage.Health {
	if e.cfg.Paths.OutputDir == "" {
		return stage.Unhealthy("export", "paths.output_dir is not configured")
	}
	return stage.Healthy("export")
}

// OutputName returns the final filename for a run: the run's configured
// name, or the fixed test-mode name.
func OutputName(run *queue.Run) string {
	if run.Mode == queue.ModeTest {
		return TestOutputName
	}
	name := strings.TrimSpace(run.OutputName)
	if name == "" {
		name = fmt.Sprintf("run_%d", run.ID)
	}
	if filepath.Ext(name) == "" {
		name += ".mp4"
	}
	return name
}

func grabFrame(ctx context.Context, binary, source, dest string, seek float64) error {
	cmd := exec.CommandContext(ctx, binary,
		"-y", "-hide_banner", "-loglevel", "error",
		"-ss", fmt.Sprintf("%.3f", seek),
		"-i", source,
		"-frames:v", "1",
		"-q:v", "2",
		dest,
	)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("grab frame: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}
