package compositor

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"reelsmith/internal/captions"
	"reelsmith/internal/config"
	"reelsmith/internal/logging"
	"reelsmith/internal/media/ffprobe"
	"reelsmith/internal/queue"
	"reelsmith/internal/services"
	"reelsmith/internal/stage"
	"reelsmith/internal/timeline"
)

// Compositor is the pipeline stage that renders the timeline with ffmpeg.
type Compositor struct {
	cfg    *config.Config
	logger *slog.Logger

	// render and probe are swapped in tests.
	render func(ctx context.Context, binary string, args []string) (string, error)
	probe  func(ctx context.Context, binary, path string) (ffprobe.Result, error)
}

// New constructs the compositing stage.
func New(cfg *config.Config, logger *slog.Logger) *Compositor {
	return &Compositor{
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "compositor"),
		render: runFFmpeg,
		probe:  ffprobe.Inspect,
	}
}

// SetLogger replaces the stage logger.
func (c *Compositor) SetLogger(logger *slog.Logger) {
	c.logger = logging.NewComponentLogger(logger, "compositor")
}

// Prepare verifies upstream snapshots and a writable staging directory.
func (c *Compositor) Prepare(_ context.Context, run *queue.Run) error {
	if run.TimelineJSON == "" {
		return services.Wrap(services.ErrValidation, "compositing", "check-snapshot",
			"run carries no timeline", timeline.ErrEmptyTimeline)
	}
	if err := os.MkdirAll(c.cfg.Paths.StagingDir, 0o755); err != nil {
		return services.Wrap(services.ErrConfiguration, "compositing", "ensure-staging",
			c.cfg.Paths.StagingDir, err)
	}
	return nil
}

// Execute renders the run's timeline into a staging artifact and records
// its path on the run.
func (c *Compositor) Execute(ctx context.Context, run *queue.Run) error {
	tl, err := timeline.Decode(run.TimelineJSON)
	if err != nil {
		return services.Wrap(services.ErrValidation, "compositing", "decode-timeline", "", err)
	}
	var spans []captions.Span
	if run.CaptionsJSON != "" {
		if spans, err = captions.Decode(run.CaptionsJSON); err != nil {
			return services.Wrap(services.ErrValidation, "compositing", "decode-captions", "", err)
		}
	}

	plan, err := BuildPlan(tl, spans, c.cfg)
	if err != nil {
		return services.Wrap(services.ErrValidation, "compositing", "build-graph", "", err)
	}
	if tl.Music == nil {
		c.logger.Warn("rendering without background music",
			slog.Int64(logging.FieldRunID, run.ID))
	}

	final := filepath.Join(c.cfg.Paths.StagingDir, fmt.Sprintf("run_%d_composited.mp4", run.ID))
	partial := final + ".partial"
	defer os.Remove(partial)

	run.SetProgress("Compositing", fmt.Sprintf("rendering %.1fs", tl.Total), 60)
	c.logger.Info("render started",
		slog.Int64(logging.FieldRunID, run.ID),
		slog.Int("inputs", len(plan.Inputs)),
		slog.Float64("duration", tl.Total))

	output, err := c.render(ctx, c.cfg.FFmpegBinary(), plan.Args(partial))
	if err != nil {
		marker := services.ErrExternalTool
		cause := err
		if isCodecFailure(output) {
			cause = fmt.Errorf("%w: %w", ErrCodec, err)
		}
		return services.Wrap(marker, "compositing", "render", firstLine(output), cause)
	}

	if err := c.verifyDuration(ctx, run, partial, tl.Total); err != nil {
		return err
	}

	if err := os.Rename(partial, final); err != nil {
		return services.Wrap(services.ErrValidation, "compositing", "finalize", partial, err)
	}

	run.CompositedFile = final
	run.SetProgress("Compositing", "render complete", 80)
	c.logger.Info("render finished",
		slog.Int64(logging.FieldRunID, run.ID),
		slog.String("file", final))
	return nil
}

// verifyDuration probes the rendered artifact; drift beyond the configured
// tolerance is logged, never fatal. The render already clamps to the
// expected duration.
func (c *Compositor) verifyDuration(ctx context.Context, run *queue.Run, path string, expected float64) error {
	result, err := c.probe(ctx, c.cfg.FFprobeBinary(), path)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "compositing", "verify", path, err)
	}
	actual := result.DurationSeconds()
	drift := math.Abs(actual - expected)
	if drift > c.cfg.DurationTolerance().Seconds() {
		c.logger.Warn("rendered duration drifted beyond tolerance, clamped",
			slog.Int64(logging.FieldRunID, run.ID),
			slog.Float64("expected", expected),
			slog.Float64("actual", actual))
	}
	return nil
}

// HealthCheck reports whether ffmpeg is on PATH.
func (c *Compositor) HealthCheck(context.Context) stage.Health {
	if _, err := exec.LookPath(c.cfg.FFmpegBinary()); err != nil {
		return stage.Unhealthy("compositor", fmt.Sprintf("%s not found on PATH", c.cfg.FFmpegBinary()))
	}
	return stage.Healthy("compositor")
}

func runFFmpeg(ctx context.Context, binary string, args []string) (string, error) {
	cmd := exec.CommandContext(ctx, binary, args...)
	output, err := cmd.CombinedOutput()
	return string(output), err
}

var codecFailureMarkers = []string{
	"invalid data found",
	"could not find codec",
	"decoder not found",
	"encoder not found",
	"moov atom not found",
	"unknown encoder",
}

func isCodecFailure(output string) bool {
	lowered := strings.ToLower(output)
	for _, marker := range codecFailureMarkers {
		if strings.Contains(lowered, marker) {
			return true
		}
	}
	return false
}

func firstLine(output string) string {
	if i := strings.IndexByte(output, '\n'); i >= 0 {
		output = output[:i]
	}
	return strings.TrimSpace(output)
}
