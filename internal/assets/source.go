package assets

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"golang.org/x/sync/errgroup"

	"reelsmith/internal/config"
	"reelsmith/internal/media/ffprobe"
	"reelsmith/internal/services"
)

// Source resolves the scenes for a run from an asset root.
type Source interface {
	ResolveScenes(ctx context.Context) ([]Scene, error)
}

// ProbeFunc inspects a media file. Defaults to ffprobe.Inspect; tests
// substitute a fake.
type ProbeFunc func(ctx context.Context, binary, path string) (ffprobe.Result, error)

// PrecomputedSource validates pre-placed assets: every scene's animation and
// voiceover must already exist under the root. Scene durations come from
// probing the voiceover, and caption text from the optional narration
// manifest.
type PrecomputedSource struct {
	locator *Locator
	probe   ProbeFunc
	binary  string
	logger  *slog.Logger
}

// NewPrecomputedSource builds a source over pre-placed assets.
func NewPrecomputedSource(locator *Locator, cfg *config.Config, logger *slog.Logger) *PrecomputedSource {
	return &PrecomputedSource{
		locator: locator,
		probe:   ffprobe.Inspect,
		binary:  cfg.FFprobeBinary(),
		logger:  logger,
	}
}

// WithProbe overrides the probe used to measure durations.
func (s *PrecomputedSource) WithProbe(probe ProbeFunc) *PrecomputedSource {
	s.probe = probe
	return s
}

// ResolveScenes locates every scene's files, probes voiceover durations,
// and attaches narration text from script.yaml when present.
func (s *PrecomputedSource) ResolveScenes(ctx context.Context) ([]Scene, error) {
	count, err := s.locator.SceneCount()
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "resolving", "count-scenes", "", err)
	}
	if count == 0 {
		return nil, services.Wrap(services.ErrNotFound, "resolving", "count-scenes",
			fmt.Sprintf("no scene clips under %s", s.locator.Root()), ErrNotFound)
	}

	manifest, err := LoadManifest(s.locator.Root())
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "resolving", "load-manifest", "", err)
	}

	scenes := make([]Scene, 0, count)
	for index := 1; index <= count; index++ {
		scene, err := s.resolveScene(ctx, index, manifest)
		if err != nil {
			return nil, err
		}
		scenes = append(scenes, scene)
	}
	return scenes, nil
}

func (s *PrecomputedSource) resolveScene(ctx context.Context, index int, manifest *Manifest) (Scene, error) {
	animation, err := s.locator.ScenePath(KindAnimation, index)
	if err != nil {
		return Scene{}, services.Wrap(services.ErrValidation, "resolving", "locate-animation", "", err)
	}
	voiceover, err := s.locator.ScenePath(KindVoiceover, index)
	if err != nil {
		return Scene{}, services.Wrap(services.ErrValidation, "resolving", "locate-voiceover", "", err)
	}

	result, err := s.probe(ctx, s.binary, voiceover)
	if err != nil {
		return Scene{}, services.Wrap(services.ErrExternalTool, "resolving", "probe-voiceover", voiceover, err)
	}
	duration := result.DurationSeconds()
	if duration <= 0 {
		return Scene{}, services.Wrap(services.ErrValidation, "resolving", "probe-voiceover",
			fmt.Sprintf("%s reports no duration", voiceover), ErrNotFound)
	}

	s.logger.Debug("scene resolved",
		slog.Int("scene", index),
		slog.String("animation", animation),
		slog.Float64("duration", duration))

	return Scene{
		Index:         index,
		AnimationFile: animation,
		VoiceoverFile: voiceover,
		Duration:      duration,
		Caption:       manifest.Narration(index),
	}, nil
}

// GeneratingSource invokes an external generator command once per scene
// before validating the results exactly like PrecomputedSource. The command
// receives the run context through environment variables:
//
//	REELSMITH_ROOT   asset root directory
//	REELSMITH_TOPIC  run topic
//	REELSMITH_SCENE  1-based scene index being generated
//	REELSMITH_SCENES total scene count
//
// Concurrency is bounded by generation.max_concurrent_tasks and each
// invocation by generation.timeout_seconds.
type GeneratingSource struct {
	cfg      *config.Config
	locator  *Locator
	validate *PrecomputedSource
	topic    string
	logger   *slog.Logger

	// runCommand is swapped in tests.
	runCommand func(ctx context.Context, name string, args []string, env []string) error
}

// NewGeneratingSource builds a live-mode source around the configured
// generator command.
func NewGeneratingSource(locator *Locator, cfg *config.Config, topic string, logger *slog.Logger) *GeneratingSource {
	return &GeneratingSource{
		cfg:        cfg,
		locator:    locator,
		validate:   NewPrecomputedSource(locator, cfg, logger),
		topic:      topic,
		logger:     logger,
		runCommand: execCommand,
	}
}

// ResolveScenes generates assets for every manifest scene, then validates
// the generated files.
func (s *GeneratingSource) ResolveScenes(ctx context.Context) ([]Scene, error) {
	command := strings.TrimSpace(s.cfg.Generation.Command)
	if command == "" {
		return nil, services.Wrap(services.ErrConfiguration, "resolving", "generate",
			"generation.command is empty; live mode needs a generator", ErrNotFound)
	}

	manifest, err := LoadManifest(s.locator.Root())
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "resolving", "load-manifest", "", err)
	}
	if manifest == nil || len(manifest.Scenes) == 0 {
		return nil, services.Wrap(services.ErrValidation, "resolving", "load-manifest",
			fmt.Sprintf("live mode needs %s with at least one scene", ManifestName), ErrNotFound)
	}

	parts := strings.Fields(command)
	total := len(manifest.Scenes)

	group, groupCtx := errgroup.WithContext(ctx)
	limit := s.cfg.Generation.MaxConcurrentTasks
	if limit < 1 {
		limit = 1
	}
	group.SetLimit(limit)

	for index := 1; index <= total; index++ {
		group.Go(func() error {
			sceneCtx, cancel := context.WithTimeout(groupCtx, s.cfg.GenerationTimeout())
			defer cancel()

			env := append(os.Environ(),
				"REELSMITH_ROOT="+s.locator.Root(),
				"REELSMITH_TOPIC="+s.topic,
				fmt.Sprintf("REELSMITH_SCENE=%d", index),
				fmt.Sprintf("REELSMITH_SCENES=%d", total),
			)
			s.logger.Info("generating scene assets",
				slog.Int("scene", index),
				slog.String("command", parts[0]))

			if err := s.runCommand(sceneCtx, parts[0], parts[1:], env); err != nil {
				return services.Wrap(services.ErrExternalTool, "resolving", "generate",
					fmt.Sprintf("scene %d", index), err)
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	return s.validate.ResolveScenes(ctx)
}

func execCommand(ctx context.Context, name string, args []string, env []string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Env = env
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}
