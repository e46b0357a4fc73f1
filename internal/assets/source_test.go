package assets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"reelsmith/internal/config"
	"reelsmith/internal/logging"
	"reelsmith/internal/media/ffprobe"
)

func fakeProbe(durations map[string]float64) ProbeFunc {
	return func(_ context.Context, _, path string) (ffprobe.Result, error) {
		duration, ok := durations[filepath.Base(path)]
		if !ok {
			return ffprobe.Result{}, fmt.Errorf("unexpected probe of %s", path)
		}
		return ffprobe.Result{
			Format: ffprobe.Format{Duration: strconv.FormatFloat(duration, 'f', -1, 64)},
		}, nil
	}
}

func seedScenes(t *testing.T, root string, count int) {
	t.Helper()
	for i := 1; i <= count; i++ {
		writeAsset(t, root, "animations", fmt.Sprintf("scene_%03d.mp4", i))
		writeAsset(t, root, "voiceover", fmt.Sprintf("voiceover_part_%03d.mp3", i))
	}
}

func TestPrecomputedSourceResolvesScenes(t *testing.T) {
	root := t.TempDir()
	seedScenes(t, root, 2)

	manifest := "topic: deep sea\nscenes:\n  - narration: first scene\n  - narration: second scene\n"
	if err := os.WriteFile(filepath.Join(root, ManifestName), []byte(manifest), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}

	cfg := config.Default()
	source := NewPrecomputedSource(NewLocator(root), cfg, logging.NewNop()).
		WithProbe(fakeProbe(map[string]float64{
			"voiceover_part_001.mp3": 4.0,
			"voiceover_part_002.mp3": 5.5,
		}))

	scenes, err := source.ResolveScenes(context.Background())
	if err != nil {
		t.Fatalf("ResolveScenes: %v", err)
	}
	if len(scenes) != 2 {
		t.Fatalf("len(scenes) = %d, want 2", len(scenes))
	}
	if scenes[0].Index != 1 || scenes[1].Index != 2 {
		t.Errorf("indices = %d, %d", scenes[0].Index, scenes[1].Index)
	}
	if scenes[0].Duration != 4.0 || scenes[1].Duration != 5.5 {
		t.Errorf("durations = %v, %v", scenes[0].Duration, scenes[1].Duration)
	}
	if scenes[0].Caption != "first scene" || scenes[1].Caption != "second scene" {
		t.Errorf("captions = %q, %q", scenes[0].Caption, scenes[1].Caption)
	}
}

func TestPrecomputedSourceWithoutManifest(t *testing.T) {
	root := t.TempDir()
	seedScenes(t, root, 1)

	source := NewPrecomputedSource(NewLocator(root), config.Default(), logging.NewNop()).
		WithProbe(fakeProbe(map[string]float64{"voiceover_part_001.mp3": 3.0}))

	scenes, err := source.ResolveScenes(context.Background())
	if err != nil {
		t.Fatalf("ResolveScenes: %v", err)
	}
	if scenes[0].Caption != "" {
		t.Errorf("caption = %q, want empty", scenes[0].Caption)
	}
}

func TestPrecomputedSourceEmptyRoot(t *testing.T) {
	source := NewPrecomputedSource(NewLocator(t.TempDir()), config.Default(), logging.NewNop())
	if _, err := source.ResolveScenes(context.Background()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestPrecomputedSourceMissingVoiceover(t *testing.T) {
	root := t.TempDir()
	writeAsset(t, root, "animations", "scene_001.mp4")

	source := NewPrecomputedSource(NewLocator(root), config.Default(), logging.NewNop())
	if _, err := source.ResolveScenes(context.Background()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestGeneratingSourceInvokesCommandPerScene(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, ManifestName),
		[]byte("topic: space\nscenes:\n  - narration: one\n  - narration: two\n"), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}

	cfg := config.Default()
	cfg.Generation.Command = "make-scene --fast"
	cfg.Generation.MaxConcurrentTasks = 2

	source := NewGeneratingSource(NewLocator(root), cfg, "space", logging.NewNop())
	source.validate.WithProbe(fakeProbe(map[string]float64{
		"voiceover_part_001.mp3": 2.0,
		"voiceover_part_002.mp3": 3.0,
	}))

	var calls atomic.Int32
	var mu sync.Mutex
	sceneEnv := map[string]bool{}
	source.runCommand = func(_ context.Context, name string, args []string, env []string) error {
		calls.Add(1)
		if name != "make-scene" || len(args) != 1 || args[0] != "--fast" {
			t.Errorf("command = %s %v", name, args)
		}
		var scene string
		for _, entry := range env {
			if after, ok := strings.CutPrefix(entry, "REELSMITH_SCENE="); ok {
				scene = after
			}
		}
		mu.Lock()
		sceneEnv[scene] = true
		mu.Unlock()

		index, _ := strconv.Atoi(scene)
		writeAsset(t, root, "animations", fmt.Sprintf("scene_%03d.mp4", index))
		writeAsset(t, root, "voiceover", fmt.Sprintf("voiceover_part_%03d.mp3", index))
		return nil
	}

	scenes, err := source.ResolveScenes(context.Background())
	if err != nil {
		t.Fatalf("ResolveScenes: %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("generator ran %d times, want 2", calls.Load())
	}
	if !sceneEnv["1"] || !sceneEnv["2"] {
		t.Errorf("scene env values seen: %v", sceneEnv)
	}
	if len(scenes) != 2 {
		t.Errorf("len(scenes) = %d, want 2", len(scenes))
	}
}

func TestGeneratingSourceRequiresCommand(t *testing.T) {
	source := NewGeneratingSource(NewLocator(t.TempDir()), config.Default(), "topic", logging.NewNop())
	if _, err := source.ResolveScenes(context.Background()); err == nil {
		t.Fatal("expected error when generation.command is empty")
	}
}

func TestGeneratingSourceRequiresManifest(t *testing.T) {
	cfg := config.Default()
	cfg.Generation.Command = "make-scene"

	source := NewGeneratingSource(NewLocator(t.TempDir()), cfg, "topic", logging.NewNop())
	if _, err := source.ResolveScenes(context.Background()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestGeneratingSourcePropagatesCommandFailure(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, ManifestName),
		[]byte("scenes:\n  - narration: one\n"), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}

	cfg := config.Default()
	cfg.Generation.Command = "make-scene"

	source := NewGeneratingSource(NewLocator(root), cfg, "topic", logging.NewNop())
	boom := errors.New("generator crashed")
	source.runCommand = func(context.Context, string, []string, []string) error {
		return boom
	}

	if _, err := source.ResolveScenes(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped generator failure", err)
	}
}
