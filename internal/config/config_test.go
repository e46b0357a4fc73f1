package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"reelsmith/internal/config"
)

func TestLoadDefaultsExpandPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantStaging := filepath.Join(tempHome, ".local", "share", "reelsmith", "staging")
	if cfg.Paths.StagingDir != wantStaging {
		t.Fatalf("unexpected staging dir: got %q want %q", cfg.Paths.StagingDir, wantStaging)
	}
	if cfg.Video.Format != config.FormatShort {
		t.Fatalf("unexpected default format: %q", cfg.Video.Format)
	}
	if dims := cfg.OutputDimensions(); dims.Width != 1080 || dims.Height != 1920 {
		t.Fatalf("unexpected short-form dimensions: %dx%d", dims.Width, dims.Height)
	}
	if cfg.Content.Music.Required {
		t.Fatal("expected music optional by default")
	}
	if !cfg.Content.Captions.Enabled {
		t.Fatal("expected captions enabled by default")
	}
	if cfg.Workflow.DurationToleranceMS != 100 {
		t.Fatalf("unexpected duration tolerance: %d", cfg.Workflow.DurationToleranceMS)
	}
}

func TestLoadAppliesFileOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "reelsmith.toml")
	body := strings.Join([]string{
		"[video]",
		"fps = 24",
		`format = "long"`,
		"[video.transitions]",
		"duration = 1.0",
		"[content.music]",
		"volume = 0.5",
		"required = true",
		"[content.captions]",
		"enabled = false",
	}, "\n")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to be found")
	}
	if cfg.Video.FPS != 24 {
		t.Fatalf("unexpected fps: %d", cfg.Video.FPS)
	}
	if dims := cfg.OutputDimensions(); dims.Width != 1920 || dims.Height != 1080 {
		t.Fatalf("expected long-form dimensions, got %dx%d", dims.Width, dims.Height)
	}
	if !cfg.Content.Music.Required {
		t.Fatal("expected music required override")
	}
	if cfg.Content.Captions.Enabled {
		t.Fatal("expected captions disabled override")
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"zero fps", func(c *config.Config) { c.Video.FPS = 0 }, "video.fps"},
		{"bad format", func(c *config.Config) { c.Video.Format = "square" }, "video.format"},
		{"volume above one", func(c *config.Config) { c.Content.Music.Volume = 1.5 }, "content.music.volume"},
		{"negative transition", func(c *config.Config) { c.Video.Transitions.Duration = -0.5 }, "video.transitions.duration"},
		{"zero caption size", func(c *config.Config) { c.Video.Captions.Size = 0 }, "video.captions.size"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists {
		t.Fatal("expected sample file to exist")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("sample config invalid: %v", err)
	}
}
