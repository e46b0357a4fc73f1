package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"reelsmith/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.AssetRoot = filepath.Join(base, "assets")
	cfg.Paths.StagingDir = filepath.Join(base, "staging")
	cfg.Paths.OutputDir = filepath.Join(base, "output")
	cfg.Paths.LogDir = filepath.Join(base, "logs")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     cfg,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithCaptions enables caption synthesis on the test config.
func WithCaptions(chunkSize int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Content.Captions.Enabled = true
		b.cfg.Content.Captions.ChunkSize = chunkSize
	}
}

// WithMusicRequired marks background music as mandatory on the test config.
func WithMusicRequired() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Content.Music.Required = true
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, ffmpeg and ffprobe are stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"ffmpeg", "ffprobe"}
		}
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		script := []byte("#!/bin/sh\nexit 0\n")
		for _, name := range names {
			target := filepath.Join(binDir, name)
			if err := os.WriteFile(target, script, 0o755); err != nil {
				b.t.Fatalf("write stub %s: %v", name, err)
			}
		}

		oldPath := os.Getenv("PATH")
		if err := os.Setenv("PATH", binDir+string(os.PathListSeparator)+oldPath); err != nil {
			b.t.Fatalf("set PATH: %v", err)
		}
		b.t.Cleanup(func() {
			_ = os.Setenv("PATH", oldPath)
		})
	}
}
