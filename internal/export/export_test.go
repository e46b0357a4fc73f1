package export

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"reelsmith/internal/config"
	"reelsmith/internal/logging"
	"reelsmith/internal/queue"
	"reelsmith/internal/testsupport"
)

func exportFixture(t *testing.T) (*Exporter, *config.Config, *queue.Run) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}

	composited := filepath.Join(cfg.Paths.StagingDir, "run_3_composited.mp4")
	testsupport.WriteFile(t, composited, 16)

	run := &queue.Run{
		ID:             3,
		Mode:           queue.ModeLive,
		OutputName:     "ocean",
		Status:         queue.StatusExporting,
		CompositedFile: composited,
	}
	return New(cfg, logging.NewNop()), cfg, run
}

func TestExecuteMovesAndThumbnails(t *testing.T) {
	exporter, cfg, run := exportFixture(t)
	exporter.grabFrame = func(_ context.Context, _, source, dest string, _ float64) error {
		if source != filepath.Join(cfg.Paths.OutputDir, "ocean.mp4") {
			t.Errorf("thumbnail source = %q", source)
		}
		return os.WriteFile(dest, []byte("jpeg"), 0o644)
	}

	if err := exporter.Prepare(context.Background(), run); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if err := exporter.Execute(context.Background(), run); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	want := filepath.Join(cfg.Paths.OutputDir, "ocean.mp4")
	if run.FinalFile != want {
		t.Errorf("final file = %q, want %q", run.FinalFile, want)
	}
	if _, err := os.Stat(want); err != nil {
		t.Errorf("final video missing: %v", err)
	}
	if run.ThumbnailFile != filepath.Join(cfg.Paths.OutputDir, "ocean.jpg") {
		t.Errorf("thumbnail = %q", run.ThumbnailFile)
	}
	if run.ProgressPercent != 100 {
		t.Errorf("progress = %v, want 100", run.ProgressPercent)
	}
}

func TestExecuteThumbnailFailureIsNonFatal(t *testing.T) {
	exporter, _, run := exportFixture(t)
	exporter.grabFrame = func(context.Context, string, string, string, float64) error {
		return errors.New("no frames")
	}

	if err := exporter.Execute(context.Background(), run); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if run.ThumbnailFile != "" {
		t.Errorf("thumbnail recorded despite failure: %q", run.ThumbnailFile)
	}
	if run.FinalFile == "" {
		t.Error("final file not recorded")
	}
}

func TestPrepareRejectsMissingArtifact(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.OutputDir = t.TempDir()
	exporter := New(cfg, logging.NewNop())

	if err := exporter.Prepare(context.Background(), &queue.Run{}); err == nil {
		t.Fatal("expected error without composited file")
	}
	run := &queue.Run{CompositedFile: "/nonexistent/file.mp4"}
	if err := exporter.Prepare(context.Background(), run); err == nil {
		t.Fatal("expected error for missing composited file")
	}
}

func TestOutputNameForRun(t *testing.T) {
	cases := []struct {
		name string
		run  queue.Run
		want string
	}{
		{"test mode fixed name", queue.Run{Mode: queue.ModeTest, OutputName: "whatever"}, TestOutputName},
		{"live mode named", queue.Run{Mode: queue.ModeLive, OutputName: "ocean"}, "ocean.mp4"},
		{"live mode with extension", queue.Run{Mode: queue.ModeLive, OutputName: "ocean.mov"}, "ocean.mov"},
		{"live mode unnamed", queue.Run{ID: 12, Mode: queue.ModeLive}, "run_12.mp4"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := OutputName(&tc.run); got != tc.want {
				t.Errorf("OutputName = %q, want %q", got, tc.want)
			}
		})
	}
}
