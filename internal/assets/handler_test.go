package assets

import (
	"context"
	"testing"

	"reelsmith/internal/config"
	"reelsmith/internal/logging"
	"reelsmith/internal/queue"
)

func TestResolverPrepareRejectsMissingRoot(t *testing.T) {
	resolver := NewResolver(config.Default(), logging.NewNop())
	run := &queue.Run{AssetRoot: "/nonexistent/root"}
	if err := resolver.Prepare(context.Background(), run); err == nil {
		t.Fatal("expected error for missing asset root")
	}
}

func TestResolverHealthCheck(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.AssetRoot = ""
	resolver := NewResolver(cfg, logging.NewNop())
	if health := resolver.HealthCheck(context.Background()); health.Ready {
		t.Error("expected unhealthy with no asset root configured")
	}

	cfg2 := config.Default()
	cfg2.Paths.AssetRoot = t.TempDir()
	resolver2 := NewResolver(cfg2, logging.NewNop())
	if health := resolver2.HealthCheck(context.Background()); !health.Ready {
		t.Errorf("expected healthy: %s", health.Detail)
	}
}

func TestDecodeResolvedRoundTrip(t *testing.T) {
	raw := `{"scenes":[{"index":1,"animation_file":"a.mp4","voiceover_file":"v.mp3","duration":4}],"music_files":["m.mp3"]}`
	resolved, err := DecodeResolved(raw)
	if err != nil {
		t.Fatalf("DecodeResolved: %v", err)
	}
	if len(resolved.Scenes) != 1 || resolved.Scenes[0].Duration != 4 {
		t.Errorf("scenes = %+v", resolved.Scenes)
	}
	if len(resolved.MusicFiles) != 1 {
		t.Errorf("music = %v", resolved.MusicFiles)
	}

	if _, err := DecodeResolved("not json"); err == nil {
		t.Error("expected decode failure")
	}
}
