package logging_test

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"reelsmith/internal/logging"
	"reelsmith/internal/services"
)

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNewWritesToFile(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "out.log")
	logger, err := logging.New(logging.Options{
		Level:       "info",
		Format:      "json",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Info("render started", logging.String("topic", "ghosts"))

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "render started") {
		t.Fatalf("log output missing message: %s", data)
	}
	if !strings.Contains(string(data), `"topic":"ghosts"`) {
		t.Fatalf("log output missing attribute: %s", data)
	}
}

func TestWithContextAddsRunFields(t *testing.T) {
	var buf bytes.Buffer
	base, err := logging.New(logging.Options{Level: "debug", Format: "json", OutputPaths: []string{"stdout"}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_ = base // construction path covered above; assert field extraction directly

	ctx := services.WithRunID(context.Background(), 7)
	ctx = services.WithStage(ctx, "compositing")
	fields := logging.ContextFields(ctx)
	if len(fields) != 2 {
		t.Fatalf("expected 2 context fields, got %d", len(fields))
	}

	handler := slog.NewJSONHandler(&buf, nil)
	logger := logging.WithContext(ctx, slog.New(handler))
	logger.Info("stage started")
	out := buf.String()
	if !strings.Contains(out, `"run_id":7`) || !strings.Contains(out, `"stage":"compositing"`) {
		t.Fatalf("context fields missing from output: %s", out)
	}
}

func TestCleanupOldLogsPrunesStaleFiles(t *testing.T) {
	dir := t.TempDir()
	stale := filepath.Join(dir, "old.log")
	fresh := filepath.Join(dir, "new.log")
	for _, path := range []string{stale, fresh} {
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
	oldTime := time.Now().AddDate(0, 0, -10)
	if err := os.Chtimes(stale, oldTime, oldTime); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	logging.CleanupOldLogs(logging.NewNop(), 7, logging.RetentionTarget{Dir: dir, Pattern: "*.log"})

	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Fatal("expected stale log to be removed")
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Fatalf("expected fresh log to remain: %v", err)
	}
}
