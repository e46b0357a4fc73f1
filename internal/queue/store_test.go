package queue

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenPath(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("OpenPath: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestNewRunAndGet(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	run, err := store.NewRun(ctx, "  ocean facts  ", ModeTest, "/tmp/assets", "ocean")
	if err != nil {
		t.Fatalf("NewRun: %v", err)
	}
	if run.ID == 0 {
		t.Fatal("expected non-zero run ID")
	}
	if run.Topic != "ocean facts" {
		t.Errorf("topic = %q, want trimmed %q", run.Topic, "ocean facts")
	}
	if run.Status != StatusPending {
		t.Errorf("status = %q, want %q", run.Status, StatusPending)
	}
	if run.CreatedAt.IsZero() || run.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be set")
	}

	fetched, err := store.GetByID(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if fetched == nil || fetched.ID != run.ID {
		t.Fatalf("GetByID returned %+v, want run %d", fetched, run.ID)
	}

	missing, err := store.GetByID(ctx, run.ID+100)
	if err != nil {
		t.Fatalf("GetByID missing: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for missing run, got %+v", missing)
	}
}

func TestUpdatePersistsStageFields(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	run, err := store.NewRun(ctx, "space", ModeLive, "/tmp/space", "space")
	if err != nil {
		t.Fatalf("NewRun: %v", err)
	}

	run.Status = StatusResolved
	run.ScenesJSON = `[{"index":1}]`
	run.SetProgress("Resolving", "3 scenes located", 20)
	if err := store.Update(ctx, run); err != nil {
		t.Fatalf("Update: %v", err)
	}

	fetched, err := store.GetByID(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if fetched.Status != StatusResolved {
		t.Errorf("status = %q, want %q", fetched.Status, StatusResolved)
	}
	if fetched.ScenesJSON != run.ScenesJSON {
		t.Errorf("scenes json = %q, want %q", fetched.ScenesJSON, run.ScenesJSON)
	}
	if fetched.ProgressPercent != 20 {
		t.Errorf("progress percent = %v, want 20", fetched.ProgressPercent)
	}
	if !fetched.UpdatedAt.After(fetched.CreatedAt) {
		t.Errorf("updated_at %v should trail created_at %v", fetched.UpdatedAt, fetched.CreatedAt)
	}
}

func TestListOrdersNewestFirst(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for _, topic := range []string{"first", "second", "third"} {
		if _, err := store.NewRun(ctx, topic, ModeTest, "/tmp/a", topic); err != nil {
			t.Fatalf("NewRun %s: %v", topic, err)
		}
	}

	runs, err := store.List(ctx, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("len(runs) = %d, want 3", len(runs))
	}
	if runs[0].Topic != "third" || runs[2].Topic != "first" {
		t.Errorf("expected newest first, got %q..%q", runs[0].Topic, runs[2].Topic)
	}

	limited, err := store.List(ctx, 2)
	if err != nil {
		t.Fatalf("List limited: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("len(limited) = %d, want 2", len(limited))
	}
}

func TestFailAbandoned(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	stuck, err := store.NewRun(ctx, "stuck", ModeTest, "/tmp/a", "stuck")
	if err != nil {
		t.Fatalf("NewRun: %v", err)
	}
	stuck.Status = StatusCompositing
	if err := store.Update(ctx, stuck); err != nil {
		t.Fatalf("Update: %v", err)
	}

	done, err := store.NewRun(ctx, "done", ModeTest, "/tmp/a", "done")
	if err != nil {
		t.Fatalf("NewRun: %v", err)
	}
	done.Status = StatusCompleted
	if err := store.Update(ctx, done); err != nil {
		t.Fatalf("Update: %v", err)
	}

	affected, err := store.FailAbandoned(ctx, "process interrupted")
	if err != nil {
		t.Fatalf("FailAbandoned: %v", err)
	}
	if affected != 1 {
		t.Errorf("affected = %d, want 1", affected)
	}

	fetched, err := store.GetByID(ctx, stuck.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if fetched.Status != StatusFailed {
		t.Errorf("status = %q, want %q", fetched.Status, StatusFailed)
	}
	if fetched.ErrorMessage != "process interrupted" {
		t.Errorf("error message = %q", fetched.ErrorMessage)
	}

	untouched, err := store.GetByID(ctx, done.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if untouched.Status != StatusCompleted {
		t.Errorf("completed run changed status to %q", untouched.Status)
	}
}

func TestSummaryCounts(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	statuses := []Status{StatusPending, StatusCompositing, StatusCompleted, StatusCompleted, StatusFailed}
	for i, status := range statuses {
		run, err := store.NewRun(ctx, "topic", ModeTest, "/tmp/a", "out")
		if err != nil {
			t.Fatalf("NewRun %d: %v", i, err)
		}
		run.Status = status
		if err := store.Update(ctx, run); err != nil {
			t.Fatalf("Update %d: %v", i, err)
		}
	}

	summary, err := store.Summary(ctx)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if summary.Total != 5 {
		t.Errorf("total = %d, want 5", summary.Total)
	}
	if summary.Pending != 1 || summary.Processing != 1 || summary.Completed != 2 || summary.Failed != 1 {
		t.Errorf("summary = %+v", summary)
	}
}

func TestParseStatusAndMode(t *testing.T) {
	if status, ok := ParseStatus(" Building_Timeline "); !ok || status != StatusBuildingTimeline {
		t.Errorf("ParseStatus = %q, %v", status, ok)
	}
	if _, ok := ParseStatus("bogus"); ok {
		t.Error("expected bogus status to be rejected")
	}
	if mode, ok := ParseMode("LIVE"); !ok || mode != ModeLive {
		t.Errorf("ParseMode = %q, %v", mode, ok)
	}
	if _, ok := ParseMode(""); ok {
		t.Error("expected empty mode to be rejected")
	}
}

func TestStageLabel(t *testing.T) {
	if got := StageLabel(StatusSyncingCaptions); got != "Syncing Captions" {
		t.Errorf("StageLabel = %q", got)
	}
	if got := StageLabel(""); got != "" {
		t.Errorf("StageLabel empty = %q", got)
	}
}
