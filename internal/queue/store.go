package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"reelsmith/internal/config"
)

// Store manages run persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the run database and applies the schema.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(filepath.Join(cfg.Paths.LogDir, "runs.db"))
}

// OpenPath connects to the run database at an explicit location.
func OpenPath(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.applySchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) applySchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO schema_info (version) VALUES (?) ON CONFLICT(version) DO NOTHING",
		schemaVersion,
	); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	return tx.Commit()
}

const runColumns = `id, topic, mode, asset_root, output_name, status, error_message,
	created_at, updated_at, progress_stage, progress_percent, progress_message,
	scenes_json, timeline_json, captions_json, composited_file, final_file, thumbnail_file`

// NewRun inserts a pending run for the given topic and asset root.
func (s *Store) NewRun(ctx context.Context, topic string, mode Mode, assetRoot, outputName string) (*Run, error) {
	now := time.Now().UTC().Format(time.RFC3339Nano)

	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO runs (topic, mode, asset_root, output_name, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		strings.TrimSpace(topic),
		string(mode),
		assetRoot,
		strings.TrimSpace(outputName),
		StatusPending,
		now,
		now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(ctx, id)
}

// GetByID fetches a run by identifier. Returns nil when absent.
func (s *Store) GetByID(ctx context.Context, id int64) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

// Update persists changes to an existing run.
func (s *Store) Update(ctx context.Context, run *Run) error {
	if run == nil {
		return errors.New("run is nil")
	}
	run.UpdatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(
		ctx,
		`UPDATE runs SET
			topic = ?, mode = ?, asset_root = ?, output_name = ?, status = ?,
			error_message = ?, updated_at = ?, progress_stage = ?, progress_percent = ?,
			progress_message = ?, scenes_json = ?, timeline_json = ?, captions_json = ?,
			composited_file = ?, final_file = ?, thumbnail_file = ?
		 WHERE id = ?`,
		run.Topic,
		string(run.Mode),
		run.AssetRoot,
		run.OutputName,
		string(run.Status),
		run.ErrorMessage,
		run.UpdatedAt.Format(time.RFC3339Nano),
		run.ProgressStage,
		run.ProgressPercent,
		run.ProgressMessage,
		run.ScenesJSON,
		run.TimelineJSON,
		run.CaptionsJSON,
		run.CompositedFile,
		run.FinalFile,
		run.ThumbnailFile,
		run.ID,
	)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	return nil
}

// List returns runs ordered newest first, up to limit (0 means no limit).
func (s *Store) List(ctx context.Context, limit int) ([]*Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// ListByStatus returns runs currently in the provided status, oldest first.
func (s *Store) ListByStatus(ctx context.Context, statuses ...Status) ([]*Run, error) {
	if len(statuses) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(statuses))
	args := make([]any, len(statuses))
	for i, status := range statuses {
		placeholders[i] = "?"
		args[i] = string(status)
	}
	query := `SELECT ` + runColumns + ` FROM runs WHERE status IN (` +
		strings.Join(placeholders, ",") + `) ORDER BY id`
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs by status: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// FailAbandoned marks any non-terminal runs as failed with the given reason.
// Called at startup so a crashed process never leaves runs stuck in-flight.
func (s *Store) FailAbandoned(ctx context.Context, reason string) (int64, error) {
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE runs SET status = ?, error_message = ?, progress_stage = 'Failed',
			progress_percent = 0, updated_at = ?
		 WHERE status NOT IN (?, ?)`,
		StatusFailed,
		reason,
		time.Now().UTC().Format(time.RFC3339Nano),
		StatusCompleted,
		StatusFailed,
	)
	if err != nil {
		return 0, fmt.Errorf("fail abandoned runs: %w", err)
	}
	return res.RowsAffected()
}

// HealthSummary describes aggregated run counts per key lifecycle states.
type HealthSummary struct {
	Total      int
	Pending    int
	Processing int
	Completed  int
	Failed     int
}

// Summary aggregates run counts for status output.
func (s *Store) Summary(ctx context.Context) (HealthSummary, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM runs GROUP BY status`)
	if err != nil {
		return HealthSummary{}, fmt.Errorf("summarize runs: %w", err)
	}
	defer rows.Close()

	var summary HealthSummary
	for rows.Next() {
		var status Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return HealthSummary{}, fmt.Errorf("scan summary: %w", err)
		}
		summary.Total += count
		switch {
		case status == StatusPending:
			summary.Pending += count
		case status == StatusCompleted:
			summary.Completed += count
		case status == StatusFailed:
			summary.Failed += count
		default:
			summary.Processing += count
		}
	}
	return summary, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*Run, error) {
	var run Run
	var mode, status, createdAt, updatedAt string

	err := row.Scan(
		&run.ID,
		&run.Topic,
		&mode,
		&run.AssetRoot,
		&run.OutputName,
		&status,
		&run.ErrorMessage,
		&createdAt,
		&updatedAt,
		&run.ProgressStage,
		&run.ProgressPercent,
		&run.ProgressMessage,
		&run.ScenesJSON,
		&run.TimelineJSON,
		&run.CaptionsJSON,
		&run.CompositedFile,
		&run.FinalFile,
		&run.ThumbnailFile,
	)
	if err != nil {
		return nil, err
	}

	run.Mode = Mode(mode)
	run.Status = Status(status)
	if ts, parseErr := time.Parse(time.RFC3339Nano, createdAt); parseErr == nil {
		run.CreatedAt = ts
	}
	if ts, parseErr := time.Parse(time.RFC3339Nano, updatedAt); parseErr == nil {
		run.UpdatedAt = ts
	}
	return &run, nil
}
