package queue

// schemaVersion identifies the current run table layout. Bump when columns
// change; the database file is transient and gets recreated on mismatch.
const schemaVersion = "2"

const schemaSQL = `
CREATE TABLE IF NOT EXISTS runs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    topic TEXT NOT NULL DEFAULT '',
    mode TEXT NOT NULL DEFAULT 'test',
    asset_root TEXT NOT NULL DEFAULT '',
    output_name TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL DEFAULT 'pending',
    error_message TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    progress_stage TEXT NOT NULL DEFAULT '',
    progress_percent REAL NOT NULL DEFAULT 0,
    progress_message TEXT NOT NULL DEFAULT '',
    scenes_json TEXT NOT NULL DEFAULT '',
    timeline_json TEXT NOT NULL DEFAULT '',
    captions_json TEXT NOT NULL DEFAULT '',
    composited_file TEXT NOT NULL DEFAULT '',
    final_file TEXT NOT NULL DEFAULT '',
    thumbnail_file TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
CREATE TABLE IF NOT EXISTS schema_info (version TEXT PRIMARY KEY);
`
