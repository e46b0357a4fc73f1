// Package queue persists pipeline runs in SQLite and exposes helpers for
// driving their lifecycle.
//
// The Store manages database connections, schema initialization, and the
// status transitions that mirror the assembly pipeline: asset resolution,
// timeline building, caption synchronization, compositing, and export. Runs
// capture progress plus JSON snapshots of each stage's output so stages can
// hand work to one another without shared in-memory state.
//
// The database is treated as transient storage for in-flight and recent runs
// rather than a long-term archive. Schema changes bump the version in
// schema.go; users clear the database to adopt the new schema.
package queue
