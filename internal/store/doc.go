// Package store persists recorded executions.
//
// One implementation over database/sql serves two backends:
//   - SQLite (mattn/go-sqlite3), the default, for single-node use
//   - PostgreSQL (pgx stdlib driver) for shared deployments
//
// Tables:
//   - executions: metadata, noise descriptor, timings, content digests
//   - events: one row per event, keyed by (execution_id, event_id)
//   - edges: one row per edge, keyed by (execution_id, ordinal)
//
// Reads are deterministic: events ORDER BY event_id, edges ORDER BY
// ordinal, listings ORDER BY created_at_ns DESC, id ASC.
//
// Errors follow the ir taxonomy. Unknown ids surface as NOT_FOUND.
// Connection, lock and I/O failures surface as STORE_UNAVAILABLE. The
// store never retries.
//
// # SQLite configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: enforce referential integrity
package store
