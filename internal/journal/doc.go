// Package journal records real-time envelopes and status snapshots.
//
// Records are queued in memory and written in batches by a single writer
// goroutine to a Store:
//   - PostgresStore: pgx pool, one pgx.Batch per flush
//   - SQLiteStore: embedded modernc.org/sqlite file, one transaction per flush
//   - MemoryStore: keeps the newest records only, nothing persisted
//
// Journalling is append-only and best effort. A full queue drops its oldest
// records rather than stalling the real-time path.
package journal
