package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "modernc.org/sqlite"
)

// OpenSQLite opens (creating if needed) the SQLite database at path. Use
// ":memory:" for a private in-memory database.
//
// The handle is limited to one connection: SQLite serializes writers anyway,
// and an in-memory database exists per connection.
func OpenSQLite(ctx context.Context, path string, logger *slog.Logger) (*sql.DB, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	// PRAGMA tuning is best effort.
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode = WAL;"); err != nil {
		logger.Warn("failed to set WAL mode", "error", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA synchronous = NORMAL;"); err != nil {
		logger.Warn("failed to set synchronous mode", "error", err)
	}

	return db, nil
}
