package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS journal_events (
		id TEXT PRIMARY KEY,
		type TEXT NOT NULL,
		payload TEXT,
		received_at INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS journal_events_received_at_idx
		ON journal_events (received_at DESC)`,
}

// SQLiteStore writes records to an embedded SQLite database. Times are
// stored as Unix microseconds.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore wraps an open handle, typically from database.OpenSQLite.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Init(ctx context.Context) error {
	for _, stmt := range sqliteSchema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create journal schema: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStore) Insert(ctx context.Context, records []Record) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO journal_events (id, type, payload, received_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO NOTHING
	`)
	if err != nil {
		return 0, fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, r := range records {
		res, err := stmt.ExecContext(ctx, r.ID.String(), r.Type, payloadArg(r.Payload), r.ReceivedAt.UnixMicro())
		if err != nil {
			return 0, fmt.Errorf("insert %s: %w", r.ID, err)
		}
		if n, err := res.RowsAffected(); err == nil && n > 0 {
			inserted++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return inserted, nil
}

func (s *SQLiteStore) Recent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = -1 // no limit
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, type, payload, received_at
		FROM journal_events
		ORDER BY received_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			id      string
			r       Record
			payload sql.NullString
			micros  int64
		)
		if err := rows.Scan(&id, &r.Type, &payload, &micros); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		if r.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parse id %q: %w", id, err)
		}
		if payload.Valid {
			r.Payload = []byte(payload.String)
		}
		r.ReceivedAt = time.UnixMicro(micros).UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// payloadArg maps an empty payload to SQL NULL.
func payloadArg(p []byte) any {
	if len(p) == 0 {
		return nil
	}
	return string(p)
}
