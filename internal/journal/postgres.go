package journal

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `
	CREATE TABLE IF NOT EXISTS journal_events (
		id UUID PRIMARY KEY,
		type TEXT NOT NULL,
		payload JSONB,
		received_at TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS journal_events_received_at_idx
		ON journal_events (received_at DESC);
`

// PostgresStore writes records to PostgreSQL using pgx batches.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore wraps a pool, typically from database.Connect.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Init(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("create journal schema: %w", err)
	}
	return nil
}

// Insert queues every row in one pgx.Batch with ON CONFLICT DO NOTHING.
func (s *PostgresStore) Insert(ctx context.Context, records []Record) (int, error) {
	batch := &pgx.Batch{}
	for _, r := range records {
		batch.Queue(`
			INSERT INTO journal_events (id, type, payload, received_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (id) DO NOTHING
		`, r.ID, r.Type, payloadArg(r.Payload), r.ReceivedAt)
	}

	results := s.db.SendBatch(ctx, batch)
	defer results.Close()

	inserted := 0
	for range records {
		ct, err := results.Exec()
		if err != nil {
			return 0, err
		}
		if ct.RowsAffected() > 0 {
			inserted++
		}
	}

	return inserted, nil
}

func (s *PostgresStore) Recent(ctx context.Context, limit int) ([]Record, error) {
	var lim any = limit
	if limit <= 0 {
		lim = nil // LIMIT NULL means no limit
	}
	rows, err := s.db.Query(ctx, `
		SELECT id, type, payload, received_at
		FROM journal_events
		ORDER BY received_at DESC
		LIMIT $1
	`, lim)
	if err != nil {
		return nil, fmt.Errorf("query recent: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		var payload []byte
		if err := rows.Scan(&r.ID, &r.Type, &payload, &r.ReceivedAt); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		r.Payload = payload
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *PostgresStore) Close() error {
	s.db.Close()
	return nil
}
