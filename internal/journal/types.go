package journal

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Errors
var (
	ErrJournalClosed = errors.New("journal closed")
)

// TypeStatusSnapshot tags records written from poller snapshots.
const TypeStatusSnapshot = "status_snapshot"

// Record is one journal entry.
type Record struct {
	ID         uuid.UUID       `json:"id"`
	Type       string          `json:"type"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	ReceivedAt time.Time       `json:"received_at"`
}

// Store persists records.
type Store interface {
	// Init creates the schema if missing.
	Init(ctx context.Context) error

	// Insert writes records, skipping ids already present. It returns how
	// many rows were new.
	Insert(ctx context.Context, records []Record) (int, error)

	// Recent returns up to limit records, newest first.
	Recent(ctx context.Context, limit int) ([]Record, error)

	// Ping checks the store is reachable.
	Ping(ctx context.Context) error

	// Close releases the store.
	Close() error
}

// Config holds journal writer settings.
type Config struct {
	BatchSize     int           // Flush once this many records are queued
	FlushInterval time.Duration // Flush whatever is queued at least this often
	BufferSize    int           // Initial queue capacity
	MaxBuffer     int           // Queue capacity ceiling; oldest records drop beyond it
}

// DefaultConfig returns default configuration.
func DefaultConfig() Config {
	return Config{
		BatchSize:     100,
		FlushInterval: time.Second,
		BufferSize:    1024,
		MaxBuffer:     100000,
	}
}

// Metrics tracks writer performance.
type Metrics struct {
	Recorded  int64 // Records accepted into the queue
	Inserts   int64 // Rows written
	Conflicts int64 // Rows skipped as duplicates
	Flushes   int64
	Errors    int64 // Failed flushes
	Dropped   int64 // Records lost to a full queue or a failed flush
}
