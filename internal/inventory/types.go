package inventory

import (
	"context"
	"time"

	"github.com/honeywatch/console/internal/model"
)

// Source lists honeypots. *api.Client satisfies it.
type Source interface {
	ListHoneypots(ctx context.Context) ([]model.Honeypot, error)
}

// Config holds inventory configuration.
type Config struct {
	SyncInterval time.Duration
	ChangeBuffer int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		SyncInterval: 5 * time.Minute,
		ChangeBuffer: 256,
	}
}

// ChangeKind classifies a Change.
type ChangeKind string

const (
	ChangeCreated ChangeKind = "created"
	ChangeUpdated ChangeKind = "updated"
	ChangeRemoved ChangeKind = "removed"
)

// Change reports one honeypot that differs from the previous sync. Honeypot
// holds the new record, or the last known one for ChangeRemoved.
type Change struct {
	ID        string
	Kind      ChangeKind
	OldStatus string
	NewStatus string
	Honeypot  model.Honeypot
}

// Stats summarizes inventory activity.
type Stats struct {
	Honeypots      int
	Syncs          int64
	SyncErrors     int64
	Triggers       int64
	ChangesDropped int64
	LastSyncAt     time.Time
	LastError      string
}
