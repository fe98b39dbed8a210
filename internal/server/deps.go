package server

import (
	"context"
	"time"

	"github.com/honeywatch/console/internal/connection"
	"github.com/honeywatch/console/internal/inventory"
	"github.com/honeywatch/console/internal/journal"
	"github.com/honeywatch/console/internal/model"
	"github.com/honeywatch/console/internal/poller"
)

// StreamStatus reports the event stream connection. *connection.Supervisor
// satisfies it.
type StreamStatus interface {
	State() connection.State
	Stats() connection.SupervisorStats
}

// AssetSource serves display records. *inventory.Inventory satisfies it.
type AssetSource interface {
	Assets(now time.Time) []model.Asset
	Asset(id string, now time.Time) (model.Asset, error)
	Synced() bool
	Stats() inventory.Stats
}

// StatusSource serves the latest status snapshot. *poller.Poller satisfies it.
type StatusSource interface {
	Latest() (poller.Snapshot, bool)
}

// EventSource serves journal records. *journal.Journal satisfies it.
type EventSource interface {
	Recent(ctx context.Context, limit int) ([]journal.Record, error)
	Ping(ctx context.Context) error
	Stats() journal.Metrics
}

// Deps are the components the API reads from. Nil components are reported
// as absent; their routes answer 503.
type Deps struct {
	Stream StreamStatus
	Assets AssetSource
	Status StatusSource
	Events EventSource

	// Now is the clock display records are computed against. Defaults to
	// time.Now.
	Now func() time.Time
}
