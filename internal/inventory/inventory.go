package inventory

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/honeywatch/console/internal/display"
	"github.com/honeywatch/console/internal/model"
	"github.com/honeywatch/console/internal/router"
)

// ErrUnknownHoneypot is returned by Asset for an id not in the inventory.
var ErrUnknownHoneypot = errors.New("unknown honeypot")

// Inventory caches the backend's honeypots.
type Inventory struct {
	cfg    Config
	source Source
	logger *slog.Logger

	state *inventoryState

	group   singleflight.Group
	trigger chan struct{}

	statsMu    sync.Mutex
	syncs      int64
	syncErrors int64
	triggers   int64
	lastErr    error

	// Lifecycle
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates an inventory reading from source.
func New(cfg Config, source Source, logger *slog.Logger) *Inventory {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.SyncInterval <= 0 {
		cfg.SyncInterval = DefaultConfig().SyncInterval
	}

	return &Inventory{
		cfg:     cfg,
		source:  source,
		logger:  logger,
		state:   newState(cfg.ChangeBuffer),
		trigger: make(chan struct{}, 1),
	}
}

// Start runs the initial sync and begins background reconciliation. A failed
// initial sync is logged and retried by reconciliation rather than returned,
// so the console can come up before the backend does.
func (i *Inventory) Start(ctx context.Context) error {
	i.ctx, i.cancel = context.WithCancel(ctx)

	if err := i.Refresh(i.ctx); err != nil {
		i.logger.Warn("initial honeypot sync failed, will retry", "error", err)
	}

	i.wg.Add(2)
	go func() {
		defer i.wg.Done()
		i.reconcileLoop(i.ctx)
	}()
	go func() {
		defer i.wg.Done()
		i.triggerLoop(i.ctx)
	}()

	i.logger.Info("inventory started",
		"honeypots", len(i.state.list()),
		"sync_interval", i.cfg.SyncInterval,
	)
	return nil
}

// Stop gracefully shuts down.
func (i *Inventory) Stop(ctx context.Context) error {
	if i.cancel != nil {
		i.cancel()
	}

	done := make(chan struct{})
	go func() {
		i.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		i.logger.Info("inventory stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Attach schedules a refresh whenever r reports that the honeypot list
// changed or a honeypot was compromised.
func (i *Inventory) Attach(r *router.Router) (unsubscribe func()) {
	unsubUpdated := r.OnHoneypotsUpdated(i.Trigger)
	unsubCompromised := r.OnCompromised(func(c model.HoneypotCompromised) {
		i.logger.Warn("honeypot compromised",
			"honeypot_id", c.HoneypotID,
			"honeypot_name", c.HoneypotName,
			"amount_drained", c.AmountDrained,
			"blockchain", c.Blockchain,
			"auto_responded", c.AutoResponded,
		)
		i.Trigger()
	})
	return func() {
		unsubUpdated()
		unsubCompromised()
	}
}

// Trigger schedules an asynchronous refresh. Triggers arriving while one is
// pending are coalesced.
func (i *Inventory) Trigger() {
	i.statsMu.Lock()
	i.triggers++
	i.statsMu.Unlock()

	select {
	case i.trigger <- struct{}{}:
	default:
	}
}

// Refresh fetches the full listing and applies it. Concurrent callers share
// one fetch.
func (i *Inventory) Refresh(ctx context.Context) error {
	_, err, _ := i.group.Do("refresh", func() (any, error) {
		return nil, i.resync(ctx)
	})
	return err
}

// Honeypots returns the raw records in backend order.
func (i *Inventory) Honeypots() []model.Honeypot {
	return i.state.list()
}

// Assets returns display records in backend order, computed against now.
func (i *Inventory) Assets(now time.Time) []model.Asset {
	return display.TransformAll(i.state.list(), now)
}

// Asset returns the display record for id, computed against now.
func (i *Inventory) Asset(id string, now time.Time) (model.Asset, error) {
	hp, ok := i.state.get(id)
	if !ok {
		return model.Asset{}, ErrUnknownHoneypot
	}
	return display.Transform(hp, now), nil
}

// Changes returns the channel differences are published on.
func (i *Inventory) Changes() <-chan Change {
	return i.state.changes
}

// Synced reports whether at least one sync has succeeded.
func (i *Inventory) Synced() bool {
	i.state.mu.RLock()
	defer i.state.mu.RUnlock()
	return i.state.synced
}

// Stats returns current statistics.
func (i *Inventory) Stats() Stats {
	i.state.mu.RLock()
	st := Stats{
		Honeypots:      len(i.state.order),
		LastSyncAt:     i.state.lastSyncAt,
		ChangesDropped: i.state.dropped,
	}
	i.state.mu.RUnlock()

	i.statsMu.Lock()
	defer i.statsMu.Unlock()
	st.Syncs = i.syncs
	st.SyncErrors = i.syncErrors
	st.Triggers = i.triggers
	if i.lastErr != nil {
		st.LastError = i.lastErr.Error()
	}
	return st
}
