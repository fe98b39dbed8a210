package inventory

import (
	"context"
	"fmt"
	"time"
)

// resync fetches the listing and publishes the differences.
func (i *Inventory) resync(ctx context.Context) error {
	start := time.Now()

	hps, err := i.source.ListHoneypots(ctx)
	if err != nil {
		i.statsMu.Lock()
		i.syncErrors++
		i.lastErr = err
		i.statsMu.Unlock()
		return fmt.Errorf("sync honeypots: %w", err)
	}

	changes := i.state.replace(hps, time.Now())

	i.statsMu.Lock()
	i.syncs++
	i.lastErr = nil
	i.statsMu.Unlock()

	var created, updated, removed int
	for _, c := range changes {
		switch c.Kind {
		case ChangeCreated:
			created++
		case ChangeUpdated:
			updated++
		case ChangeRemoved:
			removed++
		}
		if !i.state.notifyChange(c) {
			i.logger.Warn("change buffer full, dropping change", "id", c.ID, "kind", c.Kind)
		}
	}

	if len(changes) > 0 {
		i.logger.Info("honeypot sync found changes",
			"created", created,
			"updated", updated,
			"removed", removed,
			"duration", time.Since(start),
		)
	} else {
		i.logger.Debug("honeypot sync complete",
			"honeypots", len(hps),
			"duration", time.Since(start),
		)
	}
	return nil
}

// reconcileLoop periodically resyncs with the backend.
func (i *Inventory) reconcileLoop(ctx context.Context) {
	ticker := time.NewTicker(i.cfg.SyncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := i.Refresh(ctx); err != nil {
				i.logger.Error("reconciliation failed", "error", err)
			}
		}
	}
}

// triggerLoop serves refreshes requested through Trigger.
func (i *Inventory) triggerLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-i.trigger:
			if err := i.Refresh(ctx); err != nil {
				i.logger.Error("triggered refresh failed", "error", err)
			}
		}
	}
}
