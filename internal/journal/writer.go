package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/honeywatch/console/internal/router"
)

// Journal queues records and writes them to a Store in batches.
type Journal struct {
	cfg    Config
	store  Store
	logger *slog.Logger

	queue *Queue[Record]

	// Lifecycle
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// Serializes flushes between the write loop and Flush/Stop.
	flushMu sync.Mutex

	mu      sync.Mutex
	metrics Metrics
}

// New creates a journal writing to store.
func New(cfg Config, store Store, logger *slog.Logger) *Journal {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.BatchSize < 1 {
		cfg.BatchSize = 1
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = time.Second
	}
	return &Journal{
		cfg:    cfg,
		store:  store,
		logger: logger,
		queue:  NewQueue[Record](cfg.BufferSize, cfg.MaxBuffer),
	}
}

// Attach records every envelope dispatched by r.
func (j *Journal) Attach(r *router.Router) (unsubscribe func()) {
	return r.OnAny(func(env router.Envelope) {
		_ = j.Record(env.Type, env.Data)
	})
}

// Record queues one entry stamped with a fresh id and the current time. After
// Stop it drops the entry and returns ErrJournalClosed.
func (j *Journal) Record(typ string, payload json.RawMessage) error {
	rec := Record{
		ID:         uuid.New(),
		Type:       typ,
		Payload:    payload,
		ReceivedAt: time.Now().UTC(),
	}

	if !j.queue.Push(rec) {
		j.logger.Debug("journal closed, dropping record", "type", typ)
		j.mu.Lock()
		j.metrics.Dropped++
		j.mu.Unlock()
		return ErrJournalClosed
	}

	j.mu.Lock()
	j.metrics.Recorded++
	j.mu.Unlock()
	return nil
}

// RecordValue marshals v and records it under typ.
func (j *Journal) RecordValue(typ string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s record: %w", typ, err)
	}
	return j.Record(typ, data)
}

// Start begins writing queued records.
func (j *Journal) Start(ctx context.Context) error {
	j.ctx, j.cancel = context.WithCancel(ctx)

	j.wg.Add(1)
	go j.writeLoop()

	j.logger.Info("journal started",
		"batch_size", j.cfg.BatchSize,
		"flush_interval", j.cfg.FlushInterval,
	)
	return nil
}

// Stop shuts the writer down and flushes whatever is still queued.
func (j *Journal) Stop(ctx context.Context) error {
	j.logger.Info("stopping journal")

	j.queue.Close()
	if j.cancel != nil {
		j.cancel()
	}

	// Wait for goroutines
	done := make(chan struct{})
	go func() {
		j.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		j.logger.Warn("journal stop timed out")
	}

	// Final flush
	j.Flush(ctx)

	j.logger.Info("journal stopped")
	return nil
}

// Flush writes everything queued so far.
func (j *Journal) Flush(ctx context.Context) {
	j.flushMu.Lock()
	defer j.flushMu.Unlock()

	for {
		batch := j.queue.Drain(j.cfg.BatchSize)
		if len(batch) == 0 {
			return
		}
		if !j.write(ctx, batch) {
			return
		}
	}
}

// Recent returns up to limit records, newest first. Records still queued are
// not included.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Record, error) {
	return j.store.Recent(ctx, limit)
}

// Ping checks the backing store.
func (j *Journal) Ping(ctx context.Context) error {
	return j.store.Ping(ctx)
}

// Stats returns current metrics.
func (j *Journal) Stats() Metrics {
	evicted := j.queue.Stats().Evicted

	j.mu.Lock()
	defer j.mu.Unlock()
	m := j.metrics
	m.Dropped += evicted
	return m
}

// Pending returns how many records are queued.
func (j *Journal) Pending() int {
	return j.queue.Len()
}

func (j *Journal) writeLoop() {
	defer j.wg.Done()

	ticker := time.NewTicker(j.cfg.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-j.ctx.Done():
			return
		case <-j.queue.Ready():
			if j.queue.Len() >= j.cfg.BatchSize {
				j.flushFull(j.ctx)
			}
		case <-ticker.C:
			j.Flush(j.ctx)
		}
	}
}

// flushFull writes only complete batches, leaving a partial one for the ticker.
func (j *Journal) flushFull(ctx context.Context) {
	j.flushMu.Lock()
	defer j.flushMu.Unlock()

	for j.queue.Len() >= j.cfg.BatchSize {
		if !j.write(ctx, j.queue.Drain(j.cfg.BatchSize)) {
			return
		}
	}
}

// write inserts one batch. A failed batch is dropped and counted.
func (j *Journal) write(ctx context.Context, batch []Record) bool {
	start := time.Now()

	inserted, err := j.store.Insert(ctx, batch)
	if err != nil {
		j.logger.Error("journal insert failed", "error", err, "count", len(batch))
		j.mu.Lock()
		j.metrics.Errors++
		j.metrics.Dropped += int64(len(batch))
		j.mu.Unlock()
		return false
	}

	j.mu.Lock()
	j.metrics.Inserts += int64(inserted)
	j.metrics.Conflicts += int64(len(batch) - inserted)
	j.metrics.Flushes++
	j.mu.Unlock()

	j.logger.Debug("flushed journal",
		"count", len(batch),
		"duration", time.Since(start),
	)
	return true
}
