package poller

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/honeywatch/console/internal/model"
)

// StatusSource provides the endpoints polled. *api.Client satisfies it.
type StatusSource interface {
	GetStatus(ctx context.Context) (*model.ThreatStatus, error)
	GetMetrics(ctx context.Context) (*model.SystemMetrics, error)
}

// Snapshot is one combined sample.
type Snapshot struct {
	Status    model.ThreatStatus  `json:"status"`
	Metrics   model.SystemMetrics `json:"metrics"`
	FetchedAt time.Time           `json:"fetched_at"`
}

// SnapshotHandler receives fetched snapshots.
type SnapshotHandler interface {
	HandleSnapshot(snapshot Snapshot) error
}

// SnapshotHandlerFunc is a function adapter for SnapshotHandler.
type SnapshotHandlerFunc func(Snapshot) error

func (f SnapshotHandlerFunc) HandleSnapshot(s Snapshot) error {
	return f(s)
}

// Config holds poller configuration.
type Config struct {
	Interval time.Duration // Poll interval (default: 10s)
	Timeout  time.Duration // Per-cycle timeout (default: 5s)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Interval: 10 * time.Second,
		Timeout:  5 * time.Second,
	}
}

// Stats summarizes poller activity.
type Stats struct {
	Polls     int64
	Errors    int64
	LastError string
}

// Poller periodically fetches status snapshots via the REST API.
type Poller struct {
	cfg     Config
	source  StatusSource
	handler SnapshotHandler
	logger  *slog.Logger

	mu     sync.RWMutex
	latest Snapshot
	have   bool
	stats  Stats

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a new Poller. handler may be nil.
func New(cfg Config, source StatusSource, handler SnapshotHandler, logger *slog.Logger) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	def := DefaultConfig()
	if cfg.Interval <= 0 {
		cfg.Interval = def.Interval
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	return &Poller{
		cfg:     cfg,
		source:  source,
		handler: handler,
		logger:  logger,
	}
}

// Start begins the polling loop.
func (p *Poller) Start(ctx context.Context) error {
	p.ctx, p.cancel = context.WithCancel(ctx)

	p.wg.Add(1)
	go p.run()

	p.logger.Info("status poller started", "interval", p.cfg.Interval)

	return nil
}

// Stop gracefully shuts down the poller.
func (p *Poller) Stop(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("status poller stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Latest returns the most recent snapshot and whether one exists.
func (p *Poller) Latest() (Snapshot, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.latest, p.have
}

// Stats returns current statistics.
func (p *Poller) Stats() Stats {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.stats
}

// run is the main polling loop.
func (p *Poller) run() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	// Poll immediately on start.
	p.poll(p.ctx)

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			p.poll(p.ctx)
		}
	}
}

// Poll runs one cycle immediately and returns its snapshot.
func (p *Poller) Poll(ctx context.Context) (Snapshot, error) {
	return p.poll(ctx)
}

func (p *Poller) poll(ctx context.Context) (Snapshot, error) {
	start := time.Now()

	snap, err := p.fetch(ctx)

	p.mu.Lock()
	p.stats.Polls++
	if err != nil {
		p.stats.Errors++
		p.stats.LastError = err.Error()
	} else {
		p.latest = snap
		p.have = true
		p.stats.LastError = ""
	}
	p.mu.Unlock()

	if err != nil {
		if ctx.Err() == nil {
			p.logger.Warn("status poll failed", "error", err)
		}
		return Snapshot{}, err
	}

	if p.handler != nil {
		if err := p.handler.HandleSnapshot(snap); err != nil {
			p.logger.Warn("snapshot handler failed", "error", err)
		}
	}

	p.logger.Debug("status poll complete",
		"threat_level", snap.Status.ThreatLevel,
		"status", snap.Status.Status,
		"active_crypto", snap.Status.ActiveCrypto,
		"duration", time.Since(start),
	)
	return snap, nil
}

// fetch requests both endpoints concurrently.
func (p *Poller) fetch(ctx context.Context) (Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	var (
		status  *model.ThreatStatus
		metrics *model.SystemMetrics
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		status, err = p.source.GetStatus(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		metrics, err = p.source.GetMetrics(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return Snapshot{}, fmt.Errorf("poll status: %w", err)
	}

	return Snapshot{
		Status:    *status,
		Metrics:   *metrics,
		FetchedAt: time.Now().UTC(),
	}, nil
}
