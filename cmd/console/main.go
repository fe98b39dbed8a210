// console runs the honeypot dashboard's real-time core: the event stream,
// the asset inventory, the status poller, the event journal and the local
// HTTP API.
//
// Usage: go run ./cmd/console --config configs/console.example.yaml
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/honeywatch/console/internal/api"
	"github.com/honeywatch/console/internal/config"
	"github.com/honeywatch/console/internal/connection"
	"github.com/honeywatch/console/internal/inventory"
	"github.com/honeywatch/console/internal/journal"
	"github.com/honeywatch/console/internal/model"
	"github.com/honeywatch/console/internal/poller"
	"github.com/honeywatch/console/internal/router"
	"github.com/honeywatch/console/internal/server"
	"github.com/honeywatch/console/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/console.example.yaml", "path to config file")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	// Load configuration
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Set up structured logging
	logger, err := cfg.Logging.NewLogger(os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	slog.SetDefault(logger)

	logger.Info("starting console",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
		"api_url", cfg.API.BaseURL,
		"stream_url", cfg.Stream.URL,
	)

	if err := run(cfg, logger); err != nil {
		logger.Error("console failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.ConsoleConfig, logger *slog.Logger) error {
	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Create API client
	apiClient := api.NewClient(
		cfg.API.BaseURL,
		cfg.API.APIKey,
		api.WithLogger(logger.With("component", "api")),
		api.WithTimeout(cfg.API.Timeout),
		api.WithRetries(cfg.API.MaxRetries, time.Second),
	)

	rtr := router.New(logger.With("component", "router"))
	rtr.OnThreatUpdate(func(u model.ThreatUpdate) {
		logger.Info("threat update",
			"threat_level", u.ThreatLevel,
			"status", u.Status,
			"active_crypto", u.ActiveCrypto,
		)
	})

	// Open the journal store
	logger.Info("opening journal", "driver", cfg.Journal.Driver)
	store, err := journal.OpenStore(ctx, cfg.Journal, logger)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer store.Close()

	jrnl := journal.New(journal.ConfigFrom(cfg.Journal), store, logger.With("component", "journal"))
	jrnl.Attach(rtr)
	if err := jrnl.Start(ctx); err != nil {
		return fmt.Errorf("start journal: %w", err)
	}

	// Start inventory (initial sync)
	inv := inventory.New(inventory.Config{
		SyncInterval: cfg.Inventory.SyncInterval,
		ChangeBuffer: cfg.Inventory.ChangeBuffer,
	}, apiClient, logger.With("component", "inventory"))
	inv.Attach(rtr)
	if err := inv.Start(ctx); err != nil {
		return fmt.Errorf("start inventory: %w", err)
	}
	go logChanges(ctx, inv.Changes(), logger)

	// Start status poller; snapshots are journaled alongside stream events
	pollr := poller.New(poller.Config{Interval: cfg.Poller.Interval}, apiClient,
		poller.SnapshotHandlerFunc(func(s poller.Snapshot) error {
			return jrnl.RecordValue(journal.TypeStatusSnapshot, s)
		}),
		logger.With("component", "poller"),
	)
	if err := pollr.Start(ctx); err != nil {
		return fmt.Errorf("start poller: %w", err)
	}

	// Connect the event stream
	feed := connection.NewStateFeed(logger)
	sup := connection.NewSupervisor(supervisorConfig(cfg), rtr.Dispatch,
		logger.With("component", "stream"),
		connection.WithStateFeed(feed),
	)
	changes, unwatch := feed.Watch()
	go logStateChanges(changes, logger)
	sup.Connect(ctx)

	// Start the local HTTP API
	srv := server.New(cfg.Server, server.Deps{
		Stream: sup,
		Assets: inv,
		Status: pollr,
		Events: jrnl,
	}, logger.With("component", "server"))
	srv.Attach(rtr)
	if err := srv.Start(ctx); err != nil {
		sup.Close()
		return fmt.Errorf("start server: %w", err)
	}

	logger.Info("console running",
		"health_url", fmt.Sprintf("http://%s/health", srv.Addr()),
	)

	// Wait for shutdown
	<-ctx.Done()

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	srv.Stop(shutdownCtx)
	unwatch()
	sup.Close()
	pollr.Stop(shutdownCtx)
	inv.Stop(shutdownCtx)
	jrnl.Stop(shutdownCtx)

	st := jrnl.Stats()
	logger.Info("console stopped",
		"journal_inserts", st.Inserts,
		"journal_dropped", st.Dropped,
	)
	return nil
}

func supervisorConfig(cfg *config.ConsoleConfig) connection.SupervisorConfig {
	client := connection.DefaultClientConfig()
	client.URL = cfg.Stream.URL
	client.APIKey = cfg.API.APIKey
	client.PingInterval = cfg.Stream.PingInterval
	client.PingTimeout = cfg.Stream.PingTimeout
	client.WriteTimeout = cfg.Stream.WriteTimeout
	client.BufferSize = cfg.Stream.BufferSize

	return connection.SupervisorConfig{
		Client:         client,
		MaxAttempts:    cfg.Stream.MaxAttempts,
		ReconnectDelay: cfg.Stream.ReconnectDelay,
		Backoff:        connection.BackoffStrategy(cfg.Stream.Backoff),
		MaxDelay:       cfg.Stream.MaxDelay,
	}
}

func logStateChanges(changes <-chan connection.StateChange, logger *slog.Logger) {
	for c := range changes {
		if c.To == connection.StateGaveUp {
			logger.Error("event stream gave up reconnecting", "attempts", c.Attempts)
			continue
		}
		logger.Info("event stream state",
			"from", c.From.String(),
			"to", c.To.String(),
			"attempts", c.Attempts,
		)
	}
}

func logChanges(ctx context.Context, changes <-chan inventory.Change, logger *slog.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case c := <-changes:
			logger.Info("honeypot changed",
				"id", c.ID,
				"kind", c.Kind,
				"name", c.Honeypot.Name,
				"old_status", c.OldStatus,
				"new_status", c.NewStatus,
			)
		}
	}
}
