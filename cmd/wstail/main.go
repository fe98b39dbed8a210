// wstail connects to the backend event stream and prints every envelope.
// Usage: go run ./cmd/wstail --url ws://localhost:8000/ws
//
// With --config, stream settings are read from the console config file and
// --url is ignored.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/honeywatch/console/internal/config"
	"github.com/honeywatch/console/internal/connection"
	"github.com/honeywatch/console/internal/model"
	"github.com/honeywatch/console/internal/router"
)

func main() {
	configPath := flag.String("config", "", "optional console config file")
	url := flag.String("url", config.DefaultStreamURL, "event stream URL")
	apiKey := flag.String("api-key", os.Getenv("CONSOLE_API_KEY"), "bearer token")
	maxAttempts := flag.Int("max-attempts", config.DefaultMaxAttempts, "reconnection attempts before giving up")
	verbose := flag.Bool("verbose", false, "print full message JSON")
	flag.Parse()

	// Setup logger
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	supCfg := connection.DefaultSupervisorConfig()
	supCfg.Client.URL = *url
	supCfg.Client.APIKey = *apiKey
	supCfg.MaxAttempts = *maxAttempts

	if *configPath != "" {
		cfg, err := config.LoadAndValidate(*configPath)
		if err != nil {
			logger.Error("failed to load config", "error", err)
			os.Exit(1)
		}
		supCfg.Client.URL = cfg.Stream.URL
		supCfg.Client.APIKey = cfg.API.APIKey
		supCfg.MaxAttempts = cfg.Stream.MaxAttempts
		supCfg.ReconnectDelay = cfg.Stream.ReconnectDelay
		supCfg.Backoff = connection.BackoffStrategy(cfg.Stream.Backoff)
		supCfg.MaxDelay = cfg.Stream.MaxDelay
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal")
		cancel()
	}()

	rtr := router.New(logger)
	rtr.OnCompromised(printCompromised)
	rtr.OnThreatUpdate(printThreatUpdate)
	rtr.OnHoneypotsUpdated(func() { fmt.Println("[HONEYPOTS UPDATED]") })
	rtr.OnAny(func(env router.Envelope) {
		if *verbose {
			data, _ := json.MarshalIndent(env, "", "  ")
			fmt.Printf("[%s] %s\n", env.Type, data)
		}
	})

	feed := connection.NewStateFeed(logger)
	sup := connection.NewSupervisor(supCfg, rtr.Dispatch, logger, connection.WithStateFeed(feed))

	changes, _ := feed.Watch()
	go func() {
		for c := range changes {
			logger.Info("stream state", "from", c.From.String(), "to", c.To.String(), "attempts", c.Attempts)
			if c.To == connection.StateGaveUp {
				cancel()
			}
		}
	}()

	logger.Info("connecting", "url", supCfg.Client.URL, "max_attempts", supCfg.MaxAttempts)
	sup.Connect(ctx)

	// Stats printer
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				routerStats := rtr.Stats()
				connStats := sup.Stats()
				logger.Info("stats",
					"state", connStats.State.String(),
					"connects", connStats.Connects,
					"received", connStats.MessagesReceived,
					"routed", routerStats.MessagesRouted,
					"parse_errors", routerStats.ParseErrors,
					"unhandled", routerStats.UnhandledTypes,
				)
			}
		}
	}()

	logger.Info("streaming started - press Ctrl+C to stop")

	// Wait for shutdown
	<-ctx.Done()

	logger.Info("shutting down...")
	sup.Close()
	logger.Info("shutdown complete")
}

func printCompromised(c model.HoneypotCompromised) {
	fmt.Printf("[COMPROMISED] id=%s name=%q chain=%s drained=%g wallet=%s threat=%s auto_responded=%t at=%s\n",
		c.HoneypotID, c.HoneypotName, c.Blockchain, c.AmountDrained,
		c.WalletAddress, c.ThreatLevel, c.AutoResponded, c.Timestamp)
}

func printThreatUpdate(u model.ThreatUpdate) {
	fmt.Printf("[THREAT] level=%.1f status=%s crypto=%s threshold=%.1f\n",
		u.ThreatLevel, u.Status, u.ActiveCrypto, u.Threshold)
}
