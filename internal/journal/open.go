package journal

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/honeywatch/console/internal/config"
	"github.com/honeywatch/console/internal/database"
)

// MemoryRetention is how many records the "none" driver keeps for Recent.
const MemoryRetention = 1000

// OpenStore opens and initializes the store selected by cfg.Driver.
func OpenStore(ctx context.Context, cfg config.JournalConfig, logger *slog.Logger) (Store, error) {
	var store Store

	switch cfg.Driver {
	case "postgres":
		pool, err := database.Connect(ctx, cfg.Postgres)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		store = NewPostgresStore(pool)
	case "sqlite":
		db, err := database.OpenSQLite(ctx, cfg.SQLitePath, logger)
		if err != nil {
			return nil, err
		}
		store = NewSQLiteStore(db)
	case "none", "":
		store = NewMemoryStore(MemoryRetention)
	default:
		return nil, fmt.Errorf("unknown journal driver %q", cfg.Driver)
	}

	if err := store.Init(ctx); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}

// ConfigFrom maps the file configuration onto writer settings.
func ConfigFrom(cfg config.JournalConfig) Config {
	return Config{
		BatchSize:     cfg.BatchSize,
		FlushInterval: cfg.FlushInterval,
		BufferSize:    cfg.BufferSize,
		MaxBuffer:     cfg.MaxBuffer,
	}
}
