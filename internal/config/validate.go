package config

import (
	"errors"
	"fmt"
	"net/url"
)

// Validate checks that all required fields are set and values are valid.
func (c *ConsoleConfig) Validate() error {
	if err := validateURL("api.base_url", c.API.BaseURL, "http", "https"); err != nil {
		return err
	}
	if c.API.MaxRetries < 0 {
		return errors.New("api.max_retries must be >= 0")
	}

	if err := validateURL("stream.url", c.Stream.URL, "ws", "wss"); err != nil {
		return err
	}
	if c.Stream.MaxAttempts < 1 {
		return errors.New("stream.max_attempts must be >= 1")
	}
	if c.Stream.ReconnectDelay <= 0 {
		return errors.New("stream.reconnect_delay must be > 0")
	}
	switch c.Stream.Backoff {
	case "fixed", "exponential":
	default:
		return fmt.Errorf("stream.backoff must be fixed or exponential, got %q", c.Stream.Backoff)
	}
	if c.Stream.Backoff == "exponential" && c.Stream.MaxDelay < c.Stream.ReconnectDelay {
		return fmt.Errorf("stream.max_delay (%s) cannot be below reconnect_delay (%s)", c.Stream.MaxDelay, c.Stream.ReconnectDelay)
	}
	if c.Stream.BufferSize < 1 {
		return errors.New("stream.buffer_size must be >= 1")
	}

	if c.Inventory.SyncInterval <= 0 {
		return errors.New("inventory.sync_interval must be > 0")
	}
	if c.Poller.Interval <= 0 {
		return errors.New("poller.interval must be > 0")
	}

	if err := c.Journal.validate(); err != nil {
		return err
	}

	if c.Server.Addr == "" {
		return errors.New("server.addr is required")
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("server.mode must be debug, release or test, got %q", c.Server.Mode)
	}

	if _, err := c.Logging.level(); err != nil {
		return err
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}

	return nil
}

func (j *JournalConfig) validate() error {
	switch j.Driver {
	case "none":
		return nil
	case "sqlite":
		if j.SQLitePath == "" {
			return errors.New("journal.sqlite_path is required")
		}
	case "postgres":
		if err := j.Postgres.validate("journal.postgres"); err != nil {
			return err
		}
	default:
		return fmt.Errorf("journal.driver must be none, sqlite or postgres, got %q", j.Driver)
	}

	if j.BatchSize < 1 {
		return errors.New("journal.batch_size must be >= 1")
	}
	if j.BufferSize < 1 {
		return errors.New("journal.buffer_size must be >= 1")
	}
	if j.MaxBuffer < j.BufferSize {
		return fmt.Errorf("journal.max_buffer (%d) cannot be below buffer_size (%d)", j.MaxBuffer, j.BufferSize)
	}
	return nil
}

func (db *DBConfig) validate(prefix string) error {
	if db.Host == "" {
		return fmt.Errorf("%s.host is required", prefix)
	}
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}

func validateURL(field, raw string, schemes ...string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	for _, s := range schemes {
		if u.Scheme == s {
			if u.Host == "" {
				return fmt.Errorf("%s must include a host, got %q", field, raw)
			}
			return nil
		}
	}
	return fmt.Errorf("%s must use scheme %v, got %q", field, schemes, raw)
}
