package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultBaseURL           = "http://localhost:8000/api/v1"
	DefaultStreamURL         = "ws://localhost:8000/ws"
	DefaultAPITimeout        = 30 * time.Second
	DefaultMaxRetries        = 3
	DefaultMaxAttempts       = 5
	DefaultReconnectDelay    = 3 * time.Second
	DefaultBackoff           = "fixed"
	DefaultMaxDelay          = 60 * time.Second
	DefaultPingInterval      = 30 * time.Second
	DefaultPingTimeout       = 90 * time.Second
	DefaultWriteTimeout      = 5 * time.Second
	DefaultStreamBufferSize  = 1000
	DefaultSyncInterval      = 5 * time.Minute
	DefaultChangeBuffer      = 256
	DefaultPollInterval      = 10 * time.Second
	DefaultJournalDriver     = "none"
	DefaultSQLitePath        = "console.db"
	DefaultBatchSize         = 100
	DefaultFlushInterval     = 1 * time.Second
	DefaultJournalBufferSize = 1024
	DefaultJournalMaxBuffer  = 100000
	DefaultDBPort            = 5432
	DefaultDBSSLMode         = "prefer"
	DefaultMaxConns          = 10
	DefaultMinConns          = 2
	DefaultServerAddr        = ":8090"
	DefaultServerMode        = "release"
	DefaultLogLevel          = "info"
	DefaultLogFormat         = "text"
)

func (c *ConsoleConfig) applyDefaults() {
	// API defaults
	if c.API.BaseURL == "" {
		c.API.BaseURL = DefaultBaseURL
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = DefaultAPITimeout
	}
	if c.API.MaxRetries == 0 {
		c.API.MaxRetries = DefaultMaxRetries
	}

	// Stream defaults
	if c.Stream.URL == "" {
		c.Stream.URL = DefaultStreamURL
	}
	if c.Stream.MaxAttempts == 0 {
		c.Stream.MaxAttempts = DefaultMaxAttempts
	}
	if c.Stream.ReconnectDelay == 0 {
		c.Stream.ReconnectDelay = DefaultReconnectDelay
	}
	if c.Stream.Backoff == "" {
		c.Stream.Backoff = DefaultBackoff
	}
	if c.Stream.MaxDelay == 0 {
		c.Stream.MaxDelay = DefaultMaxDelay
	}
	if c.Stream.PingInterval == 0 {
		c.Stream.PingInterval = DefaultPingInterval
	}
	if c.Stream.PingTimeout == 0 {
		c.Stream.PingTimeout = DefaultPingTimeout
	}
	if c.Stream.WriteTimeout == 0 {
		c.Stream.WriteTimeout = DefaultWriteTimeout
	}
	if c.Stream.BufferSize == 0 {
		c.Stream.BufferSize = DefaultStreamBufferSize
	}

	// Inventory defaults
	if c.Inventory.SyncInterval == 0 {
		c.Inventory.SyncInterval = DefaultSyncInterval
	}
	if c.Inventory.ChangeBuffer == 0 {
		c.Inventory.ChangeBuffer = DefaultChangeBuffer
	}

	// Poller defaults
	if c.Poller.Interval == 0 {
		c.Poller.Interval = DefaultPollInterval
	}

	// Journal defaults
	if c.Journal.Driver == "" {
		c.Journal.Driver = DefaultJournalDriver
	}
	if c.Journal.SQLitePath == "" {
		c.Journal.SQLitePath = DefaultSQLitePath
	}
	if c.Journal.BatchSize == 0 {
		c.Journal.BatchSize = DefaultBatchSize
	}
	if c.Journal.FlushInterval == 0 {
		c.Journal.FlushInterval = DefaultFlushInterval
	}
	if c.Journal.BufferSize == 0 {
		c.Journal.BufferSize = DefaultJournalBufferSize
	}
	if c.Journal.MaxBuffer == 0 {
		c.Journal.MaxBuffer = DefaultJournalMaxBuffer
	}
	applyDBDefaults(&c.Journal.Postgres)

	// Server defaults
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultServerAddr
	}
	if c.Server.Mode == "" {
		c.Server.Mode = DefaultServerMode
	}

	// Logging defaults
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	if c.Logging.Format == "" {
		c.Logging.Format = DefaultLogFormat
	}
}

func applyDBDefaults(db *DBConfig) {
	if db.Port == 0 {
		db.Port = DefaultDBPort
	}
	if db.SSLMode == "" {
		db.SSLMode = DefaultDBSSLMode
	}
	if db.MaxConns == 0 {
		db.MaxConns = DefaultMaxConns
	}
	if db.MinConns == 0 {
		db.MinConns = DefaultMinConns
	}
}
