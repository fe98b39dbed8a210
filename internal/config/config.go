package config

import "time"

// ConsoleConfig is the root configuration for a console instance.
type ConsoleConfig struct {
	API       APIConfig       `yaml:"api"`
	Stream    StreamConfig    `yaml:"stream"`
	Inventory InventoryConfig `yaml:"inventory"`
	Poller    PollerConfig    `yaml:"poller"`
	Journal   JournalConfig   `yaml:"journal"`
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// APIConfig holds backend REST settings.
type APIConfig struct {
	BaseURL    string        `yaml:"base_url"`
	APIKey     string        `yaml:"api_key"` // Optional bearer token
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"` // GET requests only
}

// StreamConfig holds real-time WebSocket settings.
type StreamConfig struct {
	URL            string        `yaml:"url"`
	MaxAttempts    int           `yaml:"max_attempts"`
	ReconnectDelay time.Duration `yaml:"reconnect_delay"`
	Backoff        string        `yaml:"backoff"` // "fixed" or "exponential"
	MaxDelay       time.Duration `yaml:"max_delay"`
	PingInterval   time.Duration `yaml:"ping_interval"`
	PingTimeout    time.Duration `yaml:"ping_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	BufferSize     int           `yaml:"buffer_size"`
}

// InventoryConfig holds asset cache settings.
type InventoryConfig struct {
	SyncInterval time.Duration `yaml:"sync_interval"`
	ChangeBuffer int           `yaml:"change_buffer"`
}

// PollerConfig holds threat status poller settings.
type PollerConfig struct {
	Interval time.Duration `yaml:"interval"`
}

// JournalConfig selects and tunes the event journal.
type JournalConfig struct {
	Driver        string        `yaml:"driver"` // "none", "postgres" or "sqlite"
	SQLitePath    string        `yaml:"sqlite_path"`
	Postgres      DBConfig      `yaml:"postgres"`
	BatchSize     int           `yaml:"batch_size"`
	FlushInterval time.Duration `yaml:"flush_interval"`
	BufferSize    int           `yaml:"buffer_size"`
	MaxBuffer     int           `yaml:"max_buffer"` // Oldest records are dropped beyond this
}

// DBConfig holds a single database connection.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// ServerConfig holds local HTTP API settings.
type ServerConfig struct {
	Addr string `yaml:"addr"`
	Mode string `yaml:"mode"` // gin mode: "debug", "release" or "test"
}

// LoggingConfig holds slog settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn" or "error"
	Format string `yaml:"format"` // "text" or "json"
}
