package connection

import (
	"errors"
	"time"
)

// Errors
var (
	ErrNotConnected    = errors.New("not connected")
	ErrStaleConnection = errors.New("connection stale (no ping)")
	ErrAlreadyClosed   = errors.New("already closed")
)

// TimestampedMessage wraps raw message data with receive timestamp.
type TimestampedMessage struct {
	Data       []byte    // Raw message bytes from WebSocket
	ReceivedAt time.Time // Local timestamp when ReadMessage() returned
}

// MessageHandler receives the raw bytes of each inbound message.
type MessageHandler func(data []byte)

// State is the connection state owned by a Supervisor.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	// StateGaveUp is terminal until the next manual Connect.
	StateGaveUp
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateGaveUp:
		return "gave_up"
	default:
		return "unknown"
	}
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ClientConfig configures a WebSocket client.
type ClientConfig struct {
	URL              string        // WebSocket URL (e.g., ws://localhost:8000/ws)
	APIKey           string        // Optional bearer token
	HandshakeTimeout time.Duration // Dial handshake deadline
	PingInterval     time.Duration // How often we ping the server
	PingTimeout      time.Duration // Max time without ping/pong before considering connection stale
	WriteTimeout     time.Duration // Write deadline for sends
	BufferSize       int           // Message channel buffer size
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		URL:              "ws://localhost:8000/ws",
		HandshakeTimeout: 10 * time.Second,
		PingInterval:     30 * time.Second,
		PingTimeout:      90 * time.Second,
		WriteTimeout:     5 * time.Second,
		BufferSize:       1000,
	}
}

// BackoffStrategy selects how the delay between reconnection attempts grows.
type BackoffStrategy string

const (
	// BackoffFixed waits ReconnectDelay before every attempt.
	BackoffFixed BackoffStrategy = "fixed"
	// BackoffExponential doubles the delay per attempt with jitter, capped at MaxDelay.
	BackoffExponential BackoffStrategy = "exponential"
)

// SupervisorConfig configures the reconnection policy.
type SupervisorConfig struct {
	Client         ClientConfig
	MaxAttempts    int             // Reconnection attempts before giving up
	ReconnectDelay time.Duration   // Base delay between attempts
	Backoff        BackoffStrategy // "fixed" or "exponential"
	MaxDelay       time.Duration   // Cap for exponential backoff
}

// DefaultSupervisorConfig returns the fixed 5 × 3s policy.
func DefaultSupervisorConfig() SupervisorConfig {
	return SupervisorConfig{
		Client:         DefaultClientConfig(),
		MaxAttempts:    5,
		ReconnectDelay: 3 * time.Second,
		Backoff:        BackoffFixed,
		MaxDelay:       60 * time.Second,
	}
}

// SupervisorStats provides statistics about the supervisor.
type SupervisorStats struct {
	State            State
	Attempts         int   // Current retry counter
	Dials            int64 // Total dial attempts, initial and scheduled
	Connects         int64 // Successful opens
	MessagesReceived int64
	MessagesSent     int64
	SendsDropped     int64
}

// StateChange is published on every state transition.
type StateChange struct {
	From     State
	To       State
	Attempts int
	At       time.Time
}
