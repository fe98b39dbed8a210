package connection

import (
	"context"
	"encoding/json"
	"log/slog"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"
)

// Dialer opens a connected Client. Tests replace it to script failures.
type Dialer func(ctx context.Context) (Client, error)

// SupervisorOption configures a Supervisor.
type SupervisorOption func(*Supervisor)

// WithDialer overrides how connections are opened.
func WithDialer(d Dialer) SupervisorOption {
	return func(s *Supervisor) {
		s.dial = d
	}
}

// WithStateFeed publishes transitions to feed.
func WithStateFeed(feed *StateFeed) SupervisorOption {
	return func(s *Supervisor) {
		s.feed = feed
	}
}

// Supervisor owns at most one live connection and re-establishes it after a
// drop, giving up after MaxAttempts consecutive failures.
type Supervisor struct {
	cfg     SupervisorConfig
	logger  *slog.Logger
	handler MessageHandler
	dial    Dialer
	feed    *StateFeed

	mu       sync.Mutex
	ctx      context.Context
	state    State
	client   Client
	attempts int
	gen      uint64 // bumped by Connect and Disconnect; older timers and pumps are ignored
	timer    *time.Timer

	dials        atomic.Int64
	connects     atomic.Int64
	received     atomic.Int64
	sent         atomic.Int64
	sendsDropped atomic.Int64
}

// NewSupervisor creates a supervisor that hands every inbound message to
// handler. Call Connect to start.
func NewSupervisor(cfg SupervisorConfig, handler MessageHandler, logger *slog.Logger, opts ...SupervisorOption) *Supervisor {
	if logger == nil {
		logger = slog.Default()
	}
	if handler == nil {
		handler = func([]byte) {}
	}

	s := &Supervisor{
		cfg:     cfg,
		logger:  logger,
		handler: handler,
		ctx:     context.Background(),
		state:   StateDisconnected,
	}
	s.dial = s.dialWebSocket

	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Supervisor) dialWebSocket(ctx context.Context) (Client, error) {
	c := NewClient(s.cfg.Client, s.logger)
	if err := c.Connect(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// Connect opens a connection unless one is already open or opening. It resets
// the retry counter, so it also revives a supervisor that gave up. ctx bounds
// every later reconnection; once it is done no further attempts are made.
//
// Connect blocks for the initial dial only. Failures are logged and retried,
// never returned.
func (s *Supervisor) Connect(ctx context.Context) {
	s.mu.Lock()
	if s.state == StateConnecting || s.state == StateConnected {
		s.mu.Unlock()
		s.logger.Debug("connect ignored, already active", "state", s.State().String())
		return
	}
	s.stopTimerLocked()
	s.attempts = 0
	s.gen++
	s.ctx = ctx
	gen := s.gen
	s.setStateLocked(StateConnecting)
	s.mu.Unlock()

	s.attempt(gen)
}

// Disconnect closes the live connection and cancels any pending reconnection.
func (s *Supervisor) Disconnect() {
	s.mu.Lock()
	s.gen++
	s.stopTimerLocked()
	c := s.client
	s.client = nil
	s.setStateLocked(StateDisconnected)
	s.mu.Unlock()

	if c != nil {
		c.Close()
		s.logger.Info("websocket disconnected by request")
	}
}

// Close disconnects and shuts down the state feed, if any.
func (s *Supervisor) Close() {
	s.Disconnect()
	if s.feed != nil {
		s.feed.Close()
	}
}

// Send marshals v as JSON and writes it when connected. Otherwise the message
// is dropped with a warning; nothing is queued.
func (s *Supervisor) Send(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.sendsDropped.Add(1)
		s.logger.Error("failed to marshal outbound message", "error", err)
		return
	}

	s.mu.Lock()
	c := s.client
	st := s.state
	s.mu.Unlock()

	if c == nil || st != StateConnected || !c.IsConnected() {
		s.sendsDropped.Add(1)
		s.logger.Warn("websocket not connected, dropping message", "state", st.String())
		return
	}

	if err := c.Send(data); err != nil {
		s.sendsDropped.Add(1)
		s.logger.Warn("send failed, dropping message", "error", err)
		return
	}
	s.sent.Add(1)
}

// Ping sends the application-level "ping" message.
func (s *Supervisor) Ping() {
	s.Send("ping")
}

// IsConnected reports whether a connection is open.
func (s *Supervisor) IsConnected() bool {
	return s.State() == StateConnected
}

// State returns the current state.
func (s *Supervisor) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Attempts returns the current retry counter.
func (s *Supervisor) Attempts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attempts
}

// Stats returns a snapshot of supervisor counters.
func (s *Supervisor) Stats() SupervisorStats {
	s.mu.Lock()
	st, attempts := s.state, s.attempts
	s.mu.Unlock()

	return SupervisorStats{
		State:            st,
		Attempts:         attempts,
		Dials:            s.dials.Load(),
		Connects:         s.connects.Load(),
		MessagesReceived: s.received.Load(),
		MessagesSent:     s.sent.Load(),
		SendsDropped:     s.sendsDropped.Load(),
	}
}

// attempt dials once on behalf of generation gen.
func (s *Supervisor) attempt(gen uint64) {
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return
	}
	ctx := s.ctx
	s.setStateLocked(StateConnecting)
	s.mu.Unlock()

	s.dials.Add(1)
	c, err := s.dial(ctx)

	s.mu.Lock()
	if gen != s.gen {
		// Disconnected (or reconnected) while dialing.
		s.mu.Unlock()
		if c != nil {
			c.Close()
		}
		return
	}
	if err != nil {
		s.logger.Warn("websocket connect failed", "error", err, "attempt", s.attempts)
		s.scheduleReconnectLocked(gen)
		s.mu.Unlock()
		return
	}

	s.client = c
	s.attempts = 0
	s.setStateLocked(StateConnected)
	s.mu.Unlock()

	s.connects.Add(1)
	s.logger.Info("websocket connected", "url", s.cfg.Client.URL)

	go s.pump(ctx, gen, c)
}

// pump delivers messages from c until its message channel closes.
func (s *Supervisor) pump(ctx context.Context, gen uint64, c Client) {
	msgs := c.Messages()
	errs := c.Errors()
	done := ctx.Done()

	for {
		select {
		case <-done:
			c.Close()
			done = nil
		case err := <-errs:
			s.logger.Warn("websocket error", "error", err)
		case msg, ok := <-msgs:
			if !ok {
				s.handleClose(gen, c)
				return
			}
			s.received.Add(1)
			s.handler(msg.Data)
		}
	}
}

func (s *Supervisor) handleClose(gen uint64, c Client) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.gen || s.client != c {
		return
	}
	s.client = nil

	s.logger.Info("websocket closed", "error", c.Err())
	s.scheduleReconnectLocked(gen)
}

// scheduleReconnectLocked arms the next attempt or gives up. Caller holds mu.
func (s *Supervisor) scheduleReconnectLocked(gen uint64) {
	if s.ctx.Err() != nil {
		s.setStateLocked(StateDisconnected)
		return
	}
	if s.attempts >= s.cfg.MaxAttempts {
		s.logger.Error("max reconnection attempts reached, giving up",
			"attempts", s.attempts,
		)
		s.setStateLocked(StateGaveUp)
		return
	}

	s.attempts++
	delay := s.backoff(s.attempts)
	s.setStateLocked(StateDisconnected)

	s.logger.Info("scheduling reconnection",
		"attempt", s.attempts,
		"max_attempts", s.cfg.MaxAttempts,
		"delay", delay,
	)

	s.timer = time.AfterFunc(delay, func() {
		s.attempt(gen)
	})
}

// backoff returns the wait before the given 1-based attempt.
func (s *Supervisor) backoff(attempt int) time.Duration {
	base := s.cfg.ReconnectDelay
	if s.cfg.Backoff != BackoffExponential || base <= 0 {
		return base
	}

	d := base
	for i := 1; i < attempt; i++ {
		d *= 2
		if s.cfg.MaxDelay > 0 && d >= s.cfg.MaxDelay {
			d = s.cfg.MaxDelay
			break
		}
	}

	jittered := d/2 + time.Duration(rand.Int64N(int64(d)))
	if s.cfg.MaxDelay > 0 && jittered > s.cfg.MaxDelay {
		jittered = s.cfg.MaxDelay
	}
	return jittered
}

func (s *Supervisor) stopTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Supervisor) setStateLocked(to State) {
	from := s.state
	if from == to {
		return
	}
	s.state = to
	if s.feed != nil {
		s.feed.Publish(StateChange{
			From:     from,
			To:       to,
			Attempts: s.attempts,
			At:       time.Now(),
		})
	}
}
