package connection

import (
	"log/slog"
	"sync"

	"github.com/cskr/pubsub"
)

const stateTopic = "connection.state"

// StateFeed fans state transitions out to any number of watchers.
type StateFeed struct {
	ps     *pubsub.PubSub
	logger *slog.Logger

	mu     sync.Mutex
	closed bool
}

// NewStateFeed creates a feed.
func NewStateFeed(logger *slog.Logger) *StateFeed {
	if logger == nil {
		logger = slog.Default()
	}
	return &StateFeed{
		ps:     pubsub.New(32),
		logger: logger,
	}
}

// Publish delivers a change to all current watchers. It is a no-op after Close.
func (f *StateFeed) Publish(change StateChange) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.ps.Pub(change, stateTopic)
}

// Watch subscribes to state changes. The returned channel closes after the
// cancel func is called or the feed is closed. A watcher that falls behind
// loses changes rather than stalling the publisher.
func (f *StateFeed) Watch() (<-chan StateChange, func()) {
	out := make(chan StateChange, 16)

	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		close(out)
		return out, func() {}
	}
	sub := f.ps.Sub(stateTopic)
	f.mu.Unlock()

	go func() {
		defer close(out)
		for v := range sub {
			change, ok := v.(StateChange)
			if !ok {
				continue
			}
			select {
			case out <- change:
			default:
				f.logger.Warn("state watcher lagging, dropping change",
					"from", change.From.String(),
					"to", change.To.String(),
				)
			}
		}
	}()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			if !f.closed {
				f.ps.Unsub(sub, stateTopic)
			}
		})
	}
	return out, cancel
}

// Close shuts the feed down and closes every watcher channel.
func (f *StateFeed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.closed = true
	f.ps.Shutdown()
}
