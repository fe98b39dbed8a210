package router

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
)

// Router dispatches envelopes to registered handlers. The zero value is not
// usable; call New.
type Router struct {
	logger *slog.Logger

	mu       sync.RWMutex
	byType   map[string][]*subscription
	wildcard []*subscription

	received    atomic.Int64
	routed      atomic.Int64
	parseErrors atomic.Int64
	unhandled   atomic.Int64
	panics      atomic.Int64
}

// New creates an empty router.
func New(logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		logger: logger,
		byType: make(map[string][]*subscription),
	}
}

// On registers fn for envelopes of type typ and returns its unsubscribe func.
// With typ Wildcard, fn receives the raw bytes of the whole envelope instead
// of just its data.
func (r *Router) On(typ string, fn Handler) (unsubscribe func()) {
	return r.add(&subscription{typ: typ, data: fn})
}

// OnAny registers fn for every envelope.
func (r *Router) OnAny(fn EnvelopeHandler) (unsubscribe func()) {
	return r.add(&subscription{typ: Wildcard, whole: fn})
}

func (r *Router) add(sub *subscription) func() {
	r.mu.Lock()
	if sub.typ == Wildcard {
		r.wildcard = append(r.wildcard, sub)
	} else {
		r.byType[sub.typ] = append(r.byType[sub.typ], sub)
	}
	r.mu.Unlock()

	return func() { r.remove(sub) }
}

// remove deletes sub by identity. Removing twice is a no-op.
func (r *Router) remove(sub *subscription) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if sub.typ == Wildcard {
		r.wildcard = deleteSub(r.wildcard, sub)
		return
	}

	subs := deleteSub(r.byType[sub.typ], sub)
	if len(subs) == 0 {
		delete(r.byType, sub.typ)
		return
	}
	r.byType[sub.typ] = subs
}

// deleteSub returns a new slice without sub, leaving the old backing array
// untouched for any dispatch already iterating it.
func deleteSub(subs []*subscription, sub *subscription) []*subscription {
	i := slices.Index(subs, sub)
	if i < 0 {
		return subs
	}
	out := make([]*subscription, 0, len(subs)-1)
	out = append(out, subs[:i]...)
	return append(out, subs[i+1:]...)
}

// Dispatch parses one raw message and delivers it. Malformed messages are
// logged and dropped.
func (r *Router) Dispatch(raw []byte) {
	r.received.Add(1)

	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		r.parseErrors.Add(1)
		r.logger.Warn("failed to parse envelope", "error", err, "bytes", len(raw))
		return
	}
	if env.Type == "" {
		r.parseErrors.Add(1)
		r.logger.Warn("envelope missing type", "bytes", len(raw))
		return
	}

	r.deliver(env, raw)
}

// Publish delivers an already-parsed envelope.
func (r *Router) Publish(env Envelope) {
	r.received.Add(1)

	raw, err := json.Marshal(env)
	if err != nil {
		r.parseErrors.Add(1)
		r.logger.Warn("failed to encode envelope", "type", env.Type, "error", err)
		return
	}
	r.deliver(env, raw)
}

func (r *Router) deliver(env Envelope, raw []byte) {
	// Snapshot under the lock; handlers may (un)subscribe while we run.
	r.mu.RLock()
	typed := r.byType[env.Type]
	wild := r.wildcard
	r.mu.RUnlock()

	if len(typed) == 0 && len(wild) == 0 {
		r.unhandled.Add(1)
		r.logger.Debug("no subscribers for envelope", "type", env.Type)
		return
	}

	for _, sub := range typed {
		r.call(env.Type, func() { sub.data(env.Data) })
	}
	for _, sub := range wild {
		if sub.whole != nil {
			r.call(env.Type, func() { sub.whole(env) })
		} else {
			r.call(env.Type, func() { sub.data(raw) })
		}
	}

	r.routed.Add(1)
}

// call runs one handler, recovering a panic so later handlers still run.
func (r *Router) call(typ string, fn func()) {
	defer func() {
		if rec := recover(); rec != nil {
			r.panics.Add(1)
			r.logger.Error("subscriber panicked",
				"type", typ,
				"panic", fmt.Sprint(rec),
			)
		}
	}()
	fn()
}

// Subscribers returns how many handlers are registered for typ.
func (r *Router) Subscribers(typ string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if typ == Wildcard {
		return len(r.wildcard)
	}
	return len(r.byType[typ])
}

// Stats returns current statistics.
func (r *Router) Stats() Stats {
	r.mu.RLock()
	n := len(r.wildcard)
	for _, subs := range r.byType {
		n += len(subs)
	}
	r.mu.RUnlock()

	return Stats{
		MessagesReceived: r.received.Load(),
		MessagesRouted:   r.routed.Load(),
		ParseErrors:      r.parseErrors.Load(),
		UnhandledTypes:   r.unhandled.Load(),
		HandlerPanics:    r.panics.Load(),
		Subscriptions:    n,
	}
}
