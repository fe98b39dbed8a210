package router

import (
	"encoding/json"

	"github.com/honeywatch/console/internal/model"
)

// Subscribe registers fn for envelopes of type typ, decoding data into T.
// Envelopes whose data does not decode are logged and skipped.
func Subscribe[T any](r *Router, typ string, fn func(T)) (unsubscribe func()) {
	return r.On(typ, func(data json.RawMessage) {
		var v T
		if len(data) > 0 {
			if err := json.Unmarshal(data, &v); err != nil {
				r.parseErrors.Add(1)
				r.logger.Warn("failed to decode envelope data", "type", typ, "error", err)
				return
			}
		}
		fn(v)
	})
}

// OnCompromised subscribes to honeypot_compromised alerts.
func (r *Router) OnCompromised(fn func(model.HoneypotCompromised)) func() {
	return Subscribe(r, TypeHoneypotCompromised, fn)
}

// OnThreatUpdate subscribes to threat_update broadcasts.
func (r *Router) OnThreatUpdate(fn func(model.ThreatUpdate)) func() {
	return Subscribe(r, TypeThreatUpdate, fn)
}

// OnMetricsUpdate subscribes to metrics_update broadcasts.
func (r *Router) OnMetricsUpdate(fn func(model.SystemMetrics)) func() {
	return Subscribe(r, TypeMetricsUpdate, fn)
}

// OnHoneypotsUpdated subscribes to the list-changed signal. The payload is
// ignored.
func (r *Router) OnHoneypotsUpdated(fn func()) func() {
	return r.On(TypeHoneypotsUpdated, func(json.RawMessage) { fn() })
}
