// Package router multiplexes inbound real-time envelopes to subscribers.
//
// Each message is a JSON envelope {"type": ..., "data": ...}. Handlers
// registered with On receive only the data of envelopes whose type matches.
// Handlers registered with OnAny (or On with the "*" wildcard) receive every
// envelope. For a single envelope, type-specific handlers run first in
// registration order, then wildcard handlers in registration order. Delivery
// is synchronous on the caller of Dispatch.
package router
