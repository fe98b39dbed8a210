package router

import "encoding/json"

// Wildcard subscribes to every envelope.
const Wildcard = "*"

// Known envelope types sent by the backend.
const (
	TypeConnectionEstablished = "connection_established"
	TypeHoneypotCompromised   = "honeypot_compromised"
	TypeHoneypotsUpdated      = "honeypots_updated"
	TypeThreatUpdate          = "threat_update"
	TypeMetricsUpdate         = "metrics_update"
)

// Envelope is one inbound message. Data is opaque to the router.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Handler receives the data of a matching envelope.
type Handler func(data json.RawMessage)

// EnvelopeHandler receives a whole envelope.
type EnvelopeHandler func(env Envelope)

// Stats contains runtime statistics.
type Stats struct {
	MessagesReceived int64
	MessagesRouted   int64 // envelopes that reached at least one handler
	ParseErrors      int64
	UnhandledTypes   int64 // envelopes with no subscriber at all
	HandlerPanics    int64
	Subscriptions    int
}

// subscription is the identity behind an unsubscribe func. Exactly one of
// data or whole is set.
type subscription struct {
	typ   string
	data  Handler
	whole EnvelopeHandler
}
