package router

import (
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/honeywatch/console/internal/model"
)

func TestRouter_DeliversDataInRegistrationOrder(t *testing.T) {
	r := New(slog.Default())

	var calls []string
	r.On("alpha", func(data json.RawMessage) { calls = append(calls, "first:"+string(data)) })
	r.On("alpha", func(data json.RawMessage) { calls = append(calls, "second:"+string(data)) })
	r.On("beta", func(json.RawMessage) { calls = append(calls, "beta") })

	r.Dispatch([]byte(`{"type":"alpha","data":{"n":1}}`))

	want := []string{`first:{"n":1}`, `second:{"n":1}`}
	if len(calls) != len(want) {
		t.Fatalf("calls = %v, want %v", calls, want)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Errorf("call %d = %q, want %q", i, calls[i], want[i])
		}
	}
}

func TestRouter_EachSubscriberCalledOncePerEnvelope(t *testing.T) {
	r := New(nil)

	counts := make([]int, 3)
	for i := range counts {
		r.On("tick", func(json.RawMessage) { counts[i]++ })
	}

	for range 4 {
		r.Dispatch([]byte(`{"type":"tick","data":null}`))
	}

	for i, n := range counts {
		if n != 4 {
			t.Errorf("subscriber %d called %d times, want 4", i, n)
		}
	}
}

func TestRouter_TypedBeforeWildcard(t *testing.T) {
	r := New(nil)

	var order []string
	r.OnAny(func(env Envelope) { order = append(order, "any:"+env.Type) })
	r.On("alpha", func(json.RawMessage) { order = append(order, "typed") })

	r.Dispatch([]byte(`{"type":"alpha","data":{}}`))

	if len(order) != 2 || order[0] != "typed" || order[1] != "any:alpha" {
		t.Errorf("order = %v, want [typed any:alpha]", order)
	}
}

func TestRouter_WildcardReceivesWholeEnvelope(t *testing.T) {
	r := New(nil)

	raw := []byte(`{"type":"honeypots_updated","data":{"count":3}}`)

	var viaOn []byte
	r.On(Wildcard, func(data json.RawMessage) { viaOn = data })

	var viaAny Envelope
	r.OnAny(func(env Envelope) { viaAny = env })

	r.Dispatch(raw)

	if string(viaOn) != string(raw) {
		t.Errorf("wildcard On got %s, want %s", viaOn, raw)
	}
	if viaAny.Type != TypeHoneypotsUpdated || string(viaAny.Data) != `{"count":3}` {
		t.Errorf("OnAny got %+v", viaAny)
	}
}

func TestRouter_UnsubscribeStopsOnlyThatHandler(t *testing.T) {
	r := New(nil)

	var a, b, other int
	unsubA := r.On("alpha", func(json.RawMessage) { a++ })
	r.On("alpha", func(json.RawMessage) { b++ })
	r.On("beta", func(json.RawMessage) { other++ })

	r.Dispatch([]byte(`{"type":"alpha"}`))
	unsubA()
	unsubA() // idempotent
	r.Dispatch([]byte(`{"type":"alpha"}`))
	r.Dispatch([]byte(`{"type":"beta"}`))

	if a != 1 {
		t.Errorf("a = %d, want 1", a)
	}
	if b != 2 {
		t.Errorf("b = %d, want 2", b)
	}
	if other != 1 {
		t.Errorf("other = %d, want 1", other)
	}
	if n := r.Subscribers("alpha"); n != 1 {
		t.Errorf("Subscribers(alpha) = %d, want 1", n)
	}
}

func TestRouter_UnsubscribeDuringDispatch(t *testing.T) {
	r := New(nil)

	var second int
	var unsubSecond func()
	r.On("alpha", func(json.RawMessage) { unsubSecond() })
	unsubSecond = r.On("alpha", func(json.RawMessage) { second++ })

	// The current dispatch still reaches the second handler.
	r.Dispatch([]byte(`{"type":"alpha"}`))
	if second != 1 {
		t.Fatalf("second = %d after first dispatch, want 1", second)
	}

	r.Dispatch([]byte(`{"type":"alpha"}`))
	if second != 1 {
		t.Errorf("second = %d after unsubscribe, want 1", second)
	}
}

func TestRouter_NoSubscribers(t *testing.T) {
	r := New(nil)

	r.Dispatch([]byte(`{"type":"nobody_listens","data":{}}`))

	st := r.Stats()
	if st.UnhandledTypes != 1 {
		t.Errorf("UnhandledTypes = %d, want 1", st.UnhandledTypes)
	}
	if st.MessagesRouted != 0 {
		t.Errorf("MessagesRouted = %d, want 0", st.MessagesRouted)
	}
}

func TestRouter_MalformedMessagesDropped(t *testing.T) {
	r := New(nil)

	var called bool
	r.OnAny(func(Envelope) { called = true })

	r.Dispatch([]byte(`not json`))
	r.Dispatch([]byte(`{"data":{}}`))

	if called {
		t.Error("handler called for malformed message")
	}
	if st := r.Stats(); st.ParseErrors != 2 {
		t.Errorf("ParseErrors = %d, want 2", st.ParseErrors)
	}
}

func TestRouter_PanickingHandlerIsolated(t *testing.T) {
	r := New(nil)

	var after bool
	r.On("alpha", func(json.RawMessage) { panic("boom") })
	r.On("alpha", func(json.RawMessage) { after = true })

	r.Dispatch([]byte(`{"type":"alpha"}`))

	if !after {
		t.Error("handler after a panicking one was not called")
	}
	if st := r.Stats(); st.HandlerPanics != 1 {
		t.Errorf("HandlerPanics = %d, want 1", st.HandlerPanics)
	}
}

func TestRouter_Publish(t *testing.T) {
	r := New(nil)

	var got json.RawMessage
	r.On("alpha", func(data json.RawMessage) { got = data })

	r.Publish(Envelope{Type: "alpha", Data: json.RawMessage(`{"x":1}`)})

	if string(got) != `{"x":1}` {
		t.Errorf("got %s, want {\"x\":1}", got)
	}
}

func TestRouter_TypedHelpers(t *testing.T) {
	r := New(nil)

	var alert model.HoneypotCompromised
	r.OnCompromised(func(c model.HoneypotCompromised) { alert = c })

	var threat model.ThreatUpdate
	r.OnThreatUpdate(func(u model.ThreatUpdate) { threat = u })

	var refreshed int
	r.OnHoneypotsUpdated(func() { refreshed++ })

	r.Dispatch([]byte(`{"type":"honeypot_compromised","data":{
		"honeypot_id":"hp-1","honeypot_name":"ETH Decoy",
		"wallet_address":"0xabc","amount_drained":0.5,"blockchain":"ethereum",
		"threat_level":"critical","auto_responded":true,
		"timestamp":"2024-01-15T12:00:00","status":"compromised"}}`))
	r.Dispatch([]byte(`{"type":"threat_update","data":{"threat_level":72.5,"status":"high","active_crypto":"post_quantum","threshold":70}}`))
	r.Dispatch([]byte(`{"type":"honeypots_updated"}`))

	if alert.HoneypotID != "hp-1" || alert.AmountDrained != 0.5 || !alert.AutoResponded {
		t.Errorf("alert = %+v", alert)
	}
	if threat.ThreatLevel != 72.5 || threat.ActiveCrypto != model.CryptoPostQuantum {
		t.Errorf("threat = %+v", threat)
	}
	if refreshed != 1 {
		t.Errorf("refreshed = %d, want 1", refreshed)
	}
}

func TestSubscribe_DecodeFailureSkipsHandler(t *testing.T) {
	r := New(nil)

	var called bool
	Subscribe(r, "alpha", func(struct{ N int }) { called = true })

	r.Dispatch([]byte(`{"type":"alpha","data":"not an object"}`))

	if called {
		t.Error("handler called despite decode failure")
	}
	if st := r.Stats(); st.ParseErrors != 1 {
		t.Errorf("ParseErrors = %d, want 1", st.ParseErrors)
	}
}
