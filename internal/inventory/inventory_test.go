package inventory

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/honeywatch/console/internal/model"
	"github.com/honeywatch/console/internal/router"
)

// fakeSource serves a settable listing.
type fakeSource struct {
	mu    sync.Mutex
	hps   []model.Honeypot
	err   error
	calls atomic.Int32

	// When set, ListHoneypots blocks until release is closed.
	release chan struct{}
}

func (f *fakeSource) set(hps ...model.Honeypot) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hps = hps
	f.err = nil
}

func (f *fakeSource) fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *fakeSource) ListHoneypots(ctx context.Context) ([]model.Honeypot, error) {
	f.calls.Add(1)
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return append([]model.Honeypot(nil), f.hps...), nil
}

func testConfig() Config {
	return Config{SyncInterval: time.Hour, ChangeBuffer: 16}
}

func drain(ch <-chan Change) []Change {
	var out []Change
	for {
		select {
		case c := <-ch:
			out = append(out, c)
		default:
			return out
		}
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before deadline")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestRefresh_KeepsBackendOrder(t *testing.T) {
	src := &fakeSource{}
	src.set(
		model.Honeypot{ID: "hp-b", Name: "B", Status: model.StatusActive, Blockchain: model.ChainBitcoin},
		model.Honeypot{ID: "hp-a", Name: "A", Status: model.StatusTriggered, Blockchain: model.ChainEthereum},
	)
	inv := New(testConfig(), src, nil)

	if err := inv.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	assets := inv.Assets(time.Now())
	if len(assets) != 2 {
		t.Fatalf("len(assets) = %d, want 2", len(assets))
	}
	if assets[0].ID != "hp-b" || assets[1].ID != "hp-a" {
		t.Errorf("order = [%s %s], want [hp-b hp-a]", assets[0].ID, assets[1].ID)
	}
	if assets[0].Symbol != "BTC" || assets[1].Symbol != "ETH" {
		t.Errorf("symbols = [%s %s]", assets[0].Symbol, assets[1].Symbol)
	}
	if !inv.Synced() {
		t.Error("Synced() = false after successful refresh")
	}
}

func TestRefresh_ReportsChanges(t *testing.T) {
	src := &fakeSource{}
	src.set(
		model.Honeypot{ID: "hp-1", Status: model.StatusActive},
		model.Honeypot{ID: "hp-2", Status: model.StatusActive},
	)
	inv := New(testConfig(), src, nil)
	ctx := context.Background()

	inv.Refresh(ctx)
	first := drain(inv.Changes())
	if len(first) != 2 || first[0].Kind != ChangeCreated || first[1].ID != "hp-2" {
		t.Fatalf("initial changes = %+v", first)
	}

	src.set(
		model.Honeypot{ID: "hp-1", Status: model.StatusTriggered, ThreatIndicators: []string{"drain"}},
		model.Honeypot{ID: "hp-3", Status: model.StatusActive},
	)
	inv.Refresh(ctx)
	second := drain(inv.Changes())

	want := []struct {
		id   string
		kind ChangeKind
	}{
		{"hp-1", ChangeUpdated},
		{"hp-3", ChangeCreated},
		{"hp-2", ChangeRemoved},
	}
	if len(second) != len(want) {
		t.Fatalf("changes = %+v, want %d", second, len(want))
	}
	for i, w := range want {
		if second[i].ID != w.id || second[i].Kind != w.kind {
			t.Errorf("change %d = %s %s, want %s %s", i, second[i].ID, second[i].Kind, w.id, w.kind)
		}
	}
	if second[0].OldStatus != model.StatusActive || second[0].NewStatus != model.StatusTriggered {
		t.Errorf("status change = %s -> %s", second[0].OldStatus, second[0].NewStatus)
	}

	// Identical listing produces nothing.
	inv.Refresh(ctx)
	if got := drain(inv.Changes()); len(got) != 0 {
		t.Errorf("unchanged listing produced %+v", got)
	}
}

func TestRefresh_FailureKeepsCache(t *testing.T) {
	src := &fakeSource{}
	src.set(model.Honeypot{ID: "hp-1"})
	inv := New(testConfig(), src, nil)
	ctx := context.Background()

	inv.Refresh(ctx)
	src.fail(errors.New("backend down"))

	if err := inv.Refresh(ctx); err == nil {
		t.Fatal("expected error, got nil")
	}
	if n := len(inv.Honeypots()); n != 1 {
		t.Errorf("cached honeypots = %d, want 1", n)
	}

	st := inv.Stats()
	if st.Syncs != 1 || st.SyncErrors != 1 || st.LastError == "" {
		t.Errorf("Stats = %+v", st)
	}
}

func TestRefresh_ConcurrentCallersShareFetch(t *testing.T) {
	src := &fakeSource{release: make(chan struct{})}
	src.set(model.Honeypot{ID: "hp-1"})
	inv := New(testConfig(), src, nil)

	var wg sync.WaitGroup
	for range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			inv.Refresh(context.Background())
		}()
	}

	waitFor(t, func() bool { return src.calls.Load() >= 1 })
	time.Sleep(20 * time.Millisecond)
	close(src.release)
	wg.Wait()

	if n := src.calls.Load(); n != 1 {
		t.Errorf("ListHoneypots called %d times, want 1", n)
	}
}

func TestAsset(t *testing.T) {
	src := &fakeSource{}
	bal := 1.23456
	src.set(model.Honeypot{ID: "hp-1", Blockchain: model.ChainEthereum, CurrentBalance: &bal})
	inv := New(testConfig(), src, nil)
	inv.Refresh(context.Background())

	a, err := inv.Asset("hp-1", time.Now())
	if err != nil {
		t.Fatalf("Asset failed: %v", err)
	}
	if a.Balance != "1.2346" {
		t.Errorf("Balance = %q, want 1.2346", a.Balance)
	}

	if _, err := inv.Asset("missing", time.Now()); !errors.Is(err, ErrUnknownHoneypot) {
		t.Errorf("Asset(missing) error = %v, want ErrUnknownHoneypot", err)
	}
}

func TestChanges_DropWhenFull(t *testing.T) {
	src := &fakeSource{}
	src.set(
		model.Honeypot{ID: "hp-1"},
		model.Honeypot{ID: "hp-2"},
		model.Honeypot{ID: "hp-3"},
	)
	inv := New(Config{SyncInterval: time.Hour, ChangeBuffer: 2}, src, nil)

	if err := inv.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	if got := len(drain(inv.Changes())); got != 2 {
		t.Errorf("delivered %d changes, want 2", got)
	}
	if st := inv.Stats(); st.ChangesDropped != 1 {
		t.Errorf("ChangesDropped = %d, want 1", st.ChangesDropped)
	}
}

func TestStart_InitialSyncFailureIsNotFatal(t *testing.T) {
	src := &fakeSource{}
	src.fail(errors.New("connection refused"))
	inv := New(testConfig(), src, nil)

	if err := inv.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer inv.Stop(context.Background())

	if inv.Synced() {
		t.Error("Synced() = true after failed initial sync")
	}

	// A later trigger recovers.
	src.set(model.Honeypot{ID: "hp-1"})
	inv.Trigger()
	waitFor(t, inv.Synced)
}

func TestAttach_EventsTriggerRefresh(t *testing.T) {
	src := &fakeSource{}
	src.set(model.Honeypot{ID: "hp-1"})
	inv := New(testConfig(), src, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	inv.Start(ctx)
	defer inv.Stop(context.Background())

	r := router.New(nil)
	unsubscribe := inv.Attach(r)

	src.set(model.Honeypot{ID: "hp-1"}, model.Honeypot{ID: "hp-2"})
	r.Dispatch([]byte(`{"type":"honeypots_updated"}`))
	waitFor(t, func() bool { return len(inv.Honeypots()) == 2 })

	src.set(model.Honeypot{ID: "hp-1", Status: model.StatusTriggered}, model.Honeypot{ID: "hp-2"})
	r.Dispatch([]byte(`{"type":"honeypot_compromised","data":{"honeypot_id":"hp-1","amount_drained":0.5}}`))
	waitFor(t, func() bool {
		hps := inv.Honeypots()
		return len(hps) == 2 && hps[0].Status == model.StatusTriggered
	})

	unsubscribe()
	if n := r.Subscribers(router.TypeHoneypotsUpdated); n != 0 {
		t.Errorf("Subscribers after unsubscribe = %d, want 0", n)
	}
}

func TestTrigger_Coalesces(t *testing.T) {
	inv := New(testConfig(), &fakeSource{}, nil)

	// Without a running loop, only one trigger can be pending.
	inv.Trigger()
	inv.Trigger()
	inv.Trigger()

	if n := len(inv.trigger); n != 1 {
		t.Errorf("pending triggers = %d, want 1", n)
	}
	if st := inv.Stats(); st.Triggers != 3 {
		t.Errorf("Triggers = %d, want 3", st.Triggers)
	}
}
