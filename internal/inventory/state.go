package inventory

import (
	"reflect"
	"sync"
	"time"

	"github.com/honeywatch/console/internal/model"
)

// inventoryState holds the cached records. Callers outside this file take mu
// only through the methods below.
type inventoryState struct {
	mu    sync.RWMutex
	order []string
	byID  map[string]model.Honeypot

	lastSyncAt time.Time
	synced     bool

	changes chan Change
	dropped int64
}

func newState(buffer int) *inventoryState {
	if buffer < 1 {
		buffer = 1
	}
	return &inventoryState{
		byID:    make(map[string]model.Honeypot),
		changes: make(chan Change, buffer),
	}
}

// replace swaps in a full listing and returns the differences, in listing
// order followed by removals in previous order.
func (s *inventoryState) replace(hps []model.Honeypot, at time.Time) []Change {
	s.mu.Lock()
	defer s.mu.Unlock()

	var changes []Change
	next := make(map[string]model.Honeypot, len(hps))
	order := make([]string, 0, len(hps))

	for _, hp := range hps {
		if _, dup := next[hp.ID]; dup {
			continue
		}
		next[hp.ID] = hp
		order = append(order, hp.ID)

		old, ok := s.byID[hp.ID]
		switch {
		case !ok:
			changes = append(changes, Change{ID: hp.ID, Kind: ChangeCreated, NewStatus: hp.Status, Honeypot: hp})
		case !reflect.DeepEqual(old, hp):
			changes = append(changes, Change{ID: hp.ID, Kind: ChangeUpdated, OldStatus: old.Status, NewStatus: hp.Status, Honeypot: hp})
		}
	}

	for _, id := range s.order {
		if _, ok := next[id]; !ok {
			old := s.byID[id]
			changes = append(changes, Change{ID: id, Kind: ChangeRemoved, OldStatus: old.Status, Honeypot: old})
		}
	}

	s.byID = next
	s.order = order
	s.lastSyncAt = at
	s.synced = true
	return changes
}

// notifyChange sends without blocking, dropping when the buffer is full.
func (s *inventoryState) notifyChange(c Change) bool {
	select {
	case s.changes <- c:
		return true
	default:
		s.mu.Lock()
		s.dropped++
		s.mu.Unlock()
		return false
	}
}

func (s *inventoryState) list() []model.Honeypot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Honeypot, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}
	return out
}

func (s *inventoryState) get(id string) (model.Honeypot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	hp, ok := s.byID[id]
	return hp, ok
}
