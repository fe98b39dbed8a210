package journal

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore keeps the newest records in memory.
type MemoryStore struct {
	mu      sync.Mutex
	limit   int
	records []Record // oldest first
	ids     map[uuid.UUID]struct{}
}

// NewMemoryStore retains at most limit records.
func NewMemoryStore(limit int) *MemoryStore {
	if limit < 1 {
		limit = 1
	}
	return &MemoryStore{
		limit: limit,
		ids:   make(map[uuid.UUID]struct{}),
	}
}

func (m *MemoryStore) Init(context.Context) error { return nil }

func (m *MemoryStore) Insert(_ context.Context, records []Record) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	inserted := 0
	for _, r := range records {
		if _, dup := m.ids[r.ID]; dup {
			continue
		}
		m.records = append(m.records, r)
		m.ids[r.ID] = struct{}{}
		inserted++
	}

	if over := len(m.records) - m.limit; over > 0 {
		for _, r := range m.records[:over] {
			delete(m.ids, r.ID)
		}
		m.records = append([]Record(nil), m.records[over:]...)
	}
	return inserted, nil
}

func (m *MemoryStore) Recent(_ context.Context, limit int) ([]Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := len(m.records)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]Record, 0, n)
	for i := len(m.records) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, m.records[i])
	}
	return out, nil
}

func (m *MemoryStore) Ping(context.Context) error { return nil }

func (m *MemoryStore) Close() error { return nil }
