package journal

import (
	"sync"
	"testing"
	"time"
)

func TestQueue_PushDrainFIFO(t *testing.T) {
	q := NewQueue[int](10, 100)

	for i := 0; i < 5; i++ {
		if !q.Push(i) {
			t.Fatalf("Push(%d) returned false", i)
		}
	}

	if q.Len() != 5 {
		t.Errorf("Len() = %d, want 5", q.Len())
	}

	got := q.Drain(0)
	for i, v := range got {
		if v != i {
			t.Errorf("item %d = %d, want %d", i, v, i)
		}
	}

	if q.Len() != 0 {
		t.Errorf("Len() = %d, want 0", q.Len())
	}
	if got := q.Drain(0); got != nil {
		t.Errorf("Drain on empty queue = %v, want nil", got)
	}
}

func TestQueue_GrowAt70Percent(t *testing.T) {
	q := NewQueue[int](10, 100)

	// 7 items is 70% of 10
	for i := 0; i < 7; i++ {
		q.Push(i)
	}

	stats := q.Stats()
	if stats.Capacity != 20 {
		t.Errorf("Capacity = %d, want 20 after 70%% fill", stats.Capacity)
	}
	if stats.Resizes != 1 {
		t.Errorf("Resizes = %d, want 1", stats.Resizes)
	}
}

func TestQueue_GrowPreservesOrderAcrossWrap(t *testing.T) {
	q := NewQueue[int](8, 1000)

	// Advance head so later pushes wrap around the ring.
	for i := 0; i < 4; i++ {
		q.Push(-1)
	}
	q.Drain(4)

	for i := 0; i < 100; i++ {
		q.Push(i)
	}

	got := q.Drain(0)
	if len(got) != 100 {
		t.Fatalf("drained %d items, want 100", len(got))
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("item %d = %d, want %d", i, v, i)
		}
	}
	if q.Stats().Resizes < 3 {
		t.Errorf("Resizes = %d, expected at least 3", q.Stats().Resizes)
	}
}

func TestQueue_EvictsOldestAtCeiling(t *testing.T) {
	q := NewQueue[int](2, 4)

	for i := 1; i <= 6; i++ {
		q.Push(i)
	}

	got := q.Drain(0)
	want := []int{3, 4, 5, 6}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("item %d = %d, want %d", i, got[i], want[i])
		}
	}

	stats := q.Stats()
	if stats.Evicted != 2 {
		t.Errorf("Evicted = %d, want 2", stats.Evicted)
	}
	if stats.Capacity != 4 {
		t.Errorf("Capacity = %d, want ceiling 4", stats.Capacity)
	}
}

func TestQueue_DrainLimit(t *testing.T) {
	q := NewQueue[int](10, 10)
	for i := 0; i < 10; i++ {
		q.Push(i)
	}

	first := q.Drain(3)
	if len(first) != 3 || first[0] != 0 || first[2] != 2 {
		t.Errorf("first batch = %v", first)
	}
	if q.Len() != 7 {
		t.Errorf("Len() = %d, want 7", q.Len())
	}
}

func TestQueue_Close(t *testing.T) {
	q := NewQueue[int](4, 4)
	q.Push(1)
	q.Close()

	if q.Push(2) {
		t.Error("Push after Close returned true")
	}
	if got := q.Drain(0); len(got) != 1 || got[0] != 1 {
		t.Errorf("Drain after Close = %v, want [1]", got)
	}
}

func TestQueue_ReadySignal(t *testing.T) {
	q := NewQueue[int](4, 4)

	go func() {
		time.Sleep(10 * time.Millisecond)
		q.Push(42)
	}()

	select {
	case <-q.Ready():
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for ready signal")
	}
	if q.Len() != 1 {
		t.Errorf("Len() = %d, want 1", q.Len())
	}
}

func TestQueue_ConcurrentPushDrain(t *testing.T) {
	q := NewQueue[int](16, 1<<20)

	const producers = 4
	const perProducer = 1000

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				q.Push(i)
			}
		}()
	}

	total := 0
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	for {
		total += len(q.Drain(50))
		select {
		case <-done:
			total += len(q.Drain(0))
			if total != producers*perProducer {
				t.Errorf("drained %d items, want %d", total, producers*perProducer)
			}
			return
		default:
		}
	}
}

func TestNewQueue_MinCapacity(t *testing.T) {
	q := NewQueue[int](0, 0)
	if st := q.Stats(); st.Capacity != 1 {
		t.Errorf("Capacity = %d, want 1", st.Capacity)
	}
	q.Push(1)
	q.Push(2)
	if got := q.Drain(0); len(got) != 1 || got[0] != 2 {
		t.Errorf("Drain = %v, want [2]", got)
	}
}
