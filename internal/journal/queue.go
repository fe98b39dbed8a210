package journal

import (
	"sync"
)

// Queue is a thread-safe FIFO that doubles its capacity when it reaches 70%
// full, up to a ceiling. At the ceiling Push evicts the oldest item.
type Queue[T any] struct {
	mu     sync.Mutex
	buf    []T
	head   int // read position
	count  int
	maxCap int
	closed bool
	ready  chan struct{}

	// Stats
	pushed  int64
	popped  int64
	evicted int64
	resizes int
}

// QueueStats contains queue statistics.
type QueueStats struct {
	Len      int
	Capacity int
	Pushed   int64
	Popped   int64
	Evicted  int64
	Resizes  int
}

// NewQueue creates a queue with the given initial capacity and ceiling. A
// ceiling below the initial capacity is raised to it.
func NewQueue[T any](initialCapacity, maxCapacity int) *Queue[T] {
	if initialCapacity < 1 {
		initialCapacity = 1
	}
	if maxCapacity < initialCapacity {
		maxCapacity = initialCapacity
	}
	return &Queue[T]{
		buf:    make([]T, initialCapacity),
		maxCap: maxCapacity,
		ready:  make(chan struct{}, 1),
	}
}

// Push appends item. It returns false if the queue is closed.
func (q *Queue[T]) Push(item T) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}

	threshold := (len(q.buf) * 70) / 100
	if threshold < 1 {
		threshold = 1
	}
	if q.count+1 >= threshold && len(q.buf) < q.maxCap {
		q.grow()
	}

	if q.count == len(q.buf) {
		// At the ceiling: overwrite the oldest item.
		var zero T
		q.buf[q.head] = zero
		q.head = (q.head + 1) % len(q.buf)
		q.count--
		q.evicted++
	}

	tail := (q.head + q.count) % len(q.buf)
	q.buf[tail] = item
	q.count++
	q.pushed++

	select {
	case q.ready <- struct{}{}:
	default:
	}
	return true
}

// Ready is signalled after pushes. One signal may cover many pushes.
func (q *Queue[T]) Ready() <-chan struct{} {
	return q.ready
}

// Drain removes and returns up to max items in FIFO order; max <= 0 means all.
func (q *Queue[T]) Drain(max int) []T {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.count == 0 {
		return nil
	}

	n := q.count
	if max > 0 && max < n {
		n = max
	}

	var zero T
	result := make([]T, n)
	for i := 0; i < n; i++ {
		result[i] = q.buf[q.head]
		q.buf[q.head] = zero // Clear reference for GC
		q.head = (q.head + 1) % len(q.buf)
	}
	q.count -= n
	q.popped += int64(n)

	return result
}

// Close stops accepting pushes. Queued items can still be drained.
func (q *Queue[T]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
}

// Len returns the number of queued items.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.count
}

// Stats returns queue statistics.
func (q *Queue[T]) Stats() QueueStats {
	q.mu.Lock()
	defer q.mu.Unlock()
	return QueueStats{
		Len:      q.count,
		Capacity: len(q.buf),
		Pushed:   q.pushed,
		Popped:   q.popped,
		Evicted:  q.evicted,
		Resizes:  q.resizes,
	}
}

// grow doubles capacity, capped at maxCap. Must be called with lock held.
func (q *Queue[T]) grow() {
	newCap := len(q.buf) * 2
	if newCap > q.maxCap {
		newCap = q.maxCap
	}
	newBuf := make([]T, newCap)

	// Unwrap [head...end) + [0...tail) into the front of newBuf.
	if q.count > 0 {
		n := copy(newBuf, q.buf[q.head:min(q.head+q.count, len(q.buf))])
		if n < q.count {
			copy(newBuf[n:], q.buf[:q.count-n])
		}
	}

	q.buf = newBuf
	q.head = 0
	q.resizes++
}
