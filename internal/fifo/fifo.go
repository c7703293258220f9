// Package fifo provides the unsynchronized first-in-first-out container the
// thread pool keeps its pending tasks in.
//
// A Queue is NOT safe for concurrent use. Callers serialize every access.
package fifo

import (
	"github.com/eapache/queue"
)

// Queue is a typed FIFO backed by a growable ring buffer.
type Queue[T any] struct {
	ring *queue.Queue
}

// New returns an empty queue.
func New[T any]() *Queue[T] {
	return &Queue[T]{ring: queue.New()}
}

// Enqueue appends v at the back of the queue.
// It panics if the queue has been destroyed.
func (q *Queue[T]) Enqueue(v T) {
	if q.ring == nil {
		panic("fifo: enqueue on destroyed queue")
	}
	q.ring.Add(v)
}

// Dequeue removes and returns the front element.
// ok is false when the queue is empty.
func (q *Queue[T]) Dequeue() (v T, ok bool) {
	if q.IsEmpty() {
		return v, false
	}
	return q.ring.Remove().(T), true
}

// IsEmpty reports whether the queue holds no elements.
func (q *Queue[T]) IsEmpty() bool {
	return q.Len() == 0
}

// Len returns the number of queued elements.
func (q *Queue[T]) Len() int {
	if q.ring == nil {
		return 0
	}
	return q.ring.Length()
}

// Destroy releases the queue and returns the elements that were still
// queued, front first. The queue must not be enqueued to afterwards.
func (q *Queue[T]) Destroy() []T {
	if q.ring == nil {
		return nil
	}
	rest := make([]T, 0, q.ring.Length())
	for q.ring.Length() > 0 {
		rest = append(rest, q.ring.Remove().(T))
	}
	q.ring = nil
	return rest
}
