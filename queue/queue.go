/*
Package queue provides the bounded blocking queue which links pipeline
stages together. It is the only synchronization primitive used between
stages: a producer blocked on Append is throttled by its consumer, a
consumer blocked on Extract idles until upstream produces.

The queue is a circular buffer with capacity+1 physical slots. One slot
is kept empty so the full and empty states can be told apart by index
comparison alone: front == rear means empty.
*/
package queue

import "sync"

// Queue is a bounded FIFO with blocking append and extract. The zero
// value is not usable, use New.
type Queue[T any] struct {
	mu       sync.Mutex
	notFull  sync.Cond
	notEmpty sync.Cond

	data  []T
	front int
	rear  int
}

// New returns a queue which holds up to capacity items. Capacity 1 is
// legal and meaningful: it forces a fully synchronous handoff between
// the producer and the consumer.
func New[T any](capacity int) *Queue[T] {
	if capacity < 1 {
		panic("queue: capacity must be positive")
	}
	q := &Queue[T]{
		// one spare slot for the full/empty distinction
		data: make([]T, capacity+1),
	}
	q.notFull.L = &q.mu
	q.notEmpty.L = &q.mu
	return q
}

// Append adds v at the rear of the queue. It blocks while the queue is
// full and transfers ownership of v to the queue. Items are never
// dropped.
func (q *Queue[T]) Append(v T) {
	q.mu.Lock()
	for q.next(q.rear) == q.front {
		q.notFull.Wait()
	}
	q.data[q.rear] = v
	q.rear = q.next(q.rear)
	q.notEmpty.Signal()
	q.mu.Unlock()
}

// Extract removes and returns the front item. It blocks while the
// queue is empty. Ownership of the item transfers to the caller.
func (q *Queue[T]) Extract() T {
	q.mu.Lock()
	for q.front == q.rear {
		q.notEmpty.Wait()
	}
	v := q.data[q.front]
	var zero T
	q.data[q.front] = zero // drop the reference held by the slot
	q.front = q.next(q.front)
	q.notFull.Signal()
	q.mu.Unlock()
	return v
}

// Len returns the number of items currently queued.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.rear >= q.front {
		return q.rear - q.front
	}
	return q.rear + len(q.data) - q.front
}

// Cap returns the queue capacity.
func (q *Queue[T]) Cap() int {
	return len(q.data) - 1
}

func (q *Queue[T]) next(i int) int {
	return (i + 1) % len(q.data)
}
