// Package queue provides a bounded in-memory queue used to hand work between
// goroutines: input commands to the tick loop and log files to the analyzer
// workers.
package queue

import (
	"context"
	"sync"

	"github.com/okian/persona/pkg/metrics"
)

// Default queue configuration constants.
const (
	defaultQueueCapacity = 1024
)

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue[T any] interface {
	// Enqueue adds an item to the queue.
	// Returns false if the queue is full or closed and the item was dropped.
	Enqueue(ctx context.Context, item T) bool

	// Dequeue returns a channel that will receive items as they become available.
	// The channel will be closed when the queue is closed and drained.
	Dequeue(ctx context.Context) <-chan T

	// TryDequeue returns the next item without blocking.
	TryDequeue() (T, bool)

	// Len returns the current number of queued items.
	Len() int

	// Close stops accepting items. Items already queued can still be drained.
	Close() error
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue[T any] struct {
	items chan T
	name  string

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue[T any](opts ...Option) *InMemoryQueue[T] {
	s := settings{capacity: defaultQueueCapacity, name: "default"}
	for _, opt := range opts {
		opt(&s)
	}

	q := &InMemoryQueue[T]{
		items: make(chan T, s.capacity),
		name:  s.name,
	}
	metrics.UpdateQueueSize(q.name, 0)
	return q
}

// Enqueue adds an item to the queue.
func (q *InMemoryQueue[T]) Enqueue(ctx context.Context, item T) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueDropped(q.name)
		return false
	}

	select {
	case q.items <- item:
		metrics.RecordQueueEnqueue(q.name)
		metrics.UpdateQueueSize(q.name, len(q.items))
		return true
	case <-ctx.Done():
		metrics.RecordQueueDropped(q.name)
		return false
	default:
		metrics.RecordQueueDropped(q.name)
		return false // queue is full
	}
}

// Dequeue returns a channel that will receive items as they become available.
func (q *InMemoryQueue[T]) Dequeue(ctx context.Context) <-chan T {
	out := make(chan T)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case item, ok := <-q.items:
				if !ok {
					return
				}
				select {
				case out <- item:
					metrics.RecordQueueDequeue(q.name)
					metrics.UpdateQueueSize(q.name, len(q.items))
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

// TryDequeue returns the next item without blocking.
func (q *InMemoryQueue[T]) TryDequeue() (T, bool) {
	select {
	case item, ok := <-q.items:
		if ok {
			metrics.RecordQueueDequeue(q.name)
			metrics.UpdateQueueSize(q.name, len(q.items))
		}
		return item, ok
	default:
		var zero T
		return zero, false
	}
}

// Len returns the current number of queued items.
func (q *InMemoryQueue[T]) Len() int {
	return len(q.items)
}

// Close gracefully shuts down the queue.
func (q *InMemoryQueue[T]) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil // already closed
	}
	close(q.items)
	q.closed = true
	return nil
}
