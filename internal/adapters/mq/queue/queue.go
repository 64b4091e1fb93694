// Package queue holds outbound data service calls until a worker sends them.
//
// Enqueue never blocks: the grid bridge fires a call and moves on, and a full
// or closed queue is reported back immediately.
package queue

import (
	"context"
	"sync"
	"time"

	"github.com/okian/medalgrid/pkg/metrics"
)

const defaultQueueCapacity = 1024

// Call is one pending POST to the backend. Reply receives the response body
// on a 2xx status and is never invoked otherwise.
type Call struct {
	ID       string
	Endpoint string
	Body     []byte
	Reply    func(body []byte)
	Enqueued time.Time
}

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a call or returns ErrFull or ErrClosed.
	Enqueue(ctx context.Context, c Call) error

	// Dequeue returns a channel that yields calls until the queue is closed
	// and drained.
	Dequeue(ctx context.Context) <-chan Call

	// Len returns the number of pending calls.
	Len() int

	// Close stops accepting calls. Pending calls can still be dequeued.
	Close() error
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	calls    chan Call
	capacity int

	mu     sync.RWMutex
	closed bool
}

var _ Queue = (*InMemoryQueue)(nil)

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultQueueCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.calls = make(chan Call, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0, q.capacity)
	return q
}

// Enqueue adds a call to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, c Call) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueRejected("closed")
		return ErrClosed
	}
	if c.Enqueued.IsZero() {
		c.Enqueued = time.Now()
	}

	select {
	case <-ctx.Done():
		metrics.RecordQueueRejected("context_cancelled")
		return ctx.Err()
	default:
	}

	select {
	case q.calls <- c:
		metrics.RecordQueueEnqueue()
		metrics.UpdateQueueSize(len(q.calls), q.capacity)
		return nil
	default:
		metrics.RecordQueueRejected("queue_full")
		return ErrFull
	}
}

// Dequeue returns a channel that will receive calls as they become available.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Call {
	out := make(chan Call)
	go func() {
		defer close(out)
		for c := range q.calls {
			select {
			case out <- c:
				metrics.RecordQueueDequeue()
				metrics.UpdateQueueSize(len(q.calls), q.capacity)
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Len returns the current number of queued calls.
func (q *InMemoryQueue) Len() int {
	return len(q.calls)
}

// Close gracefully shuts down the queue.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.calls)
	q.closed = true
	return nil
}

// IsClosed reports whether Close has been called.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
