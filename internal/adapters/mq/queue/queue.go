// Package queue defines the contract for enqueuing and consuming trial
// specs.
//
// Implementations may use channels or more advanced structures. The
// in-memory bounded queue below is the default.
package queue

import (
	"context"
	"sync"

	"github.com/snielsen221b/evotext/internal/domain/model"
	"github.com/snielsen221b/evotext/pkg/metrics"
)

// Default queue configuration constants.
const (
	defaultQueueCapacity = 10000
)

// Trial represents the payload type flowing through the queue.
type Trial = model.TrialSpec

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a trial to the queue.
	// Returns false if the queue is full and the trial was not enqueued.
	Enqueue(ctx context.Context, t Trial) bool

	// Dequeue returns a channel that receives trials as they become
	// available. The channel is closed when the queue is closed.
	Dequeue(ctx context.Context) <-chan Trial

	// Len returns the current number of queued trials.
	Len(ctx context.Context) int

	// Close gracefully shuts down the queue. After closing, no new
	// trials can be enqueued and the dequeue channel is closed.
	Close() error

	// IsClosed returns true if the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	trials   chan Trial
	capacity int
	mu       sync.RWMutex
	closed   bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity: defaultQueueCapacity,
	}

	for _, opt := range opts {
		opt(q)
	}

	q.trials = make(chan Trial, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	metrics.UpdateQueueUtilization(0.0)

	return q
}

// Enqueue adds a trial to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, t Trial) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "closed")
		return false
	}

	select {
	case q.trials <- t:
		metrics.RecordQueueEnqueue()
		q.updateGauges()
		return true
	case <-ctx.Done():
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "context_cancelled")
		return false
	default:
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "queue_full")
		return false
	}
}

// Dequeue returns a channel that receives trials as they become available.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Trial {
	out := make(chan Trial)
	go func() {
		defer close(out)
		for trial := range q.trials {
			select {
			case out <- trial:
				metrics.RecordQueueDequeue()
				q.updateGauges()
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Len returns the current number of queued trials.
func (q *InMemoryQueue) Len(_ context.Context) int {
	size := len(q.trials)
	q.updateGauges()
	return size
}

// updateGauges refreshes the queue size and utilization metrics.
func (q *InMemoryQueue) updateGauges() {
	size := len(q.trials)
	metrics.UpdateQueueSize(size)
	metrics.UpdateQueueUtilization(float64(size) / float64(q.capacity))
}

// Close gracefully shuts down the queue.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}

	close(q.trials)
	q.closed = true

	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
