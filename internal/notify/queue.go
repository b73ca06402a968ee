package notify

import (
	"context"

	"loginguard/internal/domain"
	"loginguard/pkg/platform/sentinel"
)

// Queue is the bounded hand-off FIFO between the bridge and the approval
// workers. It is safe for one producer and any number of consumers.
type Queue struct {
	ch chan domain.ChangeEvent
}

// NewQueue creates a queue holding at most capacity events.
func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = 100
	}
	return &Queue{ch: make(chan domain.ChangeEvent, capacity)}
}

// TryEnqueue adds event without blocking. It returns sentinel.ErrQueueFull
// when no slot is free; the caller decides how to retry.
func (q *Queue) TryEnqueue(event domain.ChangeEvent) error {
	select {
	case q.ch <- event:
		return nil
	default:
		return sentinel.ErrQueueFull
	}
}

// Dequeue blocks until an event is available or ctx is done.
func (q *Queue) Dequeue(ctx context.Context) (domain.ChangeEvent, error) {
	select {
	case <-ctx.Done():
		return domain.ChangeEvent{}, ctx.Err()
	case event := <-q.ch:
		return event, nil
	}
}

func (q *Queue) Len() int { return len(q.ch) }

func (q *Queue) Cap() int { return cap(q.ch) }
