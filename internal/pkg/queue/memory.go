package queue

import (
	"context"
)

// Memory is an in-process queue used by tests and local development. It
// mirrors the broker contract: buffered hand-off, at-least-once delivery with
// one redelivery of recoverable failures.
type Memory struct {
	jobs chan Job
}

// NewMemory creates an in-memory queue with the given buffer size.
func NewMemory(size int) *Memory {
	if size <= 0 {
		size = 100
	}
	return &Memory{jobs: make(chan Job, size)}
}

// Enqueue hands the job to the buffer, or fails when the buffer is full or
// the context is done.
func (m *Memory) Enqueue(ctx context.Context, job Job) error {
	select {
	case m.jobs <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return NewRecoverableError("the work queue is full")
	}
}

// Consume dispatches buffered jobs to the handler until the context is
// canceled. A recoverable handler error requeues the job once.
func (m *Memory) Consume(ctx context.Context, handler Handler) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case job := <-m.jobs:
			if err := handler(ctx, job); IsRecoverable(err) {
				select {
				case m.jobs <- job:
				default:
				}
			}
		}
	}
}

// Len reports the number of buffered jobs. Test hook.
func (m *Memory) Len() int {
	return len(m.jobs)
}
