package queue

import (
	"context"
)

// Job is the unit of work delivered to the enrichment worker.
type Job struct {
	NotificationID string `json:"notification_id"`
	Text           string `json:"text"`
}

// Handler processes one delivered job. Returning a RecoverableError requests
// redelivery; any other error (or nil) acknowledges and drops the delivery.
type Handler func(ctx context.Context, job Job) error

// Enqueuer hands work items to the broker. Enqueue returns once the broker
// has accepted the job or with an error; an enqueue failure is surfaced to
// the caller, never silently dropped.
type Enqueuer interface {
	Enqueue(ctx context.Context, job Job) error
}

// Consumer pulls jobs from the broker and dispatches them to a handler.
// Delivery is at-least-once: a job may be delivered more than once and
// handlers must be idempotent.
type Consumer interface {
	Consume(ctx context.Context, handler Handler) error
}
