package notification

import (
	"context"
	"time"
)

// Repository defines the notification repository interface.
//
// Status transitions are guarded at the storage layer: MarkProcessing,
// Complete and Fail only apply when the current status permits the forward
// transition, and report whether a row actually changed. This keeps redelivered
// work items idempotent without row-level locking.
type Repository interface {
	// Create assigns an ID and created_at timestamp and persists the record.
	Create(ctx context.Context, n *Notification) error
	GetByID(ctx context.Context, id string) (*Notification, error)
	// ListByUserID returns the user's notifications in creation order.
	ListByUserID(ctx context.Context, userID string, offset, limit int) ([]*Notification, error)

	// MarkRead sets read_at, overwriting any previous value.
	MarkRead(ctx context.Context, id string, readAt time.Time) (*Notification, error)

	// Worker-owned transitions.
	MarkProcessing(ctx context.Context, id string) (bool, error)
	Complete(ctx context.Context, id string, category string, confidence float64) (bool, error)
	Fail(ctx context.Context, id string) (bool, error)

	// ListStuck returns records that have been in the processing state for
	// longer than olderThan. Input for the requeue sweep.
	ListStuck(ctx context.Context, olderThan time.Duration) ([]*Notification, error)
}
