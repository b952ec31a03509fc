package notification

import (
	"context"
)

// Service defines the notification service interface
type Service interface {
	// Create validates and persists a notification, then enqueues it for
	// asynchronous enrichment. The returned record is always pending; the
	// caller never waits on classification.
	Create(ctx context.Context, req CreateNotificationRequest) (*NotificationResponse, error)

	// List returns a page of the user's notifications in creation order,
	// served from cache when a fresh entry exists.
	List(ctx context.Context, req ListNotificationsRequest) ([]NotificationResponse, error)

	Get(ctx context.Context, id string) (*NotificationResponse, error)

	// MarkRead sets read_at to the current time. Repeated calls move the
	// timestamp forward rather than preserving the first value.
	MarkRead(ctx context.Context, id string) (*NotificationResponse, error)
}
