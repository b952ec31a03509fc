package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/notifhub/notification-backend-go/internal/domain/notification"
	"github.com/notifhub/notification-backend-go/internal/pkg/database"
)

const notificationColumns = `id, user_id, title, text, created_at, read_at, category, confidence, processing_status`

type notificationRepository struct {
	db database.Querier
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *database.DB) notification.Repository {
	return &notificationRepository{db: db}
}

// Create assigns an ID and timestamps and persists the notification.
func (r *notificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	if n.ProcessingStatus == "" {
		n.ProcessingStatus = notification.StatusPending
	}

	query := `
		INSERT INTO notifications (id, user_id, title, text, created_at, updated_at, processing_status)
		VALUES ($1, $2, $3, $4, $5, $5, $6)
	`

	_, err := r.db.Exec(ctx, query,
		n.ID,
		n.UserID,
		n.Title,
		n.Text,
		n.CreatedAt,
		string(n.ProcessingStatus),
	)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	return nil
}

// GetByID retrieves a notification by ID
func (r *notificationRepository) GetByID(ctx context.Context, id string) (*notification.Notification, error) {
	query := fmt.Sprintf(`SELECT %s FROM notifications WHERE id = $1`, notificationColumns)

	n, err := scanNotification(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, notification.ErrNotificationNotFound
		}
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}

	return n, nil
}

// ListByUserID retrieves a page of a user's notifications in creation order.
func (r *notificationRepository) ListByUserID(ctx context.Context, userID string, offset, limit int) ([]*notification.Notification, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at, id
		OFFSET $2 LIMIT $3
	`, notificationColumns)

	rows, err := r.db.Query(ctx, query, userID, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*notification.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read notifications: %w", err)
	}

	return notifications, nil
}

// MarkRead sets read_at, overwriting any previous value, and returns the
// updated record.
func (r *notificationRepository) MarkRead(ctx context.Context, id string, readAt time.Time) (*notification.Notification, error) {
	query := fmt.Sprintf(`
		UPDATE notifications
		SET read_at = $2
		WHERE id = $1
		RETURNING %s
	`, notificationColumns)

	n, err := scanNotification(r.db.QueryRow(ctx, query, id, readAt))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, notification.ErrNotificationNotFound
		}
		return nil, fmt.Errorf("failed to mark notification as read: %w", err)
	}

	return n, nil
}

// MarkProcessing transitions the record to processing. The guard admits both
// pending records and records already in processing, so a redelivered work
// item re-enters processing instead of regressing a terminal state.
func (r *notificationRepository) MarkProcessing(ctx context.Context, id string) (bool, error) {
	query := `
		UPDATE notifications
		SET processing_status = 'processing', updated_at = NOW()
		WHERE id = $1 AND processing_status IN ('pending', 'processing')
	`

	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("failed to mark notification as processing: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// Complete writes the classification triple in a single guarded update.
func (r *notificationRepository) Complete(ctx context.Context, id string, category string, confidence float64) (bool, error) {
	query := `
		UPDATE notifications
		SET category = $2, confidence = $3, processing_status = 'completed', updated_at = NOW()
		WHERE id = $1 AND processing_status NOT IN ('completed', 'failed')
	`

	tag, err := r.db.Exec(ctx, query, id, category, confidence)
	if err != nil {
		return false, fmt.Errorf("failed to complete notification: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// Fail marks the record as failed, leaving category and confidence null.
func (r *notificationRepository) Fail(ctx context.Context, id string) (bool, error) {
	query := `
		UPDATE notifications
		SET processing_status = 'failed', updated_at = NOW()
		WHERE id = $1 AND processing_status NOT IN ('completed', 'failed')
	`

	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("failed to fail notification: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// ListStuck returns records in the processing state whose last transition is
// older than the cutoff.
func (r *notificationRepository) ListStuck(ctx context.Context, olderThan time.Duration) ([]*notification.Notification, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM notifications
		WHERE processing_status = 'processing' AND updated_at < $1
		ORDER BY updated_at
	`, notificationColumns)

	cutoff := time.Now().UTC().Add(-olderThan)
	rows, err := r.db.Query(ctx, query, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to query stuck notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*notification.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan stuck notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read stuck notifications: %w", err)
	}

	return notifications, nil
}

func scanNotification(row pgx.Row) (*notification.Notification, error) {
	var n notification.Notification
	var status string

	err := row.Scan(
		&n.ID,
		&n.UserID,
		&n.Title,
		&n.Text,
		&n.CreatedAt,
		&n.ReadAt,
		&n.Category,
		&n.Confidence,
		&status,
	)
	if err != nil {
		return nil, err
	}

	n.ProcessingStatus = notification.ProcessingStatus(status)
	return &n, nil
}
