package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/notifhub/notification-backend-go/internal/domain/notification"
)

type record struct {
	notification.Notification
	seq       int
	updatedAt time.Time
}

// NotificationRepository is an in-memory implementation of the notification
// repository. It backs tests and local development and mirrors the guarded
// transition semantics of the Postgres repository.
type NotificationRepository struct {
	mu      sync.RWMutex
	records map[string]*record
	nextSeq int
}

// NewNotificationRepository creates an empty in-memory repository.
func NewNotificationRepository() *NotificationRepository {
	return &NotificationRepository{records: make(map[string]*record)}
}

// Create assigns an ID and timestamps and stores the notification.
func (r *NotificationRepository) Create(_ context.Context, n *notification.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	if n.ProcessingStatus == "" {
		n.ProcessingStatus = notification.StatusPending
	}

	r.nextSeq++
	r.records[n.ID] = &record{
		Notification: *n,
		seq:          r.nextSeq,
		updatedAt:    n.CreatedAt,
	}
	return nil
}

// GetByID returns a copy of the stored notification.
func (r *NotificationRepository) GetByID(_ context.Context, id string) (*notification.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[id]
	if !ok {
		return nil, notification.ErrNotificationNotFound
	}
	n := rec.Notification
	return &n, nil
}

// ListByUserID returns a page of the user's notifications in creation order.
func (r *NotificationRepository) ListByUserID(_ context.Context, userID string, offset, limit int) ([]*notification.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var owned []*record
	for _, rec := range r.records {
		if rec.UserID == userID {
			owned = append(owned, rec)
		}
	}
	sort.Slice(owned, func(i, j int) bool { return owned[i].seq < owned[j].seq })

	if offset >= len(owned) {
		return nil, nil
	}
	owned = owned[offset:]
	if limit < len(owned) {
		owned = owned[:limit]
	}

	notifications := make([]*notification.Notification, len(owned))
	for i, rec := range owned {
		n := rec.Notification
		notifications[i] = &n
	}
	return notifications, nil
}

// MarkRead sets read_at, overwriting any previous value.
func (r *NotificationRepository) MarkRead(_ context.Context, id string, readAt time.Time) (*notification.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[id]
	if !ok {
		return nil, notification.ErrNotificationNotFound
	}
	rec.ReadAt = &readAt

	n := rec.Notification
	return &n, nil
}

// MarkProcessing transitions the record to processing unless it is terminal.
func (r *NotificationRepository) MarkProcessing(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[id]
	if !ok || rec.ProcessingStatus.Terminal() {
		return false, nil
	}
	rec.ProcessingStatus = notification.StatusProcessing
	rec.updatedAt = time.Now().UTC()
	return true, nil
}

// Complete writes the classification triple unless the record is terminal.
func (r *NotificationRepository) Complete(_ context.Context, id string, category string, confidence float64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[id]
	if !ok || rec.ProcessingStatus.Terminal() {
		return false, nil
	}
	rec.Category = &category
	rec.Confidence = &confidence
	rec.ProcessingStatus = notification.StatusCompleted
	rec.updatedAt = time.Now().UTC()
	return true, nil
}

// Fail marks the record as failed unless it is terminal.
func (r *NotificationRepository) Fail(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[id]
	if !ok || rec.ProcessingStatus.Terminal() {
		return false, nil
	}
	rec.ProcessingStatus = notification.StatusFailed
	rec.updatedAt = time.Now().UTC()
	return true, nil
}

// ListStuck returns records stuck in processing beyond the cutoff.
func (r *NotificationRepository) ListStuck(_ context.Context, olderThan time.Duration) ([]*notification.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cutoff := time.Now().UTC().Add(-olderThan)
	var stuck []*record
	for _, rec := range r.records {
		if rec.ProcessingStatus == notification.StatusProcessing && rec.updatedAt.Before(cutoff) {
			stuck = append(stuck, rec)
		}
	}
	sort.Slice(stuck, func(i, j int) bool { return stuck[i].updatedAt.Before(stuck[j].updatedAt) })

	notifications := make([]*notification.Notification, len(stuck))
	for i, rec := range stuck {
		n := rec.Notification
		notifications[i] = &n
	}
	return notifications, nil
}

// SetUpdatedAt backdates a record's bookkeeping timestamp. Test hook.
func (r *NotificationRepository) SetUpdatedAt(id string, t time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rec, ok := r.records[id]; ok {
		rec.updatedAt = t
	}
}
