package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/notifhub/notification-backend-go/internal/domain/notification"
	"github.com/notifhub/notification-backend-go/internal/pkg/cache"
	"github.com/notifhub/notification-backend-go/internal/pkg/queue"
	"github.com/notifhub/notification-backend-go/internal/pkg/validator"
)

const (
	defaultListLimit = 10
)

type service struct {
	repo     notification.Repository
	cache    cache.Cache
	enqueuer queue.Enqueuer
	log      *slog.Logger
}

// NewNotificationService creates the notification service. The cache client
// and enqueuer are constructed once at process start and injected here; the
// service holds no process-wide state of its own.
func NewNotificationService(repo notification.Repository, c cache.Cache, enqueuer queue.Enqueuer, log *slog.Logger) notification.Service {
	return &service{
		repo:     repo,
		cache:    c,
		enqueuer: enqueuer,
		log:      log,
	}
}

// Create validates and persists a notification, then enqueues it for
// enrichment. An enqueue failure is an error: the record stays persisted in
// the pending state and the caller is told the hand-off did not happen.
func (s *service) Create(ctx context.Context, req notification.CreateNotificationRequest) (*notification.NotificationResponse, error) {
	if err := validateCreate(req); err != nil {
		return nil, err
	}

	n := &notification.Notification{
		UserID:           req.UserID,
		Title:            req.Title,
		Text:             req.Text,
		ProcessingStatus: notification.StatusPending,
	}

	if err := s.repo.Create(ctx, n); err != nil {
		return nil, err
	}

	job := queue.Job{NotificationID: n.ID, Text: n.Text}
	if err := s.enqueuer.Enqueue(ctx, job); err != nil {
		return nil, fmt.Errorf("notification %s persisted but not enqueued: %w", n.ID, err)
	}

	resp := notification.ToResponse(n)
	return &resp, nil
}

// List returns a page of the user's notifications, cache-first. Cached
// entries live for cache.ListTTL, so a page may lag the store by at most the
// TTL. Cache failures other than a miss degrade to the store path.
func (s *service) List(ctx context.Context, req notification.ListNotificationsRequest) ([]notification.NotificationResponse, error) {
	if err := validateList(req); err != nil {
		return nil, err
	}
	if req.Limit <= 0 {
		req.Limit = defaultListLimit
	}
	if req.Skip < 0 {
		req.Skip = 0
	}

	key := cache.ListKey(req.UserID, req.Skip, req.Limit)

	cached, err := s.cache.Get(ctx, key)
	if err == nil {
		var responses []notification.NotificationResponse
		if err := json.Unmarshal(cached, &responses); err == nil {
			return responses, nil
		}
		s.log.Warn("discarding undecodable cache entry", "key", key, "error", err)
	} else if !errors.Is(err, cache.ErrMiss) {
		s.log.Warn("cache read failed, falling back to store", "key", key, "error", err)
	}

	notifications, err := s.repo.ListByUserID(ctx, req.UserID, req.Skip, req.Limit)
	if err != nil {
		return nil, err
	}

	responses := notification.ToResponseList(notifications)

	payload, err := json.Marshal(responses)
	if err == nil {
		if err := s.cache.Set(ctx, key, payload, cache.ListTTL); err != nil {
			s.log.Warn("cache write failed", "key", key, "error", err)
		}
	}

	return responses, nil
}

// Get retrieves one notification by ID.
func (s *service) Get(ctx context.Context, id string) (*notification.NotificationResponse, error) {
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := notification.ToResponse(n)
	return &resp, nil
}

// MarkRead sets read_at to the current time, overwriting any earlier value.
// Marking an already-read notification moves the timestamp forward.
func (s *service) MarkRead(ctx context.Context, id string) (*notification.NotificationResponse, error) {
	n, err := s.repo.MarkRead(ctx, id, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	resp := notification.ToResponse(n)
	return &resp, nil
}

func validateCreate(req notification.CreateNotificationRequest) error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(req.UserID) {
		errs = append(errs, validator.ValidationError{Field: "user_id", Message: "user_id is required"})
	} else if !validator.IsValidUUID(req.UserID) {
		errs = append(errs, validator.ValidationError{Field: "user_id", Message: "user_id must be a valid UUID"})
	}
	if validator.IsEmpty(req.Title) {
		errs = append(errs, validator.ValidationError{Field: "title", Message: "title is required"})
	}
	if validator.IsEmpty(req.Text) {
		errs = append(errs, validator.ValidationError{Field: "text", Message: "text is required"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validateList(req notification.ListNotificationsRequest) error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(req.UserID) {
		errs = append(errs, validator.ValidationError{Field: "user_id", Message: "user_id is required"})
	} else if !validator.IsValidUUID(req.UserID) {
		errs = append(errs, validator.ValidationError{Field: "user_id", Message: "user_id must be a valid UUID"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
