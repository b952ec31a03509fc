package enrichment

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/notifhub/notification-backend-go/internal/domain/notification"
	"github.com/notifhub/notification-backend-go/internal/pkg/classifier"
	"github.com/notifhub/notification-backend-go/internal/pkg/queue"
)

const defaultClassifyTimeout = 30 * time.Second

// Worker consumes enrichment jobs and drives each notification through the
// processing state machine: pending -> processing -> completed|failed.
//
// Handling is idempotent. Delivery is at-least-once, so the same job may
// arrive twice; a record already in a terminal state is discarded, and the
// storage layer guards every transition so concurrent deliveries cannot
// regress a status.
type Worker struct {
	repo            notification.Repository
	classifier      classifier.Classifier
	classifyTimeout time.Duration
	log             *slog.Logger
}

// NewWorker creates an enrichment worker. A non-positive classifyTimeout
// falls back to the default.
func NewWorker(repo notification.Repository, c classifier.Classifier, classifyTimeout time.Duration, log *slog.Logger) *Worker {
	if classifyTimeout <= 0 {
		classifyTimeout = defaultClassifyTimeout
	}
	return &Worker{
		repo:            repo,
		classifier:      c,
		classifyTimeout: classifyTimeout,
		log:             log,
	}
}

// Handle processes one delivered job.
//
// A missing record is discarded silently; the ID may be stale. Storage
// failures before any state was written are recoverable and requeued.
// Classifier failures of any kind are terminal for the delivery: the record
// is marked failed and the classification fields stay null.
func (w *Worker) Handle(ctx context.Context, job queue.Job) error {
	n, err := w.repo.GetByID(ctx, job.NotificationID)
	if err != nil {
		if errors.Is(err, notification.ErrNotificationNotFound) {
			w.log.Debug("discarding work item for unknown notification", "notification_id", job.NotificationID)
			return nil
		}
		return queue.NewRecoverableError("unable to load notification %s: %s", job.NotificationID, err)
	}

	if n.ProcessingStatus.Terminal() {
		w.log.Debug("discarding work item for already-processed notification",
			"notification_id", n.ID, "status", n.ProcessingStatus)
		return nil
	}

	advanced, err := w.repo.MarkProcessing(ctx, n.ID)
	if err != nil {
		return queue.NewRecoverableError("unable to mark notification %s as processing: %s", n.ID, err)
	}
	if !advanced {
		// Lost the race to a concurrent delivery that already finished.
		return nil
	}

	result, err := w.classify(ctx, job.Text)
	if err != nil {
		w.log.Warn("classification failed", "notification_id", n.ID, "error", err)
		if _, err := w.repo.Fail(ctx, n.ID); err != nil {
			return queue.NewRecoverableError("unable to mark notification %s as failed: %s", n.ID, err)
		}
		return nil
	}

	w.log.Info("notification classified",
		"notification_id", n.ID,
		"category", result.Category,
		"confidence", result.Confidence,
		"keywords", result.Keywords,
	)

	if _, err := w.repo.Complete(ctx, n.ID, result.Category, result.Confidence); err != nil {
		return queue.NewRecoverableError("unable to record classification for notification %s: %s", n.ID, err)
	}

	return nil
}

func (w *Worker) classify(ctx context.Context, text string) (classifier.Classification, error) {
	ctx, cancel := context.WithTimeout(ctx, w.classifyTimeout)
	defer cancel()

	result, err := w.classifier.Classify(ctx, text)
	if err != nil {
		return classifier.Classification{}, err
	}
	if err := result.Validate(); err != nil {
		return classifier.Classification{}, err
	}
	return result, nil
}
