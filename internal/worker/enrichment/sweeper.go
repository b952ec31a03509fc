package enrichment

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/notifhub/notification-backend-go/internal/domain/notification"
	"github.com/notifhub/notification-backend-go/internal/pkg/queue"
)

// Sweeper re-enqueues notifications stuck in the processing state, which
// happens when a worker dies between marking a record processing and writing
// the terminal status. Redelivery is safe: the worker path is idempotent.
type Sweeper struct {
	repo     notification.Repository
	enqueuer queue.Enqueuer
	age      time.Duration
	log      *slog.Logger
}

// NewSweeper creates a sweeper that requeues records stuck for longer
// than age.
func NewSweeper(repo notification.Repository, enqueuer queue.Enqueuer, age time.Duration, log *slog.Logger) *Sweeper {
	return &Sweeper{
		repo:     repo,
		enqueuer: enqueuer,
		age:      age,
		log:      log,
	}
}

// Sweep finds stuck records and hands each back to the queue. It keeps going
// past individual enqueue failures; a record it cannot requeue now is picked
// up by a later sweep.
func (s *Sweeper) Sweep(ctx context.Context) error {
	stuck, err := s.repo.ListStuck(ctx, s.age)
	if err != nil {
		return fmt.Errorf("unable to list stuck notifications: %w", err)
	}

	for _, n := range stuck {
		job := queue.Job{NotificationID: n.ID, Text: n.Text}
		if err := s.enqueuer.Enqueue(ctx, job); err != nil {
			s.log.Warn("unable to requeue stuck notification", "notification_id", n.ID, "error", err)
			continue
		}
		s.log.Info("requeued stuck notification", "notification_id", n.ID)
	}

	return nil
}
