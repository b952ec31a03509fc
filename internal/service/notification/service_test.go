package notification

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notifhub/notification-backend-go/internal/domain/notification"
	"github.com/notifhub/notification-backend-go/internal/pkg/cache"
	"github.com/notifhub/notification-backend-go/internal/pkg/queue"
	"github.com/notifhub/notification-backend-go/internal/pkg/validator"
	"github.com/notifhub/notification-backend-go/internal/repository/memory"
)

const testUserID = "3f1c6a3e-5bfa-4d3b-9c0a-2f6e8d9a1b2c"

type failingEnqueuer struct{}

func (failingEnqueuer) Enqueue(_ context.Context, _ queue.Job) error {
	return errors.New("broker unavailable")
}

type serviceFixture struct {
	repo    *memory.NotificationRepository
	cache   *cache.Memory
	queue   *queue.Memory
	service notification.Service
}

func newServiceFixture() *serviceFixture {
	repo := memory.NewNotificationRepository()
	c := cache.NewMemory()
	q := queue.NewMemory(100)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	return &serviceFixture{
		repo:    repo,
		cache:   c,
		queue:   q,
		service: NewNotificationService(repo, c, q, log),
	}
}

func TestService_Create_Success(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newServiceFixture()

	created, err := f.service.Create(ctx, notification.CreateNotificationRequest{
		UserID: testUserID,
		Title:  "deploy finished",
		Text:   "the rollout completed",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, testUserID, created.UserID)
	assert.Equal(t, notification.StatusPending, created.ProcessingStatus)
	assert.Nil(t, created.Category)
	assert.Nil(t, created.Confidence)
	assert.Nil(t, created.ReadAt)
	assert.False(t, created.CreatedAt.IsZero())

	// The work item was handed to the queue.
	assert.Equal(t, 1, f.queue.Len())
}

func TestService_Create_Validation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newServiceFixture()

	cases := []struct {
		name  string
		req   notification.CreateNotificationRequest
		field string
	}{
		{"missing user_id", notification.CreateNotificationRequest{Title: "t", Text: "x"}, "user_id"},
		{"malformed user_id", notification.CreateNotificationRequest{UserID: "nope", Title: "t", Text: "x"}, "user_id"},
		{"missing title", notification.CreateNotificationRequest{UserID: testUserID, Text: "x"}, "title"},
		{"missing text", notification.CreateNotificationRequest{UserID: testUserID, Title: "t"}, "text"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := f.service.Create(ctx, c.req)
			require.Error(t, err)

			var errs validator.ValidationErrors
			require.ErrorAs(t, err, &errs)
			assert.Contains(t, errs.ToMap(), c.field)
		})
	}

	// Nothing was persisted or enqueued.
	assert.Zero(t, f.queue.Len())
}

func TestService_Create_EnqueueFailure(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := memory.NewNotificationRepository()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewNotificationService(repo, cache.NewMemory(), failingEnqueuer{}, log)

	_, err := svc.Create(ctx, notification.CreateNotificationRequest{
		UserID: testUserID,
		Title:  "t",
		Text:   "x",
	})
	require.Error(t, err)

	// The record stays persisted in the pending state.
	records, listErr := repo.ListByUserID(ctx, testUserID, 0, 10)
	require.NoError(t, listErr)
	require.Len(t, records, 1)
	assert.Equal(t, notification.StatusPending, records[0].ProcessingStatus)
}

func TestService_Get(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newServiceFixture()

	created, err := f.service.Create(ctx, notification.CreateNotificationRequest{
		UserID: testUserID,
		Title:  "title",
		Text:   "text",
	})
	require.NoError(t, err)

	got, err := f.service.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, created.UserID, got.UserID)
	assert.Equal(t, "title", got.Title)
	assert.Equal(t, "text", got.Text)
}

func TestService_Get_NotFound(t *testing.T) {
	t.Parallel()
	f := newServiceFixture()

	_, err := f.service.Get(context.Background(), "1d8a4b9e-0000-4000-8000-000000000000")
	assert.ErrorIs(t, err, notification.ErrNotificationNotFound)
}

func TestService_MarkRead_NotFound(t *testing.T) {
	t.Parallel()
	f := newServiceFixture()

	_, err := f.service.MarkRead(context.Background(), "1d8a4b9e-0000-4000-8000-000000000000")
	assert.ErrorIs(t, err, notification.ErrNotificationNotFound)
}

func TestService_MarkRead_AlwaysOverwrites(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newServiceFixture()

	created, err := f.service.Create(ctx, notification.CreateNotificationRequest{
		UserID: testUserID,
		Title:  "t",
		Text:   "x",
	})
	require.NoError(t, err)

	first, err := f.service.MarkRead(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, first.ReadAt)

	time.Sleep(10 * time.Millisecond)

	second, err := f.service.MarkRead(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, second.ReadAt)

	assert.True(t, second.ReadAt.After(*first.ReadAt), "repeated mark_read should move read_at forward")
}

func TestService_List_CreationOrder(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newServiceFixture()

	titles := []string{"first", "second", "third"}
	for _, title := range titles {
		_, err := f.service.Create(ctx, notification.CreateNotificationRequest{
			UserID: testUserID,
			Title:  title,
			Text:   "body",
		})
		require.NoError(t, err)
	}

	got, err := f.service.List(ctx, notification.ListNotificationsRequest{UserID: testUserID, Skip: 0, Limit: 10})
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i, title := range titles {
		assert.Equal(t, title, got[i].Title)
	}
}

func TestService_List_Validation(t *testing.T) {
	t.Parallel()
	f := newServiceFixture()

	_, err := f.service.List(context.Background(), notification.ListNotificationsRequest{UserID: "not-a-uuid"})
	var errs validator.ValidationErrors
	assert.ErrorAs(t, err, &errs)
}

func TestService_List_CacheStalenessBound(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newServiceFixture()

	now := time.Now()
	f.cache.SetClock(func() time.Time { return now })

	_, err := f.service.Create(ctx, notification.CreateNotificationRequest{
		UserID: testUserID, Title: "first", Text: "x",
	})
	require.NoError(t, err)

	req := notification.ListNotificationsRequest{UserID: testUserID, Skip: 0, Limit: 10}

	// Populate the cache.
	got, err := f.service.List(ctx, req)
	require.NoError(t, err)
	require.Len(t, got, 1)

	// A record created after the cache fill may be absent until the TTL expires.
	_, err = f.service.Create(ctx, notification.CreateNotificationRequest{
		UserID: testUserID, Title: "second", Text: "x",
	})
	require.NoError(t, err)

	got, err = f.service.List(ctx, req)
	require.NoError(t, err)
	assert.Len(t, got, 1, "cached page may lag the store inside the TTL")

	// After the TTL the new record must appear.
	f.cache.SetClock(func() time.Time { return now.Add(cache.ListTTL + time.Second) })

	got, err = f.service.List(ctx, req)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestService_List_CacheHitMatchesMissShape(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newServiceFixture()

	_, err := f.service.Create(ctx, notification.CreateNotificationRequest{
		UserID: testUserID, Title: "t", Text: "x",
	})
	require.NoError(t, err)

	req := notification.ListNotificationsRequest{UserID: testUserID, Skip: 0, Limit: 10}

	miss, err := f.service.List(ctx, req)
	require.NoError(t, err)

	hit, err := f.service.List(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, miss, hit, "clients cannot distinguish a cache hit from a miss")
}

func TestService_List_Defaults(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newServiceFixture()

	for i := 0; i < 12; i++ {
		_, err := f.service.Create(ctx, notification.CreateNotificationRequest{
			UserID: testUserID, Title: "t", Text: "x",
		})
		require.NoError(t, err)
	}

	// Zero limit falls back to the default page size of 10.
	got, err := f.service.List(ctx, notification.ListNotificationsRequest{UserID: testUserID})
	require.NoError(t, err)
	assert.Len(t, got, 10)
}
