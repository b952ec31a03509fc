package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notifhub/notification-backend-go/internal/domain/notification"
	"github.com/notifhub/notification-backend-go/internal/pkg/cache"
	"github.com/notifhub/notification-backend-go/internal/pkg/queue"
	"github.com/notifhub/notification-backend-go/internal/repository/memory"
	notificationService "github.com/notifhub/notification-backend-go/internal/service/notification"
)

const testUserID = "3f1c6a3e-5bfa-4d3b-9c0a-2f6e8d9a1b2c"

func newTestRouter() http.Handler {
	repo := memory.NewNotificationRepository()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := notificationService.NewNotificationService(repo, cache.NewMemory(), queue.NewMemory(100), log)
	return NewRouter(NewNotificationHandler(svc), "test")
}

func createTestNotification(t *testing.T, router http.Handler, title, text string) notification.NotificationResponse {
	t.Helper()

	body, err := json.Marshal(notification.CreateNotificationRequest{
		UserID: testUserID,
		Title:  title,
		Text:   text,
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/notifications", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var created notification.NotificationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	return created
}

func TestNotificationHandler_Create_Success(t *testing.T) {
	t.Parallel()
	router := newTestRouter()

	created := createTestNotification(t, router, "deploy finished", "rollout completed")

	assert.NotEmpty(t, created.ID)
	assert.Equal(t, testUserID, created.UserID)
	assert.Equal(t, "deploy finished", created.Title)
	assert.Equal(t, notification.StatusPending, created.ProcessingStatus)
	assert.Nil(t, created.Category)
	assert.Nil(t, created.Confidence)
	assert.Nil(t, created.ReadAt)
}

func TestNotificationHandler_Create_NullableFieldsSerializeAsNull(t *testing.T) {
	t.Parallel()
	router := newTestRouter()

	body, err := json.Marshal(notification.CreateNotificationRequest{
		UserID: testUserID, Title: "t", Text: "x",
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/notifications", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))

	for _, field := range []string{"read_at", "category", "confidence"} {
		require.Contains(t, raw, field)
		assert.Equal(t, "null", string(raw[field]), "field %s should serialize as null", field)
	}
	assert.Equal(t, `"pending"`, string(raw["processing_status"]))
}

func TestNotificationHandler_Create_ValidationError(t *testing.T) {
	t.Parallel()
	router := newTestRouter()

	cases := []struct {
		name string
		body string
	}{
		{"missing user_id", `{"title":"t","text":"x"}`},
		{"malformed user_id", `{"user_id":"nope","title":"t","text":"x"}`},
		{"missing title", fmt.Sprintf(`{"user_id":%q,"text":"x"}`, testUserID)},
		{"missing text", fmt.Sprintf(`{"user_id":%q,"title":"t"}`, testUserID)},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/notifications", bytes.NewReader([]byte(c.body)))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		})
	}
}

func TestNotificationHandler_Create_InvalidBody(t *testing.T) {
	t.Parallel()
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodPost, "/notifications", bytes.NewReader([]byte("not json")))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNotificationHandler_Get_Success(t *testing.T) {
	t.Parallel()
	router := newTestRouter()

	created := createTestNotification(t, router, "title", "text")

	req := httptest.NewRequest(http.MethodGet, "/notifications/"+created.ID, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var got notification.NotificationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, created.UserID, got.UserID)
	assert.Equal(t, created.Title, got.Title)
	assert.Equal(t, created.Text, got.Text)
}

func TestNotificationHandler_Get_NotFound(t *testing.T) {
	t.Parallel()
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/notifications/1d8a4b9e-0000-4000-8000-000000000000", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNotificationHandler_MarkRead_Success(t *testing.T) {
	t.Parallel()
	router := newTestRouter()

	created := createTestNotification(t, router, "title", "text")

	req := httptest.NewRequest(http.MethodPost, "/notifications/"+created.ID+"/mark_read", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var got notification.NotificationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.NotNil(t, got.ReadAt)
}

func TestNotificationHandler_MarkRead_NotFound(t *testing.T) {
	t.Parallel()
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodPost, "/notifications/1d8a4b9e-0000-4000-8000-000000000000/mark_read", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNotificationHandler_List_CreationOrder(t *testing.T) {
	t.Parallel()
	router := newTestRouter()

	titles := []string{"first", "second", "third"}
	for _, title := range titles {
		createTestNotification(t, router, title, "body")
	}

	req := httptest.NewRequest(http.MethodGet, "/notifications?user_id="+testUserID+"&skip=0&limit=10", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var got []notification.NotificationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 3)
	for i, title := range titles {
		assert.Equal(t, title, got[i].Title)
	}
}

func TestNotificationHandler_List_MissingUserID(t *testing.T) {
	t.Parallel()
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/notifications", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestNotificationHandler_List_EmptyResult(t *testing.T) {
	t.Parallel()
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/notifications?user_id="+testUserID, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}
