package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/notifhub/notification-backend-go/internal/domain/notification"
	"github.com/notifhub/notification-backend-go/internal/handler/http/response"
)

// NotificationHandler defines the notification handler interface
type NotificationHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	MarkRead(w http.ResponseWriter, r *http.Request)
}

type notificationHandlerImpl struct {
	notifService notification.Service
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(notifService notification.Service) NotificationHandler {
	return &notificationHandlerImpl{notifService: notifService}
}

// getIntQueryParam gets an int query parameter with a default value
func getIntQueryParam(r *http.Request, key string, defaultVal int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}
	intVal, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return intVal
}

// Create persists a notification and enqueues it for enrichment. The reply
// carries the freshly created record, still pending with no classification.
func (h *notificationHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req notification.CreateNotificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	result, err := h.notifService.Create(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// List returns a page of the user's notifications in creation order.
func (h *notificationHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	req := notification.ListNotificationsRequest{
		UserID: r.URL.Query().Get("user_id"),
		Skip:   getIntQueryParam(r, "skip", 0),
		Limit:  getIntQueryParam(r, "limit", 10),
	}

	result, err := h.notifService.List(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	if result == nil {
		result = []notification.NotificationResponse{}
	}

	response.Success(w, result)
}

// Get returns one notification by ID.
func (h *notificationHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Notification ID is required")
		return
	}

	result, err := h.notifService.Get(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// MarkRead sets the notification's read_at to the current time.
func (h *notificationHandlerImpl) MarkRead(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Notification ID is required")
		return
	}

	result, err := h.notifService.MarkRead(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
