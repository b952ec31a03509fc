package notification

import (
	"time"
)

// ============= Request DTOs =============

// CreateNotificationRequest represents a request to create a notification
type CreateNotificationRequest struct {
	UserID string `json:"user_id"`
	Title  string `json:"title"`
	Text   string `json:"text"`
}

// ListNotificationsRequest represents a request to list notifications
type ListNotificationsRequest struct {
	UserID string
	Skip   int
	Limit  int
}

// ============= Response DTOs =============

// NotificationResponse represents a notification in API responses.
// Nullable fields are pointers and serialize as JSON null until set.
type NotificationResponse struct {
	ID               string           `json:"id"`
	UserID           string           `json:"user_id"`
	Title            string           `json:"title"`
	Text             string           `json:"text"`
	CreatedAt        time.Time        `json:"created_at"`
	ReadAt           *time.Time       `json:"read_at"`
	Category         *string          `json:"category"`
	Confidence       *float64         `json:"confidence"`
	ProcessingStatus ProcessingStatus `json:"processing_status"`
}

// ToResponse converts a Notification entity to its API projection.
func ToResponse(n *Notification) NotificationResponse {
	return NotificationResponse{
		ID:               n.ID,
		UserID:           n.UserID,
		Title:            n.Title,
		Text:             n.Text,
		CreatedAt:        n.CreatedAt,
		ReadAt:           n.ReadAt,
		Category:         n.Category,
		Confidence:       n.Confidence,
		ProcessingStatus: n.ProcessingStatus,
	}
}

// ToResponseList converts a slice of entities to API projections.
func ToResponseList(notifications []*Notification) []NotificationResponse {
	responses := make([]NotificationResponse, len(notifications))
	for i, n := range notifications {
		responses[i] = ToResponse(n)
	}
	return responses
}
