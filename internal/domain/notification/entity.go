package notification

import (
	"time"
)

// ProcessingStatus represents the enrichment state of a notification
type ProcessingStatus string

const (
	StatusPending    ProcessingStatus = "pending"
	StatusProcessing ProcessingStatus = "processing"
	StatusCompleted  ProcessingStatus = "completed"
	StatusFailed     ProcessingStatus = "failed"
)

// Terminal reports whether the status is a final state.
func (s ProcessingStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// CanTransitionTo reports whether moving from s to next is a valid forward
// transition. The only valid chain is pending -> processing -> completed|failed.
func (s ProcessingStatus) CanTransitionTo(next ProcessingStatus) bool {
	switch s {
	case StatusPending:
		return next == StatusProcessing
	case StatusProcessing:
		return next == StatusCompleted || next == StatusFailed
	default:
		return false
	}
}

// Notification represents a notification entity.
//
// Ownership of the mutable fields is split between two writers: the service
// owns ReadAt, the enrichment worker owns Category, Confidence and
// ProcessingStatus. Repositories update these field groups independently so
// the two writers never clobber each other.
type Notification struct {
	ID               string
	UserID           string
	Title            string
	Text             string
	CreatedAt        time.Time
	ReadAt           *time.Time
	Category         *string
	Confidence       *float64
	ProcessingStatus ProcessingStatus
}
