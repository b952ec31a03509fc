package queue

import (
	"errors"
	"fmt"
)

// RecoverableError marks a handler failure that is worth redelivering,
// typically a transient storage outage. The consumer nacks the delivery with
// requeue so the broker hands it out again.
type RecoverableError struct {
	message string
}

// Error returns the error message for a RecoverableError.
func (e RecoverableError) Error() string {
	return e.message
}

// NewRecoverableError returns a new error that is marked as being recoverable.
func NewRecoverableError(formatString string, a ...interface{}) RecoverableError {
	return RecoverableError{message: fmt.Sprintf(formatString, a...)}
}

// IsRecoverable reports whether err requests redelivery.
func IsRecoverable(err error) bool {
	var recoverable RecoverableError
	return errors.As(err, &recoverable)
}
