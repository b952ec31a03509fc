package classifier

import (
	"context"
	"errors"
	"fmt"
)

// Classifier errors. Wrapped causes stay distinguishable in worker logs.
var (
	ErrTimeout         = errors.New("classification timed out")
	ErrMalformedResult = errors.New("classifier returned a malformed result")
)

// Classification is the result of analyzing notification text.
type Classification struct {
	Category   string
	Confidence float64
	Keywords   []string
}

// Validate checks that a classification is well formed.
func (c Classification) Validate() error {
	if c.Category == "" {
		return fmt.Errorf("%w: empty category", ErrMalformedResult)
	}
	if c.Confidence < 0 || c.Confidence > 1 {
		return fmt.Errorf("%w: confidence %v outside [0,1]", ErrMalformedResult, c.Confidence)
	}
	return nil
}

// Classifier turns arbitrary notification text into a category with a
// confidence score. Implementations model external calls and may take
// seconds; callers bound them with a context deadline.
type Classifier interface {
	Classify(ctx context.Context, text string) (Classification, error)
}
