package classifier

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// Classification categories produced by the mock model.
const (
	CategoryCritical = "critical"
	CategoryWarning  = "warning"
	CategoryInfo     = "info"
)

// Mock is a keyword-based stand-in for a real text classification model.
// It sleeps for a random interval to simulate model latency, then picks a
// category from trigger words in the text and draws a confidence score from
// a per-category range.
type Mock struct {
	// MinLatency and MaxLatency bound the simulated model latency.
	// Both zero means no sleep.
	MinLatency time.Duration
	MaxLatency time.Duration

	rng *rand.Rand
}

// NewMock returns a mock classifier with the default 1-3s simulated latency.
func NewMock() *Mock {
	return &Mock{
		MinLatency: 1 * time.Second,
		MaxLatency: 3 * time.Second,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Classify analyzes the text and returns a category with a confidence score.
// It honors context cancellation during the simulated latency and returns
// ErrTimeout when the deadline expires first.
func (m *Mock) Classify(ctx context.Context, text string) (Classification, error) {
	if err := m.sleep(ctx); err != nil {
		return Classification{}, err
	}

	lowered := strings.ToLower(text)
	var category string
	var confidence float64

	switch {
	case containsAny(lowered, "error", "exception", "failed"):
		category = CategoryCritical
		confidence = m.uniform(0.7, 0.95)
	case containsAny(lowered, "warning", "attention", "careful"):
		category = CategoryWarning
		confidence = m.uniform(0.6, 0.9)
	default:
		category = CategoryInfo
		confidence = m.uniform(0.8, 0.99)
	}

	return Classification{
		Category:   category,
		Confidence: confidence,
		Keywords:   m.sampleKeywords(text, 3),
	}, nil
}

func (m *Mock) sleep(ctx context.Context) error {
	if m.MaxLatency <= 0 {
		return ctx.Err()
	}
	latency := m.MinLatency
	if m.MaxLatency > m.MinLatency {
		latency += time.Duration(m.rand().Int63n(int64(m.MaxLatency - m.MinLatency)))
	}

	timer := time.NewTimer(latency)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		if ctx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("%w: %v", ErrTimeout, ctx.Err())
		}
		return ctx.Err()
	}
}

func (m *Mock) uniform(lo, hi float64) float64 {
	return lo + m.rand().Float64()*(hi-lo)
}

// sampleKeywords picks up to n random words from the text. The original model
// reports these for diagnostics; they are logged but never persisted.
func (m *Mock) sampleKeywords(text string, n int) []string {
	words := strings.Fields(text)
	if len(words) <= n {
		return words
	}
	picked := m.rand().Perm(len(words))[:n]
	keywords := make([]string, n)
	for i, idx := range picked {
		keywords[i] = words[idx]
	}
	return keywords
}

func (m *Mock) rand() *rand.Rand {
	if m.rng == nil {
		m.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return m.rng
}

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
