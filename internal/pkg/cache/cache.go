package cache

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ListTTL is the fixed lifetime of cached list results. List responses are
// documented as reflecting at most TTL-old state; there is no invalidation
// on write.
const ListTTL = 60 * time.Second

// ErrMiss is returned by Get when no live entry exists for the key.
var ErrMiss = errors.New("cache miss")

// Cache is a byte-oriented cache with per-entry TTL.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// ListKey builds the cache key for a user's notification list page.
func ListKey(userID string, skip, limit int) string {
	return fmt.Sprintf("notifications:%s:%d:%d", userID, skip, limit)
}
