package cache

import (
	"context"
	"time"
)

// Store is a byte cache with per-entry TTLs. Implementations must treat an
// expired entry as absent. Callers on hot paths log and swallow Store errors;
// the cache is an optimization, never a source of truth.
type Store interface {
	// Get returns the cached value and whether a live entry exists.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value under key for ttl. A non-positive ttl is invalid.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes the given keys. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error

	// DeletePrefix removes every entry whose key starts with prefix.
	DeletePrefix(ctx context.Context, prefix string) error
}
