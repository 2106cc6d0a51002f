package blackboard

import (
	"context"
	"time"
)

// Update is emitted by Store implementations when an archived entry changes.
type Update struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

// Store archives blackboard contents outside the owning run, typically for
// consumers in other processes. Implementations must be safe for concurrent
// use.
type Store interface {
	// Put stores a value under key with an optional TTL and returns the
	// entry's new version.
	Put(ctx context.Context, key string, value any, ttl time.Duration) (int64, error)

	// Get retrieves a value and its version. A missing key returns a nil
	// value with version 0 and no error.
	Get(ctx context.Context, key string) (any, int64, error)

	// Watch streams updates for keys matching a pattern until the context
	// is cancelled.
	Watch(ctx context.Context, pattern string) (<-chan Update, error)

	// Delete removes a key.
	Delete(ctx context.Context, key string) error

	// Close releases the store's resources.
	Close() error
}
