package database

import (
	"context"
	"time"
)

// KeyValueStore is the pluggable backing store for the response cache and the
// durable quota counters. Implementations must be safe for concurrent use.
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, expiry time.Duration) error
	Delete(ctx context.Context, key string) error
	// IncrBy atomically increments a numeric key and returns the new value.
	// Counter keys live independently of cache entries so quota accounting
	// survives entry eviction.
	IncrBy(ctx context.Context, key string, delta int64, expiry time.Duration) (int64, error)
}
