package cache

import (
	"context"
	"time"
)

// Counter is a keyed counter store with per-key expiry. Both the in-memory
// and the Redis implementation satisfy it.
type Counter interface {
	Increment(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, expiration time.Duration) (bool, error)
	Close() error
}

var (
	_ Counter = (*MemoryCache)(nil)
	_ Counter = (*RedisCache)(nil)
)
