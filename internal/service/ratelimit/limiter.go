package ratelimit

import (
	"context"
	"fmt"
	"time"

	"TVRelay/internal/domain/repository"
	"TVRelay/pkg/cache"
)

// Option configures Limiter.
type Option func(*Limiter)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

// Limiter is a fixed-window request counter: at most limit calls per key in
// each window. Counters live in a cache.Counter, so the Redis backend
// shares limits between replicas.
type Limiter struct {
	store  cache.Counter
	limit  int64
	window time.Duration
	now    func() time.Time
}

var _ repository.RateLimiter = (*Limiter)(nil)

func New(store cache.Counter, limit int, window time.Duration, opts ...Option) *Limiter {
	if window <= 0 {
		window = time.Minute
	}
	l := &Limiter{store: store, limit: int64(limit), window: window, now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Allow counts one call for key. On a store error the call is allowed and
// the error returned so the caller can log it.
func (l *Limiter) Allow(ctx context.Context, key string) (bool, error) {
	slot := l.now().UnixNano() / int64(l.window)
	k := cache.GenerateKeyWithParams("ratelimit", key, slot)

	n, err := l.store.Increment(ctx, k)
	if err != nil {
		return true, fmt.Errorf("ratelimit increment: %w", err)
	}
	if n == 1 {
		if _, err := l.store.Expire(ctx, k, l.window); err != nil {
			return true, fmt.Errorf("ratelimit expire: %w", err)
		}
	}
	return n <= l.limit, nil
}
