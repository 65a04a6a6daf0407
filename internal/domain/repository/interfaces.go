package repository

import (
	"context"

	"TVRelay/internal/domain/models"
)

// Sink is a notification channel. Send is attempted at most once per
// notification; implementations bound it with their own timeout.
type Sink interface {
	Name() string
	Enabled() bool
	Send(ctx context.Context, n models.Notification) error
}

// RateLimiter decides whether a caller identified by key may proceed.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

type Metrics interface {
	RecordAlert(outcome string)
	RecordDelivery(sink, result string)
	RecordLatency(op string, seconds float64)
}
