package usecase

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"TVRelay/internal/domain/models"
	"TVRelay/internal/domain/repository"
)

type fakeSink struct {
	name    string
	enabled bool
	err     error
	panics  bool
	delay   time.Duration

	calls atomic.Int32
	mu    sync.Mutex
	got   []models.Notification
}

func newFakeSink(name string) *fakeSink {
	return &fakeSink{name: name, enabled: true}
}

func (f *fakeSink) Name() string  { return f.name }
func (f *fakeSink) Enabled() bool { return f.enabled }

func (f *fakeSink) Send(ctx context.Context, n models.Notification) error {
	f.calls.Add(1)
	f.mu.Lock()
	f.got = append(f.got, n)
	f.mu.Unlock()

	if f.panics {
		panic("sink exploded")
	}
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return f.err
}

func (f *fakeSink) received() []models.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Notification(nil), f.got...)
}

var errSinkDown = errors.New("sink down")

type countingMetrics struct {
	mu         sync.Mutex
	alerts     map[string]int
	deliveries map[string]int
}

func newCountingMetrics() *countingMetrics {
	return &countingMetrics{alerts: map[string]int{}, deliveries: map[string]int{}}
}

func (m *countingMetrics) RecordAlert(outcome string) {
	m.mu.Lock()
	m.alerts[outcome]++
	m.mu.Unlock()
}

func (m *countingMetrics) RecordDelivery(sink, result string) {
	m.mu.Lock()
	m.deliveries[sink+"/"+result]++
	m.mu.Unlock()
}

func (m *countingMetrics) RecordLatency(string, float64) {}

func toSinks(fakes []*fakeSink) []repository.Sink {
	out := make([]repository.Sink, len(fakes))
	for i, f := range fakes {
		out[i] = f
	}
	return out
}
