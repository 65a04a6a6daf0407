package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"TVRelay/internal/domain/models"
	pkgkafka "TVRelay/pkg/kafka"
)

var _ Publisher = (*pkgkafka.Producer)(nil)

type fakePublisher struct {
	topic string
	key   []byte
	value interface{}
	err   error
}

func (f *fakePublisher) Publish(_ context.Context, topic string, key []byte, value interface{}) error {
	f.topic, f.key, f.value = topic, key, value
	return f.err
}

func TestKafkaSinkPublishes(t *testing.T) {
	pub := &fakePublisher{}
	s := NewKafkaSink(pub, "alerts")
	ts := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	if err := s.Send(context.Background(), models.Notification{Subject: "BUY AAPL", Body: "b", Timestamp: ts}); err != nil {
		t.Fatalf("send: %v", err)
	}
	if pub.topic != "alerts" || string(pub.key) != "BUY AAPL" {
		t.Fatalf("topic=%s key=%s", pub.topic, pub.key)
	}
	v, ok := pub.value.(kafkaNotification)
	if !ok || v.Body != "b" || !v.Timestamp.Equal(ts) {
		t.Fatalf("value = %#v", pub.value)
	}
}

func TestKafkaSinkWrapsError(t *testing.T) {
	boom := errors.New("broker down")
	s := NewKafkaSink(&fakePublisher{err: boom}, "alerts")
	if err := s.Send(context.Background(), models.Notification{}); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}

func TestKafkaSinkEnabled(t *testing.T) {
	if NewKafkaSink(nil, "alerts").Enabled() {
		t.Fatalf("nil producer must disable the sink")
	}
	if NewKafkaSink(&fakePublisher{}, "").Enabled() {
		t.Fatalf("empty topic must disable the sink")
	}
}
