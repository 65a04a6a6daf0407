package repository

import (
	"context"
	"fmt"
	"time"

	"TVRelay/internal/domain/models"
	"TVRelay/internal/domain/repository"
)

// Publisher is the part of pkg/kafka.Producer the sink needs.
type Publisher interface {
	Publish(ctx context.Context, topic string, key []byte, value interface{}) error
}

type kafkaNotification struct {
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	Timestamp time.Time `json:"timestamp"`
}

// KafkaSink publishes each notification as one JSON record.
type KafkaSink struct {
	producer Publisher
	topic    string
}

var _ repository.Sink = (*KafkaSink)(nil)

// NewKafkaSink creates the Kafka sink. A nil producer or empty topic
// disables it.
func NewKafkaSink(producer Publisher, topic string) *KafkaSink {
	return &KafkaSink{producer: producer, topic: topic}
}

func (s *KafkaSink) Name() string { return models.SinkKafka }

func (s *KafkaSink) Enabled() bool {
	return s.producer != nil && s.topic != ""
}

func (s *KafkaSink) Send(ctx context.Context, n models.Notification) error {
	err := s.producer.Publish(ctx, s.topic, []byte(n.Subject), kafkaNotification{
		Subject:   n.Subject,
		Body:      n.Body,
		Timestamp: n.Timestamp,
	})
	if err != nil {
		return fmt.Errorf("kafka: publish to %s: %w", s.topic, err)
	}
	return nil
}
