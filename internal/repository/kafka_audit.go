package repository

import (
	"context"

	"TradeGate/internal/domain/models"
	"TradeGate/pkg/kafka"
)

// KafkaAuditSink publishes access-audit events to a Kafka topic, keyed
// by operation so events for one operation land in order on a partition.
type KafkaAuditSink struct {
	producer *kafka.Producer
	topic    string
}

// NewKafkaAuditSink creates an audit sink on the given topic.
func NewKafkaAuditSink(producer *kafka.Producer, topic string) *KafkaAuditSink {
	return &KafkaAuditSink{
		producer: producer,
		topic:    topic,
	}
}

// Publish emits one audit event.
func (s *KafkaAuditSink) Publish(ctx context.Context, event *models.AuditEvent) error {
	return s.producer.Publish(ctx, s.topic, []byte(event.Operation), event)
}

// Close shuts down the underlying producer.
func (s *KafkaAuditSink) Close() error {
	return s.producer.Close()
}
