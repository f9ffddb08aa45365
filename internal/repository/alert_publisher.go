package repository

import (
	"context"
	"strconv"

	"FraudGuard/internal/domain/models"
	pkgkafka "FraudGuard/pkg/kafka"
)

// KafkaAlertPublisher publishes triggered assessments to the alert
// topic, keyed by user id so one user's alerts stay ordered within a
// partition.
type KafkaAlertPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaAlertPublisher creates a publisher for topic.
func NewKafkaAlertPublisher(producer *pkgkafka.Producer, topic string) *KafkaAlertPublisher {
	return &KafkaAlertPublisher{producer: producer, topic: topic}
}

func (p *KafkaAlertPublisher) Publish(ctx context.Context, a *models.RiskAssessment) error {
	key := []byte(strconv.FormatInt(a.UserID, 10))
	return p.producer.Publish(ctx, p.topic, key, a)
}

func (p *KafkaAlertPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

// ProducerLogSink adapts the Kafka producer to the log collector's
// publisher interface so aggregated error reports ship as messages.
type ProducerLogSink struct {
	producer *pkgkafka.Producer
}

// NewProducerLogSink wraps producer.
func NewProducerLogSink(producer *pkgkafka.Producer) *ProducerLogSink {
	return &ProducerLogSink{producer: producer}
}

func (s *ProducerLogSink) PublishMessage(ctx context.Context, topic string, payload interface{}) error {
	return s.producer.Publish(ctx, topic, nil, payload)
}
