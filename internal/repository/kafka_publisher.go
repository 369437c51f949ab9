package repository

import (
	"context"

	"RegimePulse/internal/domain/models"
	"RegimePulse/internal/domain/repository"
	pkgkafka "RegimePulse/pkg/kafka"
)

// KafkaPublisher implements Publisher for Kafka. Verdicts are keyed by
// label so downstream consumers can partition on regime.
type KafkaPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaPublisher creates the Kafka verdict publisher.
func NewKafkaPublisher(producer *pkgkafka.Producer, topic string) repository.Publisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

func (p *KafkaPublisher) PublishVerdict(ctx context.Context, v *models.Verdict) error {
	return p.producer.Publish(ctx, p.topic, []byte(v.Label), v)
}

func (p *KafkaPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
