package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"biogate/internal/platform/kafka/producer"
)

// messageProducer is the subset of the Kafka producer the sink needs.
type messageProducer interface {
	Produce(ctx context.Context, msg *producer.Message) error
}

// KafkaSink publishes events as JSON, keyed by user so a user's events stay
// ordered within a partition.
type KafkaSink struct {
	producer messageProducer
	topic    string
}

func NewKafkaSink(p messageProducer, topic string) *KafkaSink {
	return &KafkaSink{producer: p, topic: topic}
}

func (k *KafkaSink) Append(ctx context.Context, event Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}
	return k.producer.Produce(ctx, &producer.Message{
		Topic: k.topic,
		Key:   []byte(event.UserID),
		Value: value,
		Headers: map[string]string{
			"event_type": string(event.Action),
			"event_id":   event.ID.String(),
		},
	})
}
