package kafka

import (
	"context"
	"fmt"
	"time"

	"survey-payout-be/pkg/events"

	"github.com/segmentio/kafka-go"
)

// Publisher forwards domain events to a Kafka topic. Messages are keyed by
// event type so each type keeps its order within a partition.
type Publisher struct {
	writer *kafka.Writer
}

func NewPublisher(brokers []string, topic string) *Publisher {
	return &Publisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			AllowAutoTopicCreation: true,
			BatchTimeout:           50 * time.Millisecond,
		},
	}
}

func (p *Publisher) Forward(ctx context.Context, event events.Event) error {
	data, err := events.Encode(event)
	if err != nil {
		return err
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.EventType()),
		Value: data,
		Time:  event.Timestamp(),
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType())},
		},
	})
	if err != nil {
		return fmt.Errorf("write %s to kafka: %w", event.EventType(), err)
	}
	return nil
}

func (p *Publisher) Name() string {
	return "kafka"
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
