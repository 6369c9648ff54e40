// Package events publishes rating events to Kafka for downstream consumers
// such as analytics.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"github.com/drinkboard/drinkboard/drinks"
)

// Publisher writes rating events to a Kafka topic.
type Publisher struct {
	writer *kafka.Writer
}

// NewPublisher returns a publisher writing to the given broker and topic.
func NewPublisher(broker, topic string) *Publisher {
	return &Publisher{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(broker),
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		},
	}
}

// PublishRating emits one rating event, keyed by drink id so events for a
// drink keep partition order.
func (p *Publisher) PublishRating(ctx context.Context, ev drinks.RatingEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(ev.DrinkID),
		Value: payload,
	}); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
