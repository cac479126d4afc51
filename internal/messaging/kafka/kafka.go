// Package kafka implements the messaging interfaces directly over
// segmentio kafka-go: the consumer loop the worker runs, and a plain
// publisher used when the watermill pipeline cannot be built.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	kafkaGo "github.com/segmentio/kafka-go"

	"github.com/lumenmarket/storefront/internal/messaging"
)

// Broker publishes and consumes storefront events on a Kafka cluster.
type Broker struct {
	brokers []string
}

func NewBroker(brokers []string) *Broker {
	return &Broker{brokers: brokers}
}

var (
	_ messaging.Publisher  = (*Broker)(nil)
	_ messaging.Subscriber = (*Broker)(nil)
)

// PublishEvent writes one JSON-encoded event. The key is hashed to
// choose the partition, so every event for one order lands on the same
// partition and is consumed in order.
func (b *Broker) PublishEvent(ctx context.Context, topic string, key string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	w := &kafkaGo.Writer{
		Addr:     kafkaGo.TCP(b.brokers...),
		Topic:    topic,
		Balancer: &kafkaGo.Hash{},
	}
	defer w.Close()

	return w.WriteMessages(ctx, kafkaGo.Message{
		Key:   []byte(key),
		Value: payload,
	})
}

// Consume reads messages from a topic until the context is cancelled,
// passing each payload to handler. Handler errors are logged and the
// loop continues.
func (b *Broker) Consume(ctx context.Context, topic string, groupID string, handler func(ctx context.Context, payload []byte) error) {
	reader := kafkaGo.NewReader(kafkaGo.ReaderConfig{
		Brokers: b.brokers,
		Topic:   topic,
		GroupID: groupID,
	})
	defer reader.Close()

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				slog.Info("Consumer shutting down", "topic", topic)
				return
			}
			slog.Error("Error reading message", "topic", topic, "err", err)
			continue
		}

		if err := handler(ctx, msg.Value); err != nil {
			slog.Error("Error handling message", "topic", topic, "err", err)
		}
	}
}
