package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/IBM/sarama"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	wmkafka "github.com/ThreeDotsLabs/watermill-kafka/v3/pkg/kafka"
	"github.com/google/uuid"
)

type watermillPublisher struct {
	pub message.Publisher
}

// NewWatermillPublisher creates a Publisher backed by a Watermill Kafka
// publisher. Messages for the same key land on the same partition, so
// events for one order are consumed in order.
func NewWatermillPublisher(brokers []string, logger *slog.Logger) (Publisher, error) {
	saramaConfig := wmkafka.DefaultSaramaSyncPublisherConfig()
	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll

	marshaler := wmkafka.NewWithPartitioningMarshaler(func(topic string, msg *message.Message) (string, error) {
		return msg.Metadata.Get("partition_key"), nil
	})

	pub, err := wmkafka.NewPublisher(wmkafka.PublisherConfig{
		Brokers:               brokers,
		Marshaler:             marshaler,
		OverwriteSaramaConfig: saramaConfig,
	}, watermill.NewSlogLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka publisher: %w", err)
	}

	return &watermillPublisher{pub: pub}, nil
}

func (p *watermillPublisher) PublishEvent(ctx context.Context, topic string, key string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(uuid.New().String(), payload)
	msg.Metadata.Set("partition_key", key)
	msg.SetContext(ctx)

	return p.pub.Publish(topic, msg)
}

// Close releases the underlying Kafka producer.
func (p *watermillPublisher) Close() error {
	return p.pub.Close()
}
