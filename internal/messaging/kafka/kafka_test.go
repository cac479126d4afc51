package kafka

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenmarket/storefront/internal/messaging"
)

func TestBrokerImplementsBothInterfaces(t *testing.T) {
	broker := NewBroker([]string{"localhost:9092"})
	var _ messaging.Publisher = broker
	var _ messaging.Subscriber = broker
}

func TestPublishEventRejectsUnencodableEvent(t *testing.T) {
	broker := NewBroker([]string{"localhost:9092"})

	// Encoding happens before any broker connection, so a bad event
	// fails fast without touching the network.
	err := broker.PublishEvent(context.Background(), messaging.TopicOrderPlaced, "ORD-TEST01", make(chan int))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "marshal")
}
