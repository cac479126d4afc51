// The worker consumes storefront domain events and maintains the
// server-side audit trail from them.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lumenmarket/storefront/internal/config"
	"github.com/lumenmarket/storefront/internal/entity"
	"github.com/lumenmarket/storefront/internal/messaging"
	"github.com/lumenmarket/storefront/internal/messaging/kafka"
	"github.com/lumenmarket/storefront/internal/repository"
	"github.com/lumenmarket/storefront/internal/repository/postgres"
)

func main() {
	slog.SetLogLoggerLevel(slog.LevelDebug)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "err", err)
		os.Exit(1)
	}

	db, err := postgres.InitDB(cfg.DatabaseURL)
	if err != nil {
		slog.Error("Failed to init database", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	trail := postgres.NewAuditRepository(db)
	subscriber := kafka.NewBroker(cfg.KafkaBrokers)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	go subscriber.Consume(ctx, messaging.TopicOrderPlaced, "storefront-worker", func(ctx context.Context, payload []byte) error {
		var event entity.OrderPlaced
		if err := json.Unmarshal(payload, &event); err != nil {
			return fmt.Errorf("failed to unmarshal OrderPlaced event: %w", err)
		}
		slog.Info("Order placed event received", "order_id", event.OrderID, "total", event.Total)
		return trail.Append(ctx, entity.AuditEntry{
			Action:   "order.placed",
			TargetID: event.OrderID,
			Message:  fmt.Sprintf("order %s placed for %s, total %.2f", event.OrderID, event.CustomerEmail, event.Total),
			Actor:    "worker",
			At:       event.PlacedAt,
		})
	})

	go subscriber.Consume(ctx, messaging.TopicOrderStatus, "storefront-worker", func(ctx context.Context, payload []byte) error {
		var event entity.OrderStatusChanged
		if err := json.Unmarshal(payload, &event); err != nil {
			return fmt.Errorf("failed to unmarshal OrderStatusChanged event: %w", err)
		}
		return recordStatusChange(ctx, trail, event)
	})

	slog.Info("Worker consuming events", "brokers", cfg.KafkaBrokers)
	<-ctx.Done()
	slog.Info("Worker shutting down")
}

func recordStatusChange(ctx context.Context, trail repository.AuditRepository, event entity.OrderStatusChanged) error {
	at := event.ChangedAt
	if at.IsZero() {
		at = time.Now()
	}
	return trail.Append(ctx, entity.AuditEntry{
		Action:   "order.status_changed",
		TargetID: event.OrderID,
		Message:  fmt.Sprintf("order %s moved %s -> %s", event.OrderID, event.From, event.To),
		Actor:    "worker",
		At:       at,
	})
}
