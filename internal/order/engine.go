// Package order validates and places orders against the catalog,
// decrementing stock atomically, and drives the order status lifecycle.
package order

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/lumenmarket/storefront/internal/entity"
	"github.com/lumenmarket/storefront/internal/messaging"
	"github.com/lumenmarket/storefront/internal/pricing"
	"github.com/lumenmarket/storefront/internal/repository"
	"github.com/lumenmarket/storefront/internal/storeerr"
)

// CustomerInfo identifies the buyer on a new order.
type CustomerInfo struct {
	Name            string
	Email           string
	PaymentMethod   string
	ShippingAddress string
}

// Engine orchestrates order placement and status transitions.
type Engine struct {
	orders    repository.OrderRepository
	customers repository.CustomerRepository
	coupons   repository.CouponRepository
	audit     repository.AuditRepository
	publisher messaging.Publisher
}

func NewEngine(
	orders repository.OrderRepository,
	customers repository.CustomerRepository,
	coupons repository.CouponRepository,
	audit repository.AuditRepository,
	publisher messaging.Publisher,
) *Engine {
	return &Engine{orders: orders, customers: customers, coupons: coupons, audit: audit, publisher: publisher}
}

// PlaceOrder turns a cart into a stored order. The storage layer performs
// the availability check and the stock decrement as one atomic commit:
// either every line decrements and the order exists, or nothing changed.
// The pricing breakdown is the caller's snapshot and is stored as-is.
func (e *Engine) PlaceOrder(ctx context.Context, cart []entity.CartLine, info CustomerInfo, quote pricing.Quote) (*entity.Order, error) {
	if len(cart) == 0 {
		return nil, storeerr.New(storeerr.CodeValidation, "order must have at least one item")
	}
	if strings.TrimSpace(info.Email) == "" {
		return nil, storeerr.New(storeerr.CodeValidation, "customer email is required")
	}

	items := make([]entity.OrderItem, 0, len(cart))
	for _, line := range cart {
		if line.Quantity <= 0 {
			return nil, storeerr.New(storeerr.CodeValidation, "quantity for %s must be positive", line.Name)
		}
		items = append(items, entity.OrderItem{
			ProductID: line.ProductID,
			Name:      line.Name,
			Price:     line.UnitPrice,
			Quantity:  line.Quantity,
		})
	}

	order := &entity.Order{
		ID:              newDisplayID(),
		CustomerName:    info.Name,
		CustomerEmail:   info.Email,
		Items:           items,
		Subtotal:        quote.Subtotal,
		Discount:        quote.Discount,
		Tax:             quote.Tax,
		ShippingFee:     quote.ShippingFee,
		Total:           quote.Total,
		Status:          entity.OrderPaid,
		PaymentMethod:   info.PaymentMethod,
		ShippingAddress: info.ShippingAddress,
		CreatedAt:       time.Now(),
	}

	if err := e.orders.Place(ctx, order); err != nil {
		return nil, err
	}

	slog.Info("Order placed", "order_id", order.ID, "items", len(order.Items), "total", order.Total)

	if err := e.customers.RecordOrder(ctx, info.Email, info.Name, order.Total); err != nil {
		slog.Error("Failed to update customer aggregates", "email", info.Email, "err", err)
	}
	if quote.CouponID != "" {
		if err := e.coupons.IncrementUsage(ctx, quote.CouponID); err != nil {
			slog.Error("Failed to record coupon redemption", "coupon_id", quote.CouponID, "err", err)
		}
	}
	e.record(ctx, "order.placed", order.ID, fmt.Sprintf("order %s placed for %s, total %.2f", order.ID, info.Email, order.Total))
	e.publish(ctx, messaging.TopicOrderPlaced, order.ID, entity.OrderPlaced{
		OrderID:       order.ID,
		CustomerEmail: order.CustomerEmail,
		Items:         order.Items,
		Total:         order.Total,
		PlacedAt:      order.CreatedAt,
	})

	return order, nil
}

// UpdateStatus moves an order to a new status, enforcing the transition
// table. Unknown order ids are a silent no-op; an illegal transition is
// a validation error naming both states.
func (e *Engine) UpdateStatus(ctx context.Context, orderID string, next entity.OrderStatus) error {
	current, err := e.orders.FindByID(ctx, orderID)
	if err != nil {
		return err
	}
	if current == nil {
		return nil
	}
	if !current.Status.CanTransitionTo(next) {
		return storeerr.New(storeerr.CodeValidation, "order %s cannot move from %s to %s", orderID, current.Status, next)
	}

	// Conditional on the observed status, so a concurrent transition
	// cannot be silently overwritten.
	found, err := e.orders.UpdateStatus(ctx, orderID, current.Status, next)
	if err != nil {
		return err
	}
	if !found {
		return storeerr.New(storeerr.CodeValidation, "order %s changed status concurrently, not moved to %s", orderID, next)
	}

	e.record(ctx, "order.status_changed", orderID, fmt.Sprintf("order %s moved %s -> %s", orderID, current.Status, next))
	e.publish(ctx, messaging.TopicOrderStatus, orderID, entity.OrderStatusChanged{
		OrderID:   orderID,
		From:      current.Status,
		To:        next,
		ChangedAt: time.Now(),
	})
	return nil
}

// List returns all orders, most recently created first.
func (e *Engine) List(ctx context.Context) ([]entity.Order, error) {
	return e.orders.List(ctx)
}

func (e *Engine) record(ctx context.Context, action, targetID, message string) {
	if e.audit == nil {
		return
	}
	err := e.audit.Append(ctx, entity.AuditEntry{
		Action:   action,
		TargetID: targetID,
		Message:  message,
		Actor:    "orders",
		At:       time.Now(),
	})
	if err != nil {
		slog.Error("Failed to append audit entry", "action", action, "err", err)
	}
}

func (e *Engine) publish(ctx context.Context, topic, key string, event any) {
	if e.publisher == nil {
		return
	}
	if err := e.publisher.PublishEvent(ctx, topic, key, event); err != nil {
		slog.Error("Failed to publish event", "topic", topic, "err", err)
	}
}

const displayIDAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// newDisplayID builds a customer-facing order reference like ORD-7XK2QF.
func newDisplayID() string {
	suffix := make([]byte, 6)
	max := big.NewInt(int64(len(displayIDAlphabet)))
	for i := range suffix {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails when the platform source is broken;
			// fall back to a fixed character rather than panic.
			suffix[i] = displayIDAlphabet[0]
			continue
		}
		suffix[i] = displayIDAlphabet[n.Int64()]
	}
	return "ORD-" + string(suffix)
}
