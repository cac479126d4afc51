package entity

import (
	"strings"
	"time"
)

// ProductStatus describes where a product sits in its publishing lifecycle.
type ProductStatus string

const (
	ProductActive   ProductStatus = "active"
	ProductDraft    ProductStatus = "draft"
	ProductArchived ProductStatus = "archived"
)

// Product represents a product in the store.
type Product struct {
	ID          string        `json:"id"`
	SKU         string        `json:"sku"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Price       float64       `json:"price"`
	Stock       int           `json:"stock"`
	Status      ProductStatus `json:"status"`
	Category    string        `json:"category"`
	Collection  string        `json:"collection,omitempty"`
	ImageURL    string        `json:"image_url"`
	Rating      float64       `json:"rating,omitempty"`
	SocialHeat  int           `json:"social_heat,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// NormalizeSKU lowers and trims a SKU for uniqueness comparison. Two
// products conflict when their normalized SKUs are equal.
func NormalizeSKU(sku string) string {
	return strings.ToLower(strings.TrimSpace(sku))
}

// OrderItem is a line item within an order. Price is a snapshot taken
// at order time and never re-derived from the live product.
type OrderItem struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

// OrderStatus is the order lifecycle state.
type OrderStatus string

const (
	OrderPending         OrderStatus = "pending"
	OrderPaid            OrderStatus = "paid"
	OrderShipped         OrderStatus = "shipped"
	OrderDelivered       OrderStatus = "delivered"
	OrderCancelled       OrderStatus = "cancelled"
	OrderRefunded        OrderStatus = "refunded"
	OrderReturnRequested OrderStatus = "return_requested"
)

// orderTransitions is the allowed forward edge set. Refunded is handled
// separately as an escape valve from any non-terminal state.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:   {OrderPaid, OrderCancelled},
	OrderPaid:      {OrderShipped},
	OrderShipped:   {OrderDelivered},
	OrderDelivered: {OrderReturnRequested},
}

// Terminal reports whether no further transitions are allowed from s.
func (s OrderStatus) Terminal() bool {
	switch s {
	case OrderCancelled, OrderRefunded, OrderReturnRequested:
		return true
	}
	return false
}

// CanTransitionTo reports whether an order may move from s to next.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s == next {
		return false
	}
	if next == OrderRefunded {
		return !s.Terminal()
	}
	for _, allowed := range orderTransitions[s] {
		if next == allowed {
			return true
		}
	}
	return false
}

// Order represents a customer order. The pricing fields are a snapshot
// computed once at placement; they are never recomputed on retrieval.
type Order struct {
	ID              string      `json:"id"`
	CustomerName    string      `json:"customer_name"`
	CustomerEmail   string      `json:"customer_email"`
	Items           []OrderItem `json:"items"`
	Subtotal        float64     `json:"subtotal"`
	Discount        float64     `json:"discount"`
	Tax             float64     `json:"tax"`
	ShippingFee     float64     `json:"shipping_fee"`
	Total           float64     `json:"total"`
	Status          OrderStatus `json:"status"`
	PaymentMethod   string      `json:"payment_method"`
	ShippingAddress string      `json:"shipping_address"`
	TrackingNumber  string      `json:"tracking_number,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
}

// DiscountType selects how a coupon value is applied.
type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// CouponStatus marks whether a coupon can still be redeemed.
type CouponStatus string

const (
	CouponActive  CouponStatus = "active"
	CouponExpired CouponStatus = "expired"
)

// Coupon is a named discount rule applied at checkout.
type Coupon struct {
	ID           string       `json:"id"`
	Code         string       `json:"code"`
	DiscountType DiscountType `json:"discount_type"`
	Value        float64      `json:"value"`
	ExpiresAt    time.Time    `json:"expires_at"`
	UsageCount   int          `json:"usage_count"`
	Status       CouponStatus `json:"status"`
	CreatedAt    time.Time    `json:"created_at"`
}

// NormalizeCouponCode uppercases and trims a coupon code for lookup.
func NormalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// CustomerStatus marks whether a customer may place orders.
type CustomerStatus string

const (
	CustomerActive  CustomerStatus = "active"
	CustomerBlocked CustomerStatus = "blocked"
)

// Address is a structured shipping address kept on the customer record.
type Address struct {
	Label   string `json:"label,omitempty"`
	Street  string `json:"street"`
	City    string `json:"city"`
	Zip     string `json:"zip"`
	Country string `json:"country"`
}

// Customer represents a storefront account. Orders reference customers
// by email, not by id.
type Customer struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Email       string         `json:"email"`
	TotalOrders int            `json:"total_orders"`
	TotalSpent  float64        `json:"total_spent"`
	Status      CustomerStatus `json:"status"`
	Wishlist    []string       `json:"wishlist,omitempty"`
	Addresses   []Address      `json:"addresses,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// CartLine is a single entry in a session cart. UnitPrice is frozen at
// add time; LineID distinguishes repeated adds of the same product.
type CartLine struct {
	LineID    string    `json:"line_id"`
	ProductID string    `json:"product_id"`
	Name      string    `json:"name"`
	UnitPrice float64   `json:"unit_price"`
	Quantity  int       `json:"quantity"`
	AddedAt   time.Time `json:"added_at"`
}

// AuditEntry is one append-only record of a mutating action.
type AuditEntry struct {
	ID       string    `json:"id"`
	Action   string    `json:"action"`
	TargetID string    `json:"target_id"`
	Message  string    `json:"message"`
	Actor    string    `json:"actor"`
	At       time.Time `json:"at"`
}
