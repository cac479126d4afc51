package entity

import "time"

// --- Events ---

// OrderPlaced is emitted when an order is successfully placed.
type OrderPlaced struct {
	OrderID       string      `json:"order_id"`
	CustomerEmail string      `json:"customer_email"`
	Items         []OrderItem `json:"items"`
	Total         float64     `json:"total"`
	PlacedAt      time.Time   `json:"placed_at"`
}

// OrderStatusChanged is emitted when an order moves to a new status.
type OrderStatusChanged struct {
	OrderID   string      `json:"order_id"`
	From      OrderStatus `json:"from"`
	To        OrderStatus `json:"to"`
	ChangedAt time.Time   `json:"changed_at"`
}

// StockAdjusted is emitted when product stock changes outside an order.
type StockAdjusted struct {
	ProductID string `json:"product_id"`
	Delta     int    `json:"delta"`
	NewStock  int    `json:"new_stock"`
}

// ProductDeleted is emitted when a product is removed or archived.
type ProductDeleted struct {
	ProductID string `json:"product_id"`
	Hard      bool   `json:"hard"`
}
