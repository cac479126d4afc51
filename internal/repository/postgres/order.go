package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lumenmarket/storefront/internal/entity"
	"github.com/lumenmarket/storefront/internal/repository"
	"github.com/lumenmarket/storefront/internal/storeerr"
)

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository creates an OrderRepository backed by Postgres.
func NewOrderRepository(db *sql.DB) repository.OrderRepository {
	return &orderRepository{db: db}
}

// Place inserts the order and decrements stock for every line inside one
// transaction. The conditional UPDATE makes the availability check and
// the decrement a single atomic operation, so two orders racing for the
// last unit cannot both succeed.
func (r *orderRepository) Place(ctx context.Context, order *entity.Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, item := range order.Items {
		res, err := tx.ExecContext(ctx,
			"UPDATE products SET stock = stock - $1 WHERE id = $2 AND stock >= $1",
			item.Quantity, item.ProductID,
		)
		if err != nil {
			return fmt.Errorf("failed to update product stock: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read rows affected: %w", err)
		}
		if affected == 1 {
			continue
		}

		// Distinguish a vanished product from insufficient stock; the
		// rollback undoes any decrements already applied.
		var available int
		err = tx.QueryRowContext(ctx, "SELECT stock FROM products WHERE id = $1", item.ProductID).Scan(&available)
		if err == sql.ErrNoRows {
			return storeerr.New(storeerr.CodeNotFound, "product %s no longer exists", item.ProductID)
		}
		if err != nil {
			return fmt.Errorf("failed to read product stock: %w", err)
		}
		return storeerr.New(storeerr.CodeInsufficientStock,
			"insufficient stock for %s (available: %d, requested: %d)", item.Name, available, item.Quantity)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO orders (id, customer_name, customer_email, subtotal, discount, tax, shipping_fee, total, status, payment_method, shipping_address, tracking_number, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		order.ID, order.CustomerName, order.CustomerEmail, order.Subtotal, order.Discount, order.Tax,
		order.ShippingFee, order.Total, order.Status, order.PaymentMethod, order.ShippingAddress,
		order.TrackingNumber, order.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	for _, item := range order.Items {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO order_items (order_id, product_id, name, price, quantity) VALUES ($1, $2, $3, $4, $5)",
			order.ID, item.ProductID, item.Name, item.Price, item.Quantity,
		)
		if err != nil {
			return fmt.Errorf("failed to insert order item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

const orderColumns = "id, customer_name, customer_email, subtotal, discount, tax, shipping_fee, total, status, payment_method, shipping_address, tracking_number, created_at"

func (r *orderRepository) FindByID(ctx context.Context, id string) (*entity.Order, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+orderColumns+" FROM orders WHERE id = $1", id)
	var o entity.Order
	err := row.Scan(&o.ID, &o.CustomerName, &o.CustomerEmail, &o.Subtotal, &o.Discount, &o.Tax,
		&o.ShippingFee, &o.Total, &o.Status, &o.PaymentMethod, &o.ShippingAddress, &o.TrackingNumber, &o.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan order: %w", err)
	}
	if err := r.loadItems(ctx, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id string, from, to entity.OrderStatus) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		"UPDATE orders SET status = $1 WHERE id = $2 AND status = $3",
		to, id, from,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update order status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return affected == 1, nil
}

func (r *orderRepository) List(ctx context.Context) ([]entity.Order, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+orderColumns+" FROM orders ORDER BY created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []entity.Order
	for rows.Next() {
		var o entity.Order
		if err := rows.Scan(&o.ID, &o.CustomerName, &o.CustomerEmail, &o.Subtotal, &o.Discount, &o.Tax,
			&o.ShippingFee, &o.Total, &o.Status, &o.PaymentMethod, &o.ShippingAddress, &o.TrackingNumber, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range orders {
		if err := r.loadItems(ctx, &orders[i]); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (r *orderRepository) loadItems(ctx context.Context, o *entity.Order) error {
	rows, err := r.db.QueryContext(ctx,
		"SELECT product_id, name, price, quantity FROM order_items WHERE order_id = $1", o.ID)
	if err != nil {
		return fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item entity.OrderItem
		if err := rows.Scan(&item.ProductID, &item.Name, &item.Price, &item.Quantity); err != nil {
			return fmt.Errorf("failed to scan order item: %w", err)
		}
		o.Items = append(o.Items, item)
	}
	return rows.Err()
}
