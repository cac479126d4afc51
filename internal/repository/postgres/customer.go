package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lumenmarket/storefront/internal/entity"
	"github.com/lumenmarket/storefront/internal/repository"
)

const customerColumns = "id, name, email, total_orders, total_spent, status, wishlist, addresses, created_at"

type customerRepository struct {
	db *sql.DB
}

// NewCustomerRepository creates a CustomerRepository backed by Postgres.
func NewCustomerRepository(db *sql.DB) repository.CustomerRepository {
	return &customerRepository{db: db}
}

func (r *customerRepository) FindByEmail(ctx context.Context, email string) (*entity.Customer, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+customerColumns+" FROM customers WHERE email = $1", email)
	c, err := scanCustomer(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *customerRepository) Upsert(ctx context.Context, c *entity.Customer) error {
	wishlist, err := json.Marshal(c.Wishlist)
	if err != nil {
		return fmt.Errorf("failed to marshal wishlist: %w", err)
	}
	addresses, err := json.Marshal(c.Addresses)
	if err != nil {
		return fmt.Errorf("failed to marshal addresses: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO customers (id, name, email, total_orders, total_spent, status, wishlist, addresses, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (email) DO UPDATE SET
		   name = EXCLUDED.name, total_orders = EXCLUDED.total_orders, total_spent = EXCLUDED.total_spent,
		   status = EXCLUDED.status, wishlist = EXCLUDED.wishlist, addresses = EXCLUDED.addresses`,
		c.ID, c.Name, c.Email, c.TotalOrders, c.TotalSpent, c.Status, wishlist, addresses, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert customer: %w", err)
	}
	return nil
}

func (r *customerRepository) List(ctx context.Context) ([]entity.Customer, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+customerColumns+" FROM customers ORDER BY created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to query customers: %w", err)
	}
	defer rows.Close()

	var customers []entity.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

func (r *customerRepository) RecordOrder(ctx context.Context, email, name string, total float64) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE customers SET total_orders = total_orders + 1, total_spent = total_spent + $1, name = $2 WHERE email = $3",
		total, name, email,
	)
	if err != nil {
		return fmt.Errorf("failed to record order for customer: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected > 0 {
		return nil
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO customers (id, name, email, total_orders, total_spent, status, created_at)
		 VALUES (gen_random_uuid()::text, $1, $2, 1, $3, 'active', NOW())
		 ON CONFLICT (email) DO UPDATE SET
		   total_orders = customers.total_orders + 1, total_spent = customers.total_spent + EXCLUDED.total_spent`,
		name, email, total,
	)
	if err != nil {
		return fmt.Errorf("failed to create customer record: %w", err)
	}
	return nil
}

func (r *customerRepository) RemoveFromWishlists(ctx context.Context, productID string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE customers SET wishlist = wishlist - $1 WHERE wishlist ? $1",
		productID,
	)
	if err != nil {
		return fmt.Errorf("failed to remove product from wishlists: %w", err)
	}
	return nil
}

func scanCustomer(row rowScanner) (entity.Customer, error) {
	var c entity.Customer
	var wishlist, addresses []byte
	err := row.Scan(&c.ID, &c.Name, &c.Email, &c.TotalOrders, &c.TotalSpent, &c.Status, &wishlist, &addresses, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return c, err
	}
	if err != nil {
		return c, fmt.Errorf("failed to scan customer: %w", err)
	}
	if err := json.Unmarshal(wishlist, &c.Wishlist); err != nil {
		return c, fmt.Errorf("failed to unmarshal wishlist: %w", err)
	}
	if err := json.Unmarshal(addresses, &c.Addresses); err != nil {
		return c, fmt.Errorf("failed to unmarshal addresses: %w", err)
	}
	return c, nil
}
