package postgres

import (
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq"
)

// InitDB opens the database, verifies connectivity, and applies migrations.
func InitDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := migrateDB(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	slog.Info("Database connected and migrated")
	return db, nil
}

func migrateDB(db *sql.DB) error {
	// sku_norm carries the unique index so SKU uniqueness is enforced by
	// the database, not by an application-level pre-check.
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS products (
			id TEXT PRIMARY KEY,
			sku TEXT NOT NULL,
			sku_norm TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			price DOUBLE PRECISION NOT NULL DEFAULT 0,
			stock INT NOT NULL DEFAULT 0 CHECK (stock >= 0),
			status TEXT NOT NULL DEFAULT 'active',
			category TEXT NOT NULL DEFAULT '',
			collection TEXT NOT NULL DEFAULT '',
			image_url TEXT NOT NULL DEFAULT '',
			rating DOUBLE PRECISION NOT NULL DEFAULT 0,
			social_heat INT NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMP NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS orders (
			id TEXT PRIMARY KEY,
			customer_name TEXT NOT NULL DEFAULT '',
			customer_email TEXT NOT NULL DEFAULT '',
			subtotal DOUBLE PRECISION NOT NULL DEFAULT 0,
			discount DOUBLE PRECISION NOT NULL DEFAULT 0,
			tax DOUBLE PRECISION NOT NULL DEFAULT 0,
			shipping_fee DOUBLE PRECISION NOT NULL DEFAULT 0,
			total DOUBLE PRECISION NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT 'paid',
			payment_method TEXT NOT NULL DEFAULT '',
			shipping_address TEXT NOT NULL DEFAULT '',
			tracking_number TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS order_items (
			id SERIAL PRIMARY KEY,
			order_id TEXT NOT NULL REFERENCES orders(id),
			product_id TEXT NOT NULL,
			name TEXT NOT NULL,
			price DOUBLE PRECISION NOT NULL DEFAULT 0,
			quantity INT NOT NULL DEFAULT 1
		);

		CREATE TABLE IF NOT EXISTS coupons (
			id TEXT PRIMARY KEY,
			code TEXT NOT NULL,
			code_norm TEXT NOT NULL UNIQUE,
			discount_type TEXT NOT NULL DEFAULT 'percentage',
			value DOUBLE PRECISION NOT NULL DEFAULT 0,
			expires_at TIMESTAMP,
			usage_count INT NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT 'active',
			created_at TIMESTAMP NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS customers (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL DEFAULT '',
			email TEXT NOT NULL UNIQUE,
			total_orders INT NOT NULL DEFAULT 0,
			total_spent DOUBLE PRECISION NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT 'active',
			wishlist JSONB NOT NULL DEFAULT '[]',
			addresses JSONB NOT NULL DEFAULT '[]',
			created_at TIMESTAMP NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS audit_entries (
			id SERIAL PRIMARY KEY,
			action TEXT NOT NULL,
			target_id TEXT NOT NULL DEFAULT '',
			message TEXT NOT NULL DEFAULT '',
			actor TEXT NOT NULL DEFAULT '',
			at TIMESTAMP NOT NULL DEFAULT NOW()
		);
	`)
	return err
}
