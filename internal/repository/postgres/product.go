package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/lumenmarket/storefront/internal/entity"
	"github.com/lumenmarket/storefront/internal/repository"
	"github.com/lumenmarket/storefront/internal/storeerr"
)

const productColumns = "id, sku, name, description, price, stock, status, category, collection, image_url, rating, social_heat, created_at, updated_at"

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a ProductRepository backed by Postgres.
func NewProductRepository(db *sql.DB) repository.ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) List(ctx context.Context) ([]entity.Product, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+productColumns+" FROM products ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *productRepository) FindByID(ctx context.Context, id string) (*entity.Product, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+productColumns+" FROM products WHERE id = $1", id)
	p, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepository) Insert(ctx context.Context, p *entity.Product) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO products (id, sku, sku_norm, name, description, price, stock, status, category, collection, image_url, rating, social_heat, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		p.ID, p.SKU, entity.NormalizeSKU(p.SKU), p.Name, p.Description, p.Price, p.Stock, p.Status,
		p.Category, p.Collection, p.ImageURL, p.Rating, p.SocialHeat, p.CreatedAt, p.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return storeerr.New(storeerr.CodeConflict, "a product with SKU %q already exists", p.SKU)
	}
	if err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}
	return nil
}

func (r *productRepository) Update(ctx context.Context, p *entity.Product) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE products SET sku = $2, sku_norm = $3, name = $4, description = $5, price = $6, stock = $7,
		 status = $8, category = $9, collection = $10, image_url = $11, rating = $12, social_heat = $13, updated_at = $14
		 WHERE id = $1`,
		p.ID, p.SKU, entity.NormalizeSKU(p.SKU), p.Name, p.Description, p.Price, p.Stock, p.Status,
		p.Category, p.Collection, p.ImageURL, p.Rating, p.SocialHeat, p.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return storeerr.New(storeerr.CodeConflict, "a product with SKU %q already exists", p.SKU)
	}
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	return nil
}

func (r *productRepository) AdjustStock(ctx context.Context, id string, delta int) (int, bool, error) {
	var newStock int
	err := r.db.QueryRowContext(ctx,
		"UPDATE products SET stock = GREATEST(0, stock + $1), updated_at = $2 WHERE id = $3 RETURNING stock",
		delta, time.Now(), id,
	).Scan(&newStock)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to adjust stock: %w", err)
	}
	return newStock, true, nil
}

func (r *productRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return nil
}

func (r *productRepository) Archive(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE products SET status = $1, updated_at = $2 WHERE id = $3",
		entity.ProductArchived, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to archive product: %w", err)
	}
	return nil
}

func (r *productRepository) Seed(ctx context.Context, products []entity.Product) error {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM products").Scan(&count)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil // already seeded
	}

	for i := range products {
		if err := r.Insert(ctx, &products[i]); err != nil {
			return fmt.Errorf("failed to seed product %s: %w", products[i].ID, err)
		}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (entity.Product, error) {
	var p entity.Product
	err := row.Scan(&p.ID, &p.SKU, &p.Name, &p.Description, &p.Price, &p.Stock, &p.Status,
		&p.Category, &p.Collection, &p.ImageURL, &p.Rating, &p.SocialHeat, &p.CreatedAt, &p.UpdatedAt)
	if err != nil && err != sql.ErrNoRows {
		return p, fmt.Errorf("failed to scan product: %w", err)
	}
	return p, err
}

func isUniqueViolation(err error) bool {
	pqErr, ok := err.(*pq.Error)
	return ok && pqErr.Code == "23505"
}
