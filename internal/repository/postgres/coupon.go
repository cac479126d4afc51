package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lumenmarket/storefront/internal/entity"
	"github.com/lumenmarket/storefront/internal/repository"
	"github.com/lumenmarket/storefront/internal/storeerr"
)

const couponColumns = "id, code, discount_type, value, expires_at, usage_count, status, created_at"

type couponRepository struct {
	db *sql.DB
}

// NewCouponRepository creates a CouponRepository backed by Postgres.
func NewCouponRepository(db *sql.DB) repository.CouponRepository {
	return &couponRepository{db: db}
}

func (r *couponRepository) FindByCode(ctx context.Context, code string) (*entity.Coupon, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+couponColumns+" FROM coupons WHERE code_norm = $1",
		entity.NormalizeCouponCode(code),
	)
	var c entity.Coupon
	err := row.Scan(&c.ID, &c.Code, &c.DiscountType, &c.Value, &c.ExpiresAt, &c.UsageCount, &c.Status, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan coupon: %w", err)
	}
	return &c, nil
}

func (r *couponRepository) Insert(ctx context.Context, c *entity.Coupon) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO coupons (id, code, code_norm, discount_type, value, expires_at, usage_count, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		c.ID, c.Code, entity.NormalizeCouponCode(c.Code), c.DiscountType, c.Value, c.ExpiresAt, c.UsageCount, c.Status, c.CreatedAt,
	)
	if isUniqueViolation(err) {
		return storeerr.New(storeerr.CodeConflict, "a coupon with code %q already exists", c.Code)
	}
	if err != nil {
		return fmt.Errorf("failed to insert coupon: %w", err)
	}
	return nil
}

func (r *couponRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM coupons WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete coupon: %w", err)
	}
	return nil
}

func (r *couponRepository) List(ctx context.Context) ([]entity.Coupon, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+couponColumns+" FROM coupons ORDER BY created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to query coupons: %w", err)
	}
	defer rows.Close()

	var coupons []entity.Coupon
	for rows.Next() {
		var c entity.Coupon
		if err := rows.Scan(&c.ID, &c.Code, &c.DiscountType, &c.Value, &c.ExpiresAt, &c.UsageCount, &c.Status, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan coupon: %w", err)
		}
		coupons = append(coupons, c)
	}
	return coupons, rows.Err()
}

func (r *couponRepository) IncrementUsage(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "UPDATE coupons SET usage_count = usage_count + 1 WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to increment coupon usage: %w", err)
	}
	return nil
}

func (r *couponRepository) Seed(ctx context.Context, coupons []entity.Coupon) error {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM coupons").Scan(&count)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil // already seeded
	}

	for i := range coupons {
		if err := r.Insert(ctx, &coupons[i]); err != nil {
			return fmt.Errorf("failed to seed coupon %s: %w", coupons[i].ID, err)
		}
	}
	return nil
}
