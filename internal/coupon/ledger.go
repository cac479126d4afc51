// Package coupon manages the discount-code ledger.
package coupon

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lumenmarket/storefront/internal/entity"
	"github.com/lumenmarket/storefront/internal/repository"
	"github.com/lumenmarket/storefront/internal/storeerr"
)

// Ledger is the coupon collection.
type Ledger struct {
	coupons repository.CouponRepository
}

func NewLedger(coupons repository.CouponRepository) *Ledger {
	return &Ledger{coupons: coupons}
}

// FindApplicable returns the active coupon matching code, or nil when
// the code is unknown or inactive. The caller decides how to surface an
// invalid coupon to the user.
func (l *Ledger) FindApplicable(ctx context.Context, code string) (*entity.Coupon, error) {
	if strings.TrimSpace(code) == "" {
		return nil, nil
	}
	c, err := l.coupons.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if c == nil || c.Status != entity.CouponActive {
		return nil, nil
	}
	return c, nil
}

// Create stores a new coupon with a generated id.
func (l *Ledger) Create(ctx context.Context, c entity.Coupon) (*entity.Coupon, error) {
	if strings.TrimSpace(c.Code) == "" {
		return nil, storeerr.New(storeerr.CodeValidation, "coupon code is required")
	}
	if c.Value < 0 {
		return nil, storeerr.New(storeerr.CodeValidation, "coupon value must not be negative")
	}
	switch c.DiscountType {
	case entity.DiscountPercentage, entity.DiscountFixed:
	default:
		return nil, storeerr.New(storeerr.CodeValidation, "unknown discount type %q", c.DiscountType)
	}
	if c.Status == "" {
		c.Status = entity.CouponActive
	}
	c.ID = uuid.New().String()
	c.CreatedAt = time.Now()
	if err := l.coupons.Insert(ctx, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Delete removes a coupon; unknown ids are a no-op.
func (l *Ledger) Delete(ctx context.Context, id string) error {
	return l.coupons.Delete(ctx, id)
}

// List returns all coupons.
func (l *Ledger) List(ctx context.Context) ([]entity.Coupon, error) {
	return l.coupons.List(ctx)
}
