package memory

import (
	"context"
	"slices"

	"github.com/lumenmarket/storefront/internal/entity"
	"github.com/lumenmarket/storefront/internal/repository"
	"github.com/lumenmarket/storefront/internal/storeerr"
)

type couponView struct {
	s *Store
}

// Coupons returns the coupon repository view of the store.
func (s *Store) Coupons() repository.CouponRepository {
	return &couponView{s: s}
}

func (v *couponView) FindByCode(ctx context.Context, code string) (*entity.Coupon, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	norm := entity.NormalizeCouponCode(code)
	for i := range v.s.coupons {
		if entity.NormalizeCouponCode(v.s.coupons[i].Code) == norm {
			c := v.s.coupons[i]
			return &c, nil
		}
	}
	return nil, nil
}

func (v *couponView) Insert(ctx context.Context, c *entity.Coupon) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	norm := entity.NormalizeCouponCode(c.Code)
	for i := range v.s.coupons {
		if entity.NormalizeCouponCode(v.s.coupons[i].Code) == norm {
			return storeerr.New(storeerr.CodeConflict, "a coupon with code %q already exists", c.Code)
		}
	}
	staged := append(slices.Clone(v.s.coupons), *c)
	if err := v.s.persist("coupons", staged); err != nil {
		return err
	}
	v.s.coupons = staged
	return nil
}

func (v *couponView) Delete(ctx context.Context, id string) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	for i := range v.s.coupons {
		if v.s.coupons[i].ID == id {
			staged := slices.Delete(slices.Clone(v.s.coupons), i, i+1)
			if err := v.s.persist("coupons", staged); err != nil {
				return err
			}
			v.s.coupons = staged
			return nil
		}
	}
	return nil
}

func (v *couponView) List(ctx context.Context) ([]entity.Coupon, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	return slices.Clone(v.s.coupons), nil
}

func (v *couponView) IncrementUsage(ctx context.Context, id string) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	for i := range v.s.coupons {
		if v.s.coupons[i].ID == id {
			staged := slices.Clone(v.s.coupons)
			staged[i].UsageCount++
			if err := v.s.persist("coupons", staged); err != nil {
				return err
			}
			v.s.coupons = staged
			return nil
		}
	}
	return nil
}

func (v *couponView) Seed(ctx context.Context, coupons []entity.Coupon) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if len(v.s.coupons) > 0 || v.s.seeded("coupons") {
		return nil
	}
	if err := v.s.persist("coupons", coupons); err != nil {
		return err
	}
	v.s.coupons = slices.Clone(coupons)
	return nil
}
