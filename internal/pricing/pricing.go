// Package pricing derives checkout totals from cart lines, an optional
// coupon, and a shipping fee. It is pure: no storage, no side effects.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/lumenmarket/storefront/internal/entity"
)

// Quote is the pricing breakdown stored on an order. All figures are
// rounded to two decimal places, half up.
type Quote struct {
	Subtotal    float64 `json:"subtotal"`
	Discount    float64 `json:"discount"`
	Tax         float64 `json:"tax"`
	ShippingFee float64 `json:"shipping_fee"`
	Total       float64 `json:"total"`

	// CouponID records which coupon produced the discount, for
	// redemption tracking. Empty when no coupon applied.
	CouponID string `json:"coupon_id,omitempty"`
}

// Calculator computes quotes under a configured tax rate.
type Calculator struct {
	taxRate decimal.Decimal
}

// NewCalculator builds a calculator. taxRate is a fraction, e.g. 0.10.
func NewCalculator(taxRate float64) *Calculator {
	return &Calculator{taxRate: decimal.NewFromFloat(taxRate)}
}

// Quote computes the breakdown:
//
//	subtotal = sum(line price * quantity)
//	discount = percentage of subtotal, or fixed value, clamped to subtotal
//	tax      = (subtotal - discount) * taxRate
//	total    = subtotal - discount + tax + shippingFee
//
// The discount clamp means the total can never go negative.
func (c *Calculator) Quote(cart []entity.CartLine, coupon *entity.Coupon, shippingFee float64) Quote {
	subtotal := decimal.Zero
	for _, line := range cart {
		price := decimal.NewFromFloat(line.UnitPrice)
		subtotal = subtotal.Add(price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	subtotal = subtotal.Round(2)

	discount := decimal.Zero
	couponID := ""
	if coupon != nil {
		couponID = coupon.ID
		value := decimal.NewFromFloat(coupon.Value)
		switch coupon.DiscountType {
		case entity.DiscountPercentage:
			discount = subtotal.Mul(value).Div(decimal.NewFromInt(100))
		case entity.DiscountFixed:
			discount = value
		}
		discount = discount.Round(2)
		if discount.GreaterThan(subtotal) {
			discount = subtotal
		}
		if discount.IsNegative() {
			discount = decimal.Zero
		}
	}

	shipping := decimal.NewFromFloat(shippingFee).Round(2)
	tax := subtotal.Sub(discount).Mul(c.taxRate).Round(2)
	total := subtotal.Sub(discount).Add(tax).Add(shipping).Round(2)

	sub, _ := subtotal.Float64()
	dis, _ := discount.Float64()
	tx, _ := tax.Float64()
	ship, _ := shipping.Float64()
	tot, _ := total.Float64()
	return Quote{
		Subtotal:    sub,
		Discount:    dis,
		Tax:         tx,
		ShippingFee: ship,
		Total:       tot,
		CouponID:    couponID,
	}
}
