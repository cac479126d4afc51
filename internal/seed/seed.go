// Package seed holds the initial catalog and coupon data applied
// exactly once on first run.
package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/lumenmarket/storefront/internal/entity"
	"github.com/lumenmarket/storefront/internal/repository"
)

// Products returns the initial catalog.
func Products() []entity.Product {
	now := time.Now()
	return []entity.Product{
		{ID: "prod-001", SKU: "SM-001", Name: "Wireless Noise-Cancelling Headphones", Description: "Premium over-ear headphones with active noise cancellation and 30-hour battery life.", Price: 349.99, Stock: 50, Status: entity.ProductActive, Category: "Electronics", Collection: "Studio", ImageURL: "https://images.unsplash.com/photo-1505740420928-5e560c06d30e?w=400", Rating: 4.7, CreatedAt: now, UpdatedAt: now},
		{ID: "prod-002", SKU: "SM-002", Name: "Mechanical Keyboard RGB", Description: "Cherry MX switches with per-key RGB lighting and aluminum frame.", Price: 179.99, Stock: 120, Status: entity.ProductActive, Category: "Electronics", Collection: "Desk", ImageURL: "https://images.unsplash.com/photo-1618384887929-16ec33fab9ef?w=400", Rating: 4.5, CreatedAt: now, UpdatedAt: now},
		{ID: "prod-003", SKU: "SM-003", Name: "Ultrawide Curved Monitor 34\"", Description: "UWQHD 3440x1440 144Hz IPS panel with USB-C connectivity.", Price: 699.99, Stock: 30, Status: entity.ProductActive, Category: "Electronics", Collection: "Desk", ImageURL: "https://images.unsplash.com/photo-1527443224154-c4a3942d3acf?w=400", Rating: 4.8, CreatedAt: now, UpdatedAt: now},
		{ID: "prod-004", SKU: "SM-004", Name: "Ergonomic Office Chair", Description: "Adjustable lumbar support, breathable mesh, and 4D armrests.", Price: 549.99, Stock: 25, Status: entity.ProductActive, Category: "Furniture", ImageURL: "https://images.unsplash.com/photo-1592078615290-033ee584e267?w=400", Rating: 4.3, CreatedAt: now, UpdatedAt: now},
		{ID: "prod-005", SKU: "SM-005", Name: "Smart LED Desk Lamp", Description: "Adjustable color temperature, brightness levels, and USB charging port.", Price: 89.99, Stock: 200, Status: entity.ProductActive, Category: "Home", ImageURL: "https://images.unsplash.com/photo-1507473885765-e6ed057ab6fe?w=400", Rating: 4.1, CreatedAt: now, UpdatedAt: now},
		{ID: "prod-006", SKU: "SM-006", Name: "Premium Laptop Backpack", Description: "Water-resistant 17\" laptop compartment with anti-theft design.", Price: 129.99, Stock: 80, Status: entity.ProductActive, Category: "Accessories", ImageURL: "https://images.unsplash.com/photo-1553062407-98eeb64c6a62?w=400", Rating: 4.4, CreatedAt: now, UpdatedAt: now},
		{ID: "prod-007", SKU: "SM-007", Name: "USB-C Travel Dock", Description: "Eight ports in an anodized shell, 100W passthrough charging.", Price: 79.99, Stock: 0, Status: entity.ProductDraft, Category: "Accessories", ImageURL: "https://images.unsplash.com/photo-1625842268584-8f3296236761?w=400", CreatedAt: now, UpdatedAt: now},
	}
}

// Coupons returns the initial coupon ledger.
func Coupons() []entity.Coupon {
	now := time.Now()
	return []entity.Coupon{
		{ID: "coupon-001", Code: "WELCOME10", DiscountType: entity.DiscountPercentage, Value: 10, ExpiresAt: now.AddDate(1, 0, 0), Status: entity.CouponActive, CreatedAt: now},
		{ID: "coupon-002", Code: "SAVE20", DiscountType: entity.DiscountPercentage, Value: 20, ExpiresAt: now.AddDate(0, 6, 0), Status: entity.CouponActive, CreatedAt: now},
		{ID: "coupon-003", Code: "FLAT15", DiscountType: entity.DiscountFixed, Value: 15, ExpiresAt: now.AddDate(0, 3, 0), Status: entity.CouponActive, CreatedAt: now},
		{ID: "coupon-004", Code: "SUMMER24", DiscountType: entity.DiscountPercentage, Value: 25, ExpiresAt: now.AddDate(-1, 0, 0), Status: entity.CouponExpired, CreatedAt: now},
	}
}

// Apply seeds both collections. Each repository's Seed is a no-op when
// its collection already holds data.
func Apply(ctx context.Context, products repository.ProductRepository, coupons repository.CouponRepository) error {
	if err := products.Seed(ctx, Products()); err != nil {
		return fmt.Errorf("failed to seed products: %w", err)
	}
	if err := coupons.Seed(ctx, Coupons()); err != nil {
		return fmt.Errorf("failed to seed coupons: %w", err)
	}
	return nil
}
