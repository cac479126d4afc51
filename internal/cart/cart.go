// Package cart manages session carts. Line prices are frozen when a
// product is added, so later catalog price changes never alter a cart
// or any order built from it.
package cart

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/lumenmarket/storefront/internal/entity"
	"github.com/lumenmarket/storefront/internal/repository"
	"github.com/lumenmarket/storefront/internal/storeerr"
)

// Service manipulates session carts.
type Service struct {
	carts    repository.CartRepository
	products repository.ProductRepository
}

func NewService(carts repository.CartRepository, products repository.ProductRepository) *Service {
	return &Service{carts: carts, products: products}
}

// Get returns the cart for a session.
func (s *Service) Get(ctx context.Context, sessionID string) ([]entity.CartLine, error) {
	return s.carts.Get(ctx, sessionID)
}

// AddItem appends a line for the product, snapshotting its current
// price. Adding the same product twice creates two lines with distinct
// line ids.
func (s *Service) AddItem(ctx context.Context, sessionID, productID string, quantity int) ([]entity.CartLine, error) {
	if quantity <= 0 {
		return nil, storeerr.New(storeerr.CodeValidation, "quantity must be positive")
	}
	p, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, storeerr.New(storeerr.CodeNotFound, "product %s not found", productID)
	}
	if p.Status != entity.ProductActive {
		return nil, storeerr.New(storeerr.CodeValidation, "product %s is not purchasable", p.Name)
	}

	lines, err := s.carts.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	lines = append(lines, entity.CartLine{
		LineID:    uuid.New().String(),
		ProductID: p.ID,
		Name:      p.Name,
		UnitPrice: p.Price,
		Quantity:  quantity,
		AddedAt:   time.Now(),
	})
	if err := s.carts.Save(ctx, sessionID, lines); err != nil {
		return nil, err
	}
	return lines, nil
}

// RemoveLine drops a single line by its local line id.
func (s *Service) RemoveLine(ctx context.Context, sessionID, lineID string) ([]entity.CartLine, error) {
	lines, err := s.carts.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	kept := lines[:0]
	for _, line := range lines {
		if line.LineID != lineID {
			kept = append(kept, line)
		}
	}
	if err := s.carts.Save(ctx, sessionID, kept); err != nil {
		return nil, err
	}
	return kept, nil
}

// Clear empties the session cart; called after a successful checkout.
func (s *Service) Clear(ctx context.Context, sessionID string) error {
	return s.carts.Clear(ctx, sessionID)
}
