package memory

import (
	"context"

	"github.com/lumenmarket/storefront/internal/entity"
	"github.com/lumenmarket/storefront/internal/repository"
)

type cartView struct {
	s *Store
}

// Carts returns the cart repository view of the store. Carts are
// session-scoped and never written to the snapshot files.
func (s *Store) Carts() repository.CartRepository {
	return &cartView{s: s}
}

func (v *cartView) Get(ctx context.Context, sessionID string) ([]entity.CartLine, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	lines := v.s.carts[sessionID]
	out := make([]entity.CartLine, len(lines))
	copy(out, lines)
	return out, nil
}

func (v *cartView) Save(ctx context.Context, sessionID string, lines []entity.CartLine) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	stored := make([]entity.CartLine, len(lines))
	copy(stored, lines)
	v.s.carts[sessionID] = stored
	return nil
}

func (v *cartView) Clear(ctx context.Context, sessionID string) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	delete(v.s.carts, sessionID)
	return nil
}

func (v *cartView) RemoveProduct(ctx context.Context, productID string) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	for sessionID, lines := range v.s.carts {
		kept := lines[:0]
		for _, line := range lines {
			if line.ProductID != productID {
				kept = append(kept, line)
			}
		}
		v.s.carts[sessionID] = kept
	}
	return nil
}
