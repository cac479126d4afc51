package memory

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/lumenmarket/storefront/internal/entity"
	"github.com/lumenmarket/storefront/internal/repository"
)

type customerView struct {
	s *Store
}

// Customers returns the customer repository view of the store.
func (s *Store) Customers() repository.CustomerRepository {
	return &customerView{s: s}
}

func (v *customerView) FindByEmail(ctx context.Context, email string) (*entity.Customer, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	for i := range v.s.customers {
		if v.s.customers[i].Email == email {
			c := v.s.customers[i]
			return &c, nil
		}
	}
	return nil, nil
}

func (v *customerView) Upsert(ctx context.Context, c *entity.Customer) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	staged := slices.Clone(v.s.customers)
	replaced := false
	for i := range staged {
		if staged[i].Email == c.Email {
			staged[i] = *c
			replaced = true
			break
		}
	}
	if !replaced {
		staged = append(staged, *c)
	}
	if err := v.s.persist("customers", staged); err != nil {
		return err
	}
	v.s.customers = staged
	return nil
}

func (v *customerView) List(ctx context.Context) ([]entity.Customer, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	return slices.Clone(v.s.customers), nil
}

func (v *customerView) RecordOrder(ctx context.Context, email, name string, total float64) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	staged := slices.Clone(v.s.customers)
	found := false
	for i := range staged {
		if staged[i].Email == email {
			staged[i].TotalOrders++
			staged[i].TotalSpent += total
			staged[i].Name = name
			found = true
			break
		}
	}
	if !found {
		staged = append(staged, entity.Customer{
			ID:          uuid.New().String(),
			Name:        name,
			Email:       email,
			TotalOrders: 1,
			TotalSpent:  total,
			Status:      entity.CustomerActive,
			CreatedAt:   time.Now(),
		})
	}
	if err := v.s.persist("customers", staged); err != nil {
		return err
	}
	v.s.customers = staged
	return nil
}

func (v *customerView) RemoveFromWishlists(ctx context.Context, productID string) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	staged := slices.Clone(v.s.customers)
	changed := false
	for i := range staged {
		wishlist := staged[i].Wishlist
		kept := make([]string, 0, len(wishlist))
		for _, id := range wishlist {
			if id != productID {
				kept = append(kept, id)
			}
		}
		if len(kept) != len(wishlist) {
			staged[i].Wishlist = kept
			changed = true
		}
	}
	if !changed {
		return nil
	}
	if err := v.s.persist("customers", staged); err != nil {
		return err
	}
	v.s.customers = staged
	return nil
}
