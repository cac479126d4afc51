package memory

import (
	"context"
	"slices"
	"sort"

	"github.com/lumenmarket/storefront/internal/entity"
	"github.com/lumenmarket/storefront/internal/repository"
	"github.com/lumenmarket/storefront/internal/storeerr"
)

type orderView struct {
	s *Store
}

// Orders returns the order repository view of the store.
func (s *Store) Orders() repository.OrderRepository {
	return &orderView{s: s}
}

// Place runs the availability check and the decrements under the store
// mutex, so concurrent placements cannot both pass the check phase. All
// mutations are staged on copies and committed only after both
// snapshots are on disk; a persistence failure leaves memory and disk
// exactly as they were.
func (v *orderView) Place(ctx context.Context, order *entity.Order) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	products := slices.Clone(v.s.products)
	for _, item := range order.Items {
		i := -1
		for j := range products {
			if products[j].ID == item.ProductID {
				i = j
				break
			}
		}
		if i < 0 {
			return storeerr.New(storeerr.CodeNotFound, "product %s no longer exists", item.ProductID)
		}
		if products[i].Stock < item.Quantity {
			return storeerr.New(storeerr.CodeInsufficientStock,
				"insufficient stock for %s (available: %d, requested: %d)",
				item.Name, products[i].Stock, item.Quantity)
		}
		products[i].Stock -= item.Quantity
	}

	orders := append(slices.Clone(v.s.orders), *order)

	if err := v.s.persist("products", products); err != nil {
		return err
	}
	if err := v.s.persist("orders", orders); err != nil {
		// Best-effort restore of the products snapshot already written.
		_ = v.s.persist("products", v.s.products)
		return err
	}
	v.s.products = products
	v.s.orders = orders
	return nil
}

func (v *orderView) FindByID(ctx context.Context, id string) (*entity.Order, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	for i := range v.s.orders {
		if v.s.orders[i].ID == id {
			o := v.s.orders[i]
			return &o, nil
		}
	}
	return nil, nil
}

func (v *orderView) UpdateStatus(ctx context.Context, id string, from, to entity.OrderStatus) (bool, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	for i := range v.s.orders {
		if v.s.orders[i].ID == id && v.s.orders[i].Status == from {
			staged := slices.Clone(v.s.orders)
			staged[i].Status = to
			if err := v.s.persist("orders", staged); err != nil {
				return false, err
			}
			v.s.orders = staged
			return true, nil
		}
	}
	return false, nil
}

func (v *orderView) List(ctx context.Context) ([]entity.Order, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	out := slices.Clone(v.s.orders)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}
