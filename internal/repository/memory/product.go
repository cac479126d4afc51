package memory

import (
	"context"
	"slices"

	"github.com/lumenmarket/storefront/internal/entity"
	"github.com/lumenmarket/storefront/internal/repository"
	"github.com/lumenmarket/storefront/internal/storeerr"
)

type productView struct {
	s *Store
}

// Products returns the product repository view of the store.
func (s *Store) Products() repository.ProductRepository {
	return &productView{s: s}
}

func (v *productView) List(ctx context.Context) ([]entity.Product, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	return slices.Clone(v.s.products), nil
}

func (v *productView) FindByID(ctx context.Context, id string) (*entity.Product, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if i := v.s.productIndex(id); i >= 0 {
		p := v.s.products[i]
		return &p, nil
	}
	return nil, nil
}

func (v *productView) Insert(ctx context.Context, p *entity.Product) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if conflict := v.s.skuConflict(p.SKU, p.ID); conflict != "" {
		return storeerr.New(storeerr.CodeConflict, "a product with SKU %q already exists", conflict)
	}
	staged := append(slices.Clone(v.s.products), *p)
	if err := v.s.persist("products", staged); err != nil {
		return err
	}
	v.s.products = staged
	return nil
}

func (v *productView) Update(ctx context.Context, p *entity.Product) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	i := v.s.productIndex(p.ID)
	if i < 0 {
		return storeerr.New(storeerr.CodeNotFound, "product %s not found", p.ID)
	}
	if conflict := v.s.skuConflict(p.SKU, p.ID); conflict != "" {
		return storeerr.New(storeerr.CodeConflict, "a product with SKU %q already exists", conflict)
	}
	staged := slices.Clone(v.s.products)
	staged[i] = *p
	if err := v.s.persist("products", staged); err != nil {
		return err
	}
	v.s.products = staged
	return nil
}

func (v *productView) AdjustStock(ctx context.Context, id string, delta int) (int, bool, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	i := v.s.productIndex(id)
	if i < 0 {
		return 0, false, nil
	}
	stock := v.s.products[i].Stock + delta
	if stock < 0 {
		stock = 0
	}
	staged := slices.Clone(v.s.products)
	staged[i].Stock = stock
	if err := v.s.persist("products", staged); err != nil {
		return 0, false, err
	}
	v.s.products = staged
	return stock, true, nil
}

func (v *productView) Delete(ctx context.Context, id string) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	i := v.s.productIndex(id)
	if i < 0 {
		return nil
	}
	staged := slices.Delete(slices.Clone(v.s.products), i, i+1)
	if err := v.s.persist("products", staged); err != nil {
		return err
	}
	v.s.products = staged
	return nil
}

func (v *productView) Archive(ctx context.Context, id string) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	i := v.s.productIndex(id)
	if i < 0 {
		return nil
	}
	staged := slices.Clone(v.s.products)
	staged[i].Status = entity.ProductArchived
	if err := v.s.persist("products", staged); err != nil {
		return err
	}
	v.s.products = staged
	return nil
}

func (v *productView) Seed(ctx context.Context, products []entity.Product) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if len(v.s.products) > 0 || v.s.seeded("products") {
		return nil
	}
	if err := v.s.persist("products", products); err != nil {
		return err
	}
	v.s.products = slices.Clone(products)
	return nil
}

// callers hold s.mu

func (s *Store) productIndex(id string) int {
	for i := range s.products {
		if s.products[i].ID == id {
			return i
		}
	}
	return -1
}

// skuConflict returns the stored SKU that collides with sku on another
// product, or "" when the SKU is free. Archived products keep their SKU
// reserved; hard-deleted products have already left the collection.
func (s *Store) skuConflict(sku, excludeID string) string {
	norm := entity.NormalizeSKU(sku)
	for i := range s.products {
		if s.products[i].ID != excludeID && entity.NormalizeSKU(s.products[i].SKU) == norm {
			return s.products[i].SKU
		}
	}
	return ""
}
