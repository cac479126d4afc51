// Package catalog owns the product collection: filtered listing, saves
// with SKU uniqueness, stock adjustment, and the two delete policies.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lumenmarket/storefront/internal/entity"
	"github.com/lumenmarket/storefront/internal/repository"
	"github.com/lumenmarket/storefront/internal/storeerr"
)

// StockBucket narrows a listing by stock level.
type StockBucket string

const (
	StockAll StockBucket = ""
	StockLow StockBucket = "low" // 1-9 units
	StockOut StockBucket = "out" // 0 units
)

// StatusAll requests products in every lifecycle state. An empty status
// filter returns everything except archived products.
const StatusAll = "all"

// ListFilter narrows and orders a product listing.
type ListFilter struct {
	// Query is matched case-insensitively as a substring of name, SKU,
	// or collection.
	Query    string
	Category string
	Status   string // "", active, draft, archived, or StatusAll
	Stock    StockBucket

	// SortBy is one of price, stock, name, createdAt, rating; default
	// createdAt. Ties break on product id ascending.
	SortBy   string
	SortDesc bool
}

// DeletePolicy selects how Delete removes a product.
type DeletePolicy string

const (
	// HardDelete purges the product and cascades removal from every cart
	// and wishlist. The SKU becomes reusable immediately.
	HardDelete DeletePolicy = "hard"
	// SoftDelete archives the product. It stays queryable under the
	// archived status and its SKU stays reserved.
	SoftDelete DeletePolicy = "soft"
)

// Service is the catalog store.
type Service struct {
	products  repository.ProductRepository
	carts     repository.CartRepository
	customers repository.CustomerRepository
	audit     repository.AuditRepository
}

func NewService(
	products repository.ProductRepository,
	carts repository.CartRepository,
	customers repository.CustomerRepository,
	audit repository.AuditRepository,
) *Service {
	return &Service{products: products, carts: carts, customers: customers, audit: audit}
}

// List returns the filtered, sorted product listing.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]entity.Product, error) {
	all, err := s.products.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	query := strings.ToLower(strings.TrimSpace(filter.Query))
	var out []entity.Product
	for _, p := range all {
		if !matchStatus(p.Status, filter.Status) {
			continue
		}
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		if query != "" && !matchQuery(p, query) {
			continue
		}
		switch filter.Stock {
		case StockOut:
			if p.Stock != 0 {
				continue
			}
		case StockLow:
			if p.Stock < 1 || p.Stock > 9 {
				continue
			}
		}
		out = append(out, p)
	}

	sortProducts(out, filter.SortBy, filter.SortDesc)
	return out, nil
}

func matchStatus(status entity.ProductStatus, want string) bool {
	switch want {
	case "":
		return status != entity.ProductArchived
	case StatusAll:
		return true
	default:
		return string(status) == want
	}
}

func matchQuery(p entity.Product, query string) bool {
	return strings.Contains(strings.ToLower(p.Name), query) ||
		strings.Contains(strings.ToLower(p.SKU), query) ||
		strings.Contains(strings.ToLower(p.Collection), query)
}

func sortProducts(products []entity.Product, sortBy string, desc bool) {
	less := func(a, b entity.Product) bool {
		switch sortBy {
		case "price":
			if a.Price != b.Price {
				return a.Price < b.Price
			}
		case "stock":
			if a.Stock != b.Stock {
				return a.Stock < b.Stock
			}
		case "name":
			an, bn := strings.ToLower(a.Name), strings.ToLower(b.Name)
			if an != bn {
				return an < bn
			}
		case "rating":
			if a.Rating != b.Rating {
				return a.Rating < b.Rating
			}
		default: // createdAt
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.Before(b.CreatedAt)
			}
		}
		return a.ID < b.ID
	}
	sort.Slice(products, func(i, j int) bool {
		if desc {
			return less(products[j], products[i])
		}
		return less(products[i], products[j])
	})
}

// Find returns a product by id, or a not-found error.
func (s *Service) Find(ctx context.Context, id string) (*entity.Product, error) {
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, storeerr.New(storeerr.CodeNotFound, "product %s not found", id)
	}
	return p, nil
}

// Save creates or updates a product. A new product gets a generated id
// and creation timestamp; an existing one is updated in place with a
// fresh update timestamp. Normalized-SKU conflicts fail before any
// mutation reaches storage.
func (s *Service) Save(ctx context.Context, p entity.Product) (*entity.Product, error) {
	if strings.TrimSpace(p.SKU) == "" {
		return nil, storeerr.New(storeerr.CodeValidation, "product SKU is required")
	}
	if strings.TrimSpace(p.Name) == "" {
		return nil, storeerr.New(storeerr.CodeValidation, "product name is required")
	}
	if p.Price < 0 {
		return nil, storeerr.New(storeerr.CodeValidation, "product price must not be negative")
	}
	if p.Stock < 0 {
		return nil, storeerr.New(storeerr.CodeValidation, "product stock must not be negative")
	}
	if p.Status == "" {
		p.Status = entity.ProductDraft
	}

	now := time.Now()
	p.UpdatedAt = now

	if p.ID == "" {
		p.ID = uuid.New().String()
		p.CreatedAt = now
		if err := s.products.Insert(ctx, &p); err != nil {
			return nil, err
		}
		s.record(ctx, "product.created", p.ID, fmt.Sprintf("created product %s (%s)", p.Name, p.SKU))
		return &p, nil
	}

	existing, err := s.products.FindByID(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, storeerr.New(storeerr.CodeNotFound, "product %s not found", p.ID)
	}
	// The creation timestamp belongs to the stored record; a partial
	// payload must not reset it.
	p.CreatedAt = existing.CreatedAt

	if err := s.products.Update(ctx, &p); err != nil {
		return nil, err
	}
	s.record(ctx, "product.updated", p.ID, fmt.Sprintf("updated product %s (%s)", p.Name, p.SKU))
	return &p, nil
}

// AdjustStock applies max(0, stock+delta). Unknown ids are a silent
// no-op per the idempotent-update policy.
func (s *Service) AdjustStock(ctx context.Context, id string, delta int) error {
	newStock, found, err := s.products.AdjustStock(ctx, id, delta)
	if err != nil {
		return err
	}
	if !found || delta == 0 {
		return nil
	}
	s.record(ctx, "product.stock_adjusted", id, fmt.Sprintf("stock adjusted by %+d to %d", delta, newStock))
	return nil
}

// Delete removes a product under the chosen policy. Hard delete cascades
// removal from every stored cart and wishlist.
func (s *Service) Delete(ctx context.Context, id string, policy DeletePolicy) error {
	switch policy {
	case SoftDelete:
		if err := s.products.Archive(ctx, id); err != nil {
			return err
		}
		s.record(ctx, "product.archived", id, "product archived")
		return nil
	case HardDelete, "":
		if err := s.products.Delete(ctx, id); err != nil {
			return err
		}
		if err := s.carts.RemoveProduct(ctx, id); err != nil {
			return fmt.Errorf("failed to cascade delete into carts: %w", err)
		}
		if err := s.customers.RemoveFromWishlists(ctx, id); err != nil {
			return fmt.Errorf("failed to cascade delete into wishlists: %w", err)
		}
		s.record(ctx, "product.deleted", id, "product permanently deleted")
		return nil
	default:
		return storeerr.New(storeerr.CodeValidation, "unknown delete policy %q", policy)
	}
}

func (s *Service) record(ctx context.Context, action, targetID, message string) {
	if s.audit == nil {
		return
	}
	err := s.audit.Append(ctx, entity.AuditEntry{
		Action:   action,
		TargetID: targetID,
		Message:  message,
		Actor:    "catalog",
		At:       time.Now(),
	})
	if err != nil {
		slog.Error("Failed to append audit entry", "action", action, "err", err)
	}
}
