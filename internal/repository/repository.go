package repository

import (
	"context"

	"github.com/lumenmarket/storefront/internal/entity"
)

// ProductRepository handles persistence for products. Insert and Update
// enforce normalized-SKU uniqueness at the storage layer and return a
// storeerr.CodeConflict error on violation.
type ProductRepository interface {
	List(ctx context.Context) ([]entity.Product, error)
	FindByID(ctx context.Context, id string) (*entity.Product, error)
	Insert(ctx context.Context, p *entity.Product) error
	Update(ctx context.Context, p *entity.Product) error

	// AdjustStock applies max(0, stock+delta) atomically and returns the
	// new stock level. Unknown ids are a silent no-op, reported as found=false.
	AdjustStock(ctx context.Context, id string, delta int) (newStock int, found bool, err error)

	// Delete permanently removes the product. Archive flips its status to
	// archived, keeping the SKU reserved.
	Delete(ctx context.Context, id string) error
	Archive(ctx context.Context, id string) error

	// Seed inserts initial products if none exist.
	Seed(ctx context.Context, products []entity.Product) error
}

// OrderRepository handles persistence for orders.
type OrderRepository interface {
	// Place validates stock for every item and decrements it as a single
	// atomic commit. Either all lines decrement and the order is stored,
	// or nothing changes.
	Place(ctx context.Context, order *entity.Order) error

	FindByID(ctx context.Context, id string) (*entity.Order, error)

	// UpdateStatus moves an order from one status to another. It returns
	// found=false when the order id is unknown or its status no longer
	// matches from.
	UpdateStatus(ctx context.Context, id string, from, to entity.OrderStatus) (found bool, err error)

	// List returns all orders, most recently created first.
	List(ctx context.Context) ([]entity.Order, error)
}

// CouponRepository handles persistence for coupons.
type CouponRepository interface {
	// FindByCode matches a normalized code. A missing coupon is (nil, nil).
	FindByCode(ctx context.Context, code string) (*entity.Coupon, error)
	Insert(ctx context.Context, c *entity.Coupon) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]entity.Coupon, error)
	IncrementUsage(ctx context.Context, id string) error
	Seed(ctx context.Context, coupons []entity.Coupon) error
}

// CustomerRepository handles persistence for customer accounts. Email is
// the join key between customers and orders.
type CustomerRepository interface {
	FindByEmail(ctx context.Context, email string) (*entity.Customer, error)
	Upsert(ctx context.Context, c *entity.Customer) error
	List(ctx context.Context) ([]entity.Customer, error)

	// RecordOrder bumps the order count and total spent for the customer
	// with the given email, creating the account if absent.
	RecordOrder(ctx context.Context, email, name string, total float64) error

	// RemoveFromWishlists drops a product id from every wishlist. Used by
	// the hard-delete cascade.
	RemoveFromWishlists(ctx context.Context, productID string) error
}

// AuditRepository is the append-only trail of mutating actions.
type AuditRepository interface {
	Append(ctx context.Context, e entity.AuditEntry) error
	Recent(ctx context.Context, n int) ([]entity.AuditEntry, error)
}

// CartRepository stores session carts.
type CartRepository interface {
	Get(ctx context.Context, sessionID string) ([]entity.CartLine, error)
	Save(ctx context.Context, sessionID string, lines []entity.CartLine) error
	Clear(ctx context.Context, sessionID string) error

	// RemoveProduct drops all lines for a product from every stored cart.
	// Used by the hard-delete cascade.
	RemoveProduct(ctx context.Context, productID string) error
}
