package order

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenmarket/storefront/internal/audit"
	"github.com/lumenmarket/storefront/internal/entity"
	"github.com/lumenmarket/storefront/internal/pricing"
	"github.com/lumenmarket/storefront/internal/repository/memory"
	"github.com/lumenmarket/storefront/internal/storeerr"
)

type capturedEvent struct {
	topic string
	key   string
	event any
}

type fakePublisher struct {
	mu     sync.Mutex
	events []capturedEvent
}

func (p *fakePublisher) PublishEvent(ctx context.Context, topic, key string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, capturedEvent{topic: topic, key: key, event: event})
	return nil
}

func (p *fakePublisher) published() []capturedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]capturedEvent, len(p.events))
	copy(out, p.events)
	return out
}

func newTestEngine(t *testing.T) (*Engine, *memory.Store, *fakePublisher) {
	t.Helper()
	store, err := memory.Open("")
	require.NoError(t, err)
	pub := &fakePublisher{}
	eng := NewEngine(store.Orders(), store.Customers(), store.Coupons(), audit.NewRing(50), pub)
	return eng, store, pub
}

func seedProduct(t *testing.T, store *memory.Store, id string, stock int) {
	t.Helper()
	err := store.Products().Insert(context.Background(), &entity.Product{
		ID:     id,
		SKU:    "SKU-" + id,
		Name:   "Product " + id,
		Price:  10,
		Stock:  stock,
		Status: entity.ProductActive,
	})
	require.NoError(t, err)
}

func cartLine(productID string, qty int) entity.CartLine {
	return entity.CartLine{
		LineID:    "line-" + productID,
		ProductID: productID,
		Name:      "Product " + productID,
		UnitPrice: 10,
		Quantity:  qty,
	}
}

func TestPlaceOrderDrainsStockThenRejectsNextOrder(t *testing.T) {
	eng, store, _ := newTestEngine(t)
	ctx := context.Background()
	seedProduct(t, store, "p1", 5)
	info := CustomerInfo{Name: "Ada", Email: "ada@example.com"}

	placed, err := eng.PlaceOrder(ctx, []entity.CartLine{cartLine("p1", 5)}, info, pricing.Quote{Total: 50})
	require.NoError(t, err)
	assert.Equal(t, entity.OrderPaid, placed.Status)

	p, err := store.Products().FindByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 0, p.Stock)

	_, err = eng.PlaceOrder(ctx, []entity.CartLine{cartLine("p1", 1)}, info, pricing.Quote{Total: 10})
	require.Error(t, err)
	assert.True(t, storeerr.IsCode(err, storeerr.CodeInsufficientStock))
	assert.Contains(t, err.Error(), "available: 0")

	// The failed attempt left no trace.
	orders, err := eng.List(ctx)
	require.NoError(t, err)
	assert.Len(t, orders, 1)
}

func TestPlaceOrderInsufficientStockLeavesEverythingUntouched(t *testing.T) {
	eng, store, pub := newTestEngine(t)
	ctx := context.Background()
	seedProduct(t, store, "p1", 5)
	seedProduct(t, store, "p2", 1)

	cart := []entity.CartLine{cartLine("p1", 2), cartLine("p2", 3)}
	_, err := eng.PlaceOrder(ctx, cart, CustomerInfo{Email: "ada@example.com"}, pricing.Quote{})
	require.Error(t, err)
	assert.True(t, storeerr.IsCode(err, storeerr.CodeInsufficientStock))

	p1, err := store.Products().FindByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 5, p1.Stock)
	p2, err := store.Products().FindByID(ctx, "p2")
	require.NoError(t, err)
	assert.Equal(t, 1, p2.Stock)
	assert.Empty(t, pub.published())
}

func TestPlaceOrderValidation(t *testing.T) {
	eng, store, _ := newTestEngine(t)
	ctx := context.Background()
	seedProduct(t, store, "p1", 5)

	_, err := eng.PlaceOrder(ctx, nil, CustomerInfo{Email: "ada@example.com"}, pricing.Quote{})
	assert.True(t, storeerr.IsCode(err, storeerr.CodeValidation))

	_, err = eng.PlaceOrder(ctx, []entity.CartLine{cartLine("p1", 1)}, CustomerInfo{}, pricing.Quote{})
	assert.True(t, storeerr.IsCode(err, storeerr.CodeValidation))

	_, err = eng.PlaceOrder(ctx, []entity.CartLine{cartLine("p1", 0)}, CustomerInfo{Email: "ada@example.com"}, pricing.Quote{})
	assert.True(t, storeerr.IsCode(err, storeerr.CodeValidation))
}

func TestPlaceOrderRecordsCustomerCouponAndEvent(t *testing.T) {
	eng, store, pub := newTestEngine(t)
	ctx := context.Background()
	seedProduct(t, store, "p1", 5)
	require.NoError(t, store.Coupons().Insert(ctx, &entity.Coupon{
		ID: "c1", Code: "WELCOME10", DiscountType: entity.DiscountPercentage, Value: 10, Status: entity.CouponActive,
	}))

	placed, err := eng.PlaceOrder(ctx,
		[]entity.CartLine{cartLine("p1", 2)},
		CustomerInfo{Name: "Ada", Email: "ada@example.com"},
		pricing.Quote{Subtotal: 20, Discount: 2, Tax: 1.8, Total: 19.8, CouponID: "c1"},
	)
	require.NoError(t, err)
	assert.Regexp(t, `^ORD-[A-Z2-9]{6}$`, placed.ID)
	assert.Equal(t, 19.8, placed.Total)

	cust, err := store.Customers().FindByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	require.NotNil(t, cust)
	assert.Equal(t, 1, cust.TotalOrders)
	assert.Equal(t, 19.8, cust.TotalSpent)

	coupon, err := store.Coupons().FindByCode(ctx, "WELCOME10")
	require.NoError(t, err)
	require.NotNil(t, coupon)
	assert.Equal(t, 1, coupon.UsageCount)

	events := pub.published()
	require.Len(t, events, 1)
	assert.Equal(t, "orders.placed", events[0].topic)
	assert.Equal(t, placed.ID, events[0].key)
	evt, ok := events[0].event.(entity.OrderPlaced)
	require.True(t, ok)
	assert.Equal(t, placed.ID, evt.OrderID)
	assert.Equal(t, "ada@example.com", evt.CustomerEmail)
}

func TestUpdateStatusWalksFulfillmentLifecycle(t *testing.T) {
	eng, store, pub := newTestEngine(t)
	ctx := context.Background()
	seedProduct(t, store, "p1", 5)

	placed, err := eng.PlaceOrder(ctx, []entity.CartLine{cartLine("p1", 1)},
		CustomerInfo{Email: "ada@example.com"}, pricing.Quote{Total: 10})
	require.NoError(t, err)

	for _, next := range []entity.OrderStatus{entity.OrderShipped, entity.OrderDelivered, entity.OrderReturnRequested} {
		require.NoError(t, eng.UpdateStatus(ctx, placed.ID, next))
	}

	got, err := store.Orders().FindByID(ctx, placed.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderReturnRequested, got.Status)

	// One placement event plus three status events.
	assert.Len(t, pub.published(), 4)
}

func TestUpdateStatusRejectsIllegalTransition(t *testing.T) {
	eng, store, _ := newTestEngine(t)
	ctx := context.Background()
	seedProduct(t, store, "p1", 5)

	placed, err := eng.PlaceOrder(ctx, []entity.CartLine{cartLine("p1", 1)},
		CustomerInfo{Email: "ada@example.com"}, pricing.Quote{Total: 10})
	require.NoError(t, err)

	err = eng.UpdateStatus(ctx, placed.ID, entity.OrderDelivered)
	require.Error(t, err)
	assert.True(t, storeerr.IsCode(err, storeerr.CodeValidation))

	got, err := store.Orders().FindByID(ctx, placed.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderPaid, got.Status)
}

func TestUpdateStatusUnknownOrderIsNoOp(t *testing.T) {
	eng, _, pub := newTestEngine(t)
	require.NoError(t, eng.UpdateStatus(context.Background(), "ORD-MISSING", entity.OrderShipped))
	assert.Empty(t, pub.published())
}

func TestConcurrentPlacementOnLastUnit(t *testing.T) {
	eng, store, _ := newTestEngine(t)
	ctx := context.Background()
	seedProduct(t, store, "p1", 1)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = eng.PlaceOrder(ctx, []entity.CartLine{cartLine("p1", 1)},
				CustomerInfo{Email: "ada@example.com"}, pricing.Quote{Total: 10})
		}(i)
	}
	wg.Wait()

	var ok, rejected int
	for _, err := range errs {
		if err == nil {
			ok++
		} else if storeerr.IsCode(err, storeerr.CodeInsufficientStock) {
			rejected++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, rejected)

	p, err := store.Products().FindByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 0, p.Stock)

	orders, err := eng.List(ctx)
	require.NoError(t, err)
	assert.Len(t, orders, 1)
}
