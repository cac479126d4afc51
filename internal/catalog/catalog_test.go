package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenmarket/storefront/internal/audit"
	"github.com/lumenmarket/storefront/internal/entity"
	"github.com/lumenmarket/storefront/internal/repository/memory"
	"github.com/lumenmarket/storefront/internal/storeerr"
)

func newTestService(t *testing.T) (*Service, *memory.Store) {
	t.Helper()
	store, err := memory.Open("")
	require.NoError(t, err)
	svc := NewService(store.Products(), store.Carts(), store.Customers(), audit.NewRing(50))
	return svc, store
}

func mustSave(t *testing.T, svc *Service, p entity.Product) *entity.Product {
	t.Helper()
	saved, err := svc.Save(context.Background(), p)
	require.NoError(t, err)
	return saved
}

func TestSaveAssignsIDAndTimestamps(t *testing.T) {
	svc, _ := newTestService(t)

	saved := mustSave(t, svc, entity.Product{SKU: "SM-001", Name: "Headphones", Price: 10, Status: entity.ProductActive})

	assert.NotEmpty(t, saved.ID)
	assert.False(t, saved.CreatedAt.IsZero())
	assert.False(t, saved.UpdatedAt.IsZero())
}

func TestSaveRejectsDuplicateSKUCaseInsensitive(t *testing.T) {
	svc, _ := newTestService(t)
	mustSave(t, svc, entity.Product{SKU: "SM-001", Name: "Headphones", Price: 10, Status: entity.ProductActive})

	_, err := svc.Save(context.Background(), entity.Product{SKU: "sm-001", Name: "Other", Price: 5, Status: entity.ProductActive})

	require.Error(t, err)
	assert.True(t, storeerr.IsCode(err, storeerr.CodeConflict))
	assert.Contains(t, err.Error(), "SM-001")
}

func TestSaveRoundTripKeepsFields(t *testing.T) {
	svc, _ := newTestService(t)
	first := mustSave(t, svc, entity.Product{SKU: "SM-001", Name: "Headphones", Price: 10, Stock: 3, Status: entity.ProductActive, Category: "Audio"})

	second := mustSave(t, svc, *first)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.SKU, second.SKU)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)
	assert.Equal(t, first.Stock, second.Stock)
}

func TestSaveUpdatePreservesCreatedAt(t *testing.T) {
	svc, _ := newTestService(t)
	first := mustSave(t, svc, entity.Product{SKU: "SM-001", Name: "Headphones", Price: 10, Status: entity.ProductActive})

	// A payload without a creation timestamp, as a JSON PATCH-style
	// save would produce.
	patch := *first
	patch.CreatedAt = time.Time{}
	patch.Name = "Headphones v2"

	updated := mustSave(t, svc, patch)
	assert.Equal(t, first.CreatedAt, updated.CreatedAt)

	listed, err := svc.List(context.Background(), ListFilter{})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, first.CreatedAt, listed[0].CreatedAt)
}

func TestSaveUpdateUnknownIDIsNotFound(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Save(context.Background(), entity.Product{ID: "missing", SKU: "SM-001", Name: "Ghost", Price: 1})
	assert.True(t, storeerr.IsCode(err, storeerr.CodeNotFound))
}

func TestSaveValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Save(ctx, entity.Product{Name: "No SKU"})
	assert.True(t, storeerr.IsCode(err, storeerr.CodeValidation))

	_, err = svc.Save(ctx, entity.Product{SKU: "X-1", Name: "Bad Price", Price: -1})
	assert.True(t, storeerr.IsCode(err, storeerr.CodeValidation))
}

func TestAdjustStockFloorsAtZero(t *testing.T) {
	svc, store := newTestService(t)
	p := mustSave(t, svc, entity.Product{SKU: "SM-001", Name: "Headphones", Price: 10, Stock: 2, Status: entity.ProductActive})
	ctx := context.Background()

	require.NoError(t, svc.AdjustStock(ctx, p.ID, -5))

	got, err := store.Products().FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Stock)
}

func TestAdjustStockZeroDeltaIsIdempotent(t *testing.T) {
	svc, store := newTestService(t)
	p := mustSave(t, svc, entity.Product{SKU: "SM-001", Name: "Headphones", Price: 10, Stock: 7, Status: entity.ProductActive})
	ctx := context.Background()

	require.NoError(t, svc.AdjustStock(ctx, p.ID, 0))

	got, err := store.Products().FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, got.Stock)
}

func TestAdjustStockUnknownIDIsNoOp(t *testing.T) {
	svc, _ := newTestService(t)
	assert.NoError(t, svc.AdjustStock(context.Background(), "missing", 5))
}

func TestHardDeleteCascadesToCartsAndWishlists(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	p := mustSave(t, svc, entity.Product{SKU: "SM-001", Name: "Headphones", Price: 10, Stock: 5, Status: entity.ProductActive})

	require.NoError(t, store.Carts().Save(ctx, "sess-1", []entity.CartLine{
		{LineID: "l1", ProductID: p.ID, Name: p.Name, UnitPrice: p.Price, Quantity: 1},
		{LineID: "l2", ProductID: "other", Name: "Other", UnitPrice: 1, Quantity: 1},
	}))
	require.NoError(t, store.Customers().Upsert(ctx, &entity.Customer{
		ID: "cust-1", Email: "a@example.com", Status: entity.CustomerActive, Wishlist: []string{p.ID, "other"},
	}))

	require.NoError(t, svc.Delete(ctx, p.ID, HardDelete))

	got, err := store.Products().FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	lines, err := store.Carts().Get(ctx, "sess-1")
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "other", lines[0].ProductID)

	cust, err := store.Customers().FindByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, []string{"other"}, cust.Wishlist)
}

func TestHardDeleteFreesSKU(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	p := mustSave(t, svc, entity.Product{SKU: "SM-001", Name: "Headphones", Price: 10, Status: entity.ProductActive})

	require.NoError(t, svc.Delete(ctx, p.ID, HardDelete))

	_, err := svc.Save(ctx, entity.Product{SKU: "SM-001", Name: "Replacement", Price: 5, Status: entity.ProductActive})
	assert.NoError(t, err)
}

func TestSoftDeleteKeepsSKUReserved(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	p := mustSave(t, svc, entity.Product{SKU: "SM-001", Name: "Headphones", Price: 10, Status: entity.ProductActive})

	require.NoError(t, svc.Delete(ctx, p.ID, SoftDelete))

	_, err := svc.Save(ctx, entity.Product{SKU: "SM-001", Name: "Replacement", Price: 5, Status: entity.ProductActive})
	assert.True(t, storeerr.IsCode(err, storeerr.CodeConflict))

	listed, err := svc.List(ctx, ListFilter{Status: string(entity.ProductArchived)})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, p.ID, listed[0].ID)
}

func TestListExcludesArchivedByDefault(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	mustSave(t, svc, entity.Product{SKU: "A-1", Name: "Active", Price: 1, Status: entity.ProductActive})
	mustSave(t, svc, entity.Product{SKU: "D-1", Name: "Draft", Price: 1, Status: entity.ProductDraft})
	archived := mustSave(t, svc, entity.Product{SKU: "X-1", Name: "Old", Price: 1, Status: entity.ProductActive})
	require.NoError(t, svc.Delete(ctx, archived.ID, SoftDelete))

	listed, err := svc.List(ctx, ListFilter{})
	require.NoError(t, err)
	assert.Len(t, listed, 2)

	all, err := svc.List(ctx, ListFilter{Status: StatusAll})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestListFiltersByQueryAndStockBucket(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	mustSave(t, svc, entity.Product{SKU: "KB-01", Name: "Keyboard", Price: 50, Stock: 0, Status: entity.ProductActive, Collection: "Desk"})
	mustSave(t, svc, entity.Product{SKU: "MN-01", Name: "Monitor", Price: 200, Stock: 4, Status: entity.ProductActive, Collection: "Desk"})
	mustSave(t, svc, entity.Product{SKU: "HP-01", Name: "Headphones", Price: 100, Stock: 40, Status: entity.ProductActive, Collection: "Studio"})

	byQuery, err := svc.List(ctx, ListFilter{Query: "desk"})
	require.NoError(t, err)
	assert.Len(t, byQuery, 2)

	out, err := svc.List(ctx, ListFilter{Stock: StockOut})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "Keyboard", out[0].Name)

	low, err := svc.List(ctx, ListFilter{Stock: StockLow})
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, "Monitor", low[0].Name)
}

func TestListSortsByPriceDescending(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	mustSave(t, svc, entity.Product{SKU: "A-1", Name: "Cheap", Price: 5, Status: entity.ProductActive})
	mustSave(t, svc, entity.Product{SKU: "B-1", Name: "Mid", Price: 50, Status: entity.ProductActive})
	mustSave(t, svc, entity.Product{SKU: "C-1", Name: "Dear", Price: 500, Status: entity.ProductActive})

	listed, err := svc.List(ctx, ListFilter{SortBy: "price", SortDesc: true})
	require.NoError(t, err)
	require.Len(t, listed, 3)
	assert.Equal(t, "Dear", listed[0].Name)
	assert.Equal(t, "Cheap", listed[2].Name)
}

func TestListTieBreaksOnID(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	mustSave(t, svc, entity.Product{SKU: "A-1", Name: "Same", Price: 10, Status: entity.ProductActive})
	mustSave(t, svc, entity.Product{SKU: "B-1", Name: "Same", Price: 10, Status: entity.ProductActive})

	first, err := svc.List(ctx, ListFilter{SortBy: "price"})
	require.NoError(t, err)
	second, err := svc.List(ctx, ListFilter{SortBy: "price"})
	require.NoError(t, err)
	assert.Equal(t, first[0].ID, second[0].ID)
	assert.Less(t, first[0].ID, first[1].ID)
}
