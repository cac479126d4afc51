package catalog

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenmarket/storefront/internal/entity"
)

func TestExportDelimitedHeaderAndRows(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	mustSave(t, svc, entity.Product{SKU: "SM-001", Name: "Headphones", Price: 19.9, Stock: 3, Status: entity.ProductActive, Category: "Audio"})

	out, err := svc.ExportDelimited(ctx, ListFilter{})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "SKU,Name,Category,Collection,Stock,Price,Status", lines[0])
	assert.Equal(t, "SM-001,Headphones,Audio,,3,19.90,active", lines[1])
}

func TestExportDelimitedQuotesCommasAndQuotes(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	mustSave(t, svc, entity.Product{SKU: "SM-002", Name: `Cable, 2m "braided"`, Price: 5, Status: entity.ProductActive})

	out, err := svc.ExportDelimited(ctx, ListFilter{})
	require.NoError(t, err)
	assert.Contains(t, out, `"Cable, 2m ""braided"""`)
}

func TestExportDelimitedRespectsFilter(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	mustSave(t, svc, entity.Product{SKU: "A-1", Name: "Keep", Price: 1, Status: entity.ProductActive, Category: "Audio"})
	mustSave(t, svc, entity.Product{SKU: "B-1", Name: "Skip", Price: 1, Status: entity.ProductActive, Category: "Video"})

	out, err := svc.ExportDelimited(ctx, ListFilter{Category: "Audio"})
	require.NoError(t, err)
	assert.Contains(t, out, "Keep")
	assert.NotContains(t, out, "Skip")
}

func TestExportFilename(t *testing.T) {
	day := time.Date(2026, 3, 14, 15, 9, 0, 0, time.UTC)
	assert.Equal(t, "products-2026-03-14.csv", ExportFilename(day))
}
