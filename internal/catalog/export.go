package catalog

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"
)

// ExportDelimited renders the filtered, sorted listing as CSV. Fields
// containing the delimiter or quotes are quoted with internal quotes
// doubled, per RFC 4180.
func (s *Service) ExportDelimited(ctx context.Context, filter ListFilter) (string, error) {
	products, err := s.List(ctx, filter)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"SKU", "Name", "Category", "Collection", "Stock", "Price", "Status"}); err != nil {
		return "", fmt.Errorf("failed to write export header: %w", err)
	}
	for _, p := range products {
		record := []string{
			p.SKU,
			p.Name,
			p.Category,
			p.Collection,
			strconv.Itoa(p.Stock),
			strconv.FormatFloat(p.Price, 'f', 2, 64),
			string(p.Status),
		}
		if err := w.Write(record); err != nil {
			return "", fmt.Errorf("failed to write export row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("failed to flush export: %w", err)
	}
	return buf.String(), nil
}

// ExportFilename is the conventional download name for an export taken
// on the given day.
func ExportFilename(t time.Time) string {
	return "products-" + t.Format("2006-01-02") + ".csv"
}
