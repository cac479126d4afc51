// Package memory implements the repositories over in-process collections
// with optional JSON snapshots on disk. It is the client-local storage
// variant: four named collections, each written as a whole serialized
// snapshot, seeded exactly once when absent. All operations serialize on
// one mutex, so check-and-commit sequences are atomic per store.
package memory

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/lumenmarket/storefront/internal/entity"
	"github.com/lumenmarket/storefront/internal/storeerr"
)

const keyNamespace = "storefront"

// Store owns the shared collections. Repository views over it are
// obtained from Products(), Orders(), Coupons(), Customers(), Carts().
type Store struct {
	mu   sync.Mutex
	path string // snapshot directory; empty disables persistence

	products  []entity.Product
	orders    []entity.Order
	coupons   []entity.Coupon
	customers []entity.Customer
	carts     map[string][]entity.CartLine
}

// Open creates a store, loading any existing snapshots under path.
// An empty path keeps everything in memory only.
func Open(path string) (*Store, error) {
	s := &Store{path: path, carts: make(map[string][]entity.CartLine)}
	if path == "" {
		return s, nil
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, storeerr.Wrap(storeerr.CodePersistence, err, "failed to create state directory %s", path)
	}
	for name, target := range map[string]any{
		"products":  &s.products,
		"orders":    &s.orders,
		"coupons":   &s.coupons,
		"customers": &s.customers,
	} {
		if err := s.load(name, target); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Store) collectionFile(name string) string {
	return filepath.Join(s.path, fmt.Sprintf("%s.%s.json", keyNamespace, name))
}

func (s *Store) load(name string, target any) error {
	data, err := os.ReadFile(s.collectionFile(name))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return storeerr.Wrap(storeerr.CodePersistence, err, "failed to read %s snapshot", name)
	}
	if err := json.Unmarshal(data, target); err != nil {
		return storeerr.Wrap(storeerr.CodePersistence, err, "failed to decode %s snapshot", name)
	}
	return nil
}

// persist writes the full new snapshot atomically: marshal first, write
// to a temp file, then rename over the old one. A failure at any step
// leaves the previous snapshot untouched.
func (s *Store) persist(name string, value any) error {
	if s.path == "" {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return storeerr.Wrap(storeerr.CodePersistence, err, "failed to encode %s snapshot", name)
	}
	final := s.collectionFile(name)
	tmp := final + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return storeerr.Wrap(storeerr.CodePersistence, err, "failed to write %s snapshot", name)
	}
	if err := os.Rename(tmp, final); err != nil {
		return storeerr.Wrap(storeerr.CodePersistence, err, "failed to replace %s snapshot", name)
	}
	return nil
}

// seeded reports whether a collection snapshot already exists on disk.
// Seeding happens at most once per state directory.
func (s *Store) seeded(name string) bool {
	if s.path == "" {
		return false
	}
	_, err := os.Stat(s.collectionFile(name))
	return err == nil
}
