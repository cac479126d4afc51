// Package audit keeps the append-only trail of mutating actions.
package audit

import (
	"context"
	"strconv"
	"sync"

	"github.com/lumenmarket/storefront/internal/entity"
	"github.com/lumenmarket/storefront/internal/repository"
)

// Ring is a bounded in-memory audit trail: the most recent capacity
// entries are kept, older ones are dropped. It is the client-local
// variant; the server variant stores entries unbounded in Postgres.
type Ring struct {
	mu       sync.Mutex
	entries  []entity.AuditEntry
	start    int
	count    int
	capacity int
	seq      int64
}

// NewRing creates a ring trail. A capacity below 1 defaults to 500.
func NewRing(capacity int) *Ring {
	if capacity < 1 {
		capacity = 500
	}
	return &Ring{entries: make([]entity.AuditEntry, capacity), capacity: capacity}
}

var _ repository.AuditRepository = (*Ring)(nil)

// Append records an entry, evicting the oldest when full. Entries are
// never mutated or deleted individually.
func (r *Ring) Append(ctx context.Context, e entity.AuditEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	e.ID = strconv.FormatInt(r.seq, 10)
	pos := (r.start + r.count) % r.capacity
	r.entries[pos] = e
	if r.count < r.capacity {
		r.count++
	} else {
		r.start = (r.start + 1) % r.capacity
	}
	return nil
}

// Recent returns up to n entries, newest first.
func (r *Ring) Recent(ctx context.Context, n int) ([]entity.AuditEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n <= 0 || n > r.count {
		n = r.count
	}
	out := make([]entity.AuditEntry, 0, n)
	for i := 0; i < n; i++ {
		pos := (r.start + r.count - 1 - i) % r.capacity
		out = append(out, r.entries[pos])
	}
	return out, nil
}
