package audit

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenmarket/storefront/internal/entity"
)

func TestRingRecentNewestFirst(t *testing.T) {
	ring := NewRing(10)
	ctx := context.Background()
	for i := 1; i <= 3; i++ {
		require.NoError(t, ring.Append(ctx, entity.AuditEntry{Action: fmt.Sprintf("action-%d", i)}))
	}

	entries, err := ring.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "action-3", entries[0].Action)
	assert.Equal(t, "action-1", entries[2].Action)
}

func TestRingEvictsOldestAtCapacity(t *testing.T) {
	ring := NewRing(3)
	ctx := context.Background()
	for i := 1; i <= 5; i++ {
		require.NoError(t, ring.Append(ctx, entity.AuditEntry{Action: fmt.Sprintf("action-%d", i)}))
	}

	entries, err := ring.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "action-5", entries[0].Action)
	assert.Equal(t, "action-3", entries[2].Action)
}

func TestRingRecentLimit(t *testing.T) {
	ring := NewRing(10)
	ctx := context.Background()
	for i := 1; i <= 6; i++ {
		require.NoError(t, ring.Append(ctx, entity.AuditEntry{Action: fmt.Sprintf("action-%d", i)}))
	}

	entries, err := ring.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "action-6", entries[0].Action)
	assert.Equal(t, "action-5", entries[1].Action)
}

func TestRingAssignsSequentialIDs(t *testing.T) {
	ring := NewRing(5)
	ctx := context.Background()
	require.NoError(t, ring.Append(ctx, entity.AuditEntry{Action: "first"}))
	require.NoError(t, ring.Append(ctx, entity.AuditEntry{Action: "second"}))

	entries, err := ring.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "2", entries[0].ID)
	assert.Equal(t, "1", entries[1].ID)
}

func TestRingDefaultCapacity(t *testing.T) {
	ring := NewRing(0)
	assert.Equal(t, 500, ring.capacity)
}
