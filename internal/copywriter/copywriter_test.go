package copywriter

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	calls int64
	text  string
	err   error
}

func (p *fakeProvider) Generate(ctx context.Context, prompt string) (string, error) {
	atomic.AddInt64(&p.calls, 1)
	return p.text, p.err
}

func (p *fakeProvider) callCount() int64 {
	return atomic.LoadInt64(&p.calls)
}

func TestGenerateCachesByKey(t *testing.T) {
	provider := &fakeProvider{text: "Crisp sound, all day."}
	client := NewClient(provider, time.Minute, time.Minute)
	defer client.Close()
	ctx := context.Background()

	first, err := client.Generate(ctx, "product:p1", "describe headphones")
	require.NoError(t, err)
	assert.Equal(t, "Crisp sound, all day.", first)

	second, err := client.Generate(ctx, "product:p1", "describe headphones")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, int64(1), provider.callCount())
}

func TestGenerateDistinctKeysCallProvider(t *testing.T) {
	provider := &fakeProvider{text: "copy"}
	client := NewClient(provider, time.Minute, time.Minute)
	defer client.Close()
	ctx := context.Background()

	_, err := client.Generate(ctx, "product:p1", "describe p1")
	require.NoError(t, err)
	_, err = client.Generate(ctx, "product:p2", "describe p2")
	require.NoError(t, err)
	assert.Equal(t, int64(2), provider.callCount())
}

func TestGenerateFallsBackDuringCooldown(t *testing.T) {
	provider := &fakeProvider{err: errors.New("provider down")}
	client := NewClient(provider, time.Minute, time.Minute)
	defer client.Close()
	ctx := context.Background()

	// First call trips the breaker.
	_, err := client.Generate(ctx, "product:p1", "describe p1")
	require.Error(t, err)

	// Subsequent calls short-circuit to empty fallback, not errors, and
	// never reach the provider again.
	text, err := client.Generate(ctx, "product:p2", "describe p2")
	require.NoError(t, err)
	assert.Empty(t, text)
	assert.Equal(t, int64(1), provider.callCount())
}

func TestGenerateRecoversAfterCooldown(t *testing.T) {
	provider := &fakeProvider{err: errors.New("provider down")}
	client := NewClient(provider, time.Minute, 20*time.Millisecond)
	defer client.Close()
	ctx := context.Background()

	_, err := client.Generate(ctx, "product:p1", "describe p1")
	require.Error(t, err)

	time.Sleep(40 * time.Millisecond)
	provider.err = nil
	provider.text = "back online"

	text, err := client.Generate(ctx, "product:p1", "describe p1")
	require.NoError(t, err)
	assert.Equal(t, "back online", text)
}

func TestGenerateAfterCloseReturnsError(t *testing.T) {
	provider := &fakeProvider{text: "copy"}
	client := NewClient(provider, time.Minute, time.Minute)
	client.Close()

	_, err := client.Generate(context.Background(), "product:p1", "describe p1")
	assert.Error(t, err)
}

func TestTemplateProviderIsDeterministic(t *testing.T) {
	provider := NewTemplateProvider()
	ctx := context.Background()

	first, err := provider.Generate(ctx, "Wireless Headphones | Audio")
	require.NoError(t, err)
	second, err := provider.Generate(ctx, "Wireless Headphones | Audio")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Contains(t, first, "Wireless Headphones")
	assert.Contains(t, first, "Audio")

	noCategory, err := provider.Generate(ctx, "Wireless Headphones")
	require.NoError(t, err)
	assert.Contains(t, noCategory, "Wireless Headphones")

	_, err = provider.Generate(ctx, "")
	assert.Error(t, err)
}

func TestCacheExpires(t *testing.T) {
	cache := newTTLCache(20 * time.Millisecond)
	cache.set("k", "v")

	got, ok := cache.get("k")
	require.True(t, ok)
	assert.Equal(t, "v", got)

	time.Sleep(40 * time.Millisecond)
	_, ok = cache.get("k")
	assert.False(t, ok)
}
