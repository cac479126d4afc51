// Package copywriter is the client for the external text-generation
// service that produces marketing copy and insight text. It caches
// generated text per semantic cache key and trips a circuit breaker on
// provider failure, short-circuiting to fallback text for a cooldown
// instead of retrying.
package copywriter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
)

// Provider is the external generation backend.
type Provider interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Client serializes generation calls through a single worker, so at
// most one provider call is in flight at a time.
type Client struct {
	provider Provider
	cache    *ttlCache
	breaker  *gobreaker.CircuitBreaker
	requests chan request
	done     chan struct{}
}

type request struct {
	ctx    context.Context
	prompt string
	reply  chan reply
}

type reply struct {
	text string
	err  error
}

// NewClient builds a client. cacheTTL is how long generated text is
// reused for the same cache key; cooldown is how long generation
// short-circuits after a provider failure.
func NewClient(provider Provider, cacheTTL, cooldown time.Duration) *Client {
	c := &Client{
		provider: provider,
		cache:    newTTLCache(cacheTTL),
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "copywriter",
			MaxRequests: 1,
			Timeout:     cooldown,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 1
			},
		}),
		requests: make(chan request),
		done:     make(chan struct{}),
	}
	go c.worker()
	return c
}

// Generate returns text for the prompt. cacheKey must be derived
// deterministically from the semantic inputs so repeated calls within
// the cache TTL hit the cache. During a provider cooldown it returns
// empty fallback text with no error.
func (c *Client) Generate(ctx context.Context, cacheKey, prompt string) (string, error) {
	if text, ok := c.cache.get(cacheKey); ok {
		return text, nil
	}

	req := request{ctx: ctx, prompt: prompt, reply: make(chan reply, 1)}
	select {
	case c.requests <- req:
	case <-ctx.Done():
		return "", ctx.Err()
	case <-c.done:
		return "", errors.New("copywriter client closed")
	}

	select {
	case res := <-req.reply:
		if errors.Is(res.err, gobreaker.ErrOpenState) || errors.Is(res.err, gobreaker.ErrTooManyRequests) {
			slog.Debug("Copy generation in cooldown, serving fallback", "key", cacheKey)
			return "", nil
		}
		if res.err != nil {
			return "", fmt.Errorf("copy generation failed: %w", res.err)
		}
		c.cache.set(cacheKey, res.text)
		return res.text, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Close stops the worker. Pending Generate calls return an error.
func (c *Client) Close() {
	close(c.done)
}

func (c *Client) worker() {
	for {
		select {
		case req := <-c.requests:
			out, err := c.breaker.Execute(func() (any, error) {
				return c.provider.Generate(req.ctx, req.prompt)
			})
			if err != nil {
				req.reply <- reply{err: err}
				continue
			}
			req.reply <- reply{text: out.(string)}
		case <-c.done:
			return
		}
	}
}
