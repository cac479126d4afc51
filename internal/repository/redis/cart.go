// Package redis stores session carts in Redis, one key per session.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lumenmarket/storefront/internal/entity"
	"github.com/lumenmarket/storefront/internal/repository"
)

const cartKeyPrefix = "storefront:cart:"

type cartRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCartRepository creates a CartRepository backed by Redis. Each save
// refreshes the session TTL.
func NewCartRepository(client *redis.Client, ttl time.Duration) repository.CartRepository {
	return &cartRepository{client: client, ttl: ttl}
}

func (r *cartRepository) Get(ctx context.Context, sessionID string) ([]entity.CartLine, error) {
	data, err := r.client.Get(ctx, cartKeyPrefix+sessionID).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cart: %w", err)
	}

	var lines []entity.CartLine
	if err := json.Unmarshal(data, &lines); err != nil {
		return nil, fmt.Errorf("failed to decode cart: %w", err)
	}
	return lines, nil
}

func (r *cartRepository) Save(ctx context.Context, sessionID string, lines []entity.CartLine) error {
	data, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}
	if err := r.client.Set(ctx, cartKeyPrefix+sessionID, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}

func (r *cartRepository) Clear(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, cartKeyPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

// RemoveProduct scans every cart key and drops lines for the product.
// Used by the hard-delete cascade; cart counts are small enough that a
// full scan is acceptable.
func (r *cartRepository) RemoveProduct(ctx context.Context, productID string) error {
	iter := r.client.Scan(ctx, 0, cartKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		data, err := r.client.Get(ctx, key).Bytes()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to read cart %s: %w", key, err)
		}

		var lines []entity.CartLine
		if err := json.Unmarshal(data, &lines); err != nil {
			return fmt.Errorf("failed to decode cart %s: %w", key, err)
		}

		kept := lines[:0]
		for _, line := range lines {
			if line.ProductID != productID {
				kept = append(kept, line)
			}
		}
		if len(kept) == len(lines) {
			continue
		}

		updated, err := json.Marshal(kept)
		if err != nil {
			return fmt.Errorf("failed to encode cart %s: %w", key, err)
		}
		if err := r.client.Set(ctx, key, updated, redis.KeepTTL).Err(); err != nil {
			return fmt.Errorf("failed to update cart %s: %w", key, err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan carts: %w", err)
	}
	return nil
}
