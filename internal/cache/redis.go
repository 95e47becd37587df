// Package cache provides an optional Redis read-through cache for per-user
// product lists. The server runs fine without Redis: a nil *ProductCache is
// valid and every method on it degrades to a miss or a no-op.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/vichithchamodya/product-catalog/internal/model"
)

// listTTL bounds staleness if an invalidation is ever lost (e.g. Redis
// restarts between a write and the DEL).
const listTTL = 5 * time.Minute

// ProductCache caches each user's full product list under one key,
// "products:<userID>". Mutations invalidate the key; the next list repopulates
// it from the database.
type ProductCache struct {
	client *redis.Client
	logger *slog.Logger
}

// NewProductCache connects to Redis at addr. The caller treats a returned
// error as "run without caching", the same way other optional components are
// handled at startup.
func NewProductCache(addr string, logger *slog.Logger) (*ProductCache, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("cache: connecting to redis at %s: %w", addr, err)
	}

	return &ProductCache{client: client, logger: logger}, nil
}

// Close releases the Redis connection.
func (c *ProductCache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}

// GetList returns the cached list for userID and whether it was present.
// Cache errors are logged and reported as misses; the database remains the
// source of truth.
func (c *ProductCache) GetList(ctx context.Context, userID string) ([]model.Product, bool) {
	if c == nil {
		return nil, false
	}

	raw, err := c.client.Get(ctx, listKey(userID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("cache get failed", slog.String("userID", userID), slog.String("error", err.Error()))
		}
		return nil, false
	}

	var products []model.Product
	if err := json.Unmarshal(raw, &products); err != nil {
		c.logger.Warn("cache entry corrupt, dropping", slog.String("userID", userID), slog.String("error", err.Error()))
		c.client.Del(ctx, listKey(userID))
		return nil, false
	}

	return products, true
}

// SetList stores the list for userID. Failures are logged and ignored.
func (c *ProductCache) SetList(ctx context.Context, userID string, products []model.Product) {
	if c == nil {
		return
	}

	raw, err := json.Marshal(products)
	if err != nil {
		return
	}

	if err := c.client.Set(ctx, listKey(userID), raw, listTTL).Err(); err != nil {
		c.logger.Warn("cache set failed", slog.String("userID", userID), slog.String("error", err.Error()))
	}
}

// Invalidate drops the cached list for userID. Called after every create,
// update, and delete.
func (c *ProductCache) Invalidate(ctx context.Context, userID string) {
	if c == nil {
		return
	}

	if err := c.client.Del(ctx, listKey(userID)).Err(); err != nil {
		c.logger.Warn("cache invalidate failed", slog.String("userID", userID), slog.String("error", err.Error()))
	}
}

func listKey(userID string) string {
	return "products:" + userID
}
