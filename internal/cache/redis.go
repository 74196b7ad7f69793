package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/egannguyen/go-ecommerce-backend/internal/entity"
)

const productListKey = "catalog:products"

// ProductCache is a Redis cache-aside store for the product listing. All
// failures degrade to a cache miss; Redis being down never breaks reads.
type ProductCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewProductCache(rdb *redis.Client, ttl time.Duration) *ProductCache {
	return &ProductCache{rdb: rdb, ttl: ttl}
}

func (c *ProductCache) GetProducts(ctx context.Context) ([]entity.Product, bool) {
	raw, err := c.rdb.Get(ctx, productListKey).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("Product cache read failed", "err", err)
		return nil, false
	}

	var products []entity.Product
	if err := json.Unmarshal(raw, &products); err != nil {
		slog.Warn("Product cache entry corrupt, dropping", "err", err)
		c.Invalidate(ctx)
		return nil, false
	}
	return products, true
}

func (c *ProductCache) SetProducts(ctx context.Context, products []entity.Product) {
	raw, err := json.Marshal(products)
	if err != nil {
		slog.Warn("Failed to marshal products for cache", "err", err)
		return
	}
	if err := c.rdb.Set(ctx, productListKey, raw, c.ttl).Err(); err != nil {
		slog.Warn("Product cache write failed", "err", err)
	}
}

func (c *ProductCache) Invalidate(ctx context.Context) {
	if err := c.rdb.Del(ctx, productListKey).Err(); err != nil {
		slog.Warn("Product cache invalidation failed", "err", err)
	}
}
