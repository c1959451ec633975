package service

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/NEPJU/APIs/internal/model"
)

const productListKey = "products:all"

// ProductCache holds the rendered product list between catalog changes.
type ProductCache interface {
	Get(ctx context.Context) ([]model.ProductListing, bool)
	Set(ctx context.Context, products []model.ProductListing)
	Invalidate(ctx context.Context)
}

type redisProductCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewProductCache returns a Redis-backed cache, or a no-op cache when rdb
// is nil.
func NewProductCache(rdb *redis.Client, ttl time.Duration) ProductCache {
	if rdb == nil {
		return noCache{}
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &redisProductCache{rdb: rdb, ttl: ttl}
}

func (c *redisProductCache) Get(ctx context.Context) ([]model.ProductListing, bool) {
	raw, err := c.rdb.Get(ctx, productListKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("cache: get %s: %v", productListKey, err)
		}
		return nil, false
	}
	var products []model.ProductListing
	if err := json.Unmarshal(raw, &products); err != nil {
		return nil, false
	}
	return products, true
}

func (c *redisProductCache) Set(ctx context.Context, products []model.ProductListing) {
	raw, err := json.Marshal(products)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, productListKey, raw, c.ttl).Err(); err != nil {
		log.Printf("cache: set %s: %v", productListKey, err)
	}
}

func (c *redisProductCache) Invalidate(ctx context.Context) {
	if err := c.rdb.Del(ctx, productListKey).Err(); err != nil {
		log.Printf("cache: del %s: %v", productListKey, err)
	}
}

type noCache struct{}

func (noCache) Get(context.Context) ([]model.ProductListing, bool) { return nil, false }
func (noCache) Set(context.Context, []model.ProductListing)        {}
func (noCache) Invalidate(context.Context)                         {}
