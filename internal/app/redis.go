package app

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// connectRedis returns nil when no address is configured or the server does
// not answer; the cache and the rate limiter then switch themselves off.
func connectRedis(ctx context.Context, cfg Config) *redis.Client {
	if cfg.RedisAddr == "" {
		log.Println("redis: REDIS_ADDR unset, caching disabled")
		return nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		log.Printf("WARNING: failed to connect to Redis at %s: %v. Caching disabled.", cfg.RedisAddr, err)
		_ = rdb.Close()
		return nil
	}
	log.Printf("redis: connected to %s", cfg.RedisAddr)
	return rdb
}
