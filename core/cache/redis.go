package cache

import (
	"context"
	"fmt"
	"time"

	"booking-gateway/core/config"
	"booking-gateway/core/logger"

	"github.com/redis/go-redis/v9"
)

type Cache interface {
	Client() *redis.Client
	Ping(ctx context.Context) error
	Close() error
}

type redisCache struct {
	rdb *redis.Client
}

// NewRedisCache builds the shared Redis client. Commands are short: the
// rate limiter bounds every call on top of these socket timeouts.
func NewRedisCache(cfg config.RedisConfig) Cache {
	dial := cfg.DialTimeout
	if dial <= 0 {
		dial = 2 * time.Second
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  dial,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
		MaxRetries:   1,
	})
	return &redisCache{rdb: rdb}
}

func (c *redisCache) Client() *redis.Client { return c.rdb }

func (c *redisCache) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		logger.Error("Cache:Ping:Error", "error", err, "addr", c.rdb.Options().Addr)
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

func (c *redisCache) Close() error { return c.rdb.Close() }
