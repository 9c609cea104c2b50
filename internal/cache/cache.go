package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix   = "lovebug:cache:"
	keySet      = "lovebug:cache:keys"
	pingTimeout = 2 * time.Second

	invalidateBatch = 100
)

var ErrDisabled = errors.New("cache disabled")

type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte)
	// Invalidate drops every key written through Set.
	Invalidate(ctx context.Context) error
	Ping(ctx context.Context) error
}

// Open returns a Redis cache when url is set and a no-op cache otherwise.
// An unreachable server is only logged; go-redis reconnects on demand.
func Open(ctx context.Context, url string, ttl time.Duration, logger *slog.Logger) (Cache, error) {
	if url == "" {
		return Noop{}, nil
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("error parsing redis url: %w", err)
	}

	c := NewRedisCache(redis.NewClient(opts), ttl, logger)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := c.Ping(pingCtx); err != nil {
		logger.Warn("redis is not reachable yet", "err", err)
	}

	return c, nil
}

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewRedisCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *RedisCache {
	return &RedisCache{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	value, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("error reading cache", "key", key, "err", err)
		}
		return nil, false
	}

	return value, true
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte) {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, keyPrefix+key, value, c.ttl)
		pipe.SAdd(ctx, keySet, keyPrefix+key)
		return nil
	})
	if err != nil {
		c.logger.Warn("error writing cache", "key", key, "err", err)
	}
}

// Invalidate pops tracked keys in batches so a key added while it runs is
// either deleted here or stays tracked for the next call.
func (c *RedisCache) Invalidate(ctx context.Context) error {
	for {
		keys, err := c.client.SPopN(ctx, keySet, invalidateBatch).Result()
		if err != nil {
			return fmt.Errorf("error popping cache keys: %w", err)
		}
		if len(keys) == 0 {
			return nil
		}

		if err := c.client.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("error deleting cache keys: %w", err)
		}
	}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

type Noop struct{}

func (Noop) Get(context.Context, string) ([]byte, bool) { return nil, false }
func (Noop) Set(context.Context, string, []byte)        {}
func (Noop) Invalidate(context.Context) error           { return nil }
func (Noop) Ping(context.Context) error                 { return ErrDisabled }
