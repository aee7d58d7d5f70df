package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const scanBatch = 200

// RedisCache is a Service backed by a shared Redis instance. All keys are namespaced.
type RedisCache struct {
	rdb redis.UniversalClient
	ns  string
}

// NewRedisCache dials Redis and fails fast when it does not answer PING.
func NewRedisCache(opts ...RedisOption) (*RedisCache, error) {
	s := defaultRedisSettings()
	for _, opt := range opts {
		opt(&s)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         s.addr,
		Password:     s.password,
		DB:           s.db,
		PoolSize:     s.poolSize,
		MinIdleConns: s.minIdle,
	})

	ctx, cancel := context.WithTimeout(context.Background(), s.pingTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", s.addr, err)
	}
	return WrapRedis(rdb, s.namespace), nil
}

// WrapRedis uses an already configured client.
func WrapRedis(rdb redis.UniversalClient, namespace string) *RedisCache {
	return &RedisCache{rdb: rdb, ns: namespace}
}

func (c *RedisCache) key(k string) string {
	if c.ns == "" {
		return k
	}
	return c.ns + ":" + k
}

func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := encode(value)
	if err != nil {
		return err
	}
	if ttl < 0 {
		ttl = 0
	}
	return c.rdb.Set(ctx, c.key(key), data, ttl).Err()
}

func (c *RedisCache) Get(ctx context.Context, key string, dest interface{}) error {
	data, err := c.rdb.Get(ctx, c.key(key)).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return ErrCacheMiss
	case err != nil:
		return fmt.Errorf("redis get %s: %w", key, err)
	}
	return decode(data, dest)
}

func (c *RedisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, 0, len(keys))
	for _, k := range keys {
		full = append(full, c.key(k))
	}
	return c.rdb.Unlink(ctx, full...).Err()
}

// DeleteByPattern scans the namespace in batches and unlinks what matches.
func (c *RedisCache) DeleteByPattern(ctx context.Context, pattern string) error {
	iter := c.rdb.Scan(ctx, 0, c.key(pattern), scanBatch).Iterator()
	batch := make([]string, 0, scanBatch)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == scanBatch {
			if err := c.rdb.Unlink(ctx, batch...).Err(); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan %s: %w", pattern, err)
	}
	if len(batch) == 0 {
		return nil
	}
	return c.rdb.Unlink(ctx, batch...).Err()
}

func (c *RedisCache) Close() error {
	return c.rdb.Close()
}
