package cache

import (
	"context"
	"time"
)

// LayeredCache reads through a local MemoryCache before falling back to a shared remote
// Service. Writes go to the remote first.
type LayeredCache struct {
	near   *MemoryCache
	far    Service
	maxTTL time.Duration
}

// NewLayeredCache keeps local copies for at most nearTTL.
func NewLayeredCache(far Service, nearTTL time.Duration, opts ...MemoryOption) *LayeredCache {
	return &LayeredCache{near: NewMemoryCache(opts...), far: far, maxTTL: nearTTL}
}

func (lc *LayeredCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if err := lc.far.Set(ctx, key, value, ttl); err != nil {
		return err
	}
	nearTTL := lc.maxTTL
	if ttl > 0 && ttl < nearTTL {
		nearTTL = ttl
	}
	return lc.near.Set(ctx, key, value, nearTTL)
}

func (lc *LayeredCache) Get(ctx context.Context, key string, dest interface{}) error {
	if lc.near.Get(ctx, key, dest) == nil {
		return nil
	}
	var raw []byte
	if err := lc.far.Get(ctx, key, &raw); err != nil {
		return err
	}
	_ = lc.near.Set(ctx, key, raw, lc.maxTTL)
	return decode(raw, dest)
}

func (lc *LayeredCache) Delete(ctx context.Context, keys ...string) error {
	_ = lc.near.Delete(ctx, keys...)
	return lc.far.Delete(ctx, keys...)
}

func (lc *LayeredCache) DeleteByPattern(ctx context.Context, pattern string) error {
	_ = lc.near.DeleteByPattern(ctx, pattern)
	return lc.far.DeleteByPattern(ctx, pattern)
}

func (lc *LayeredCache) Close() error {
	_ = lc.near.Close()
	return lc.far.Close()
}
