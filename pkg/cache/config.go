package cache

import "time"

type redisSettings struct {
	addr        string
	password    string
	db          int
	poolSize    int
	minIdle     int
	pingTimeout time.Duration
	namespace   string
}

func defaultRedisSettings() redisSettings {
	return redisSettings{
		addr:        "localhost:6379",
		poolSize:    10,
		minIdle:     2,
		pingTimeout: 5 * time.Second,
		namespace:   "finlab",
	}
}

// RedisOption tunes NewRedisCache.
type RedisOption func(*redisSettings)

func WithRedisAddr(addr string) RedisOption {
	return func(s *redisSettings) { s.addr = addr }
}

func WithRedisPassword(password string) RedisOption {
	return func(s *redisSettings) { s.password = password }
}

func WithRedisDB(db int) RedisOption {
	return func(s *redisSettings) { s.db = db }
}

// WithRedisPool sets the pool size and the number of idle connections kept open.
func WithRedisPool(size, minIdle int) RedisOption {
	return func(s *redisSettings) {
		s.poolSize = size
		s.minIdle = minIdle
	}
}

// WithRedisNamespace prefixes every key written by this process.
func WithRedisNamespace(ns string) RedisOption {
	return func(s *redisSettings) { s.namespace = ns }
}

type memorySettings struct {
	capacity int
	sweep    time.Duration
}

// MemoryOption tunes NewMemoryCache.
type MemoryOption func(*memorySettings)

// WithMemoryMaxSize bounds the number of entries; the least recently used one is dropped first.
func WithMemoryMaxSize(n int) MemoryOption {
	return func(s *memorySettings) { s.capacity = n }
}

// WithMemorySweep sets how often expired entries are purged in the background.
func WithMemorySweep(every time.Duration) MemoryOption {
	return func(s *memorySettings) { s.sweep = every }
}
