// Package cache provides a small key/value cache with in-process, Redis and layered
// implementations.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// ErrCacheMiss is returned by Get when the key is absent or expired.
var ErrCacheMiss = errors.New("cache: miss")

// Service is implemented by every cache in this package.
type Service interface {
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, keys ...string) error
	DeleteByPattern(ctx context.Context, pattern string) error
	Close() error
}

// Key joins the parts with ':'.
func Key(parts ...string) string {
	return strings.Join(parts, ":")
}

// Prefix returns the glob matching every key under parts.
func Prefix(parts ...string) string {
	return Key(parts...) + ":*"
}

// []byte and string values are stored raw; anything else is JSON.
func encode(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case []byte:
		return append([]byte(nil), v...), nil
	case string:
		return []byte(v), nil
	}
	return json.Marshal(value)
}

func decode(data []byte, dest interface{}) error {
	switch d := dest.(type) {
	case *[]byte:
		*d = append((*d)[:0], data...)
	case *string:
		*d = string(data)
	default:
		return json.Unmarshal(data, dest)
	}
	return nil
}
