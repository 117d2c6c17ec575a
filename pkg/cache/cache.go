package cache

import (
	"context"
	"time"
)

// Cache is the subset of cache operations the API layer uses.
type Cache interface {
	// Get returns the cached value and whether it was present.
	Get(ctx context.Context, key string) (interface{}, bool)

	// Set stores a value with an expiration.
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error

	// Delete removes a key.
	Delete(ctx context.Context, key string) error

	// Exists reports whether a key is present.
	Exists(ctx context.Context, key string) bool

	// Clear removes all keys.
	Clear(ctx context.Context) error

	// Close releases the backend connection, if any.
	Close() error
}

// Config selects and configures a cache backend.
type Config struct {
	// Type is "gocache" (in-process) or "redis".
	Type string `json:"type" env:"CACHE_TYPE"`

	Redis RedisConfig `json:"redis"`
	Local LocalConfig `json:"local"`
}

// RedisConfig configures the redis backend.
type RedisConfig struct {
	Addr     string `json:"addr" env:"REDIS_ADDR"`
	Password string `json:"password" env:"REDIS_PASSWORD"`
	DB       int    `json:"db" env:"REDIS_DB"`
}

// LocalConfig configures the in-process backend.
type LocalConfig struct {
	DefaultExpiration time.Duration `json:"default_expiration"`
	CleanupInterval   time.Duration `json:"cleanup_interval"`
}
