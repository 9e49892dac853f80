package cache

import (
	"context"
	"errors"
	"time"
)

// Cache defines the byte-level cache contract shared by all backends
type Cache interface {
	// Get retrieves a value from cache by key
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value in cache with TTL
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value from cache by key
	Delete(ctx context.Context, key string) error

	// DeletePattern removes all keys matching a glob pattern (only * is supported)
	DeletePattern(ctx context.Context, pattern string) error

	Close() error

	Stats() CacheStats
}

// CacheType represents different cache backend types
type CacheType string

const (
	CacheTypeMemory CacheType = "memory"
	CacheTypeRedis  CacheType = "redis"
)

// IsValid checks if the cache type is valid
func (ct CacheType) IsValid() bool {
	switch ct {
	case CacheTypeMemory, CacheTypeRedis:
		return true
	default:
		return false
	}
}

// CacheConfig holds configuration for cache instances
type CacheConfig struct {
	Enabled bool
	Backend CacheType
	// TTL is the default time-to-live for cache entries
	TTL    time.Duration
	Prefix string

	// CleanupInterval is how often the memory backend sweeps expired items
	CleanupInterval time.Duration

	Redis RedisConfig
}

// RedisConfig holds Redis-specific configuration
type RedisConfig struct {
	Address      string
	Password     string
	Database     int
	PoolSize     int
	MinIdleConns int
	MaxConnAge   time.Duration
}

// CacheStats provides cache performance statistics
type CacheStats struct {
	Hits     int64   `json:"hits"`
	Misses   int64   `json:"misses"`
	HitRatio float64 `json:"hitRatio"`
	Keys     int64   `json:"keys"`
}

// Common cache errors
var (
	ErrKeyNotFound           = errors.New("key not found")
	ErrCacheUnavailable      = errors.New("cache unavailable")
	ErrInvalidCacheType      = errors.New("invalid cache type")
	ErrCacheDisabled         = errors.New("cache disabled")
	ErrSerializationFailed   = errors.New("serialization failed")
	ErrDeserializationFailed = errors.New("deserialization failed")
)

// DefaultCacheConfig returns default cache configuration
func DefaultCacheConfig() *CacheConfig {
	return &CacheConfig{
		Enabled:         true,
		Backend:         CacheTypeMemory,
		TTL:             5 * time.Minute,
		Prefix:          "bookmarks:",
		CleanupInterval: time.Minute,
		Redis: RedisConfig{
			Address:      "localhost:6379",
			PoolSize:     10,
			MinIdleConns: 2,
			MaxConnAge:   5 * time.Minute,
		},
	}
}

func hitRatio(hits, misses int64) float64 {
	total := hits + misses
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}
