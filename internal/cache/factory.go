package cache

import "fmt"

// NewCache creates a cache instance for the configured backend
func NewCache(config *CacheConfig) (Cache, error) {
	if config == nil {
		config = DefaultCacheConfig()
	}

	switch config.Backend {
	case CacheTypeMemory:
		return NewMemoryCache(config), nil
	case CacheTypeRedis:
		return NewRedisCache(config)
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidCacheType, config.Backend)
	}
}
