package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/bookmarksdev/api/internal/pkg/log"
)

// GenericCacheService stores JSON-encoded values under prefixed keys
type GenericCacheService struct {
	cache  Cache
	config *CacheConfig
}

// NewGenericCacheService creates a new generic cache service. A nil cache yields a disabled service.
func NewGenericCacheService(cache Cache, config *CacheConfig) *GenericCacheService {
	if config == nil {
		config = DefaultCacheConfig()
	}
	return &GenericCacheService{cache: cache, config: config}
}

// IsEnabled returns whether caching is enabled
func (gcs *GenericCacheService) IsEnabled() bool {
	return gcs != nil && gcs.config.Enabled && gcs.cache != nil
}

// GetCached retrieves and unmarshals cached data into target
func (gcs *GenericCacheService) GetCached(ctx context.Context, key string, target interface{}) error {
	if !gcs.IsEnabled() {
		return ErrCacheDisabled
	}

	fullKey := gcs.buildKey(key)
	data, err := gcs.cache.Get(ctx, fullKey)
	if err != nil {
		if !errors.Is(err, ErrKeyNotFound) {
			log.ErrorWithContext(ctx, "Cache get error for key %s: %v", fullKey, err)
		}
		return err
	}

	if err := json.Unmarshal(data, target); err != nil {
		log.ErrorWithContext(ctx, "Cache data unmarshal error for key %s: %v", fullKey, err)
		return fmt.Errorf("%w: %v", ErrDeserializationFailed, err)
	}
	return nil
}

// CacheData marshals and stores data with the configured TTL
func (gcs *GenericCacheService) CacheData(ctx context.Context, key string, data interface{}) error {
	if !gcs.IsEnabled() {
		return ErrCacheDisabled
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSerializationFailed, err)
	}

	fullKey := gcs.buildKey(key)
	if err := gcs.cache.Set(ctx, fullKey, jsonData, gcs.config.TTL); err != nil {
		log.ErrorWithContext(ctx, "Cache set error for key %s: %v", fullKey, err)
		return err
	}
	return nil
}

// InvalidateKey removes a specific key from cache
func (gcs *GenericCacheService) InvalidateKey(ctx context.Context, key string) error {
	if !gcs.IsEnabled() {
		return ErrCacheDisabled
	}
	fullKey := gcs.buildKey(key)
	if err := gcs.cache.Delete(ctx, fullKey); err != nil {
		log.ErrorWithContext(ctx, "Cache key invalidation error for key %s: %v", fullKey, err)
		return err
	}
	return nil
}

// GetStats returns backend statistics
func (gcs *GenericCacheService) GetStats() CacheStats {
	if !gcs.IsEnabled() {
		return CacheStats{}
	}
	return gcs.cache.Stats()
}

// Close closes the cache service
func (gcs *GenericCacheService) Close() error {
	if gcs == nil || gcs.cache == nil {
		return nil
	}
	return gcs.cache.Close()
}

func (gcs *GenericCacheService) buildKey(key string) string {
	if gcs.config.Prefix == "" {
		return key
	}
	prefix := gcs.config.Prefix
	if !strings.HasSuffix(prefix, ":") {
		prefix += ":"
	}
	return prefix + key
}
