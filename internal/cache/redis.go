package cache

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisCache implements Cache using Redis
type RedisCache struct {
	client redis.UniversalClient
	hits   int64
	misses int64
}

// NewRedisCache connects to Redis and verifies the connection
func NewRedisCache(config *CacheConfig) (*RedisCache, error) {
	if config == nil {
		config = DefaultCacheConfig()
	}

	client := redis.NewClient(&redis.Options{
		Addr:         config.Redis.Address,
		Password:     config.Redis.Password,
		DB:           config.Redis.Database,
		PoolSize:     config.Redis.PoolSize,
		MinIdleConns: config.Redis.MinIdleConns,
		MaxConnAge:   config.Redis.MaxConnAge,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}

	return NewRedisCacheWithClient(client), nil
}

// NewRedisCacheWithClient wraps an existing client.
func NewRedisCacheWithClient(client redis.UniversalClient) *RedisCache {
	return &RedisCache{client: client}
}

// Get retrieves a value from Redis cache
func (r *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	result, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			atomic.AddInt64(&r.misses, 1)
			return nil, ErrKeyNotFound
		}
		return nil, fmt.Errorf("redis get error: %w", err)
	}

	atomic.AddInt64(&r.hits, 1)
	return result, nil
}

// Set stores a value in Redis cache with TTL
func (r *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set error: %w", err)
	}
	return nil
}

// Delete removes a value from Redis cache
func (r *RedisCache) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis delete error: %w", err)
	}
	return nil
}

// DeletePattern removes all keys matching the given pattern using SCAN
func (r *RedisCache) DeletePattern(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		keys, next, err := r.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return fmt.Errorf("redis scan error: %w", err)
		}
		if len(keys) > 0 {
			if err := r.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("redis batch delete error: %w", err)
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

// Ping tests the Redis connection
func (r *RedisCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisCache) Close() error {
	return r.client.Close()
}

// Stats reports client-side hit counters and the DBSIZE of the selected database.
func (r *RedisCache) Stats() CacheStats {
	hits := atomic.LoadInt64(&r.hits)
	misses := atomic.LoadInt64(&r.misses)
	stats := CacheStats{Hits: hits, Misses: misses, HitRatio: hitRatio(hits, misses)}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if n, err := r.client.DBSize(ctx).Result(); err == nil {
		stats.Keys = n
	}
	return stats
}
