package cache

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

type cacheItem struct {
	value      []byte
	expiration time.Time
}

func (i *cacheItem) expired(now time.Time) bool {
	return now.After(i.expiration)
}

// MemoryCache implements Cache with a mutex-guarded map and a background sweeper.
type MemoryCache struct {
	mutex  sync.RWMutex
	items  map[string]*cacheItem
	hits   int64
	misses int64

	closeOnce sync.Once
	done      chan struct{}
	now       func() time.Time
}

// NewMemoryCache creates a new in-memory cache
func NewMemoryCache(config *CacheConfig) *MemoryCache {
	if config == nil {
		config = DefaultCacheConfig()
	}

	c := &MemoryCache{
		items: make(map[string]*cacheItem),
		done:  make(chan struct{}),
		now:   time.Now,
	}

	interval := config.CleanupInterval
	if interval <= 0 {
		interval = time.Minute
	}
	go c.startCleanup(interval)

	return c
}

// Get returns a copy of the stored value
func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mutex.RLock()
	item, ok := c.items[key]
	c.mutex.RUnlock()

	if !ok || item.expired(c.now()) {
		atomic.AddInt64(&c.misses, 1)
		return nil, ErrKeyNotFound
	}

	atomic.AddInt64(&c.hits, 1)
	result := make([]byte, len(item.value))
	copy(result, item.value)
	return result, nil
}

// Set stores a copy of value
func (c *MemoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	valueCopy := make([]byte, len(value))
	copy(valueCopy, value)

	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.items[key] = &cacheItem{value: valueCopy, expiration: c.now().Add(ttl)}
	return nil
}

func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	delete(c.items, key)
	return nil
}

func (c *MemoryCache) DeletePattern(ctx context.Context, pattern string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	for key := range c.items {
		if matchPattern(key, pattern) {
			delete(c.items, key)
		}
	}
	return nil
}

// Close stops the sweeper and drops all items
func (c *MemoryCache) Close() error {
	c.closeOnce.Do(func() {
		close(c.done)
		c.mutex.Lock()
		c.items = make(map[string]*cacheItem)
		c.mutex.Unlock()
	})
	return nil
}

func (c *MemoryCache) Stats() CacheStats {
	now := c.now()
	var active int64

	c.mutex.RLock()
	for _, item := range c.items {
		if !item.expired(now) {
			active++
		}
	}
	c.mutex.RUnlock()

	hits := atomic.LoadInt64(&c.hits)
	misses := atomic.LoadInt64(&c.misses)
	return CacheStats{Hits: hits, Misses: misses, HitRatio: hitRatio(hits, misses), Keys: active}
}

func (c *MemoryCache) startCleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.cleanupExpired()
		case <-c.done:
			return
		}
	}
}

func (c *MemoryCache) cleanupExpired() {
	now := c.now()
	c.mutex.Lock()
	defer c.mutex.Unlock()
	for key, item := range c.items {
		if item.expired(now) {
			delete(c.items, key)
		}
	}
}

// matchPattern implements glob matching with the * wildcard only
func matchPattern(text, pattern string) bool {
	if pattern == "*" {
		return true
	}
	if !strings.Contains(pattern, "*") {
		return text == pattern
	}

	parts := strings.Split(pattern, "*")
	if !strings.HasPrefix(text, parts[0]) {
		return false
	}
	pos := len(parts[0])
	for _, part := range parts[1 : len(parts)-1] {
		idx := strings.Index(text[pos:], part)
		if idx == -1 {
			return false
		}
		pos += idx + len(part)
	}
	return strings.HasSuffix(text[pos:], parts[len(parts)-1])
}
