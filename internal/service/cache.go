// internal/service/cache.go
package service

import (
	"sync"
	"time"
)

// CacheItem represents a cached item with expiration
type CacheItem struct {
	Value      interface{}
	Expiration int64
	ttl        time.Duration
}

// Cache is an in-memory TTL cache. Get refreshes the expiration of the
// item it returns, so entries live for ttl after their last use.
type Cache struct {
	mu    sync.RWMutex
	items map[string]CacheItem
	stop  chan struct{}
	once  sync.Once
	now   func() time.Time
}

// NewCache creates a new cache instance
func NewCache(cleanupInterval time.Duration) *Cache {
	c := &Cache{
		items: make(map[string]CacheItem),
		stop:  make(chan struct{}),
		now:   time.Now,
	}

	go c.cleanupLoop(cleanupInterval)

	return c
}

// Set adds an item to cache with TTL; ttl <= 0 never expires
func (c *Cache) Set(key string, value interface{}, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = CacheItem{
		Value:      value,
		Expiration: c.expiry(ttl),
		ttl:        ttl,
	}
}

// Get retrieves an item from cache and extends its lifetime
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, found := c.items[key]
	if !found {
		return nil, false
	}

	if item.Expiration > 0 && c.now().UnixNano() > item.Expiration {
		delete(c.items, key)
		return nil, false
	}

	item.Expiration = c.expiry(item.ttl)
	c.items[key] = item
	return item.Value, true
}

// Delete removes an item and reports whether it was present
func (c *Cache) Delete(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, found := c.items[key]
	delete(c.items, key)
	return found
}

// Size returns the number of items in cache
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func (c *Cache) expiry(ttl time.Duration) int64 {
	if ttl <= 0 {
		return 0
	}
	return c.now().Add(ttl).UnixNano()
}

// cleanupLoop periodically removes expired items
func (c *Cache) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.cleanup()
		case <-c.stop:
			return
		}
	}
}

// cleanup removes expired items and returns how many were dropped
func (c *Cache) cleanup() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now().UnixNano()
	removed := 0
	for key, item := range c.items {
		if item.Expiration > 0 && now > item.Expiration {
			delete(c.items, key)
			removed++
		}
	}
	return removed
}

// Close stops the cache cleanup goroutine
func (c *Cache) Close() {
	c.once.Do(func() { close(c.stop) })
}

// Stats returns cache statistics
func (c *Cache) Stats() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	expired := 0
	now := c.now().UnixNano()
	for _, item := range c.items {
		if item.Expiration > 0 && now > item.Expiration {
			expired++
		}
	}

	return map[string]interface{}{
		"total_items":   len(c.items),
		"expired_items": expired,
		"active_items":  len(c.items) - expired,
	}
}
