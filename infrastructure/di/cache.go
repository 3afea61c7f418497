package di

import (
	"context"
	"sync"
	"time"
)

// InMemoryCache is a tag-invalidated query result cache. Every entry is
// tagged with the collections it was computed from; invalidating a tag
// drops those entries and bumps the tag's generation.
type InMemoryCache struct {
	mu       sync.RWMutex
	items    map[string]cacheItem
	byTag    map[string]map[string]struct{}
	versions map[string]uint64
	now      func() time.Time
}

type cacheItem struct {
	value     interface{}
	expiresAt time.Time
	tags      []string
}

// NewInMemoryCache creates a new in-memory cache
func NewInMemoryCache() *InMemoryCache {
	return &InMemoryCache{
		items:    make(map[string]cacheItem),
		byTag:    make(map[string]map[string]struct{}),
		versions: make(map[string]uint64),
		now:      time.Now,
	}
}

// Get retrieves a value from cache
func (c *InMemoryCache) Get(ctx context.Context, key string) (interface{}, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, exists := c.items[key]
	if !exists || c.now().After(item.expiresAt) {
		return nil, false
	}
	return item.value, true
}

// Version returns the combined generation of tags. Generations only grow,
// so an unchanged sum means none of the tags was invalidated.
func (c *InMemoryCache) Version(tags ...string) uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.versionLocked(tags)
}

func (c *InMemoryCache) versionLocked(tags []string) uint64 {
	var v uint64
	for _, tag := range tags {
		v += c.versions[tag]
	}
	return v
}

// SetIfVersion stores value for ttl seconds unless one of its tags was
// invalidated after version was read.
func (c *InMemoryCache) SetIfVersion(ctx context.Context, key string, value interface{}, ttl int, version uint64, tags ...string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.versionLocked(tags) != version {
		return false
	}

	c.removeLocked(key)
	c.items[key] = cacheItem{
		value:     value,
		expiresAt: c.now().Add(time.Duration(ttl) * time.Second),
		tags:      append([]string(nil), tags...),
	}
	for _, tag := range tags {
		keys, ok := c.byTag[tag]
		if !ok {
			keys = make(map[string]struct{})
			c.byTag[tag] = keys
		}
		keys[key] = struct{}{}
	}
	return true
}

// InvalidateTags drops every entry carrying one of tags
func (c *InMemoryCache) InvalidateTags(ctx context.Context, tags ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, tag := range tags {
		c.versions[tag]++
		for key := range c.byTag[tag] {
			c.removeLocked(key)
		}
		delete(c.byTag, tag)
	}
}

func (c *InMemoryCache) removeLocked(key string) {
	item, ok := c.items[key]
	if !ok {
		return
	}
	delete(c.items, key)
	for _, tag := range item.tags {
		delete(c.byTag[tag], key)
	}
}

// Run removes expired entries every interval until ctx is done
func (c *InMemoryCache) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.cleanupExpired()
		}
	}
}

func (c *InMemoryCache) cleanupExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, item := range c.items {
		if now.After(item.expiresAt) {
			c.removeLocked(key)
		}
	}
}
