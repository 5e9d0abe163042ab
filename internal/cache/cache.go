// Package cache provides the in-memory response cache of the humanizer service.
package cache

import (
	"container/list"
	"sync"
)

// DefaultMaxEntries is the number of responses kept when no size is configured.
const DefaultMaxEntries = 100

// Stats is a point-in-time snapshot of the cache counters.
type Stats struct {
	Entries    int    `json:"entries"`
	MaxEntries int    `json:"max_entries"`
	Hits       uint64 `json:"hits"`
	Misses     uint64 `json:"misses"`
	Evictions  uint64 `json:"evictions"`
}

type entry struct {
	key   string
	value string
}

// FIFOCache maps fingerprints to rewritten texts and evicts the oldest
// inserted entry once it holds more than maxEntries.
// Reads never change the eviction order.
type FIFOCache struct {
	mu         sync.Mutex
	maxEntries int
	items      map[string]*list.Element
	order      *list.List

	hits      uint64
	misses    uint64
	evictions uint64
}

// New creates a FIFOCache. A maxEntries below 1 is treated as 1.
func New(maxEntries int) *FIFOCache {
	if maxEntries < 1 {
		maxEntries = 1
	}
	return &FIFOCache{
		maxEntries: maxEntries,
		items:      make(map[string]*list.Element, maxEntries+1),
		order:      list.New(),
	}
}

// Get returns the cached text for key.
func (c *FIFOCache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		c.misses++
		return "", false
	}
	c.hits++
	return elem.Value.(*entry).value, true
}

// Set stores value under key. An existing key keeps its insertion position.
// It reports whether an older entry was evicted.
func (c *FIFOCache) Set(key, value string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		elem.Value.(*entry).value = value
		return false
	}

	c.items[key] = c.order.PushBack(&entry{key: key, value: value})
	if c.order.Len() <= c.maxEntries {
		return false
	}

	oldest := c.order.Front()
	c.order.Remove(oldest)
	delete(c.items, oldest.Value.(*entry).key)
	c.evictions++
	return true
}

// Contains reports whether key is cached without counting a lookup.
func (c *FIFOCache) Contains(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.items[key]
	return ok
}

// Len returns the number of cached entries.
func (c *FIFOCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// MaxEntries returns the configured capacity.
func (c *FIFOCache) MaxEntries() int {
	return c.maxEntries
}

// Stats returns a snapshot of the hit, miss and eviction counters together
// with the current size.
func (c *FIFOCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Entries:    c.order.Len(),
		MaxEntries: c.maxEntries,
		Hits:       c.hits,
		Misses:     c.misses,
		Evictions:  c.evictions,
	}
}
