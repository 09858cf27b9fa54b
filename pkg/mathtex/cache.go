package mathtex

import (
	"sort"
	"strings"
	"sync"
)

// Cache stores rendered output keyed by normalized markup plus the render
// options that affect output. Identical keys always return the identical
// *Rendered value without recomputation.
//
// The cache grows without bound; Clear is the only eviction. Callers that
// render unbounded distinct markup should clear periodically.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*Rendered
}

// NewCache creates an empty render cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]*Rendered)}
}

// cacheKey builds the composite cache key from normalized markup and the
// serialized render options.
func cacheKey(markup string, opts Options) string {
	return normalizeMarkup(markup) + "\x00" + opts.serialize()
}

// normalizeMarkup trims and collapses internal whitespace so that markup
// differing only in spacing shares a cache entry.
func normalizeMarkup(markup string) string {
	return strings.Join(strings.Fields(markup), " ")
}

func (c *Cache) get(key string) (*Rendered, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.entries[key]
	return r, ok
}

func (c *Cache) put(key string, r *Rendered) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = r
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Keys returns the cache keys in sorted order.
func (c *Cache) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clear removes all cached entries.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*Rendered)
}
