// Package modcache caches registry version listings for the lifetime of a
// scan, so that many module references to the same registry module cost a
// single network round-trip.
package modcache

import "sync"

// Cache maps a fully-qualified "list versions" URL to the descending-ordered
// list of versions known for that module. A single Cache is shared by every
// loader in the process and is safe for concurrent use.
type Cache struct {
	mu      sync.RWMutex
	entries map[string][]string
}

// New returns an empty cache.
func New() *Cache {
	return &Cache{entries: make(map[string][]string)}
}

// Get returns the cached version list for key, if present. The returned slice
// must not be mutated by callers.
func (c *Cache) Get(key string) ([]string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	versions, ok := c.entries[key]
	return versions, ok
}

// Put stores the version list for key. The slice is copied, so entries are
// immutable once stored; a concurrent Put for the same key simply wins the
// race with an identical list.
func (c *Cache) Put(key string, versions []string) {
	stored := make([]string, len(versions))
	copy(stored, versions)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = stored
}

// Len returns the number of cached keys.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
