package texture

import (
	"os"
	"sync"
)

// listingCache keeps directory listings so that resolving several textures
// of one file reads each candidate directory once.
type listingCache struct {
	data map[string][]os.DirEntry
	mu   sync.RWMutex

	// Stats
	hits   int
	misses int
}

func newListingCache() *listingCache {
	return &listingCache{
		data: make(map[string][]os.DirEntry),
	}
}

// ReadDir returns the sorted entries of dir. A missing directory is cached as
// empty.
func (c *listingCache) ReadDir(dir string) []os.DirEntry {
	c.mu.RLock()
	entries, ok := c.data[dir]
	c.mu.RUnlock()
	if ok {
		c.mu.Lock()
		c.hits++
		c.mu.Unlock()
		return entries
	}

	entries, _ = os.ReadDir(dir)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.misses++
	c.data[dir] = entries
	return entries
}

// Clear drops all listings.
func (c *listingCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string][]os.DirEntry)
	c.hits = 0
	c.misses = 0
}

// Stats returns cache statistics.
func (c *listingCache) Stats() (hits, misses int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}
