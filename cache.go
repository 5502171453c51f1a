package razorblog

import "sync"

// Cache stores resolved post projections keyed by slug. Configuring a cache
// is optional; a Blog without one simply skips every cache call. Entries
// persist until explicitly invalidated, so this is a correctness cache, not
// a capacity-bounded one.
type Cache interface {
	// Get returns the cached post for slug, or nil.
	Get(slug string) *Post
	// Set stores a post under its slug.
	Set(slug string, post *Post)
	// Invalidate removes the entry for slug.
	Invalidate(slug string)
}

// MemoryCache is an in-process Cache safe for concurrent use.
type MemoryCache struct {
	mu    sync.RWMutex
	posts map[string]*Post
}

// NewMemoryCache creates an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{posts: make(map[string]*Post)}
}

func (c *MemoryCache) Get(slug string) *Post {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.posts[slug]
}

func (c *MemoryCache) Set(slug string, post *Post) {
	c.mu.Lock()
	c.posts[slug] = post
	c.mu.Unlock()
}

func (c *MemoryCache) Invalidate(slug string) {
	c.mu.Lock()
	delete(c.posts, slug)
	c.mu.Unlock()
}

// Reset drops every entry.
func (c *MemoryCache) Reset() {
	c.mu.Lock()
	c.posts = make(map[string]*Post)
	c.mu.Unlock()
}
