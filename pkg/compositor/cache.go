// cache.go — Read-only cache of decoded template backgrounds.
package compositor

import (
	"context"
	"image"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

// BackgroundCache holds decoded background images keyed by template id and
// reference. Each key is loaded at most once at a time; concurrent callers
// for the same key share one fetch. Cached images must never be drawn on.
type BackgroundCache struct {
	mu      sync.RWMutex
	images  map[string]image.Image
	group   singleflight.Group
	limit   int
	hits    atomic.Int64
	misses  atomic.Int64
	loading atomic.Int64
}

// NewBackgroundCache creates a cache holding at most limit images; limit <= 0
// means unbounded. When full, new backgrounds are still served but not kept.
func NewBackgroundCache(limit int) *BackgroundCache {
	return &BackgroundCache{images: make(map[string]image.Image), limit: limit}
}

// CacheStats is a snapshot of cache counters.
type CacheStats struct {
	Entries int   `json:"entries"`
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
	Loads   int64 `json:"loads"`
}

// Get returns the cached image for (templateID, ref) or calls load once to
// produce it. A caller whose ctx ends while waiting gets ctx.Err(); the shared
// load keeps running for the others.
func (c *BackgroundCache) Get(ctx context.Context, templateID, ref string, load func() (image.Image, error)) (image.Image, error) {
	key := templateID + "\x00" + ref

	c.mu.RLock()
	img, ok := c.images[key]
	c.mu.RUnlock()
	if ok {
		c.hits.Add(1)
		return img, nil
	}
	c.misses.Add(1)

	ch := c.group.DoChan(key, func() (any, error) {
		c.mu.RLock()
		img, ok := c.images[key]
		c.mu.RUnlock()
		if ok {
			return img, nil
		}
		c.loading.Add(1)
		img, err := load()
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		if c.limit <= 0 || len(c.images) < c.limit {
			c.images[key] = img
		}
		c.mu.Unlock()
		return img, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(image.Image), nil
	}
}

// Invalidate drops every entry of templateID.
func (c *BackgroundCache) Invalidate(templateID string) {
	prefix := templateID + "\x00"
	c.mu.Lock()
	for k := range c.images {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			delete(c.images, k)
		}
	}
	c.mu.Unlock()
}

// Stats returns the current counters.
func (c *BackgroundCache) Stats() CacheStats {
	c.mu.RLock()
	n := len(c.images)
	c.mu.RUnlock()
	return CacheStats{Entries: n, Hits: c.hits.Load(), Misses: c.misses.Load(), Loads: c.loading.Load()}
}
