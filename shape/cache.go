package shape

import (
	"sync"
	"sync/atomic"

	"github.com/pthm-cable/garden/traits"
)

// Cache memoizes models by genome value. Geometry is rebuilt only when the
// driving genome actually changes; equal genomes share one model.
// Returned models are shared and must be treated as read-only.
type Cache struct {
	opts Options

	mu     sync.RWMutex
	models map[traits.Genome]*Model

	hits   atomic.Int64
	misses atomic.Int64
}

// NewCache creates an empty cache building with opts.
func NewCache(opts Options) *Cache {
	return &Cache{opts: opts, models: make(map[traits.Genome]*Model)}
}

// Get returns the model for g, building it on first request.
func (c *Cache) Get(g traits.Genome) *Model {
	c.mu.RLock()
	m, ok := c.models[g]
	c.mu.RUnlock()
	if ok {
		c.hits.Add(1)
		return m
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	// Another caller may have built it while we waited.
	if m, ok := c.models[g]; ok {
		c.hits.Add(1)
		return m
	}
	c.misses.Add(1)
	built := BuildModel(g, c.opts)
	c.models[g] = &built
	return &built
}

// Len returns the number of cached models.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.models)
}

// Hits returns how many requests were served from the cache.
func (c *Cache) Hits() int64 { return c.hits.Load() }

// Misses returns how many requests built a model.
func (c *Cache) Misses() int64 { return c.misses.Load() }
