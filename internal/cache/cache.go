package cache

import (
	"sync"

	"github.com/nixta/mapanimations/internal/geo"
)

// PathCache memoizes computed routes by key. Densifying and projecting a
// long haul route is far slower than a map lookup, and the demo asks for the
// same routes every time a scenario restarts.
type PathCache struct {
	m      sync.Mutex
	paths  map[string]*geo.Path
	hits   SafeCounter
	misses SafeCounter
}

func NewPathCache() *PathCache {
	return &PathCache{
		m:     sync.Mutex{},
		paths: make(map[string]*geo.Path),
	}
}

func (c *PathCache) Reset() {
	c.m.Lock()
	defer c.m.Unlock()
	c.paths = make(map[string]*geo.Path)
	c.hits.Set(0)
	c.misses.Set(0)
}

func (c *PathCache) Get(key string) (*geo.Path, bool) {
	c.m.Lock()
	defer c.m.Unlock()
	p, ok := c.paths[key]
	return p, ok
}

func (c *PathCache) Add(key string, p *geo.Path) {
	c.m.Lock()
	defer c.m.Unlock()
	c.paths[key] = p
}

// GetOrCompute returns the cached path for key, or builds, stores and
// returns it. Errors are not cached.
func (c *PathCache) GetOrCompute(key string, build func() (*geo.Path, error)) (*geo.Path, error) {
	if p, ok := c.Get(key); ok {
		c.hits.Inc()
		return p, nil
	}
	c.misses.Inc()

	p, err := build()
	if err != nil {
		return nil, err
	}
	c.Add(key, p)
	return p, nil
}

func (c *PathCache) Len() int {
	c.m.Lock()
	defer c.m.Unlock()
	return len(c.paths)
}

// Stats returns the hit and miss counts since the last Reset.
func (c *PathCache) Stats() (hits, misses int) {
	return c.hits.Value(), c.misses.Value()
}

// SafeCounter is a thread-safe counter
type SafeCounter struct {
	mu sync.Mutex
	v  int
}

func (c *SafeCounter) Value() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.v
}

func (c *SafeCounter) Set(v int) {
	c.mu.Lock()
	c.v = v
	c.mu.Unlock()
}

func (c *SafeCounter) Inc() {
	c.mu.Lock()
	c.v++
	c.mu.Unlock()
}
