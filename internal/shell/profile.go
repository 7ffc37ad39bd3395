package shell

import (
	"context"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"

	"foodreel/internal/backend"
)

// ProfileFetcher loads the signed-in operator's profile from the backend.
type ProfileFetcher interface {
	Profile(ctx context.Context) (backend.Restaurant, error)
}

// ProfileCache keeps the operator profile between views. Concurrent misses
// share one backend call; Forget drops the entry and detaches any fetch
// still in flight so it cannot repopulate the cache.
type ProfileCache struct {
	fetch ProfileFetcher
	group singleflight.Group

	mu     sync.Mutex
	gen    uint64
	cached *backend.Restaurant
}

func NewProfileCache(fetch ProfileFetcher) *ProfileCache {
	return &ProfileCache{fetch: fetch}
}

func (c *ProfileCache) Profile(ctx context.Context) (backend.Restaurant, error) {
	c.mu.Lock()
	if c.cached != nil {
		p := *c.cached
		c.mu.Unlock()
		return p, nil
	}
	gen := c.gen
	c.mu.Unlock()

	v, err, _ := c.group.Do(strconv.FormatUint(gen, 10), func() (any, error) {
		p, err := c.fetch.Profile(ctx)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		if c.gen == gen {
			c.cached = &p
		}
		c.mu.Unlock()
		return p, nil
	})
	if err != nil {
		return backend.Restaurant{}, err
	}
	return v.(backend.Restaurant), nil
}

// Forget clears the cached profile.
func (c *ProfileCache) Forget() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.cached = nil
}

// Cached reports whether a profile is currently held.
func (c *ProfileCache) Cached() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cached != nil
}
