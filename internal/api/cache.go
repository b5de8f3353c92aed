package api

import (
	"sync"

	"golang.org/x/sync/singleflight"

	"skylift/internal/oauth"
)

// ClientCache lazily builds and shares one oauth.Client. Embedders that
// issue many API calls want a single credential holder rather than one
// interactive login per call; the cache gives them that without a package
// global. Concurrent first uses are deduplicated so only one build runs.
type ClientCache struct {
	build func() (*oauth.Client, error)

	mu     sync.RWMutex
	client *oauth.Client
	group  singleflight.Group
}

// NewClientCache creates a cache that constructs its client with build on
// first use.
func NewClientCache(build func() (*oauth.Client, error)) *ClientCache {
	return &ClientCache{build: build}
}

// Get returns the cached client, building it on first use. Concurrent
// callers during the build all receive the same client.
func (cc *ClientCache) Get() (*oauth.Client, error) {
	cc.mu.RLock()
	if c := cc.client; c != nil {
		cc.mu.RUnlock()
		return c, nil
	}
	cc.mu.RUnlock()

	v, err, _ := cc.group.Do("client", func() (any, error) {
		cc.mu.RLock()
		c := cc.client
		cc.mu.RUnlock()
		if c != nil {
			return c, nil
		}

		c, err := cc.build()
		if err != nil {
			return nil, err
		}

		cc.mu.Lock()
		cc.client = c
		cc.mu.Unlock()
		return c, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*oauth.Client), nil
}

// Replace swaps in a caller-constructed client, e.g. one pre-seeded with a
// restored credential.
func (cc *ClientCache) Replace(c *oauth.Client) {
	cc.mu.Lock()
	cc.client = c
	cc.mu.Unlock()
}

// Clear drops the cached client; the next Get builds a fresh one.
func (cc *ClientCache) Clear() {
	cc.mu.Lock()
	cc.client = nil
	cc.mu.Unlock()
}
