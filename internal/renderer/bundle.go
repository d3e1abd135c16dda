package renderer

import (
	"context"
	"sync"
)

// BundleCache lazily bundles the render project once per process. The mutex
// keeps a burst of concurrent first requests from bundling more than once;
// only a successful bundle is cached, so a failed attempt is retried by the
// next caller.
type BundleCache struct {
	engine Engine

	mu       sync.Mutex
	serveURL string
}

func NewBundleCache(engine Engine) *BundleCache {
	return &BundleCache{engine: engine}
}

// Peek reports the cached serve URL without triggering a bundle.
func (b *BundleCache) Peek() (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.serveURL, b.serveURL != ""
}

// Get returns the cached serve URL, bundling on first use.
func (b *BundleCache) Get(ctx context.Context) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.serveURL != "" {
		return b.serveURL, nil
	}

	serveURL, err := b.engine.Bundle(ctx)
	if err != nil {
		return "", err
	}

	b.serveURL = serveURL
	return serveURL, nil
}
