package renderer

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
)

type fakeEngine struct {
	bundleCalls atomic.Int32
	bundleErr   error
}

func (f *fakeEngine) Bundle(ctx context.Context) (string, error) {
	f.bundleCalls.Add(1)
	if f.bundleErr != nil {
		return "", f.bundleErr
	}
	return "http://localhost:3000/serve", nil
}

func (f *fakeEngine) SelectComposition(ctx context.Context, serveURL, compositionID string, inputProps any) (Composition, error) {
	return Composition{ID: compositionID, FPS: 30}, nil
}

func (f *fakeEngine) Render(ctx context.Context, req RenderRequest) error {
	return nil
}

func TestBundleCacheSingleInit(t *testing.T) {
	eng := &fakeEngine{}
	cache := NewBundleCache(eng)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			url, err := cache.Get(context.Background())
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if url != "http://localhost:3000/serve" {
				t.Errorf("unexpected serve url %q", url)
			}
		}()
	}
	wg.Wait()

	if got := eng.bundleCalls.Load(); got != 1 {
		t.Errorf("expected exactly 1 bundle call under concurrent first use, got %d", got)
	}
}

func TestBundleCacheRetriesAfterFailure(t *testing.T) {
	eng := &fakeEngine{bundleErr: fmt.Errorf("bundler unavailable")}
	cache := NewBundleCache(eng)

	if _, err := cache.Get(context.Background()); err == nil {
		t.Fatal("expected first Get to fail")
	}

	eng.bundleErr = nil
	url, err := cache.Get(context.Background())
	if err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if url == "" {
		t.Error("expected serve url after retry")
	}
	if got := eng.bundleCalls.Load(); got != 2 {
		t.Errorf("expected 2 bundle calls, got %d", got)
	}
}
