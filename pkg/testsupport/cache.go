package testsupport

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/goliatone/go-repository-cache/cache"
)

// RecordingCache wraps a real cache service and remembers the keys it was
// asked for and the prefixes it was asked to drop.
type RecordingCache struct {
	cache.CacheService

	mu       sync.Mutex
	keys     []string
	prefixes []string
}

// NewCache returns an in-process cache service with the default key
// serializer, wrapped for inspection.
func NewCache(t testing.TB) (*RecordingCache, cache.KeySerializer) {
	t.Helper()
	service, err := cache.NewCacheService(cache.DefaultConfig())
	if err != nil {
		t.Fatalf("new cache service: %v", err)
	}
	return &RecordingCache{CacheService: service}, cache.NewDefaultKeySerializer()
}

func (c *RecordingCache) GetOrFetch(ctx context.Context, key string, fetchFn any) (any, error) {
	c.mu.Lock()
	c.keys = append(c.keys, key)
	c.mu.Unlock()
	return c.CacheService.GetOrFetch(ctx, key, fetchFn)
}

func (c *RecordingCache) DeleteByPrefix(ctx context.Context, prefix string) error {
	c.mu.Lock()
	c.prefixes = append(c.prefixes, prefix)
	c.mu.Unlock()
	return c.CacheService.DeleteByPrefix(ctx, prefix)
}

// LastPrefix returns the most recent prefix passed to DeleteByPrefix.
func (c *RecordingCache) LastPrefix() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.prefixes) == 0 {
		return ""
	}
	return c.prefixes[len(c.prefixes)-1]
}

// Covers reports whether prefix matches at least one key read so far.
func (c *RecordingCache) Covers(prefix string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range c.keys {
		if strings.HasPrefix(key, prefix) {
			return true
		}
	}
	return false
}
