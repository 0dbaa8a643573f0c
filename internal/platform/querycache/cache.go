// Package querycache is the portal's data-fetching layer. Upstream reads go
// through a keyed cache: concurrent requests for the same logical query share
// one upstream flight, results stay fresh for a TTL, and mutations invalidate
// the keys they affect so the next read refetches.
package querycache

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/lendenpay/portal/pkg/logger"
)

// DefaultTTL is the freshness window for cached query results.
const DefaultTTL = 30 * time.Second

// Backend is the storage port behind the cache.
type Backend interface {
	// Get returns the cached value for key and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value under key with the given TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// DeleteByPrefix removes every key sharing the given prefix.
	DeleteByPrefix(ctx context.Context, prefix string) error
}

// Cache de-duplicates and caches upstream query results.
type Cache struct {
	backend Backend
	ttl     time.Duration
	logger  *logger.Logger

	mu       sync.Mutex
	inflight map[string]*flight
}

// flight is a single in-progress fetch shared by all concurrent callers.
type flight struct {
	done  chan struct{}
	value []byte
	err   error
}

// New creates a query cache with the default TTL.
func New(backend Backend, log *logger.Logger) *Cache {
	return NewWithTTL(backend, DefaultTTL, log)
}

// NewWithTTL creates a query cache with a custom TTL.
func NewWithTTL(backend Backend, ttl time.Duration, log *logger.Logger) *Cache {
	return &Cache{
		backend:  backend,
		ttl:      ttl,
		logger:   log.WithField("component", "querycache"),
		inflight: make(map[string]*flight),
	}
}

// Key joins logical key parts into a cache key.
func Key(parts ...string) string {
	return strings.Join(parts, ":")
}

// GetOrFetch returns the cached value for key, or runs fetch once and caches
// its result. Concurrent callers for the same key wait for the single
// in-flight fetch instead of hitting the upstream again. A backend failure
// degrades to a direct fetch; it never fails the read.
func (c *Cache) GetOrFetch(ctx context.Context, key string, fetch func(ctx context.Context) ([]byte, error)) ([]byte, error) {
	if value, ok := c.lookup(ctx, key); ok {
		return value, nil
	}

	c.mu.Lock()
	if f, ok := c.inflight[key]; ok {
		c.mu.Unlock()
		select {
		case <-f.done:
			return f.value, f.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f := &flight{done: make(chan struct{})}
	c.inflight[key] = f
	c.mu.Unlock()

	f.value, f.err = fetch(ctx)
	if f.err == nil {
		if err := c.backend.Set(ctx, key, f.value, c.ttl); err != nil {
			c.logger.Warn("cache write failed", "key", key, "error", err)
		}
	}

	c.mu.Lock()
	delete(c.inflight, key)
	c.mu.Unlock()
	close(f.done)

	return f.value, f.err
}

// Invalidate removes every cached entry under the given key prefixes.
// Called after a mutation succeeds so subsequent reads refetch.
func (c *Cache) Invalidate(ctx context.Context, prefixes ...string) {
	for _, prefix := range prefixes {
		if err := c.backend.DeleteByPrefix(ctx, prefix); err != nil {
			c.logger.Warn("cache invalidation failed", "prefix", prefix, "error", err)
		}
	}
}

func (c *Cache) lookup(ctx context.Context, key string) ([]byte, bool) {
	value, ok, err := c.backend.Get(ctx, key)
	if err != nil {
		c.logger.Warn("cache read failed", "key", key, "error", err)
		return nil, false
	}
	if ok {
		c.logger.Debug("cache hit", "key", key)
	}
	return value, ok
}

// Fetch is the typed wrapper over GetOrFetch: values round-trip through JSON.
func Fetch[T any](ctx context.Context, c *Cache, key string, fetch func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	raw, err := c.GetOrFetch(ctx, key, func(ctx context.Context) ([]byte, error) {
		value, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(value)
	})
	if err != nil {
		return zero, err
	}

	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return zero, err
	}
	return out, nil
}
