// Package redis provides the Redis-backed stores behind the portal's
// ephemeral state: cached query results, sessions, payment flows and alerts.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// queryKeyPrefix namespaces query cache entries in Redis.
const queryKeyPrefix = "query:"

// CacheBackend implements querycache.Backend on Redis
type CacheBackend struct {
	client *redis.Client
}

// NewCacheBackend creates a Redis query cache backend
func NewCacheBackend(client *redis.Client) *CacheBackend {
	return &CacheBackend{client: client}
}

// Get retrieves a cached value
func (b *CacheBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := b.client.Get(ctx, queryKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get cached query: %w", err)
	}
	return val, true, nil
}

// Set stores a value with a TTL
func (b *CacheBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := b.client.Set(ctx, queryKeyPrefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set cached query: %w", err)
	}
	return nil
}

// DeleteByPrefix removes every cached entry under the prefix. SCAN keeps the
// walk incremental so invalidation never blocks Redis.
func (b *CacheBackend) DeleteByPrefix(ctx context.Context, prefix string) error {
	iter := b.client.Scan(ctx, 0, queryKeyPrefix+prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := b.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("failed to delete cached query: %w", err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan cached queries: %w", err)
	}
	return nil
}
