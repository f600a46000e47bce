package usage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/BDeshi155/pdf-gpt/pkg/auth"
)

const (
	cacheKeyPrefix = "usage:"
	cacheTTL       = 30 * time.Second
)

// Cache is a Redis read-through cache for usage snapshots. A cache
// failure is never fatal; callers fall back to the database.
type Cache struct {
	client *redis.Client
}

// NewCache creates a usage cache on an existing Redis client
func NewCache(client *redis.Client) *Cache {
	return &Cache{client: client}
}

func cacheKey(userID string) string {
	return cacheKeyPrefix + userID
}

// Get returns a cached snapshot and whether it was present
func (c *Cache) Get(ctx context.Context, userID string) (*auth.UsageSnapshot, bool) {
	data, err := c.client.Get(ctx, cacheKey(userID)).Result()
	if err != nil {
		return nil, false
	}

	var snap auth.UsageSnapshot
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		// Corrupt entry; drop it
		c.client.Del(ctx, cacheKey(userID))
		return nil, false
	}
	return &snap, true
}

// Set stores a snapshot with a short TTL
func (c *Cache) Set(ctx context.Context, userID string, snap *auth.UsageSnapshot) {
	data, err := json.Marshal(snap)
	if err != nil {
		return
	}
	c.client.Set(ctx, cacheKey(userID), data, cacheTTL)
}

// Invalidate removes one user's cached snapshot
func (c *Cache) Invalidate(ctx context.Context, userID string) {
	c.client.Del(ctx, cacheKey(userID))
}

// InvalidateAll removes every cached snapshot. Used after the monthly
// reset; SCAN keeps it safe on a shared Redis.
func (c *Cache) InvalidateAll(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, cacheKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("failed to delete cache key %s: %w", iter.Val(), err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan usage cache keys: %w", err)
	}
	return nil
}
