package usage

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BDeshi155/pdf-gpt/pkg/auth"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewCache(client), mr
}

func TestCacheSetGet(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	snap := &auth.UsageSnapshot{PDFCount: 4, MonthlyUploads: 2}
	cache.Set(ctx, "user-1", snap)

	got, ok := cache.Get(ctx, "user-1")
	require.True(t, ok)
	assert.Equal(t, snap, got)
}

func TestCacheMiss(t *testing.T) {
	cache, _ := newTestCache(t)

	_, ok := cache.Get(context.Background(), "unknown")
	assert.False(t, ok)
}

func TestCacheCorruptEntryDropped(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, mr.Set("usage:user-1", "not json"))

	_, ok := cache.Get(ctx, "user-1")
	assert.False(t, ok)
	assert.False(t, mr.Exists("usage:user-1"))
}

func TestCacheInvalidate(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	cache.Set(ctx, "user-1", &auth.UsageSnapshot{PDFCount: 1})
	cache.Invalidate(ctx, "user-1")

	assert.False(t, mr.Exists("usage:user-1"))
}

func TestCacheInvalidateAll(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	cache.Set(ctx, "user-1", &auth.UsageSnapshot{PDFCount: 1})
	cache.Set(ctx, "user-2", &auth.UsageSnapshot{PDFCount: 2})
	require.NoError(t, mr.Set("session:other", "untouched"))

	require.NoError(t, cache.InvalidateAll(ctx))

	assert.False(t, mr.Exists("usage:user-1"))
	assert.False(t, mr.Exists("usage:user-2"))
	assert.True(t, mr.Exists("session:other"))
}
