package traveltime

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T, ttl time.Duration) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewCache(rdb, ttl), mr
}

func TestCache_StoreAndLookup(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache(t, time.Hour)

	require.NoError(t, c.Store(ctx, "12 Pool Lane", "i1", 900))
	require.NoError(t, c.Store(ctx, "12 Pool Lane", "i2", 0))

	got, err := c.Lookup(ctx, "  12 pool   LANE ", []string{"i1", "i2", "i3"})
	require.NoError(t, err)
	require.Len(t, got, 3)
	require.NotNil(t, got["i1"])
	assert.Equal(t, 900, *got["i1"])
	require.NotNil(t, got["i2"])
	assert.Equal(t, 0, *got["i2"])
	assert.Nil(t, got["i3"])
}

func TestCache_MalformedEntryIsUnknown(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t, time.Hour)

	require.NoError(t, mr.Set(key("home", "i1"), "twenty minutes"))
	require.NoError(t, mr.Set(key("home", "i2"), "-5"))

	got, err := c.Lookup(ctx, "home", []string{"i1", "i2"})
	require.NoError(t, err)
	assert.Nil(t, got["i1"])
	assert.Nil(t, got["i2"])
}

func TestCache_EntriesExpire(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t, time.Minute)

	require.NoError(t, c.Store(ctx, "home", "i1", 60))
	mr.FastForward(2 * time.Minute)

	got, err := c.Lookup(ctx, "home", []string{"i1"})
	require.NoError(t, err)
	assert.Nil(t, got["i1"])
}

func newClosedCache(t *testing.T) *Cache {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1, DialTimeout: 100 * time.Millisecond})
	t.Cleanup(func() { _ = rdb.Close() })
	mr.Close()
	return NewCache(rdb, time.Minute)
}

func TestCache_NoOriginSkipsRedis(t *testing.T) {
	c := newClosedCache(t)

	got, err := c.Lookup(context.Background(), "   ", []string{"i1"})
	require.NoError(t, err)
	assert.Contains(t, got, "i1")
	assert.Nil(t, got["i1"])
}

func TestCache_RedisDownReportsUnknown(t *testing.T) {
	c := newClosedCache(t)

	got, err := c.Lookup(context.Background(), "home", []string{"i1"})
	assert.Error(t, err)
	assert.Nil(t, got["i1"])
}

func TestCache_StoreRejectsBadInput(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache(t, time.Minute)

	assert.Error(t, c.Store(ctx, "", "i1", 10))
	assert.Error(t, c.Store(ctx, "home", "", 10))
	assert.Error(t, c.Store(ctx, "home", "i1", -1))

	var nilCache *Cache
	assert.Error(t, nilCache.Store(ctx, "home", "i1", 10))
}
