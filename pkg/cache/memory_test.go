package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T, maxEntries int) *MemoryCache {
	t.Helper()
	c := NewMemoryCache(&Options{DefaultTTL: time.Minute, MaxEntries: maxEntries})
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestMemoryCache_SetGet(t *testing.T) {
	c := newTestCache(t, 10)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "estimate:a", []byte("value"), 0))

	got, err := c.Get(ctx, "estimate:a")
	require.NoError(t, err)
	assert.Equal(t, []byte("value"), got)

	got[0] = 'X'
	again, err := c.Get(ctx, "estimate:a")
	require.NoError(t, err)
	assert.Equal(t, []byte("value"), again, "returned slice is a copy")

	_, err = c.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestMemoryCache_Overwrite(t *testing.T) {
	c := newTestCache(t, 10)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("1"), 0))
	require.NoError(t, c.Set(ctx, "k", []byte("2"), 0))

	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("2"), got)

	stats, err := c.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalKeys)
}

func TestMemoryCache_Expiration(t *testing.T) {
	c := newTestCache(t, 10)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "short", []byte("v"), 20*time.Millisecond))
	ok, err := c.Exists(ctx, "short")
	require.NoError(t, err)
	assert.True(t, ok)

	time.Sleep(40 * time.Millisecond)

	_, err = c.Get(ctx, "short")
	assert.ErrorIs(t, err, ErrKeyNotFound)
	ok, err = c.Exists(ctx, "short")
	require.NoError(t, err)
	assert.False(t, ok)

	c.removeExpired()
	stats, err := c.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.TotalKeys)
}

func TestMemoryCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := newTestCache(t, 3)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, c.Set(ctx, fmt.Sprintf("k%d", i), []byte("v"), 0))
	}
	_, err := c.Get(ctx, "k0")
	require.NoError(t, err)

	require.NoError(t, c.Set(ctx, "k3", []byte("v"), 0))

	for key, want := range map[string]bool{"k0": true, "k1": false, "k2": true, "k3": true} {
		ok, err := c.Exists(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, want, ok, key)
	}
}

func TestMemoryCache_DeleteByPattern(t *testing.T) {
	c := newTestCache(t, 10)
	ctx := context.Background()

	for _, key := range []string{"estimate:1", "estimate:2", "sweep:1"} {
		require.NoError(t, c.Set(ctx, key, []byte("v"), 0))
	}

	n, err := c.DeleteByPattern(ctx, "estimate:*")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	ok, _ := c.Exists(ctx, "sweep:1")
	assert.True(t, ok)

	_, err = c.DeleteByPattern(ctx, "[")
	assert.Error(t, err)

	require.NoError(t, c.Delete(ctx, "sweep:1"))
	require.NoError(t, c.Delete(ctx, "sweep:1"))
}

func TestMemoryCache_Stats(t *testing.T) {
	c := newTestCache(t, 10)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("value"), 0))
	_, _ = c.Get(ctx, "k")
	_, _ = c.Get(ctx, "k")
	_, _ = c.Get(ctx, "nope")

	stats, err := c.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.InDelta(t, 2.0/3.0, stats.HitRate, 1e-12)
	assert.Equal(t, int64(len("k")+len("value")), stats.MemoryBytes)
	assert.Equal(t, BackendMemory, stats.Backend)
}

func TestMemoryCache_Closed(t *testing.T) {
	c := NewMemoryCache(nil)
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())

	ctx := context.Background()
	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheClosed)
	assert.ErrorIs(t, c.Set(ctx, "k", nil, 0), ErrCacheClosed)
	_, err = c.Stats(ctx)
	assert.ErrorIs(t, err, ErrCacheClosed)
}

func TestNew(t *testing.T) {
	c, err := New(nil)
	require.NoError(t, err)
	assert.IsType(t, &MemoryCache{}, c)
	require.NoError(t, c.Close())

	_, err = New(&Options{Backend: "memcached"})
	assert.Error(t, err)
}
