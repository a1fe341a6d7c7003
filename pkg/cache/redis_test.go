package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) *RedisCache {
	t.Helper()
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set, skipping Redis tests")
	}

	c, err := NewRedisCache(&Options{
		Backend:       BackendRedis,
		RedisAddr:     addr,
		RedisPassword: os.Getenv("REDIS_TEST_PASSWORD"),
		DefaultTTL:    time.Minute,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestRedisCache_SetGet(t *testing.T) {
	c := newTestRedis(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "netrel-test:key", []byte("value"), time.Minute))
	defer c.Delete(ctx, "netrel-test:key")

	got, err := c.Get(ctx, "netrel-test:key")
	require.NoError(t, err)
	assert.Equal(t, []byte("value"), got)

	ok, err := c.Exists(ctx, "netrel-test:key")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisCache_NotFound(t *testing.T) {
	c := newTestRedis(t)

	_, err := c.Get(context.Background(), "netrel-test:missing")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestRedisCache_DeleteByPattern(t *testing.T) {
	c := newTestRedis(t)
	ctx := context.Background()

	for _, key := range []string{"netrel-test:p:1", "netrel-test:p:2"} {
		require.NoError(t, c.Set(ctx, key, []byte("v"), time.Minute))
	}

	n, err := c.DeleteByPattern(ctx, "netrel-test:p:*")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	stats, err := c.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, BackendRedis, stats.Backend)
}
