package xstrategy

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omeyang/cachekit/pkg/storage/xcache"
)

// newRedisBackedCache 构造远程后端的缓存门面，连向 miniredis。
func newRedisBackedCache(t *testing.T) *xcache.Cache {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)

	cfg := xcache.Config{Redis: xcache.RedisConfig{Addr: mr.Addr()}}
	c, err := xcache.New(context.Background(), cfg, xcache.WithLogger(nil))
	require.NoError(t, err)
	require.Equal(t, xcache.BackendRedis, c.Backend())

	t.Cleanup(func() {
		_ = c.Close()
		mr.Close()
	})
	return c
}

func TestNewInvalidator_NilCache_ReturnsError(t *testing.T) {
	_, err := NewInvalidator(nil)
	assert.ErrorIs(t, err, ErrNilCache)
}

func TestInvalidator_Direct(t *testing.T) {
	cache := newTestCache(t)
	inv, err := NewInvalidator(cache)
	require.NoError(t, err)
	ctx := context.Background()

	require.True(t, cache.Set(ctx, "key", []byte("value")))

	assert.True(t, inv.Direct(ctx, "key"))
	assert.False(t, cache.Has(ctx, "key"))

	// 再次失效同一 key：无数据可删
	assert.False(t, inv.Direct(ctx, "key"))
}

func TestInvalidator_Pattern_RedisBackend(t *testing.T) {
	cache := newRedisBackedCache(t)
	inv, err := NewInvalidator(cache)
	require.NoError(t, err)
	ctx := context.Background()

	require.True(t, cache.Set(ctx, "user:1", []byte("a")))
	require.True(t, cache.Set(ctx, "user:2", []byte("b")))
	require.True(t, cache.Set(ctx, "order:1", []byte("c")))

	n := inv.Pattern(ctx, "user:*")
	assert.Equal(t, int64(2), n)

	assert.False(t, cache.Has(ctx, "user:1"))
	assert.False(t, cache.Has(ctx, "user:2"))
	assert.True(t, cache.Has(ctx, "order:1"))
}

func TestInvalidator_Pattern_NoMatches_ReturnsZero(t *testing.T) {
	cache := newRedisBackedCache(t)
	inv, err := NewInvalidator(cache)
	require.NoError(t, err)

	assert.Zero(t, inv.Pattern(context.Background(), "none:*"))
}

func TestInvalidator_Pattern_MemoryBackend_NoOp(t *testing.T) {
	cache := newTestCache(t)
	inv, err := NewInvalidator(cache, WithInvalidatorLogger(nil))
	require.NoError(t, err)
	ctx := context.Background()

	require.True(t, cache.Set(ctx, "user:1", []byte("a")))

	// 进程内后端不支持模式失效：空操作，数据保持不变
	assert.Zero(t, inv.Pattern(ctx, "user:*"))
	assert.True(t, cache.Has(ctx, "user:1"))
}

func TestInvalidator_TimeBased_NoOp(t *testing.T) {
	cache := newTestCache(t)
	inv, err := NewInvalidator(cache)
	require.NoError(t, err)
	ctx := context.Background()

	require.True(t, cache.SetWithTTL(ctx, "key", []byte("value"), time.Minute))

	// 时间失效不做任何动作，过期交给后端 TTL
	inv.TimeBased(time.Minute)
	assert.True(t, cache.Has(ctx, "key"))
}
