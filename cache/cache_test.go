package cache

import (
	"context"
	"testing"
	"time"

	"github.com/anoixa/photo-gallery/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMemory(t *testing.T) *MemoryCache {
	t.Helper()
	c, err := NewMemoryCache(MemoryConfig{NumCounters: 1000, MaxCost: 1 << 20, BufferItems: 64})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestMemoryCache(t *testing.T) {
	c := newTestMemory(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "test_key", "test_value", 10*time.Second))

	var got string
	require.NoError(t, c.Get(ctx, "test_key", &got))
	assert.Equal(t, "test_value", got)

	exists, err := c.Exists(ctx, "test_key")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, c.Delete(ctx, "test_key"))
	err = c.Get(ctx, "test_key", &got)
	assert.True(t, IsCacheMiss(err))
}

func TestMemoryCacheStruct(t *testing.T) {
	c := newTestMemory(t)
	ctx := context.Background()

	type item struct {
		Name  string
		Value int
	}
	items := []item{{Name: "a", Value: 1}, {Name: "b", Value: 2}}
	require.NoError(t, c.Set(ctx, "struct_key", items, 10*time.Second))

	// 修改原切片不影响缓存
	items[0].Name = "changed"

	var got []item
	require.NoError(t, c.Get(ctx, "struct_key", &got))
	assert.Equal(t, []item{{Name: "a", Value: 1}, {Name: "b", Value: 2}}, got)
}

func TestMemoryCacheBytes(t *testing.T) {
	c := newTestMemory(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "raw", []byte("hello"), time.Minute))
	var got []byte
	require.NoError(t, c.Get(ctx, "raw", &got))
	assert.Equal(t, "hello", string(got))
}

func TestCacheMiss(t *testing.T) {
	c := newTestMemory(t)

	var value string
	err := c.Get(context.Background(), "nonexistent_key", &value)
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.True(t, IsCacheMiss(err))
	assert.False(t, IsCacheMiss(nil))
}

func TestKeyBuilder(t *testing.T) {
	assert.Equal(t, "galleries:public", PublicGalleriesKey)
	assert.Equal(t, "dashboard:stats", DashboardStatsKey)
	assert.Equal(t, "galleries:user:7", NewKeyBuilder("galleries").Build("user", "7"))
	assert.Equal(t, "galleries", NewKeyBuilder("galleries").Build())
	assert.ElementsMatch(t, []string{PublicGalleriesKey, DashboardStatsKey}, KnownKeys())
}

func TestWithJitter(t *testing.T) {
	d := 10 * time.Minute
	for i := 0; i < 20; i++ {
		got := WithJitter(d)
		assert.GreaterOrEqual(t, got, d)
		assert.Less(t, got, d+d/10)
	}
	assert.Equal(t, time.Duration(0), WithJitter(0))
}

func TestNewProvider(t *testing.T) {
	p, err := NewProvider(&config.Config{CacheType: "memory", CacheMemoryMaxCostMB: 1})
	require.NoError(t, err)
	defer p.Close()
	assert.Equal(t, "memory", p.Name())

	_, err = NewProvider(&config.Config{CacheType: "memcached"})
	assert.Error(t, err)
}

func TestRedisCache_KeyPrefix(t *testing.T) {
	plain := &RedisCache{}
	assert.Equal(t, "galleries:public", plain.key(PublicGalleriesKey))
	assert.Equal(t, "redis", plain.Name())

	scoped := &RedisCache{prefix: "photo-gallery"}
	assert.Equal(t, "photo-gallery:dashboard:stats", scoped.key(DashboardStatsKey))
	assert.Equal(t, "redis:photo-gallery", scoped.Name())
}

func TestNewRedisCache_Unreachable(t *testing.T) {
	_, err := NewRedisCache(RedisConfig{Address: "127.0.0.1:1", KeyPrefix: "photo-gallery"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "127.0.0.1:1")

	_, err = NewProvider(&config.Config{CacheType: "redis", CacheRedisAddr: "127.0.0.1:1"})
	assert.Error(t, err)
}
