package fluentapi_test

import (
	"context"
	"testing"
	"time"

	"github.com/fivetwenty-io/fluentapi/pkg/fluentapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache_SetAndGet(t *testing.T) {
	t.Parallel()

	cache := fluentapi.NewMemoryCache(10)
	ctx := context.Background()

	entry := &fluentapi.CacheEntry{
		Data:      []byte("test data"),
		ExpiresAt: time.Now().Add(time.Hour),
		ETag:      "etag-1",
	}

	require.NoError(t, cache.Set(ctx, "key", entry))

	retrieved, err := cache.Get(ctx, "key")
	require.NoError(t, err)
	assert.Equal(t, entry.Data, retrieved.Data)
	assert.Equal(t, "etag-1", retrieved.ETag)
	assert.True(t, cache.Has(ctx, "key"))
}

func TestMemoryCache_GetNonExistent(t *testing.T) {
	t.Parallel()

	_, err := fluentapi.NewMemoryCache(10).Get(context.Background(), "missing")
	require.ErrorIs(t, err, fluentapi.ErrCacheKeyNotFound)
}

func TestMemoryCache_GetExpired(t *testing.T) {
	t.Parallel()

	cache := fluentapi.NewMemoryCache(10)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "key", &fluentapi.CacheEntry{
		Data:      []byte("stale"),
		ExpiresAt: time.Now().Add(-time.Second),
	}))

	assert.False(t, cache.Has(ctx, "key"))

	_, err := cache.Get(ctx, "key")
	require.ErrorIs(t, err, fluentapi.ErrCacheEntryExpired)
	assert.Equal(t, 0, cache.Len())
}

func TestMemoryCache_DeleteAndClear(t *testing.T) {
	t.Parallel()

	cache := fluentapi.NewMemoryCache(10)
	ctx := context.Background()

	for _, key := range []string{"a", "b", "c"} {
		require.NoError(t, cache.Set(ctx, key, &fluentapi.CacheEntry{Data: []byte(key)}))
	}

	require.NoError(t, cache.Delete(ctx, "a"))
	assert.False(t, cache.Has(ctx, "a"))
	assert.Equal(t, 2, cache.Len())

	require.NoError(t, cache.Clear(ctx))
	assert.Equal(t, 0, cache.Len())
}

func TestMemoryCache_MaxSize(t *testing.T) {
	t.Parallel()

	cache := fluentapi.NewMemoryCache(2)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "first", &fluentapi.CacheEntry{Data: []byte("1")}))
	require.NoError(t, cache.Set(ctx, "second", &fluentapi.CacheEntry{Data: []byte("2")}))
	require.NoError(t, cache.Set(ctx, "first", &fluentapi.CacheEntry{Data: []byte("1b")}))
	require.NoError(t, cache.Set(ctx, "third", &fluentapi.CacheEntry{Data: []byte("3")}))

	assert.Equal(t, 2, cache.Len())
	assert.False(t, cache.Has(ctx, "second"), "oldest insertion is evicted")
	assert.True(t, cache.Has(ctx, "first"))
	assert.True(t, cache.Has(ctx, "third"))
}

func TestCacheFactory(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		config  *fluentapi.CacheConfig
		wantErr error
		check   func(t *testing.T, cache fluentapi.Cache)
	}{
		{
			name:   "memory",
			config: &fluentapi.CacheConfig{Type: fluentapi.CacheTypeMemory, Memory: &fluentapi.MemoryCacheConfig{MaxSize: 5}},
			check: func(t *testing.T, cache fluentapi.Cache) {
				assert.IsType(t, &fluentapi.MemoryCache{}, cache)
			},
		},
		{
			name:   "nil config defaults to memory",
			config: nil,
			check: func(t *testing.T, cache fluentapi.Cache) {
				assert.IsType(t, &fluentapi.MemoryCache{}, cache)
			},
		},
		{
			name:   "none",
			config: &fluentapi.CacheConfig{Type: fluentapi.CacheTypeNone},
			check: func(t *testing.T, cache fluentapi.Cache) {
				ctx := context.Background()
				require.NoError(t, cache.Set(ctx, "key", &fluentapi.CacheEntry{Data: []byte("x")}))
				assert.False(t, cache.Has(ctx, "key"))

				_, err := cache.Get(ctx, "key")
				require.Error(t, err)
			},
		},
		{
			name:    "nats without config",
			config:  &fluentapi.CacheConfig{Type: fluentapi.CacheTypeNATS},
			wantErr: fluentapi.ErrNATSConfigRequired,
		},
		{
			name:    "tiered without NATS",
			config:  &fluentapi.CacheConfig{Type: fluentapi.CacheTypeTiered, Memory: &fluentapi.MemoryCacheConfig{MaxSize: 5}},
			wantErr: fluentapi.ErrNATSConfigRequired,
		},
		{
			name:    "invalid type",
			config:  &fluentapi.CacheConfig{Type: fluentapi.CacheType("invalid")},
			wantErr: fluentapi.ErrUnsupportedCacheType,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			cache, err := fluentapi.NewCacheFromConfig(test.config)
			if test.wantErr != nil {
				require.ErrorIs(t, err, test.wantErr)
				assert.Nil(t, cache)

				return
			}

			require.NoError(t, err)
			test.check(t, cache)
		})
	}
}

func TestParseCacheType(t *testing.T) {
	t.Parallel()

	cacheType, err := fluentapi.ParseCacheType("nats")
	require.NoError(t, err)
	assert.Equal(t, fluentapi.CacheTypeNATS, cacheType)

	cacheType, err = fluentapi.ParseCacheType("")
	require.NoError(t, err)
	assert.Equal(t, fluentapi.CacheTypeNone, cacheType)

	for _, value := range []string{"tiered", "memory,nats"} {
		cacheType, err = fluentapi.ParseCacheType(value)
		require.NoError(t, err)
		assert.Equal(t, fluentapi.CacheTypeTiered, cacheType)
	}

	_, err = fluentapi.ParseCacheType("redis")
	require.ErrorIs(t, err, fluentapi.ErrUnsupportedCacheType)
}

func TestCacheBuilder(t *testing.T) {
	t.Parallel()

	builder := fluentapi.NewCacheBuilder().
		WithType(fluentapi.CacheTypeMemory).
		WithMemoryConfig(50).
		WithTTL(time.Minute)

	assert.Equal(t, 50, builder.Config().Memory.MaxSize)
	assert.Equal(t, time.Minute, builder.Config().Options.TTL)
	assert.Nil(t, builder.Config().NATS)

	cache, err := builder.Build()
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, cache.Set(ctx, "builder-key", &fluentapi.CacheEntry{Data: []byte("built")}))

	retrieved, err := cache.Get(ctx, "builder-key")
	require.NoError(t, err)
	assert.Equal(t, []byte("built"), retrieved.Data)
}

func TestCacheBuilder_NATSInheritsTTL(t *testing.T) {
	t.Parallel()

	config := fluentapi.NewCacheBuilder().
		WithType(fluentapi.CacheTypeTiered).
		WithNATS("nats://127.0.0.1:4222", "responses").
		WithTTL(2 * time.Minute).
		Config()

	assert.Equal(t, fluentapi.CacheTypeTiered, config.Type)
	require.NotNil(t, config.NATS)
	assert.Equal(t, "responses", config.NATS.Bucket)
	assert.Equal(t, 2*time.Minute, config.NATS.TTL)
}

type closingCache struct {
	*fluentapi.MemoryCache
	closed bool
}

func (c *closingCache) Close() error {
	c.closed = true

	return nil
}

func TestCacheChain_Close(t *testing.T) {
	t.Parallel()

	shared := &closingCache{MemoryCache: fluentapi.NewMemoryCache(10)}
	chain := fluentapi.NewCacheChain(fluentapi.NewMemoryCache(10), shared)

	require.NoError(t, chain.Close())
	assert.True(t, shared.closed)
}

func TestCacheChain(t *testing.T) {
	t.Parallel()

	l1Cache := fluentapi.NewMemoryCache(10)
	l2Cache := fluentapi.NewMemoryCache(100)
	chain := fluentapi.NewCacheChain(l1Cache, l2Cache)
	ctx := context.Background()

	entry := &fluentapi.CacheEntry{Data: []byte("chain test"), ExpiresAt: time.Now().Add(time.Hour)}

	require.NoError(t, chain.Set(ctx, "chain-key", entry))
	assert.True(t, l1Cache.Has(ctx, "chain-key"))
	assert.True(t, l2Cache.Has(ctx, "chain-key"))

	require.NoError(t, l1Cache.Delete(ctx, "chain-key"))

	retrieved, err := chain.Get(ctx, "chain-key")
	require.NoError(t, err)
	assert.Equal(t, entry.Data, retrieved.Data)
	assert.True(t, l1Cache.Has(ctx, "chain-key"), "L1 is back-filled from L2")

	require.NoError(t, chain.Delete(ctx, "chain-key"))
	assert.False(t, chain.Has(ctx, "chain-key"))

	_, err = chain.Get(ctx, "chain-key")
	require.ErrorIs(t, err, fluentapi.ErrKeyNotFoundInAnyCache)

	require.NoError(t, chain.Set(ctx, "other", entry))
	require.NoError(t, chain.Clear(ctx))
	assert.Equal(t, 0, l1Cache.Len())
	assert.Equal(t, 0, l2Cache.Len())
}

func TestCacheChain_ReportsEveryFailingLevel(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	healthy := fluentapi.NewMemoryCache(10)
	chain := fluentapi.NewCacheChain(brokenCache{}, healthy, brokenCache{})

	err := chain.Set(ctx, "key", &fluentapi.CacheEntry{Data: []byte("x"), ExpiresAt: time.Now().Add(time.Hour)})
	require.ErrorIs(t, err, errCacheUnavailable)
	assert.Contains(t, err.Error(), "cache level 1")
	assert.Contains(t, err.Error(), "cache level 3")
	assert.True(t, healthy.Has(ctx, "key"), "healthy levels are still written")

	require.ErrorIs(t, chain.Clear(ctx), errCacheUnavailable)
	assert.Equal(t, 0, healthy.Len())
}
