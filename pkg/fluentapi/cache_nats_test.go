package fluentapi_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/fivetwenty-io/fluentapi/pkg/fluentapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNATSKVCache needs a JetStream-enabled server, e.g.
// FLUENTAPI_TEST_NATS_URL=nats://127.0.0.1:4222.
func TestNATSKVCache(t *testing.T) {
	t.Parallel()

	url := os.Getenv("FLUENTAPI_TEST_NATS_URL")
	if url == "" {
		t.Skip("FLUENTAPI_TEST_NATS_URL not set")
	}

	cache, err := fluentapi.NewNATSKVCache(&fluentapi.NATSKVConfig{
		URL:    url,
		Bucket: "fluentapi-test-cache",
		TTL:    time.Minute,
	})
	require.NoError(t, err)
	defer func() { _ = cache.Close() }()

	ctx := context.Background()
	require.NoError(t, cache.Clear(ctx))

	key := "GET /v1/users?page=1&per_page=50"
	entry := &fluentapi.CacheEntry{
		Data:      []byte(`{"id":1}`),
		ExpiresAt: time.Now().Add(time.Minute),
		ETag:      `"abc"`,
	}

	require.NoError(t, cache.Set(ctx, key, entry))
	assert.True(t, cache.Has(ctx, key))

	retrieved, err := cache.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, entry.Data, retrieved.Data)
	assert.Equal(t, entry.ETag, retrieved.ETag)

	require.NoError(t, cache.Set(ctx, "stale", &fluentapi.CacheEntry{Data: []byte("x"), ExpiresAt: time.Now().Add(-time.Second)}))

	_, err = cache.Get(ctx, "stale")
	require.ErrorIs(t, err, fluentapi.ErrCacheEntryExpired)

	require.NoError(t, cache.Delete(ctx, key))

	_, err = cache.Get(ctx, key)
	require.ErrorIs(t, err, fluentapi.ErrCacheKeyNotFound)

	require.NoError(t, cache.Set(ctx, key, entry))
	require.NoError(t, cache.Clear(ctx))
	assert.False(t, cache.Has(ctx, key))
}

func TestNATSKVCache_RequiresConfig(t *testing.T) {
	t.Parallel()

	_, err := fluentapi.NewNATSKVCache(nil)
	require.ErrorIs(t, err, fluentapi.ErrNATSConfigRequired)
}

func TestTieredCache(t *testing.T) {
	t.Parallel()

	url := os.Getenv("FLUENTAPI_TEST_NATS_URL")
	if url == "" {
		t.Skip("FLUENTAPI_TEST_NATS_URL not set")
	}

	cache, err := fluentapi.NewCacheBuilder().
		WithType(fluentapi.CacheTypeTiered).
		WithMemoryConfig(10).
		WithNATS(url, "fluentapi-test-tiered").
		WithTTL(time.Minute).
		Build()
	require.NoError(t, err)

	chain, ok := cache.(*fluentapi.CacheChain)
	require.True(t, ok)

	defer func() { _ = chain.Close() }()

	ctx := context.Background()
	require.NoError(t, chain.Clear(ctx))

	entry := &fluentapi.CacheEntry{Data: []byte(`{"id":7}`), ExpiresAt: time.Now().Add(time.Minute)}
	require.NoError(t, chain.Set(ctx, "GET /v1/users/7", entry))

	retrieved, err := chain.Get(ctx, "GET /v1/users/7")
	require.NoError(t, err)
	assert.Equal(t, entry.Data, retrieved.Data)
}
