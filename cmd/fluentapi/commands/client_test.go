package commands

import (
	"testing"

	"github.com/fivetwenty-io/fluentapi/internal/constants"
	"github.com/fivetwenty-io/fluentapi/pkg/fluentapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildCacheConfig(t *testing.T) {
	t.Run("none", func(t *testing.T) {
		useSettings(t, map[string]any{"cache": "none"})

		config, err := buildCacheConfig()
		require.NoError(t, err)
		assert.Equal(t, fluentapi.CacheTypeNone, config.Type)
	})

	t.Run("memory", func(t *testing.T) {
		useSettings(t, map[string]any{"cache": "memory"})

		config, err := buildCacheConfig()
		require.NoError(t, err)
		assert.Equal(t, fluentapi.CacheTypeMemory, config.Type)
		assert.Equal(t, constants.DefaultCacheSize, config.Memory.MaxSize)
		assert.Equal(t, constants.DefaultCacheTTL, config.Options.TTL)
		assert.Nil(t, config.NATS)
	})

	t.Run("memory in front of nats", func(t *testing.T) {
		useSettings(t, map[string]any{"cache": "memory,nats", "nats-url": "nats://127.0.0.1:4222"})

		config, err := buildCacheConfig()
		require.NoError(t, err)
		assert.Equal(t, fluentapi.CacheTypeTiered, config.Type)
		require.NotNil(t, config.NATS)
		assert.Equal(t, "nats://127.0.0.1:4222", config.NATS.URL)
		assert.Equal(t, constants.DefaultNATSBucket, config.NATS.Bucket)
		assert.Equal(t, constants.DefaultCacheTTL, config.NATS.TTL)
		assert.Equal(t, constants.DefaultCacheSize, config.Memory.MaxSize)
	})

	t.Run("nats requires a server", func(t *testing.T) {
		for _, cache := range []string{"nats", "tiered"} {
			useSettings(t, map[string]any{"cache": cache})

			_, err := buildCacheConfig()
			require.ErrorIs(t, err, constants.ErrNoNATSURL)
		}
	})

	t.Run("unknown backend", func(t *testing.T) {
		useSettings(t, map[string]any{"cache": "redis"})

		_, err := buildCacheConfig()
		require.ErrorIs(t, err, fluentapi.ErrUnsupportedCacheType)
	})
}
