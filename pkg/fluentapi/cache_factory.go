package fluentapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/fivetwenty-io/fluentapi/internal/constants"
	"github.com/hashicorp/go-multierror"
)

// CacheType selects the backend behind a CachingTransport.
type CacheType string

const (
	// CacheTypeMemory keeps responses in process.
	CacheTypeMemory CacheType = "memory"

	// CacheTypeNATS shares responses through a JetStream KV bucket.
	CacheTypeNATS CacheType = "nats"

	// CacheTypeTiered puts a memory cache in front of a NATS bucket.
	CacheTypeTiered CacheType = "tiered"

	// CacheTypeNone disables caching.
	CacheTypeNone CacheType = "none"
)

// Static errors for err113 compliance.
var (
	ErrNATSConfigRequired    = errors.New("NATS configuration required for NATS cache")
	ErrUnsupportedCacheType  = errors.New("unsupported cache type")
	ErrCacheDisabled         = errors.New("cache disabled")
	ErrKeyNotFoundInAnyCache = errors.New("key not found in any cache")
)

// CacheConfig configures the response cache.
type CacheConfig struct {
	Type CacheType

	// Memory sizes the in-process cache used by memory and tiered.
	Memory *MemoryCacheConfig

	// NATS locates the bucket used by nats and tiered.
	NATS *NATSKVConfig

	// Options apply to every backend. If nil, DefaultCacheOptions() is used.
	Options *CacheOptions
}

// MemoryCacheConfig configures memory cache.
type MemoryCacheConfig struct {
	// MaxSize is the maximum number of cached responses.
	MaxSize int
}

// DefaultCacheConfig returns default cache configuration.
func DefaultCacheConfig() *CacheConfig {
	return &CacheConfig{
		Type: CacheTypeMemory,
		Memory: &MemoryCacheConfig{
			MaxSize: constants.DefaultCacheSize,
		},
		Options: DefaultCacheOptions(),
	}
}

// ParseCacheType maps a flag or config value to a CacheType. "memory,nats"
// is accepted as a spelling of tiered.
func ParseCacheType(value string) (CacheType, error) {
	switch CacheType(value) {
	case CacheTypeMemory, CacheTypeNATS, CacheTypeTiered, CacheTypeNone:
		return CacheType(value), nil
	case "memory,nats":
		return CacheTypeTiered, nil
	case "":
		return CacheTypeNone, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedCacheType, value)
	}
}

// NewCacheFromConfig creates a cache backend from configuration.
func NewCacheFromConfig(config *CacheConfig) (Cache, error) {
	if config == nil {
		config = DefaultCacheConfig()
	}

	switch config.Type {
	case CacheTypeMemory:
		return NewMemoryCacheFromConfig(config.Memory), nil

	case CacheTypeNATS:
		if config.NATS == nil {
			return nil, ErrNATSConfigRequired
		}

		cache, err := NewNATSKVCache(config.NATS)
		if err != nil {
			return nil, err
		}

		return cache, nil

	case CacheTypeTiered:
		if config.NATS == nil {
			return nil, ErrNATSConfigRequired
		}

		shared, err := NewNATSKVCache(config.NATS)
		if err != nil {
			return nil, err
		}

		return NewCacheChain(NewMemoryCacheFromConfig(config.Memory), shared), nil

	case CacheTypeNone:
		return NewNoOpCache(), nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCacheType, config.Type)
	}
}

// NewMemoryCacheFromConfig creates a memory cache from configuration.
func NewMemoryCacheFromConfig(config *MemoryCacheConfig) *MemoryCache {
	if config == nil {
		return NewMemoryCache(constants.DefaultCacheSize)
	}

	return NewMemoryCache(config.MaxSize)
}

// NoOpCache never stores anything. It backs CacheTypeNone.
type NoOpCache struct{}

// NewNoOpCache creates a new no-op cache.
func NewNoOpCache() *NoOpCache {
	return &NoOpCache{}
}

// Get always misses with ErrCacheDisabled.
func (c *NoOpCache) Get(ctx context.Context, key string) (*CacheEntry, error) {
	return nil, ErrCacheDisabled
}

func (c *NoOpCache) Set(ctx context.Context, key string, entry *CacheEntry) error { return nil }
func (c *NoOpCache) Delete(ctx context.Context, key string) error                { return nil }
func (c *NoOpCache) Clear(ctx context.Context) error                             { return nil }
func (c *NoOpCache) Has(ctx context.Context, key string) bool                    { return false }

// CacheBuilder assembles a CacheConfig from CLI or application settings.
type CacheBuilder struct {
	config *CacheConfig
}

// NewCacheBuilder starts from a memory cache with default options.
func NewCacheBuilder() *CacheBuilder {
	return &CacheBuilder{
		config: &CacheConfig{
			Type:    CacheTypeMemory,
			Options: DefaultCacheOptions(),
		},
	}
}

// WithType sets the backend.
func (b *CacheBuilder) WithType(cacheType CacheType) *CacheBuilder {
	b.config.Type = cacheType

	return b
}

// WithMemoryConfig bounds the in-process level.
func (b *CacheBuilder) WithMemoryConfig(maxSize int) *CacheBuilder {
	b.config.Memory = &MemoryCacheConfig{MaxSize: maxSize}

	return b
}

// WithNATS points the shared level at a server and bucket.
func (b *CacheBuilder) WithNATS(url, bucket string) *CacheBuilder {
	b.config.NATS = &NATSKVConfig{URL: url, Bucket: bucket}

	return b
}

// WithTTL sets how long responses stay cached.
func (b *CacheBuilder) WithTTL(ttl time.Duration) *CacheBuilder {
	b.config.Options = &CacheOptions{TTL: ttl}

	return b
}

// Config returns the configuration. A NATS bucket without its own TTL
// inherits the response TTL.
func (b *CacheBuilder) Config() *CacheConfig {
	if b.config.NATS != nil && b.config.NATS.TTL == 0 && b.config.Options != nil {
		b.config.NATS.TTL = b.config.Options.TTL
	}

	return b.config
}

// Build creates the cache from the configuration.
func (b *CacheBuilder) Build() (Cache, error) {
	return NewCacheFromConfig(b.Config())
}

// CacheChain looks up levels in order (L1 first) and writes to all of them.
type CacheChain struct {
	caches []Cache
}

// NewCacheChain creates a new cache chain.
func NewCacheChain(caches ...Cache) *CacheChain {
	return &CacheChain{
		caches: caches,
	}
}

// Get returns the first hit and copies it into the faster levels that missed.
func (c *CacheChain) Get(ctx context.Context, key string) (*CacheEntry, error) {
	for i, cache := range c.caches {
		entry, err := cache.Get(ctx, key)
		if err != nil {
			continue
		}

		for _, faster := range c.caches[:i] {
			_ = faster.Set(ctx, key, entry)
		}

		return entry, nil
	}

	return nil, ErrKeyNotFoundInAnyCache
}

func (c *CacheChain) each(apply func(Cache) error) error {
	var result *multierror.Error

	for i, cache := range c.caches {
		err := apply(cache)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("cache level %d: %w", i+1, err))
		}
	}

	return result.ErrorOrNil()
}

// Set writes to every level. Failures of every level are reported together.
func (c *CacheChain) Set(ctx context.Context, key string, entry *CacheEntry) error {
	return c.each(func(cache Cache) error { return cache.Set(ctx, key, entry) })
}

// Delete removes key from every level.
func (c *CacheChain) Delete(ctx context.Context, key string) error {
	return c.each(func(cache Cache) error { return cache.Delete(ctx, key) })
}

// Clear empties every level.
func (c *CacheChain) Clear(ctx context.Context) error {
	return c.each(func(cache Cache) error { return cache.Clear(ctx) })
}

// Has reports whether any level holds key.
func (c *CacheChain) Has(ctx context.Context, key string) bool {
	for _, cache := range c.caches {
		if cache.Has(ctx, key) {
			return true
		}
	}

	return false
}

// Close closes every level that holds resources.
func (c *CacheChain) Close() error {
	return c.each(func(cache Cache) error {
		if closer, ok := cache.(io.Closer); ok {
			return closer.Close()
		}

		return nil
	})
}
