package apiclient

import (
	"context"
	"fmt"
	"strings"

	"github.com/fivetwenty-io/fluentapi/internal/constants"
	"github.com/fivetwenty-io/fluentapi/internal/http"
	"github.com/fivetwenty-io/fluentapi/pkg/fluentapi"
)

// New creates a client from config over the HTTP transport. config.BaseURL is
// normalized in place.
func New(ctx context.Context, config *fluentapi.Config, declarations []fluentapi.Declaration, opts ...fluentapi.Option) (*fluentapi.Client, error) {
	if config == nil {
		return nil, fluentapi.ErrConfigRequired
	}

	if config.BaseURL == "" {
		return nil, fluentapi.ErrBaseURLRequired
	}

	config.BaseURL = NormalizeBaseURL(config.BaseURL)

	transport, err := NewTransport(ctx, config)
	if err != nil {
		return nil, err
	}

	client, err := fluentapi.New(transport, config.URLPrefix, declarations, append(treeOptions(config), opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	return client, nil
}

// FromDefinition creates a client from a parsed definition. The definition's
// base URL and prefix fill config fields that are left empty.
func FromDefinition(ctx context.Context, config *fluentapi.Config, definition *fluentapi.Definition, opts ...fluentapi.Option) (*fluentapi.Client, error) {
	if config == nil {
		return nil, fluentapi.ErrConfigRequired
	}

	if definition == nil {
		return nil, fluentapi.ErrDefinitionRequired
	}

	if config.BaseURL == "" {
		config.BaseURL = definition.BaseURL
	}

	if config.URLPrefix == "" {
		config.URLPrefix = definition.Prefix
	}

	return New(ctx, config, definition.Endpoints, opts...)
}

// NormalizeBaseURL trims a trailing slash and defaults the scheme to https.
func NormalizeBaseURL(baseURL string) string {
	baseURL = strings.TrimSuffix(strings.TrimSpace(baseURL), "/")
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "https://" + baseURL
	}

	return baseURL
}

// NewTransport builds the transport described by config: the HTTP client,
// its interceptors and, when config.Cache is set, a caching layer.
func NewTransport(ctx context.Context, config *fluentapi.Config) (fluentapi.Transport, error) {
	httpClient := http.NewClient(config.BaseURL, tokenProvider(config), createHTTPClientOptions(config)...)

	if config.Cache == nil || config.Cache.Type == fluentapi.CacheTypeNone {
		return httpClient, nil
	}

	cache, err := fluentapi.NewCacheFromConfig(config.Cache)
	if err != nil {
		return nil, fmt.Errorf("creating cache: %w", err)
	}

	ttl := constants.DefaultCacheTTL
	if config.Cache.Options != nil && config.Cache.Options.TTL > 0 {
		ttl = config.Cache.Options.TTL
	}

	caching := fluentapi.NewCachingTransport(httpClient, cache, ttl)
	if config.Logger != nil {
		caching.WithLogger(config.Logger)
	}

	return caching, nil
}

func tokenProvider(config *fluentapi.Config) http.TokenProvider {
	if config.AccessToken == "" {
		return nil
	}

	return http.StaticToken(config.AccessToken)
}

// createHTTPClientOptions builds HTTP client options from config.
func createHTTPClientOptions(config *fluentapi.Config) []http.Option {
	var httpOpts []http.Option

	if config.Logger != nil {
		httpOpts = append(httpOpts, http.WithLogger(config.Logger))
	}

	if config.Debug {
		httpOpts = append(httpOpts, http.WithDebug(true))
	}

	if config.UserAgent != "" {
		httpOpts = append(httpOpts, http.WithUserAgent(config.UserAgent))
	}

	if len(config.Headers) > 0 {
		httpOpts = append(httpOpts, http.WithHeaders(config.Headers))
	}

	if config.HTTPTimeout > 0 {
		httpOpts = append(httpOpts, http.WithTimeout(config.HTTPTimeout))
	}

	if config.RetryMax > 0 {
		retryWaitMin := constants.DefaultRetryWaitMin
		retryWaitMax := constants.ExtendedRetryWaitMax

		if config.RetryWaitMin > 0 {
			retryWaitMin = config.RetryWaitMin
		}

		if config.RetryWaitMax > 0 {
			retryWaitMax = config.RetryWaitMax
		}

		httpOpts = append(httpOpts, http.WithRetryConfig(config.RetryMax, retryWaitMin, retryWaitMax))
	}

	if chain := createInterceptors(config); chain != nil {
		httpOpts = append(httpOpts, http.WithInterceptors(chain))
	}

	return httpOpts
}

func createInterceptors(config *fluentapi.Config) *fluentapi.InterceptorChain {
	if config.RateLimit <= 0 && config.Logger == nil && config.RequestIDHeader == "" &&
		config.Metrics == nil && config.CircuitBreaker == nil {
		return nil
	}

	chain := fluentapi.NewInterceptorChain()

	// rejected requests never reach the response interceptors
	if config.CircuitBreaker != nil {
		chain.AddRequestInterceptor(fluentapi.CircuitBreakerRequestInterceptor(config.CircuitBreaker))
		chain.AddResponseInterceptor(fluentapi.CircuitBreakerResponseInterceptor(config.CircuitBreaker))
	}

	if config.RequestIDHeader != "" {
		chain.AddRequestInterceptor(fluentapi.RequestIDInterceptor(config.RequestIDHeader))
	}

	if config.RateLimit > 0 {
		chain.AddRequestInterceptor(fluentapi.RateLimitInterceptor(config.RateLimit))
	}

	if config.Metrics != nil {
		chain.AddRequestInterceptor(fluentapi.MetricsRequestInterceptor(config.Metrics))
		chain.AddResponseInterceptor(fluentapi.MetricsResponseInterceptor(config.Metrics))
	}

	if config.Logger != nil {
		chain.AddResponseInterceptor(fluentapi.LoggingResponseInterceptor(config.Logger))
	}

	return chain
}

func treeOptions(config *fluentapi.Config) []fluentapi.Option {
	var opts []fluentapi.Option

	if config.Logger != nil {
		opts = append(opts, fluentapi.WithLogger(config.Logger))
	}

	if config.Registry != nil {
		opts = append(opts, fluentapi.WithRegistry(config.Registry))
	}

	if config.StrictProperties {
		opts = append(opts, fluentapi.WithStrictProperties())
	}

	return opts
}
