package fluentapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/fivetwenty-io/fluentapi/internal/constants"
)

// CachingTransport serves repeated GET requests from a Cache. Successful
// writes through it flush the cache. Cache failures never fail a request.
type CachingTransport struct {
	next   Transport
	cache  Cache
	ttl    time.Duration
	logger Logger
}

type cachedResponse struct {
	StatusCode int         `json:"status_code"`
	Headers    http.Header `json:"headers"`
	Body       []byte      `json:"body"`
}

// NewCachingTransport wraps next. A non-positive ttl uses the default TTL.
func NewCachingTransport(next Transport, cache Cache, ttl time.Duration) *CachingTransport {
	if ttl <= 0 {
		ttl = constants.DefaultCacheTTL
	}

	return &CachingTransport{
		next:   next,
		cache:  cache,
		ttl:    ttl,
		logger: noopLogger{},
	}
}

// WithLogger sets the logger used for cache hits and cache failures.
func (t *CachingTransport) WithLogger(logger Logger) *CachingTransport {
	if logger != nil {
		t.logger = logger
	}

	return t
}

// cacheKey identifies a GET by URL, params and per-request headers. Header
// names are canonical and sorted so equal requests share a key.
func cacheKey(target string, options *RequestOptions) string {
	key := http.MethodGet + " " + target
	if options == nil {
		return key
	}

	if len(options.Params) > 0 {
		key += "?" + options.Params.Encode()
	}

	if len(options.Headers) > 0 {
		key += " " + url.Values(options.Headers).Encode()
	}

	return key
}

// Get implements Transport.Get.
func (t *CachingTransport) Get(ctx context.Context, url string, options *RequestOptions) (*Response, error) {
	key := cacheKey(url, options)

	entry, err := t.cache.Get(ctx, key)
	if err == nil {
		var cached cachedResponse

		if json.Unmarshal(entry.Data, &cached) == nil {
			t.logger.Debug("Cache hit", map[string]interface{}{"key": key})

			return &Response{
				StatusCode: cached.StatusCode,
				Headers:    cached.Headers,
				Body:       cached.Body,
			}, nil
		}
	}

	resp, err := t.next.Get(ctx, url, options)
	if err != nil || resp == nil || resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, err
	}

	t.store(ctx, key, resp)

	return resp, nil
}

func (t *CachingTransport) store(ctx context.Context, key string, resp *Response) {
	data, err := json.Marshal(cachedResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Headers,
		Body:       resp.Body,
	})
	if err != nil {
		return
	}

	err = t.cache.Set(ctx, key, &CacheEntry{
		Data:      data,
		ExpiresAt: time.Now().Add(t.ttl),
		ETag:      resp.Headers.Get("ETag"),
	})
	if err != nil {
		t.logger.Warn("Failed to store cache entry", map[string]interface{}{"key": key, "error": err.Error()})
	}
}

func (t *CachingTransport) flush(ctx context.Context, resp *Response, err error) (*Response, error) {
	if err == nil {
		clearErr := t.cache.Clear(ctx)
		if clearErr != nil {
			t.logger.Warn("Failed to flush cache", map[string]interface{}{"error": clearErr.Error()})
		}
	}

	return resp, err
}

// Head implements Transport.Head. HEAD responses are not cached.
func (t *CachingTransport) Head(ctx context.Context, url string, options *RequestOptions) (*Response, error) {
	return t.next.Head(ctx, url, options)
}

// Post implements Transport.Post.
func (t *CachingTransport) Post(ctx context.Context, url string, body any, options *RequestOptions) (*Response, error) {
	resp, err := t.next.Post(ctx, url, body, options)

	return t.flush(ctx, resp, err)
}

// Put implements Transport.Put.
func (t *CachingTransport) Put(ctx context.Context, url string, body any, options *RequestOptions) (*Response, error) {
	resp, err := t.next.Put(ctx, url, body, options)

	return t.flush(ctx, resp, err)
}

// Patch implements Transport.Patch.
func (t *CachingTransport) Patch(ctx context.Context, url string, body any, options *RequestOptions) (*Response, error) {
	resp, err := t.next.Patch(ctx, url, body, options)

	return t.flush(ctx, resp, err)
}

// Delete implements Transport.Delete.
func (t *CachingTransport) Delete(ctx context.Context, url string, options *RequestOptions) (*Response, error) {
	resp, err := t.next.Delete(ctx, url, options)

	return t.flush(ctx, resp, err)
}

// Close releases the cache when it holds resources, such as a NATS connection.
func (t *CachingTransport) Close() error {
	if closer, ok := t.cache.(io.Closer); ok {
		return closer.Close()
	}

	return nil
}
