package fluentapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/fivetwenty-io/fluentapi/internal/constants"
)

// Transport performs the HTTP calls issued by endpoints. Implementations own
// retries, authentication and status policy; endpoints pass results through
// unchanged.
type Transport interface {
	Get(ctx context.Context, url string, options *RequestOptions) (*Response, error)
	Head(ctx context.Context, url string, options *RequestOptions) (*Response, error)
	Post(ctx context.Context, url string, body any, options *RequestOptions) (*Response, error)
	Put(ctx context.Context, url string, body any, options *RequestOptions) (*Response, error)
	Patch(ctx context.Context, url string, body any, options *RequestOptions) (*Response, error)
	Delete(ctx context.Context, url string, options *RequestOptions) (*Response, error)
}

// Response is what a transport hands back for a call.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// Decode unmarshals the JSON body into v.
func (r *Response) Decode(v any) error {
	err := json.Unmarshal(r.Body, v)
	if err != nil {
		return fmt.Errorf("decoding response body: %w", err)
	}

	return nil
}

// RequestOptions is the per-call configuration passed to a transport.
// Params is never nil once built by an endpoint.
type RequestOptions struct {
	Params   Params
	Headers  http.Header
	Settings map[string]any
}

// Timeout returns the per-request timeout carried in Settings, if any.
func (o *RequestOptions) Timeout() (time.Duration, bool) {
	if o == nil || o.Settings == nil {
		return 0, false
	}

	timeout, ok := o.Settings[constants.SettingTimeout].(time.Duration)

	return timeout, ok && timeout > 0
}

// RequestOption overlays the synthesized request options.
type RequestOption func(*RequestOptions)

// NewRequestOptions builds options with params set first and the overlay
// applied on top, so an overlay may replace params entirely. The caller's
// params are copied and never modified.
func NewRequestOptions(params Params, opts ...RequestOption) *RequestOptions {
	options := &RequestOptions{
		Params:   params.Clone(),
		Headers:  make(http.Header),
		Settings: make(map[string]any),
	}

	for _, opt := range opts {
		opt(options)
	}

	if options.Params == nil {
		options.Params = Params{}
	}

	return options
}

// WithParams replaces the query parameters with a copy of params.
func WithParams(params Params) RequestOption {
	return func(o *RequestOptions) {
		o.Params = params.Clone()
	}
}

// WithParam sets a single query parameter.
func WithParam(key string, value any) RequestOption {
	return func(o *RequestOptions) {
		if o.Params == nil {
			o.Params = Params{}
		}

		o.Params[key] = value
	}
}

// WithHeader sets a request header.
func WithHeader(key, value string) RequestOption {
	return func(o *RequestOptions) {
		o.Headers.Set(key, value)
	}
}

// WithSetting passes a transport-specific setting through untouched.
func WithSetting(key string, value any) RequestOption {
	return func(o *RequestOptions) {
		o.Settings[key] = value
	}
}

// WithTimeout bounds a single request.
func WithTimeout(timeout time.Duration) RequestOption {
	return WithSetting(constants.SettingTimeout, timeout)
}
