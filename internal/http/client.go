// Package http is the retrying JSON transport used by fluentapi clients.
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fivetwenty-io/fluentapi/internal/constants"
	"github.com/fivetwenty-io/fluentapi/pkg/fluentapi"
	"github.com/hashicorp/go-retryablehttp"
)

const defaultUserAgent = "fluentapi-go/1.0"

// TokenProvider supplies bearer tokens.
type TokenProvider interface {
	GetToken(ctx context.Context) (string, error)
}

// StaticToken is a TokenProvider that always returns the same token.
type StaticToken string

// GetToken implements TokenProvider.
func (t StaticToken) GetToken(ctx context.Context) (string, error) {
	return string(t), nil
}

// Logger is the logging surface used by the client.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Request is a single HTTP exchange relative to the client's base URL.
type Request struct {
	Method  string
	Path    string
	Query   url.Values
	Body    interface{}
	Headers http.Header
}

// Response is the buffered result of a request.
type Response = fluentapi.Response

// Client sends JSON requests with optional retries.
type Client struct {
	baseURL        string
	httpClient     *retryablehttp.Client
	tokens         TokenProvider
	logger         Logger
	debug          bool
	userAgent      string
	headers        http.Header
	interceptors   *fluentapi.InterceptorChain
	validateStatus func(int) bool
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(logger Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug enables request and response logging.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithRetryConfig enables retries for 5xx, 429 and connection errors.
func WithRetryConfig(retryMax int, waitMin, waitMax time.Duration) Option {
	return func(c *Client) {
		c.httpClient.RetryMax = retryMax
		c.httpClient.RetryWaitMin = waitMin
		c.httpClient.RetryWaitMax = waitMax
	}
}

// WithHeaders adds headers sent on every request.
func WithHeaders(headers http.Header) Option {
	return func(c *Client) {
		for key, values := range headers {
			for _, value := range values {
				c.headers.Add(key, value)
			}
		}
	}
}

// WithTimeout bounds each attempt.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.HTTPClient.Timeout = timeout
	}
}

// WithInterceptors runs the chain around every request.
func WithInterceptors(chain *fluentapi.InterceptorChain) Option {
	return func(c *Client) {
		c.interceptors = chain
	}
}

// WithStatusValidator replaces the 2xx status policy.
func WithStatusValidator(validate func(statusCode int) bool) Option {
	return func(c *Client) {
		if validate != nil {
			c.validateStatus = validate
		}
	}
}

// NewClient creates a client for baseURL. tokens may be nil.
func NewClient(baseURL string, tokens TokenProvider, opts ...Option) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 0
	retryClient.RetryWaitMin = constants.DefaultRetryWaitMin
	retryClient.RetryWaitMax = constants.DefaultRetryWaitMax
	retryClient.CheckRetry = retryablehttp.DefaultRetryPolicy
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
	retryClient.Logger = nil
	retryClient.HTTPClient.Timeout = constants.DefaultHTTPTimeout

	client := &Client{
		baseURL:        strings.TrimSuffix(baseURL, "/"),
		httpClient:     retryClient,
		tokens:         tokens,
		userAgent:      defaultUserAgent,
		headers:        make(http.Header),
		validateStatus: isSuccess,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

func isSuccess(statusCode int) bool {
	return statusCode >= http.StatusOK && statusCode < http.StatusMultipleChoices
}

// Do sends req and buffers the response. A status rejected by the status
// policy returns both the response and a *fluentapi.StatusError.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	target := c.resolve(req.Path)
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var body []byte

	if req.Body != nil {
		encoded, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request body: %w", err)
		}

		body = encoded
	}

	headers, err := c.buildHeaders(ctx, req, body != nil)
	if err != nil {
		return nil, err
	}

	intercepted := &fluentapi.InterceptedRequest{
		Method:   req.Method,
		Path:     req.Path,
		Headers:  headers,
		Body:     body,
		Metadata: make(map[string]interface{}),
	}

	if c.interceptors != nil {
		err = c.interceptors.ExecuteRequestInterceptors(ctx, intercepted)
		if err != nil {
			return nil, fmt.Errorf("request interceptor: %w", err)
		}
	}

	resp, err := c.send(ctx, target, intercepted)

	if c.interceptors != nil {
		result := &fluentapi.InterceptedResponse{Error: err}
		if resp != nil {
			result.StatusCode = resp.StatusCode
			result.Headers = resp.Headers
			result.Body = resp.Body
		}

		interceptErr := c.interceptors.ExecuteResponseInterceptors(ctx, intercepted, result)
		if interceptErr != nil && err == nil {
			err = fmt.Errorf("response interceptor: %w", interceptErr)
		}
	}

	return resp, err
}

func (c *Client) resolve(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}

	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	return c.baseURL + path
}

func (c *Client) buildHeaders(ctx context.Context, req *Request, hasBody bool) (http.Header, error) {
	headers := make(http.Header)
	headers.Set("Accept", "application/json")
	headers.Set("User-Agent", c.userAgent)

	if hasBody {
		headers.Set("Content-Type", "application/json")
	}

	if c.tokens != nil {
		token, err := c.tokens.GetToken(ctx)
		if err != nil {
			return nil, fmt.Errorf("getting token: %w", err)
		}

		if token != "" {
			headers.Set("Authorization", "Bearer "+token)
		}
	}

	for key, values := range c.headers {
		headers[key] = append([]string(nil), values...)
	}

	for key, values := range req.Headers {
		headers[http.CanonicalHeaderKey(key)] = append([]string(nil), values...)
	}

	return headers, nil
}

func (c *Client) send(ctx context.Context, target string, req *fluentapi.InterceptedRequest) (*Response, error) {
	var payload interface{}
	if req.Body != nil {
		payload = req.Body
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, req.Method, target, payload)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	httpReq.Header = req.Headers

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Request", map[string]interface{}{
			"method": req.Method,
			"url":    target,
		})
	}

	start := time.Now()

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if httpResp != nil {
			_ = httpResp.Body.Close()
		}

		return nil, fmt.Errorf("executing request: %w", err)
	}

	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Response", map[string]interface{}{
			"status":   httpResp.StatusCode,
			"duration": time.Since(start).String(),
			"size":     len(respBody),
		})
	}

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header,
		Body:       respBody,
	}

	if !c.validateStatus(httpResp.StatusCode) {
		return resp, &fluentapi.StatusError{
			Method:     req.Method,
			URL:        target,
			StatusCode: httpResp.StatusCode,
			Body:       bytes.TrimSpace(respBody),
		}
	}

	return resp, nil
}

func (c *Client) call(ctx context.Context, method, path string, body interface{}, options *fluentapi.RequestOptions) (*Response, error) {
	req := &Request{
		Method: method,
		Path:   path,
		Body:   body,
	}

	if options != nil {
		if len(options.Params) > 0 {
			req.Query = options.Params.Values()
		}

		if len(options.Headers) > 0 {
			req.Headers = options.Headers.Clone()
		}

		if timeout, ok := options.Timeout(); ok {
			var cancel context.CancelFunc

			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
	}

	return c.Do(ctx, req)
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string, options *fluentapi.RequestOptions) (*Response, error) {
	return c.call(ctx, http.MethodGet, path, nil, options)
}

// Head performs a HEAD request.
func (c *Client) Head(ctx context.Context, path string, options *fluentapi.RequestOptions) (*Response, error) {
	return c.call(ctx, http.MethodHead, path, nil, options)
}

// Post performs a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body any, options *fluentapi.RequestOptions) (*Response, error) {
	return c.call(ctx, http.MethodPost, path, body, options)
}

// Put performs a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body any, options *fluentapi.RequestOptions) (*Response, error) {
	return c.call(ctx, http.MethodPut, path, body, options)
}

// Patch performs a PATCH request with a JSON body.
func (c *Client) Patch(ctx context.Context, path string, body any, options *fluentapi.RequestOptions) (*Response, error) {
	return c.call(ctx, http.MethodPatch, path, body, options)
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string, options *fluentapi.RequestOptions) (*Response, error) {
	return c.call(ctx, http.MethodDelete, path, nil, options)
}

var _ fluentapi.Transport = (*Client)(nil)
