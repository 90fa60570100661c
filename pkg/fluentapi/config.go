package fluentapi

import (
	"net/http"
	"time"
)

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

type noopLogger struct{}

func (noopLogger) Debug(string, map[string]interface{}) {}
func (noopLogger) Info(string, map[string]interface{})  {}
func (noopLogger) Warn(string, map[string]interface{})  {}
func (noopLogger) Error(string, map[string]interface{}) {}

// Config describes the transport and tree settings used by apiclient.New.
//
// # Transport
//
// BaseURL is joined with every endpoint path. AccessToken, when set, is sent
// as a Bearer token. Retries are off unless RetryMax is positive; they cover
// 5xx, 429 and connection errors.
//
// # Tree
//
// URLPrefix is inherited by every top-level endpoint (for example "v1").
// Registry resolves endpoint classes named in declarations.
type Config struct {
	// BaseURL is the scheme and host of the API (e.g., "https://api.example.com").
	// apiclient.New trims a trailing slash and adds "https://" when no scheme is present.
	BaseURL string
	// URLPrefix is prepended to every endpoint path.
	URLPrefix string

	// AccessToken is sent as "Authorization: Bearer <token>" when set.
	AccessToken string
	// Headers are added to every request.
	Headers http.Header
	// UserAgent overrides the default User-Agent header.
	UserAgent string

	// HTTPTimeout bounds each HTTP attempt. Zero uses the transport default.
	HTTPTimeout time.Duration
	// RetryMax is the maximum number of retries for transient failures.
	RetryMax int
	// RetryWaitMin is the minimum backoff between retries.
	RetryWaitMin time.Duration
	// RetryWaitMax is the maximum backoff between retries.
	RetryWaitMax time.Duration
	// RateLimit caps requests per second when positive.
	RateLimit int
	// RequestIDHeader, when set, names a header that carries a generated UUID
	// on every request (e.g., "X-Request-Id").
	RequestIDHeader string
	// Metrics, when set, collects per-endpoint counters for every request.
	Metrics *MetricsCollector
	// CircuitBreaker, when set, rejects requests with ErrCircuitBreakerOpen
	// after repeated 5xx or transport failures.
	CircuitBreaker *CircuitBreaker

	// Debug enables request/response logging when a Logger is provided.
	Debug bool
	// Logger is used by the transport and the tree builder.
	Logger Logger

	// Cache enables response caching for GET requests when set.
	Cache *CacheConfig

	// Registry resolves endpoint classes.
	Registry *Registry
	// StrictProperties rejects duplicate sibling properties.
	StrictProperties bool
}
