package fluentapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Static errors for err113 compliance.
var (
	ErrMissingProperty      = errors.New(`missing or invalid "property" property`)
	ErrUnknownEndpointClass = errors.New("unknown endpoint class")
	ErrDuplicateProperty    = errors.New("duplicate endpoint property")
	ErrUnknownEndpoint      = errors.New("unknown endpoint")
	ErrInvalidRoute         = errors.New("invalid route")
	ErrEmptyClassName       = errors.New("endpoint class name is required")
	ErrNilFactory           = errors.New("endpoint factory is required")
	ErrNilTransport         = errors.New("transport is required")
	ErrConfigRequired       = errors.New("config is required")
	ErrBaseURLRequired      = errors.New("base URL is required")
	ErrDefinitionRequired   = errors.New("API definition is required")
	ErrCircuitBreakerOpen   = errors.New("circuit breaker is open")
)

// ConfigurationError reports a declaration that cannot be turned into an
// endpoint. It is raised while the tree is built, never during a request.
type ConfigurationError struct {
	Declaration Declaration
	Err         error
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	content, err := json.Marshal(e.Declaration)
	if err != nil {
		content = []byte(fmt.Sprintf("%+v", e.Declaration))
	}

	return fmt.Sprintf("%v on API endpoint \"%s\" definition", e.Err, content)
}

// Unwrap returns the underlying sentinel error.
func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// IsConfigurationError checks if the error is a declaration error.
func IsConfigurationError(err error) bool {
	confErr := &ConfigurationError{}

	return errors.As(err, &confErr)
}

// StatusError is returned by the HTTP transport when a response status is
// rejected by its status policy. The response is still returned alongside it.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       []byte
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	text := http.StatusText(e.StatusCode)
	if text == "" {
		text = "unexpected status"
	}

	if len(e.Body) == 0 {
		return fmt.Sprintf("%s %s: %d %s", e.Method, e.URL, e.StatusCode, text)
	}

	return fmt.Sprintf("%s %s: %d %s: %s", e.Method, e.URL, e.StatusCode, text, truncate(e.Body, maxErrorBodyLength))
}

const maxErrorBodyLength = 512

func truncate(body []byte, limit int) string {
	if len(body) <= limit {
		return string(body)
	}

	return string(body[:limit]) + "..."
}

// IsNotFound checks if the error is a not found error.
func IsNotFound(err error) bool {
	return hasStatus(err, http.StatusNotFound)
}

// IsUnauthorized checks if the error is an unauthorized error.
func IsUnauthorized(err error) bool {
	return hasStatus(err, http.StatusUnauthorized)
}

// IsForbidden checks if the error is a forbidden error.
func IsForbidden(err error) bool {
	return hasStatus(err, http.StatusForbidden)
}

func hasStatus(err error, code int) bool {
	statusErr := &StatusError{}
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode == code
	}

	return false
}
