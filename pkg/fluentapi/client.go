package fluentapi

import (
	"fmt"
	"io"
)

// Client is the root of an endpoint tree. Top-level endpoints are built
// eagerly; everything below them is materialized on demand.
type Client struct {
	transport Transport
	urlPrefix string
	endpoints Endpoints
}

// Option configures how a Client builds its tree.
type Option func(*builder)

// WithRegistry sets the registry used to resolve endpoint classes.
func WithRegistry(registry *Registry) Option {
	return func(b *builder) {
		if registry != nil {
			b.registry = registry
		}
	}
}

// WithLogger sets the logger used while building the tree.
func WithLogger(logger Logger) Option {
	return func(b *builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithStrictProperties rejects sibling declarations that share a property
// instead of letting the later one overwrite the earlier.
func WithStrictProperties() Option {
	return func(b *builder) {
		b.strict = true
	}
}

// New creates a client over transport. urlPrefix is inherited by every
// top-level endpoint and may be empty. No network calls are made.
func New(transport Transport, urlPrefix string, declarations []Declaration, opts ...Option) (*Client, error) {
	if transport == nil {
		return nil, ErrNilTransport
	}

	b := defaultBuilder()
	for _, opt := range opts {
		opt(b)
	}

	endpoints, err := b.build(transport, urlPrefix, declarations)
	if err != nil {
		return nil, fmt.Errorf("building endpoints: %w", err)
	}

	b.logger.Debug("Client created", map[string]interface{}{
		"prefix":    urlPrefix,
		"endpoints": endpoints.Names(),
	})

	return &Client{
		transport: transport,
		urlPrefix: urlPrefix,
		endpoints: endpoints,
	}, nil
}

// Endpoint returns the named top-level endpoint, or nil.
func (c *Client) Endpoint(name string) Endpoint {
	return c.endpoints[name]
}

// Lookup returns the named top-level endpoint and whether it exists.
func (c *Client) Lookup(name string) (Endpoint, bool) {
	endpoint, ok := c.endpoints[name]

	return endpoint, ok
}

// Endpoints returns a copy of the top-level endpoint map.
func (c *Client) Endpoints() Endpoints {
	endpoints := make(Endpoints, len(c.endpoints))
	for name, endpoint := range c.endpoints {
		endpoints[name] = endpoint
	}

	return endpoints
}

// Transport returns the shared transport.
func (c *Client) Transport() Transport {
	return c.transport
}

// URLPrefix returns the prefix given at construction.
func (c *Client) URLPrefix() string {
	return c.urlPrefix
}

// Close releases resources held by the transport, such as a NATS cache
// connection. Transports without resources are left alone.
func (c *Client) Close() error {
	if closer, ok := c.transport.(io.Closer); ok {
		return closer.Close()
	}

	return nil
}
