package fluentapi

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

var separatorRun = regexp.MustCompile(`/{2,}`)

// JoinURL joins prefix and part with "/", collapses repeated separators and
// strips one leading and one trailing separator.
func JoinURL(prefix, part string) string {
	joined := separatorRun.ReplaceAllString(prefix+"/"+part, "/")
	joined = strings.TrimPrefix(joined, "/")

	return strings.TrimSuffix(joined, "/")
}

// Endpoint is one addressable resource collection. Every endpoint kind
// implements it; custom kinds embed *BaseEndpoint and override what they need.
type Endpoint interface {
	// URL returns the path without leading or trailing "/".
	URL() string
	URLPart() string
	URLPrefix() string
	Transport() Transport
	Declarations() []Declaration

	// Endpoints materializes the declared children, rooted at URL() or at
	// URL()/id when id is not nil.
	Endpoints(id any) (Endpoints, error)
	// Enter is the way to descend into a single record; same as Endpoints(id).
	Enter(id any) (Endpoints, error)
	// Child materializes the named child only.
	Child(name string, id any) (Endpoint, error)

	DoGet(ctx context.Context, url string, params Params, opts ...RequestOption) (*Response, error)
	DoHead(ctx context.Context, url string, params Params, opts ...RequestOption) (*Response, error)
	DoPost(ctx context.Context, url string, data any, params Params, opts ...RequestOption) (*Response, error)
	DoPut(ctx context.Context, url string, data any, params Params, opts ...RequestOption) (*Response, error)
	DoPatch(ctx context.Context, url string, data any, params Params, opts ...RequestOption) (*Response, error)
	DoDelete(ctx context.Context, url string, params Params, opts ...RequestOption) (*Response, error)

	GetAll(ctx context.Context, params Params, opts ...RequestOption) (*Response, error)
	GetOne(ctx context.Context, id any, params Params, opts ...RequestOption) (*Response, error)
	Create(ctx context.Context, dataset any, opts ...RequestOption) (*Response, error)
	Read(ctx context.Context, id any, params Params, opts ...RequestOption) (*Response, error)
	Update(ctx context.Context, id any, dataset any, opts ...RequestOption) (*Response, error)
	Replace(ctx context.Context, id any, dataset any, opts ...RequestOption) (*Response, error)
	Delete(ctx context.Context, id any, opts ...RequestOption) (*Response, error)
}

// Factory wraps a freshly built base endpoint into a concrete kind.
type Factory func(base *BaseEndpoint) Endpoint

// DefaultFactory returns the base endpoint itself.
func DefaultFactory(base *BaseEndpoint) Endpoint {
	return base
}

// BaseEndpoint is the default Endpoint. Its fields are set once by the
// builder and never reassigned.
type BaseEndpoint struct {
	transport    Transport
	urlPart      string
	urlPrefix    string
	declarations []Declaration
	builder      *builder

	// self is the outermost value produced by the factory, so calls such as
	// Read -> GetOne reach overrides in custom kinds.
	self Endpoint
}

// NewBaseEndpoint creates a standalone endpoint with default build settings.
func NewBaseEndpoint(transport Transport, urlPart, urlPrefix string, declarations []Declaration) *BaseEndpoint {
	endpoint := &BaseEndpoint{
		transport:    transport,
		urlPart:      urlPart,
		urlPrefix:    urlPrefix,
		declarations: declarations,
		builder:      defaultBuilder(),
	}
	endpoint.self = endpoint

	return endpoint
}

// URL implements Endpoint.URL. It is recomputed on every call.
func (e *BaseEndpoint) URL() string {
	return JoinURL(e.urlPrefix, e.urlPart)
}

// URLPart implements Endpoint.URLPart.
func (e *BaseEndpoint) URLPart() string {
	return e.urlPart
}

// URLPrefix implements Endpoint.URLPrefix.
func (e *BaseEndpoint) URLPrefix() string {
	return e.urlPrefix
}

// Transport implements Endpoint.Transport.
func (e *BaseEndpoint) Transport() Transport {
	return e.transport
}

// Declarations implements Endpoint.Declarations.
func (e *BaseEndpoint) Declarations() []Declaration {
	return e.declarations
}

// Endpoints implements Endpoint.Endpoints. A fresh map is built on every call.
func (e *BaseEndpoint) Endpoints(id any) (Endpoints, error) {
	prefix := e.self.URL()
	if id != nil {
		prefix = fmt.Sprintf("%s/%v", prefix, id)
	}

	endpoints, err := e.builder.build(e.transport, prefix, e.declarations)
	if err != nil {
		return nil, err
	}

	e.builder.logger.Debug("Materialized endpoints", map[string]interface{}{
		"url":   e.self.URL(),
		"id":    id,
		"count": len(endpoints),
	})

	return endpoints, nil
}

// Enter implements Endpoint.Enter.
func (e *BaseEndpoint) Enter(id any) (Endpoints, error) {
	return e.self.Endpoints(id)
}

// Child implements Endpoint.Child.
func (e *BaseEndpoint) Child(name string, id any) (Endpoint, error) {
	endpoints, err := e.self.Endpoints(id)
	if err != nil {
		return nil, err
	}

	child, ok := endpoints[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q under %q", ErrUnknownEndpoint, name, e.self.URL())
	}

	return child, nil
}

// DoGet implements Endpoint.DoGet.
func (e *BaseEndpoint) DoGet(ctx context.Context, url string, params Params, opts ...RequestOption) (*Response, error) {
	return e.transport.Get(ctx, url, NewRequestOptions(params, opts...))
}

// DoHead implements Endpoint.DoHead.
func (e *BaseEndpoint) DoHead(ctx context.Context, url string, params Params, opts ...RequestOption) (*Response, error) {
	return e.transport.Head(ctx, url, NewRequestOptions(params, opts...))
}

// DoPost implements Endpoint.DoPost.
func (e *BaseEndpoint) DoPost(ctx context.Context, url string, data any, params Params, opts ...RequestOption) (*Response, error) {
	return e.transport.Post(ctx, url, bodyOrEmpty(data), NewRequestOptions(params, opts...))
}

// DoPut implements Endpoint.DoPut.
func (e *BaseEndpoint) DoPut(ctx context.Context, url string, data any, params Params, opts ...RequestOption) (*Response, error) {
	return e.transport.Put(ctx, url, bodyOrEmpty(data), NewRequestOptions(params, opts...))
}

// DoPatch implements Endpoint.DoPatch.
func (e *BaseEndpoint) DoPatch(ctx context.Context, url string, data any, params Params, opts ...RequestOption) (*Response, error) {
	return e.transport.Patch(ctx, url, bodyOrEmpty(data), NewRequestOptions(params, opts...))
}

// DoDelete implements Endpoint.DoDelete.
func (e *BaseEndpoint) DoDelete(ctx context.Context, url string, params Params, opts ...RequestOption) (*Response, error) {
	return e.transport.Delete(ctx, url, NewRequestOptions(params, opts...))
}

// GetAll implements Endpoint.GetAll.
func (e *BaseEndpoint) GetAll(ctx context.Context, params Params, opts ...RequestOption) (*Response, error) {
	return e.self.DoGet(ctx, e.collectionPath(), params, opts...)
}

// GetOne implements Endpoint.GetOne.
func (e *BaseEndpoint) GetOne(ctx context.Context, id any, params Params, opts ...RequestOption) (*Response, error) {
	return e.self.DoGet(ctx, e.recordPath(id), params, opts...)
}

// Create implements Endpoint.Create.
func (e *BaseEndpoint) Create(ctx context.Context, dataset any, opts ...RequestOption) (*Response, error) {
	return e.self.DoPost(ctx, e.collectionPath(), dataset, nil, opts...)
}

// Read implements Endpoint.Read.
func (e *BaseEndpoint) Read(ctx context.Context, id any, params Params, opts ...RequestOption) (*Response, error) {
	if id == nil {
		return e.self.GetAll(ctx, params, opts...)
	}

	return e.self.GetOne(ctx, id, params, opts...)
}

// Update implements Endpoint.Update.
func (e *BaseEndpoint) Update(ctx context.Context, id any, dataset any, opts ...RequestOption) (*Response, error) {
	return e.self.DoPatch(ctx, e.recordPath(id), dataset, nil, opts...)
}

// Replace implements Endpoint.Replace.
func (e *BaseEndpoint) Replace(ctx context.Context, id any, dataset any, opts ...RequestOption) (*Response, error) {
	return e.self.DoPut(ctx, e.recordPath(id), dataset, nil, opts...)
}

// Delete implements Endpoint.Delete.
func (e *BaseEndpoint) Delete(ctx context.Context, id any, opts ...RequestOption) (*Response, error) {
	return e.self.DoDelete(ctx, e.recordPath(id), nil, opts...)
}

func (e *BaseEndpoint) collectionPath() string {
	return "/" + e.self.URL()
}

func (e *BaseEndpoint) recordPath(id any) string {
	return fmt.Sprintf("/%s/%v", e.self.URL(), id)
}

func bodyOrEmpty(data any) any {
	if data == nil {
		return map[string]any{}
	}

	return data
}

// Endpoints maps a property name to its endpoint.
type Endpoints map[string]Endpoint

// Names returns the property names in sorted order.
func (e Endpoints) Names() []string {
	names := make([]string, 0, len(e))
	for name := range e {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}
