package fluentapi_test

import (
	"context"
	"net/http"
	"sync"

	"github.com/fivetwenty-io/fluentapi/pkg/fluentapi"
)

// recordedCall is one call seen by recordingTransport.
type recordedCall struct {
	Method  string
	URL     string
	Body    any
	Options *fluentapi.RequestOptions
}

// recordingTransport records calls and answers every request with 200.
type recordingTransport struct {
	mu    sync.Mutex
	calls []recordedCall
	err   error
}

func (t *recordingTransport) record(method, url string, body any, options *fluentapi.RequestOptions) (*fluentapi.Response, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.calls = append(t.calls, recordedCall{Method: method, URL: url, Body: body, Options: options})
	if t.err != nil {
		return nil, t.err
	}

	return &fluentapi.Response{StatusCode: http.StatusOK, Headers: http.Header{}, Body: []byte(`{}`)}, nil
}

func (t *recordingTransport) Get(ctx context.Context, url string, options *fluentapi.RequestOptions) (*fluentapi.Response, error) {
	return t.record(http.MethodGet, url, nil, options)
}

func (t *recordingTransport) Head(ctx context.Context, url string, options *fluentapi.RequestOptions) (*fluentapi.Response, error) {
	return t.record(http.MethodHead, url, nil, options)
}

func (t *recordingTransport) Post(ctx context.Context, url string, body any, options *fluentapi.RequestOptions) (*fluentapi.Response, error) {
	return t.record(http.MethodPost, url, body, options)
}

func (t *recordingTransport) Put(ctx context.Context, url string, body any, options *fluentapi.RequestOptions) (*fluentapi.Response, error) {
	return t.record(http.MethodPut, url, body, options)
}

func (t *recordingTransport) Patch(ctx context.Context, url string, body any, options *fluentapi.RequestOptions) (*fluentapi.Response, error) {
	return t.record(http.MethodPatch, url, body, options)
}

func (t *recordingTransport) Delete(ctx context.Context, url string, options *fluentapi.RequestOptions) (*fluentapi.Response, error) {
	return t.record(http.MethodDelete, url, nil, options)
}

func (t *recordingTransport) Calls() []recordedCall {
	t.mu.Lock()
	defer t.mu.Unlock()

	return append([]recordedCall(nil), t.calls...)
}

func (t *recordingTransport) Last() recordedCall {
	calls := t.Calls()

	return calls[len(calls)-1]
}

// testLogger captures log lines.
type testLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *testLogger) add(level, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.lines = append(l.lines, level+": "+msg)
}

func (l *testLogger) Debug(msg string, fields map[string]interface{}) { l.add("debug", msg) }
func (l *testLogger) Info(msg string, fields map[string]interface{})  { l.add("info", msg) }
func (l *testLogger) Warn(msg string, fields map[string]interface{})  { l.add("warn", msg) }
func (l *testLogger) Error(msg string, fields map[string]interface{}) { l.add("error", msg) }

func (l *testLogger) Lines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	return append([]string(nil), l.lines...)
}

func shopDeclarations() []fluentapi.Declaration {
	return []fluentapi.Declaration{
		{
			Property: "users",
			Endpoints: []fluentapi.Declaration{
				{
					Property: "orders",
					Endpoints: []fluentapi.Declaration{
						{Property: "items"},
					},
				},
				{Property: "profile", URLPart: "user-profile"},
			},
		},
		{Property: "products", URLPart: "/catalog/products/"},
	}
}
