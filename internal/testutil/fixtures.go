package testutil

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// BackendCall is one request received by a Backend.
type BackendCall struct {
	Method string
	Path   string
	Query  string
	Auth   string
	Body   string
}

// Route is a canned response for "METHOD /path".
type Route struct {
	Status int
	// Body is written verbatim when it is a string, otherwise JSON-encoded.
	Body any
}

// Backend is a fake REST backend for handler tests. Unrouted requests get 404.
type Backend struct {
	*httptest.Server

	mu     sync.Mutex
	routes map[string]Route
	calls  []BackendCall
}

// NewBackend starts a fake backend that is closed when the test ends.
func NewBackend(t *testing.T) *Backend {
	t.Helper()
	b := &Backend{routes: make(map[string]Route)}
	b.Server = httptest.NewServer(http.HandlerFunc(b.serve))
	t.Cleanup(b.Close)
	return b
}

// Handle sets the response for method and path (path without query).
func (b *Backend) Handle(method, path string, status int, body any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.routes[method+" "+path] = Route{Status: status, Body: body}
}

// Calls returns a copy of the received requests in arrival order.
func (b *Backend) Calls() []BackendCall {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]BackendCall, len(b.calls))
	copy(out, b.calls)
	return out
}

// CallsTo returns the received requests matching method and path.
func (b *Backend) CallsTo(method, path string) []BackendCall {
	var out []BackendCall
	for _, c := range b.Calls() {
		if c.Method == method && c.Path == path {
			out = append(out, c)
		}
	}
	return out
}

func (b *Backend) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	path := r.URL.EscapedPath()

	b.mu.Lock()
	b.calls = append(b.calls, BackendCall{
		Method: r.Method,
		Path:   path,
		Query:  r.URL.RawQuery,
		Auth:   r.Header.Get("Authorization"),
		Body:   string(body),
	})
	route, ok := b.routes[r.Method+" "+path]
	b.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	status := route.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	switch v := route.Body.(type) {
	case nil:
	case string:
		io.WriteString(w, v)
	default:
		_ = json.NewEncoder(w).Encode(v)
	}
}
