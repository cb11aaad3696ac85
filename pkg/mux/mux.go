// Package mux provides an http.Handler whose mounted sub-routers can be added
// and removed while it is serving.
//
// Every Mount or Unmount rebuilds an immutable chi router from the current
// set of mounts and swaps it in atomically, so a reload never races with
// in-flight requests.
package mux

import (
	"net/http"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/go-chi/chi/v5"
)

// RouteInfo describes one route of the live router.
type RouteInfo struct {
	Method  string
	Pattern string
}

// Option configures a Mux.
type Option func(*Mux)

// WithMiddleware adds middleware applied to every request.
func WithMiddleware(mw ...func(http.Handler) http.Handler) Option {
	return func(m *Mux) {
		m.middleware = append(m.middleware, mw...)
	}
}

// WithRoutes adds routes that are installed on every rebuild, before the
// mounts (e.g. a metrics endpoint).
func WithRoutes(fn func(r chi.Router)) Option {
	return func(m *Mux) {
		m.static = append(m.static, fn)
	}
}

// WithNotFound sets the handler used when no route matches.
func WithNotFound(h http.HandlerFunc) Option {
	return func(m *Mux) {
		m.notFound = h
	}
}

// Mux is a reloadable HTTP host.
type Mux struct {
	mu         sync.Mutex
	mounts     map[string]http.Handler
	middleware []func(http.Handler) http.Handler
	static     []func(r chi.Router)
	notFound   http.HandlerFunc

	current atomic.Pointer[chi.Mux]
}

// New creates a Mux with no mounts.
func New(opts ...Option) *Mux {
	m := &Mux{mounts: make(map[string]http.Handler)}
	for _, opt := range opts {
		opt(m)
	}
	m.current.Store(m.build())
	return m
}

// Mount attaches h under pattern, replacing any handler already mounted
// there. Patterns use chi syntax ("/users/{user_id}").
func (m *Mux) Mount(pattern string, h http.Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.mounts[normalize(pattern)] = h
	m.current.Store(m.build())
}

// ReplacesBinding reports true: Mount on a used pattern swaps the handler in
// a single rebuild.
func (m *Mux) ReplacesBinding() bool { return true }

// Unmount detaches whatever is mounted under pattern.
func (m *Mux) Unmount(pattern string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	pattern = normalize(pattern)
	if _, ok := m.mounts[pattern]; !ok {
		return
	}
	delete(m.mounts, pattern)
	m.current.Store(m.build())
}

// ServeHTTP implements http.Handler.
func (m *Mux) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	m.current.Load().ServeHTTP(w, r)
}

// Patterns returns the mounted patterns in sorted order.
func (m *Mux) Patterns() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	patterns := make([]string, 0, len(m.mounts))
	for p := range m.mounts {
		patterns = append(patterns, p)
	}
	sort.Strings(patterns)
	return patterns
}

// Routes walks the live router and returns every method/pattern pair.
func (m *Mux) Routes() []RouteInfo {
	var routes []RouteInfo
	_ = chi.Walk(m.current.Load(), func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		routes = append(routes, RouteInfo{Method: method, Pattern: route})
		return nil
	})
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Pattern != routes[j].Pattern {
			return routes[i].Pattern < routes[j].Pattern
		}
		return routes[i].Method < routes[j].Method
	})
	return routes
}

// build must be called with m.mu held.
func (m *Mux) build() *chi.Mux {
	r := chi.NewRouter()
	r.Use(m.middleware...)
	if m.notFound != nil {
		r.NotFound(m.notFound)
	}
	for _, fn := range m.static {
		fn(r)
	}

	patterns := make([]string, 0, len(m.mounts))
	for p := range m.mounts {
		patterns = append(patterns, p)
	}
	sort.Strings(patterns)

	for _, p := range patterns {
		r.Mount(p, m.mounts[p])
	}
	return r
}

func normalize(pattern string) string {
	if pattern == "" {
		return "/"
	}
	if !strings.HasPrefix(pattern, "/") {
		pattern = "/" + pattern
	}
	if len(pattern) > 1 {
		pattern = strings.TrimSuffix(pattern, "/")
	}
	return pattern
}
