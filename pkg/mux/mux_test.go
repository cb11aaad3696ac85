package mux

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func textRouter(body string) http.Handler {
	r := chi.NewRouter()
	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, body)
	})
	r.Get("/custom", func(w http.ResponseWriter, req *http.Request) {
		io.WriteString(w, body+" custom "+req.URL.Query().Get("name"))
	})
	return r
}

func get(t *testing.T, h http.Handler, path string) (int, string) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec.Code, rec.Body.String()
}

func TestMuxMount(t *testing.T) {
	m := New()
	m.Mount("/hello/world", textRouter("hello"))

	code, body := get(t, m, "/hello/world")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "hello", body)

	code, body = get(t, m, "/hello/world/custom?name=gopher")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "hello custom gopher", body)

	code, _ = get(t, m, "/missing")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestMuxMountWithParam(t *testing.T) {
	sub := chi.NewRouter()
	sub.Get("/", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "user "+chi.URLParam(r, "user_id"))
	})

	m := New()
	m.Mount("/api/v1/users/{user_id}", sub)
	m.Mount("/api/v1/users", textRouter("list"))

	code, body := get(t, m, "/api/v1/users/42")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "user 42", body)

	_, body = get(t, m, "/api/v1/users")
	assert.Equal(t, "list", body)
}

func TestMuxMountRoot(t *testing.T) {
	m := New()
	m.Mount("/", textRouter("root"))
	m.Mount("/api", textRouter("api"))

	_, body := get(t, m, "/")
	assert.Equal(t, "root", body)

	_, body = get(t, m, "/api")
	assert.Equal(t, "api", body)
}

func TestMuxMountReplaces(t *testing.T) {
	m := New()
	m.Mount("/hello", textRouter("one"))
	m.Mount("/hello/", textRouter("two"))

	_, body := get(t, m, "/hello")
	assert.Equal(t, "two", body)
	assert.Equal(t, []string{"/hello"}, m.Patterns())
}

func TestMuxUnmount(t *testing.T) {
	m := New()
	m.Mount("/hello", textRouter("hello"))
	m.Unmount("/hello")
	m.Unmount("/never-mounted")

	code, _ := get(t, m, "/hello")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Empty(t, m.Patterns())
}

func TestMuxOptions(t *testing.T) {
	var seen []string
	logging := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = append(seen, r.URL.Path)
			next.ServeHTTP(w, r)
		})
	}

	m := New(
		WithMiddleware(logging),
		WithRoutes(func(r chi.Router) {
			r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
				io.WriteString(w, "ok")
			})
		}),
		WithNotFound(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		}),
	)
	m.Mount("/hello", textRouter("hello"))

	_, body := get(t, m, "/healthz")
	assert.Equal(t, "ok", body)

	code, _ := get(t, m, "/nowhere")
	assert.Equal(t, http.StatusTeapot, code)

	assert.Equal(t, []string{"/healthz", "/nowhere"}, seen)
}

func TestMuxRoutes(t *testing.T) {
	m := New()
	m.Mount("/hello/world", textRouter("hello"))

	routes := m.Routes()
	assert.Contains(t, routes, RouteInfo{Method: http.MethodGet, Pattern: "/hello/world/"})
	assert.Contains(t, routes, RouteInfo{Method: http.MethodGet, Pattern: "/hello/world/custom"})
}

func TestMuxConcurrentReload(t *testing.T) {
	m := New()
	m.Mount("/stable", textRouter("stable"))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			m.Mount("/flapping", textRouter("x"))
			m.Unmount("/flapping")
		}()
		go func() {
			defer wg.Done()
			code, _ := get(t, m, "/stable")
			assert.Equal(t, http.StatusOK, code)
		}()
	}
	wg.Wait()
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "/", normalize(""))
	assert.Equal(t, "/", normalize("/"))
	assert.Equal(t, "/a", normalize("a"))
	assert.Equal(t, "/a/b", normalize("/a/b/"))
}
