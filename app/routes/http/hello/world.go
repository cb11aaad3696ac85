package hello

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vango-dev/fsroute/app/routes/internal/respond"
	"github.com/vango-dev/fsroute/pkg/module"
)

func init() {
	module.Register("app.routes.http.hello.world", module.Exports{"router": Router()})
}

// Router serves /hello/world and /hello/world/custom.
func Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		respond.JSON(w, http.StatusOK, map[string]string{"message": "Hello, dynamic world!"})
	})
	r.Get("/custom", func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Query().Get("name")
		if name == "" {
			name = "world"
		}
		respond.JSON(w, http.StatusOK, map[string]string{"message": "Hello, " + name + "!"})
	})
	return r
}
