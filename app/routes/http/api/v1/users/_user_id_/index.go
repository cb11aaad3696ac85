// Package user serves a single user. The directory name _user_id_ is the
// {user_id} route parameter.
package user

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/vango-dev/fsroute/app/routes/internal/respond"
	"github.com/vango-dev/fsroute/pkg/module"
)

func init() {
	module.Register("app.routes.http.api.v1.users._user_id_.index", module.Exports{"router": GetRouter()})
}

// GetRouter serves GET /api/v1/users/{user_id}.
func GetRouter() http.Handler {
	r := chi.NewRouter()
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.Atoi(chi.URLParam(r, "user_id"))
		if err != nil {
			respond.Error(w, http.StatusUnprocessableEntity, "user_id must be an integer")
			return
		}
		respond.JSON(w, http.StatusOK, map[string]any{
			"user_id": id,
			"name":    "John Doe",
			"email":   "johndoe@example.com",
		})
	})
	return r
}
