package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vango-dev/fsroute/app/routes/internal/respond"
	"github.com/vango-dev/fsroute/pkg/module"
)

func init() {
	module.Register("app.routes.http.api.index", module.Exports{"router": Router()})
}

// User is a row of the users table.
type User struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	DOB  string `json:"dob"`
}

var users = []User{
	{ID: 1, Name: "John", DOB: "1990-01-01"},
	{ID: 2, Name: "Jack", DOB: "1991-01-01"},
	{ID: 3, Name: "Jill", DOB: "1992-01-01"},
	{ID: 4, Name: "Jane", DOB: "1993-01-01"},
}

// Router serves the users table at /api.
func Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		respond.JSON(w, http.StatusOK, map[string]any{
			"title": "Users",
			"users": users,
		})
	})
	return r
}
