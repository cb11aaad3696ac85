package users

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/vango-dev/fsroute/app/routes/internal/respond"
	"github.com/vango-dev/fsroute/pkg/module"
)

func init() {
	module.Register("app.routes.http.api.v1.users.index", module.Exports{"router": CreateRouter()})
}

// CreateRequest is the body of POST /api/v1/users.
type CreateRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Record is a stored user.
type Record struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// store is in memory; it resets on restart.
var store struct {
	sync.Mutex
	users []Record
}

// CreateRouter serves POST /api/v1/users.
func CreateRouter() http.Handler {
	r := chi.NewRouter()
	r.Post("/", func(w http.ResponseWriter, r *http.Request) {
		var req CreateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respond.Error(w, http.StatusUnprocessableEntity, "invalid body: "+err.Error())
			return
		}
		if req.Name == "" || req.Email == "" {
			respond.Error(w, http.StatusUnprocessableEntity, "name and email are required")
			return
		}

		store.Lock()
		user := Record{ID: len(store.users) + 1, Name: req.Name, Email: req.Email}
		store.users = append(store.users, user)
		store.Unlock()

		respond.JSON(w, http.StatusOK, map[string]any{
			"message": "User created successfully",
			"user":    user,
		})
	})
	return r
}
