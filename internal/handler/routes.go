package handler

import (
	"net/http"

	"github.com/forgo/setlist/api/internal/model"
)

// Allow header values per route
const (
	allowCollection  = "POST, GET"
	allowItem        = "GET, PATCH, DELETE"
	allowUsers       = "GET"
	allowUserConcert = "DELETE"
)

// Handlers groups the handlers mounted by RegisterRoutes
type Handlers struct {
	Bands    *BandHandler
	Concerts *ConcertHandler
	Users    *UserHandler
	OAuth    *OAuthHandler
	Health   *HealthHandler
}

// RegisterRoutes mounts the API on mux. Each resource path also gets a
// method-less catch-all that answers 405 with the route's Allow header.
func RegisterRoutes(mux *http.ServeMux, h Handlers) {
	mux.HandleFunc("POST /bands", h.Bands.Create)
	mux.HandleFunc("GET /bands", h.Bands.List)
	mux.HandleFunc("/bands", methodNotAllowed(allowCollection))
	mux.HandleFunc("GET /bands/{band_id}", h.Bands.Get)
	mux.HandleFunc("PATCH /bands/{band_id}", h.Bands.Update)
	mux.HandleFunc("DELETE /bands/{band_id}", h.Bands.Delete)
	mux.HandleFunc("/bands/{band_id}", methodNotAllowed(allowItem))

	mux.HandleFunc("POST /concerts", h.Concerts.Create)
	mux.HandleFunc("GET /concerts", h.Concerts.List)
	mux.HandleFunc("/concerts", methodNotAllowed(allowCollection))
	mux.HandleFunc("GET /concerts/{concert_id}", h.Concerts.Get)
	mux.HandleFunc("PATCH /concerts/{concert_id}", h.Concerts.Update)
	mux.HandleFunc("DELETE /concerts/{concert_id}", h.Concerts.Delete)
	mux.HandleFunc("/concerts/{concert_id}", methodNotAllowed(allowItem))

	mux.HandleFunc("GET /users", h.Users.List)
	mux.HandleFunc("/users", methodNotAllowed(allowUsers))
	mux.HandleFunc("POST /users/{user_id}/concerts", h.Users.AddConcerts)
	mux.HandleFunc("GET /users/{user_id}/concerts", h.Users.ListConcerts)
	mux.HandleFunc("/users/{user_id}/concerts", methodNotAllowed(allowCollection))
	mux.HandleFunc("DELETE /users/{user_id}/concerts/{concert_id}", h.Users.RemoveConcert)
	mux.HandleFunc("/users/{user_id}/concerts/{concert_id}", methodNotAllowed(allowUserConcert))

	if h.OAuth != nil {
		mux.HandleFunc("GET /oauth", h.OAuth.Start)
		mux.HandleFunc("GET /oauth/callback", h.OAuth.Callback)
	}
	if h.Health != nil {
		mux.HandleFunc("GET /healthz", h.Health.Check)
	}

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, model.NewNotFoundError("No resource at this path"))
	})
}

func methodNotAllowed(allow string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, model.NewMethodNotAllowedError(allow))
	}
}
