package home

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes mounts the public home page. The notFound handler catches any
// path not claimed by another feature, since this router is mounted at /.
func Routes(h *Handler, notFound http.HandlerFunc) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeRoot)
	if notFound != nil {
		r.NotFound(notFound)
	}
	return r
}
