// internal/app/features/announcements/routes.go
package announcements

import "github.com/go-chi/chi/v5"

// MountRoutes mounts all announcement routes on the given router.
// The caller gates the router with sign-in and role middleware.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/new", h.Publish)
	r.Post("/refresh", h.Refresh)
	r.Post("/{id}/archive", h.Archive)
}
