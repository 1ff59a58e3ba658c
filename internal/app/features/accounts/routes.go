// internal/app/features/accounts/routes.go
package accounts

import "github.com/go-chi/chi/v5"

// MountParentRoutes mounts the parent-account routes.
func (h *Handler) MountParentRoutes(r chi.Router) {
	r.Get("/new", h.ServeNewParent)
	r.Post("/new", h.HandleCreateParent)
}

// MountStaffRoutes mounts the staff-account routes.
func (h *Handler) MountStaffRoutes(r chi.Router) {
	r.Get("/new", h.ServeNewStaff)
	r.Post("/new", h.HandleCreateStaff)
}
