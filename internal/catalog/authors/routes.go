package authors

import (
	"github.com/go-chi/chi/v5"

	"github.com/locallibrary/locallibrary/internal/rbac"
)

// MountRoutes registers author management on a router mounted at /catalog.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.CreateAuthor))
		r.Get("/author/create", h.Form)
		r.Post("/author/create", h.Create)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.UpdateAuthor))
		r.Get("/author/{id}/update", h.EditForm)
		r.Post("/author/{id}/update", h.Update)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.DeleteAuthor))
		r.Get("/author/{id}/delete", h.ConfirmDelete)
		r.Post("/author/{id}/delete", h.Delete)
	})
}
