package books

import (
	"github.com/go-chi/chi/v5"

	"github.com/locallibrary/locallibrary/internal/rbac"
)

// MountRoutes registers book management on a router mounted at /catalog.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.CreateBook))
		r.Get("/book/create", h.Form)
		r.Post("/book/create", h.Create)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.UpdateBook))
		r.Get("/book/{id}/update", h.EditForm)
		r.Post("/book/{id}/update", h.Update)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.DeleteBook))
		r.Get("/book/{id}/delete", h.ConfirmDelete)
		r.Post("/book/{id}/delete", h.Delete)
	})
}
