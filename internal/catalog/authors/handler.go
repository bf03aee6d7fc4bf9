package authors

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/locallibrary/locallibrary/internal/catalog/shared"
	"github.com/locallibrary/locallibrary/internal/rbac"
	"github.com/locallibrary/locallibrary/internal/view"
)

const (
	formTemplate   = "pages/catalog/author_form.html"
	deleteTemplate = "pages/catalog/author_confirm_delete.html"
	listPath       = "/catalog/authors"
)

type Handler struct {
	logger  *slog.Logger
	service *Service
	pages   view.Responder
	rbac    rbac.Middleware
}

func NewHandler(logger *slog.Logger, service *Service, pages view.Responder, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, pages: pages, rbac: rbac}
}

func (h *Handler) Form(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, nil, Form{}, nil, http.StatusOK)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	form := formFromRequest(r)
	created, err := h.service.Create(r.Context(), rbac.PrincipalFromContext(r.Context()), form)
	if err != nil {
		h.formError(w, r, nil, form, err)
		return
	}
	h.pages.RedirectWithFlash(w, r, detailPath(created.ID), shared.FlashSuccess, "Author created successfully")
}

func (h *Handler) EditForm(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.pages.NotFound(w, r)
		return
	}
	author, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, "get author failed", err)
		return
	}
	h.renderForm(w, r, &author, FormFrom(author), nil, http.StatusOK)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.pages.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	form := formFromRequest(r)
	updated, err := h.service.Update(r.Context(), rbac.PrincipalFromContext(r.Context()), id, form)
	if err != nil {
		h.formError(w, r, &Author{ID: id}, form, err)
		return
	}
	h.pages.RedirectWithFlash(w, r, detailPath(updated.ID), shared.FlashSuccess, "Author updated successfully")
}

func (h *Handler) ConfirmDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.pages.NotFound(w, r)
		return
	}
	author, titles, err := h.service.DeleteCandidate(r.Context(), id)
	if err != nil {
		h.fail(w, r, "load author for delete failed", err)
		return
	}
	h.pages.Page(w, r, deleteTemplate, "Delete author", map[string]any{
		"Author": author,
		"Books":  titles,
	}, http.StatusOK)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.pages.NotFound(w, r)
		return
	}
	res, err := h.service.Delete(r.Context(), rbac.PrincipalFromContext(r.Context()), id)
	if err != nil {
		h.fail(w, r, "delete author failed", err)
		return
	}
	if res.Outcome == shared.DeleteRetry {
		h.pages.RedirectWithFlash(w, r, deletePath(id), shared.FlashError, res.Message)
		return
	}
	h.pages.RedirectWithFlash(w, r, listPath, shared.FlashSuccess, res.Message)
}

func (h *Handler) formError(w http.ResponseWriter, r *http.Request, author *Author, form Form, err error) {
	if fe, ok := shared.AsFieldErrors(err); ok {
		h.renderForm(w, r, author, form, fe, http.StatusBadRequest)
		return
	}
	if errors.Is(err, shared.ErrNotFound) || errors.Is(err, rbac.ErrForbidden) || errors.Is(err, rbac.ErrUnauthenticated) {
		h.fail(w, r, "save author failed", err)
		return
	}
	h.logger.Error("save author failed", slog.Any("error", err))
	h.renderForm(w, r, author, form, shared.FieldErrors{"general": "Could not save the author. Please try again."}, http.StatusInternalServerError)
}

func (h *Handler) renderForm(w http.ResponseWriter, r *http.Request, author *Author, form Form, errs shared.FieldErrors, status int) {
	title := "Create author"
	if author != nil {
		title = "Update author"
	}
	if errs == nil {
		errs = shared.FieldErrors{}
	}
	h.pages.Page(w, r, formTemplate, title, map[string]any{
		"Author": author,
		"Form":   form,
		"Errors": errs,
	}, status)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		h.pages.NotFound(w, r)
	case errors.Is(err, rbac.ErrForbidden), errors.Is(err, rbac.ErrUnauthenticated):
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
	default:
		h.logger.Error(msg, slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func formFromRequest(r *http.Request) Form {
	return Form{
		FirstName:   r.PostFormValue(FieldFirstName),
		LastName:    r.PostFormValue(FieldLastName),
		DateOfBirth: r.PostFormValue(FieldDateOfBirth),
		DateOfDeath: r.PostFormValue(FieldDateOfDeath),
	}
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

func detailPath(id int64) string {
	return "/catalog/author/" + strconv.FormatInt(id, 10)
}

func deletePath(id int64) string {
	return detailPath(id) + "/delete"
}
