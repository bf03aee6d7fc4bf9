package loans

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/locallibrary/locallibrary/internal/rbac"
	"github.com/locallibrary/locallibrary/internal/shared"
	"github.com/locallibrary/locallibrary/internal/view"
)

const borrowedPath = "/catalog/borrowed"

// Handler serves the borrowed-books pages and the renewal form.
type Handler struct {
	logger  *slog.Logger
	service *Service
	pages   view.Responder
	rbac    rbac.Middleware
}

// NewHandler builds a loans handler.
func NewHandler(logger *slog.Logger, service *Service, pages view.Responder, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, pages: pages, rbac: rbac}
}

// MountRoutes registers loan routes on a router mounted at /catalog.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.rbac.Require(rbac.ViewOwnBorrowed)).Get("/mybooks", h.myBooks)
	r.With(h.rbac.Require(rbac.ViewAllBorrowed)).Get("/borrowed", h.allBorrowed)
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.RenewLoan))
		r.Get("/book/{id}/renew", h.showRenew)
		r.Post("/book/{id}/renew", h.renew)
	})
}

type borrowedRow struct {
	LoanRecord
	Overdue bool
}

func (h *Handler) myBooks(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.Borrowed(r.Context(), rbac.PrincipalFromContext(r.Context()))
	if err != nil {
		h.logger.Error("list borrowed books", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	h.pages.Page(w, r, "pages/catalog/my_borrowed.html", "Borrowed books", map[string]any{
		"Loans": h.rows(records),
	}, http.StatusOK)
}

func (h *Handler) allBorrowed(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.AllBorrowed(r.Context(), rbac.PrincipalFromContext(r.Context()))
	if err != nil {
		h.logger.Error("list all borrowed books", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	h.pages.Page(w, r, "pages/catalog/all_borrowed.html", "All borrowed books", map[string]any{
		"Loans": h.rows(records),
	}, http.StatusOK)
}

func (h *Handler) showRenew(w http.ResponseWriter, r *http.Request) {
	id, ok := recordID(r)
	if !ok {
		h.pages.NotFound(w, r)
		return
	}
	record, proposed, err := h.service.PrepareRenewal(r.Context(), rbac.PrincipalFromContext(r.Context()), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.renderForm(w, r, record, proposed.Format(view.DateLayout), nil, http.StatusOK)
}

func (h *Handler) renew(w http.ResponseWriter, r *http.Request) {
	id, ok := recordID(r)
	if !ok {
		h.pages.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	raw := strings.TrimSpace(r.PostFormValue(FieldDueBack))
	principal := rbac.PrincipalFromContext(r.Context())

	proposed, err := time.Parse(view.DateLayout, raw)
	if err != nil {
		record, _, lookupErr := h.service.PrepareRenewal(r.Context(), principal, id)
		if lookupErr != nil {
			h.fail(w, r, lookupErr)
			return
		}
		h.renderForm(w, r, record, raw, ErrInvalidDate, http.StatusBadRequest)
		return
	}

	record, err := h.service.Renew(r.Context(), principal, RenewalRequest{RecordID: id, ProposedDueBack: proposed})
	if err != nil {
		var userErr *renewalError
		if errors.As(err, &userErr) {
			h.renderForm(w, r, record, raw, err, http.StatusBadRequest)
			return
		}
		h.fail(w, r, err)
		return
	}
	h.pages.RedirectWithFlash(w, r, borrowedPath, "success",
		"Renewed "+record.BookTitle+" until "+record.DueBack.Format(view.DateLayout)+".")
}

func (h *Handler) renderForm(w http.ResponseWriter, r *http.Request, record LoanRecord, dueBack string, err error, status int) {
	errs := map[string]string{}
	if err != nil {
		errs[FieldDueBack] = shared.UserSafeMessage(err)
	}
	h.pages.Page(w, r, "pages/catalog/renew.html", "Renew: "+record.BookTitle, map[string]any{
		"Record":  record,
		"DueBack": dueBack,
		"Errors":  errs,
	}, status)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		h.pages.NotFound(w, r)
	case errors.Is(err, rbac.ErrForbidden), errors.Is(err, rbac.ErrUnauthenticated):
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
	default:
		h.logger.Error("renew book instance", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (h *Handler) rows(records []LoanRecord) []borrowedRow {
	today := h.service.Today()
	rows := make([]borrowedRow, 0, len(records))
	for _, record := range records {
		rows = append(rows, borrowedRow{LoanRecord: record, Overdue: record.IsOverdue(today)})
	}
	return rows
}

func recordID(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	return id, err == nil
}
