package catalog

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/locallibrary/locallibrary/internal/catalog/shared"
	"github.com/locallibrary/locallibrary/internal/platform/httpx"
	internalShared "github.com/locallibrary/locallibrary/internal/shared"
	"github.com/locallibrary/locallibrary/internal/view"
)

// Handler serves the public catalog pages.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	pages    view.Responder
	pageSize int
}

// NewHandler builds the catalog handler.
func NewHandler(logger *slog.Logger, service *Service, pages view.Responder, pageSize int) *Handler {
	if pageSize <= 0 {
		pageSize = shared.DefaultLimit
	}
	return &Handler{logger: logger, service: service, pages: pages, pageSize: pageSize}
}

// MountRoutes registers the read-only routes on a router mounted at /catalog.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.index)
	r.Get("/books", h.listBooks)
	r.Get("/book/{id}", h.showBook)
	r.Get("/authors", h.listAuthors)
	r.Get("/author/{id}", h.showAuthor)
	r.Get("/genres", h.listGenres)
	r.Get("/api/stats", h.statsJSON)
}

func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		h.logger.Error("load catalog stats", slog.Any("error", err))
		http.Error(w, "Failed to load catalog", http.StatusInternalServerError)
		return
	}
	visits := 0
	if sess := internalShared.SessionFromContext(r.Context()); sess != nil {
		visits = sess.IncrementVisits()
	}
	h.pages.Page(w, r, "pages/home.html", "Local Library", map[string]any{
		"Stats":  stats.View(),
		"Visits": visits,
	}, http.StatusOK)
}

func (h *Handler) listBooks(w http.ResponseWriter, r *http.Request) {
	filters := shared.FiltersFromQuery(r.URL.Query(), h.pageSize)
	books, total, err := h.service.ListBooks(r.Context(), filters)
	if err != nil {
		h.logger.Error("list books failed", slog.Any("error", err))
		http.Error(w, "Failed to load books", http.StatusInternalServerError)
		return
	}
	h.pages.Page(w, r, "pages/catalog/book_list.html", "Books", map[string]any{
		"Books":      books,
		"Filters":    filters,
		"Pagination": internalShared.NewPagination(filters.Page, filters.Limit, total),
	}, http.StatusOK)
}

func (h *Handler) showBook(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.pages.NotFound(w, r)
		return
	}
	book, err := h.service.GetBook(r.Context(), id)
	if err != nil {
		h.fail(w, r, "get book failed", err)
		return
	}
	h.pages.Page(w, r, "pages/catalog/book_detail.html", book.Title, map[string]any{
		"Book": book,
	}, http.StatusOK)
}

func (h *Handler) listAuthors(w http.ResponseWriter, r *http.Request) {
	filters := shared.FiltersFromQuery(r.URL.Query(), h.pageSize)
	authors, total, err := h.service.ListAuthors(r.Context(), filters)
	if err != nil {
		h.logger.Error("list authors failed", slog.Any("error", err))
		http.Error(w, "Failed to load authors", http.StatusInternalServerError)
		return
	}
	h.pages.Page(w, r, "pages/catalog/author_list.html", "Authors", map[string]any{
		"Authors":    authors,
		"Filters":    filters,
		"Pagination": internalShared.NewPagination(filters.Page, filters.Limit, total),
	}, http.StatusOK)
}

func (h *Handler) showAuthor(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.pages.NotFound(w, r)
		return
	}
	author, err := h.service.GetAuthor(r.Context(), id)
	if err != nil {
		h.fail(w, r, "get author failed", err)
		return
	}
	h.pages.Page(w, r, "pages/catalog/author_detail.html", author.Name(), map[string]any{
		"Author": author,
	}, http.StatusOK)
}

func (h *Handler) listGenres(w http.ResponseWriter, r *http.Request) {
	genres, err := h.service.ListGenres(r.Context())
	if err != nil {
		h.logger.Error("list genres failed", slog.Any("error", err))
		http.Error(w, "Failed to load genres", http.StatusInternalServerError)
		return
	}
	h.pages.Page(w, r, "pages/catalog/genre_list.html", "Genres", map[string]any{
		"Genres": genres,
	}, http.StatusOK)
}

func (h *Handler) statsJSON(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		h.logger.Error("load catalog stats", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, stats)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	if errors.Is(err, shared.ErrNotFound) {
		h.pages.NotFound(w, r)
		return
	}
	h.logger.Error(msg, slog.Any("error", err))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}
