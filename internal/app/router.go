package app

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/locallibrary/locallibrary/internal/auth"
	"github.com/locallibrary/locallibrary/internal/catalog"
	"github.com/locallibrary/locallibrary/internal/catalog/authors"
	"github.com/locallibrary/locallibrary/internal/catalog/books"
	"github.com/locallibrary/locallibrary/internal/loans"
	"github.com/locallibrary/locallibrary/internal/observability"
	"github.com/locallibrary/locallibrary/internal/platform/httpx"
	"github.com/locallibrary/locallibrary/internal/rbac"
	"github.com/locallibrary/locallibrary/internal/shared"
	"github.com/locallibrary/locallibrary/internal/view"
	"github.com/locallibrary/locallibrary/jobs"
	"github.com/locallibrary/locallibrary/web"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	Pages          view.Responder
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	RBACMiddleware rbac.Middleware

	AuthHandler    *auth.Handler
	CatalogHandler *catalog.Handler
	LoansHandler   *loans.Handler
	AuthorsHandler *authors.Handler
	BooksHandler   *books.Handler
	JobHandler     *jobs.Handler
	Metrics        *observability.Metrics
}

// NewRouter constructs the chi.Router with library defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}
	r.Use(params.RBACMiddleware.Attach)

	r.NotFound(params.Pages.NotFound)

	r.Get("/healthz", httpx.Health)
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/catalog/", http.StatusFound)
	})

	if params.AuthHandler != nil {
		r.Route("/auth", params.AuthHandler.MountRoutes)
	}

	// Every catalog surface shares one router so static segments such as
	// /book/create win over /book/{id} regardless of which handler owns them.
	r.Route("/catalog", func(r chi.Router) {
		if params.CatalogHandler != nil {
			params.CatalogHandler.MountRoutes(r)
		}
		if params.LoansHandler != nil {
			params.LoansHandler.MountRoutes(r)
		}
		if params.AuthorsHandler != nil {
			params.AuthorsHandler.MountRoutes(r)
		}
		if params.BooksHandler != nil {
			params.BooksHandler.MountRoutes(r)
		}
	})

	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		params.Logger.Error("create static sub filesystem", slog.Any("error", err))
	} else {
		fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))
		r.Handle("/static/*", staticCacheHandler(fileServer))
	}

	return r
}

// staticCacheHandler lets browsers keep static assets for an hour.
func staticCacheHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		next.ServeHTTP(w, r)
	})
}
