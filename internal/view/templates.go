package view

import (
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/locallibrary/locallibrary/internal/shared"
	"github.com/locallibrary/locallibrary/web"
)

// DateLayout is the layout used for calendar dates in forms and tables.
const DateLayout = "2006-01-02"

// Engine renders HTML templates.
type Engine struct {
	templates *template.Template
}

// Nav carries the per-request flags the layout uses to build the sidebar.
type Nav struct {
	Authenticated   bool
	UserID          int64
	CanMarkReturned bool
	CanAddAuthor    bool
	CanChangeAuthor bool
	CanDeleteAuthor bool
	CanAddBook      bool
	CanChangeBook   bool
	CanDeleteBook   bool
}

// TemplateData contains values shared across templates.
type TemplateData struct {
	Title       string
	CSRFToken   string
	Flash       *shared.FlashMessage
	CurrentPath string
	Nav         Nav
	Data        any
}

type navContextKey struct{}

// ContextWithNav stores navigation flags in ctx.
func ContextWithNav(ctx context.Context, nav Nav) context.Context {
	return context.WithValue(ctx, navContextKey{}, nav)
}

// NavFromContext returns the navigation flags stored in ctx.
func NavFromContext(ctx context.Context) Nav {
	nav, _ := ctx.Value(navContextKey{}).(Nav)
	return nav
}

// NewEngine parses the embedded templates.
func NewEngine() (*Engine, error) {
	funcMap := template.FuncMap{
		"formatDate": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format(DateLayout)
		},
		"formatDatePtr": func(t *time.Time) string {
			if t == nil || t.IsZero() {
				return ""
			}
			return t.Format(DateLayout)
		},
		"join": strings.Join,
	}
	tpl, err := template.New("root").Funcs(funcMap).ParseFS(web.Templates,
		"templates/layouts/*.html",
		"templates/partials/*.html",
		"templates/pages/*.html",
		"templates/pages/*/*.html",
	)
	if err != nil {
		return nil, err
	}
	return &Engine{templates: tpl}, nil
}

// Render executes a named template with TemplateData.
func (e *Engine) Render(w http.ResponseWriter, name string, data TemplateData) error {
	if e == nil {
		return fmt.Errorf("template engine not initialised")
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return e.templates.ExecuteTemplate(w, name, data)
}

// Responder bundles what every page handler needs to answer a request.
type Responder struct {
	Templates *Engine
	CSRF      *shared.CSRFManager
	Logger    *slog.Logger
}

// Page renders name with the session's CSRF token, pending flash and
// navigation flags.
func (rs Responder) Page(w http.ResponseWriter, r *http.Request, name, title string, data any, status int) {
	sess := shared.SessionFromContext(r.Context())
	var csrfToken string
	var flash *shared.FlashMessage
	if sess != nil {
		csrfToken, _ = rs.CSRF.EnsureToken(r.Context(), sess)
		flash = sess.PopFlash()
	}
	viewData := TemplateData{
		Title:       title,
		CSRFToken:   csrfToken,
		Flash:       flash,
		CurrentPath: r.URL.Path,
		Nav:         NavFromContext(r.Context()),
		Data:        data,
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := rs.Templates.Render(w, name, viewData); err != nil {
		rs.logger().Error("render template", slog.String("template", name), slog.Any("error", err))
	}
}

// NotFound renders the shared 404 page.
func (rs Responder) NotFound(w http.ResponseWriter, r *http.Request) {
	rs.Page(w, r, "pages/not_found.html", "Not found", nil, http.StatusNotFound)
}

// RedirectWithFlash queues a flash message and answers 303 See Other.
func (rs Responder) RedirectWithFlash(w http.ResponseWriter, r *http.Request, location, kind, message string) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: kind, Message: message})
	}
	http.Redirect(w, r, location, http.StatusSeeOther)
}

func (rs Responder) logger() *slog.Logger {
	if rs.Logger == nil {
		return slog.Default()
	}
	return rs.Logger
}
