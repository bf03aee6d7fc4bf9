package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/locallibrary/locallibrary/internal/shared"
	"github.com/locallibrary/locallibrary/internal/view"
)

// DefaultRedirect is where a login without a usable next parameter lands.
const DefaultRedirect = "/catalog/"

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger         *slog.Logger
	service        *Service
	pages          view.Responder
	sessionManager *shared.SessionManager
	validator      *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, pages view.Responder, sessions *shared.SessionManager) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:         logger,
		service:        service,
		pages:          pages,
		sessionManager: sessions,
		validator:      validator.New(),
	}
}

// MountRoutes registers auth routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/login", h.showLogin)
	r.Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)
}

type loginForm struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

type loginPageData struct {
	Form   loginForm
	Next   string
	Errors map[string]string
}

var loginFieldNames = map[string]string{"Email": "email", "Password": "password"}

func (h *Handler) showLogin(w http.ResponseWriter, r *http.Request) {
	data := loginPageData{Next: SafeNext(r.URL.Query().Get("next")), Errors: map[string]string{}}
	h.pages.Page(w, r, "pages/login.html", "Log in", data, http.StatusOK)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		h.logger.Error("session missing during login")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	form := loginForm{
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
	}
	next := SafeNext(r.PostFormValue("next"))
	errs := make(map[string]string)
	if err := h.validator.Struct(form); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fieldErr := range verrs {
				errs[loginFieldNames[fieldErr.Field()]] = loginMessage(fieldErr)
			}
		}
	}

	if len(errs) == 0 {
		user, err := h.service.Authenticate(r.Context(), form.Email, form.Password)
		switch {
		case err == nil:
			h.sessionManager.Renew(sess)
			sess.SetUser(strconv.FormatInt(user.ID, 10))
			expiresAt := time.Now().Add(h.sessionManager.TTL())
			if err := h.service.RegisterSession(r.Context(), sess.ID, user.ID, expiresAt, r.RemoteAddr, r.UserAgent()); err != nil {
				h.logger.Warn("register session", slog.Any("error", err))
			}
			h.logger.Info("user logged in", slog.Int64("user_id", user.ID))
			if next == "" {
				next = DefaultRedirect
			}
			h.pages.RedirectWithFlash(w, r, next, "success", "Welcome back")
			return
		case errors.Is(err, shared.ErrInvalidCredentials):
			errs["general"] = "Your email and password didn't match. Please try again."
		default:
			h.logger.Error("authenticate", slog.Any("error", err))
			errs["general"] = shared.UserSafeMessage(err)
		}
	}

	form.Password = ""
	h.pages.Page(w, r, "pages/login.html", "Log in", loginPageData{Form: form, Next: next, Errors: errs}, http.StatusBadRequest)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess != nil {
		if err := h.service.RemoveSession(r.Context(), sess.ID); err != nil {
			h.logger.Warn("remove session", slog.Any("error", err))
		}
		h.sessionManager.Destroy(sess)
	}
	http.Redirect(w, r, DefaultRedirect, http.StatusSeeOther)
}

// SafeNext returns next when it is a same-site absolute path, otherwise "".
func SafeNext(next string) string {
	next = strings.TrimSpace(next)
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, `\`) {
		return ""
	}
	u, err := url.Parse(next)
	if err != nil || u.IsAbs() || u.Host != "" {
		return ""
	}
	return next
}

func loginMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	default:
		return "Enter a valid value."
	}
}
