package rbac

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/locallibrary/locallibrary/internal/shared"
	"github.com/locallibrary/locallibrary/internal/view"
)

// LoginPath is where unauthenticated visitors are sent.
const LoginPath = "/auth/login"

// PermissionSource resolves the granted permissions of a user.
type PermissionSource interface {
	EffectivePermissions(ctx context.Context, userID int64) ([]string, error)
}

type principalContextKey struct{}

// ContextWithPrincipal stores p in ctx.
func ContextWithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext returns the principal attached by Middleware, or an
// anonymous principal.
func PrincipalFromContext(ctx context.Context) Principal {
	p, ok := ctx.Value(principalContextKey{}).(Principal)
	if !ok {
		return Anonymous()
	}
	return p
}

// Middleware wires authorization into HTTP handlers.
type Middleware struct {
	Service PermissionSource
	Logger  *slog.Logger
}

// Attach resolves the principal for the session user once per request and
// stores it, together with navigation flags, in the request context.
func (m Middleware) Attach(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, err := m.resolve(r)
		if err != nil {
			m.logger().Error("rbac resolve principal", slog.Any("error", err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		ctx := ContextWithPrincipal(r.Context(), p)
		ctx = view.ContextWithNav(ctx, NavFor(p))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Require gates a route behind action. Anonymous visitors are redirected to
// the login page; principals without the permission get 403.
func (m Middleware) Require(action Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, err := m.resolve(r)
			if err != nil {
				m.logger().Error("rbac require", slog.String("action", action.String()), slog.Any("error", err))
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
			err = Authorize(p, action)
			switch {
			case err == nil:
				next.ServeHTTP(w, r.WithContext(ContextWithPrincipal(r.Context(), p)))
			case errors.Is(err, ErrUnauthenticated):
				http.Redirect(w, r, LoginURL(r.URL.RequestURI()), http.StatusSeeOther)
			default:
				m.logger().Warn("rbac denied",
					slog.String("action", action.String()),
					slog.Int64("user_id", p.UserID),
					slog.String("path", r.URL.Path))
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
			}
		})
	}
}

// LoginURL builds the login redirect carrying the page to return to.
func LoginURL(next string) string {
	if next == "" {
		return LoginPath
	}
	return LoginPath + "?next=" + url.QueryEscape(next)
}

// NavFor derives navigation flags from p.
func NavFor(p Principal) view.Nav {
	return view.Nav{
		Authenticated:   p.Authenticated,
		UserID:          p.UserID,
		CanMarkReturned: Can(p, ViewAllBorrowed),
		CanAddAuthor:    Can(p, CreateAuthor),
		CanChangeAuthor: Can(p, UpdateAuthor),
		CanDeleteAuthor: Can(p, DeleteAuthor),
		CanAddBook:      Can(p, CreateBook),
		CanChangeBook:   Can(p, UpdateBook),
		CanDeleteBook:   Can(p, DeleteBook),
	}
}

func (m Middleware) resolve(r *http.Request) (Principal, error) {
	if p, ok := r.Context().Value(principalContextKey{}).(Principal); ok {
		return p, nil
	}
	userID, ok := shared.UserIDFromContext(r.Context())
	if !ok {
		return Anonymous(), nil
	}
	perms, err := m.Service.EffectivePermissions(r.Context(), userID)
	if err != nil {
		return Principal{}, err
	}
	return NewPrincipal(userID, perms), nil
}

func (m Middleware) logger() *slog.Logger {
	if m.Logger == nil {
		return slog.Default()
	}
	return m.Logger
}
