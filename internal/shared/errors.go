package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrSessionMissing occurs when a handler runs outside the session middleware.
	ErrSessionMissing = errors.New("session missing")
	// ErrCSRFTokenMissing occurs when CSRF token missing.
	ErrCSRFTokenMissing = errors.New("csrf token missing")
	// ErrCSRFTokenMismatch occurs when CSRF tokens do not match.
	ErrCSRFTokenMismatch = errors.New("csrf token mismatch")
)

// userSafe marks errors whose message may be shown to visitors as-is.
type userSafe interface {
	UserMessage() string
}

// UserSafeMessage returns a message fit for a flash or form banner.
func UserSafeMessage(err error) string {
	if err == nil {
		return ""
	}
	var safe userSafe
	if errors.As(err, &safe) {
		return safe.UserMessage()
	}
	if errors.Is(err, ErrNotFound) {
		return "The requested record does not exist."
	}
	return "Something went wrong. Please try again."
}
