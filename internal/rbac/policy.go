package rbac

import (
	"errors"

	"github.com/locallibrary/locallibrary/internal/shared"
)

// Action is a gated operation. The set is closed: Authorize rejects any value
// not listed below.
type Action int

const (
	ViewOwnBorrowed Action = iota + 1
	ViewAllBorrowed
	RenewLoan
	CreateAuthor
	UpdateAuthor
	DeleteAuthor
	CreateBook
	UpdateBook
	DeleteBook
)

var (
	// ErrUnauthenticated means the action needs a logged-in principal.
	ErrUnauthenticated = errors.New("rbac: authentication required")
	// ErrForbidden means the principal lacks the required permission.
	ErrForbidden = errors.New("rbac: permission denied")
	// ErrUnknownAction guards against actions outside the policy table.
	ErrUnknownAction = errors.New("rbac: unknown action")
)

type rule struct {
	authenticated bool
	permission    string
}

var policy = map[Action]rule{
	ViewOwnBorrowed: {authenticated: true},
	ViewAllBorrowed: {authenticated: true, permission: shared.PermCanMarkReturned},
	RenewLoan:       {authenticated: true, permission: shared.PermCanMarkReturned},
	CreateAuthor:    {authenticated: true, permission: shared.PermAddAuthor},
	UpdateAuthor:    {authenticated: true, permission: shared.PermChangeAuthor},
	DeleteAuthor:    {authenticated: true, permission: shared.PermDeleteAuthor},
	CreateBook:      {authenticated: true, permission: shared.PermAddBook},
	UpdateBook:      {authenticated: true, permission: shared.PermChangeBook},
	DeleteBook:      {authenticated: true, permission: shared.PermDeleteBook},
}

// Authorize decides whether p may perform a. The authentication check always
// runs before the permission check.
func Authorize(p Principal, a Action) error {
	r, ok := policy[a]
	if !ok {
		return ErrUnknownAction
	}
	if r.authenticated && !p.Authenticated {
		return ErrUnauthenticated
	}
	if r.permission != "" && !p.Has(r.permission) {
		return ErrForbidden
	}
	return nil
}

// Can is Authorize as a boolean, for templates and navigation.
func Can(p Principal, a Action) bool {
	return Authorize(p, a) == nil
}

// RequiredPermission returns the permission a needs, if any.
func RequiredPermission(a Action) (string, bool) {
	r, ok := policy[a]
	if !ok || r.permission == "" {
		return "", false
	}
	return r.permission, true
}

// Actions lists every action in declaration order.
func Actions() []Action {
	return []Action{
		ViewOwnBorrowed,
		ViewAllBorrowed,
		RenewLoan,
		CreateAuthor,
		UpdateAuthor,
		DeleteAuthor,
		CreateBook,
		UpdateBook,
		DeleteBook,
	}
}

func (a Action) String() string {
	switch a {
	case ViewOwnBorrowed:
		return "view_own_borrowed"
	case ViewAllBorrowed:
		return "view_all_borrowed"
	case RenewLoan:
		return "renew_loan"
	case CreateAuthor:
		return "create_author"
	case UpdateAuthor:
		return "update_author"
	case DeleteAuthor:
		return "delete_author"
	case CreateBook:
		return "create_book"
	case UpdateBook:
		return "update_book"
	case DeleteBook:
		return "delete_book"
	default:
		return "unknown"
	}
}
