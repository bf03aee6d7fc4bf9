package rbac

import (
	"sort"
	"strings"
	"time"
)

// Role represents a named grouping of permissions.
type Role struct {
	ID          int64
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Permission represents an atomic capability such as "catalog.add_book".
type Permission struct {
	ID          int64
	Name        string
	Description string
}

// Principal describes the actor behind a request. It is a plain value: the
// permission set never changes once built.
type Principal struct {
	UserID        int64
	Authenticated bool
	permissions   map[string]struct{}
}

// Anonymous returns the principal of a visitor who is not logged in.
func Anonymous() Principal {
	return Principal{}
}

// NewPrincipal returns an authenticated principal holding perms.
func NewPrincipal(userID int64, perms []string) Principal {
	p := Principal{UserID: userID, Authenticated: true}
	return p.WithPermissions(perms...)
}

// WithPermissions returns a copy of p with perms added to its set.
func (p Principal) WithPermissions(perms ...string) Principal {
	set := make(map[string]struct{}, len(p.permissions)+len(perms))
	for perm := range p.permissions {
		set[perm] = struct{}{}
	}
	for _, perm := range perms {
		if perm = normalizePermission(perm); perm != "" {
			set[perm] = struct{}{}
		}
	}
	p.permissions = set
	return p
}

// Has reports whether perm is in the principal's granted set.
func (p Principal) Has(perm string) bool {
	_, ok := p.permissions[normalizePermission(perm)]
	return ok
}

// Permissions returns the granted set in sorted order.
func (p Principal) Permissions() []string {
	out := make([]string, 0, len(p.permissions))
	for perm := range p.permissions {
		out = append(out, perm)
	}
	sort.Strings(out)
	return out
}

func normalizePermission(perm string) string {
	return strings.ToLower(strings.TrimSpace(perm))
}
