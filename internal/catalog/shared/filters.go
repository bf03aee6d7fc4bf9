package shared

import (
	"net/url"
	"strings"

	internalShared "github.com/locallibrary/locallibrary/internal/shared"
)

// ListFilters represents standard list page filters
type ListFilters struct {
	Page   int
	Limit  int
	Search string
}

// FiltersFromQuery reads ?page and ?q, using limit as the page size.
func FiltersFromQuery(q url.Values, limit int) ListFilters {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return ListFilters{
		Page:   internalShared.PageFromQuery(q),
		Limit:  limit,
		Search: strings.TrimSpace(q.Get("q")),
	}
}

// Offset is the number of rows skipped for the current page.
func (f ListFilters) Offset() int {
	if f.Page <= 1 {
		return 0
	}
	return (f.Page - 1) * f.Limit
}

// Pattern returns the ILIKE pattern for Search, escaping wildcards.
func (f ListFilters) Pattern() string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(f.Search) + "%"
}
