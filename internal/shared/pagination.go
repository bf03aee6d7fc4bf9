package shared

import (
	"math"
	"net/url"
	"strconv"
)

const (
	// DefaultPage is the page served when ?page= is missing or invalid.
	DefaultPage = 1
	// MaxPage caps ?page= so row offsets cannot overflow.
	MaxPage = 100000
)

// Pagination contains metadata for paginated listings.
type Pagination struct {
	Page       int
	PerPage    int
	Total      int
	TotalPages int
}

// NewPagination computes pagination metadata.
func NewPagination(page, perPage, total int) Pagination {
	if perPage <= 0 {
		perPage = 20
	}
	if page <= 0 {
		page = DefaultPage
	}
	totalPages := int(math.Ceil(float64(total) / float64(perPage)))
	return Pagination{Page: page, PerPage: perPage, Total: total, TotalPages: totalPages}
}

// PageFromQuery reads the "page" parameter, defaulting to the first page.
func PageFromQuery(q url.Values) int {
	page, err := strconv.Atoi(q.Get("page"))
	if err != nil || page < 1 {
		return DefaultPage
	}
	return min(page, MaxPage)
}

// Offset is the number of rows to skip for the current page.
func (p Pagination) Offset() int {
	if p.Page <= 1 {
		return 0
	}
	return (p.Page - 1) * p.PerPage
}

// HasPrev reports whether a previous page exists.
func (p Pagination) HasPrev() bool { return p.Page > 1 }

// HasNext reports whether a following page exists.
func (p Pagination) HasNext() bool { return p.Page < p.TotalPages }

// PrevPage returns the previous page number.
func (p Pagination) PrevPage() int { return p.Page - 1 }

// NextPage returns the next page number.
func (p Pagination) NextPage() int { return p.Page + 1 }

// IsPaginated reports whether the listing spans more than one page.
func (p Pagination) IsPaginated() bool { return p.TotalPages > 1 }
