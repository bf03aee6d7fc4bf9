package catalog

import (
	"context"
	"strings"
	"sync/atomic"

	"github.com/locallibrary/locallibrary/internal/catalog/shared"
	"github.com/locallibrary/locallibrary/internal/loans"
)

type memoryRepo struct {
	books   []BookDetail
	authors []Author
	genres  []GenreCount
	copies  []Copy
	counts  atomic.Int32
}

func (m *memoryRepo) CountBooks(_ context.Context, titleContains string) (int, error) {
	m.counts.Add(1)
	n := 0
	for _, b := range m.books {
		if strings.Contains(b.Title, titleContains) {
			n++
		}
	}
	return n, nil
}

func (m *memoryRepo) CountCopies(_ context.Context, status loans.Status) (int, error) {
	m.counts.Add(1)
	n := 0
	for _, c := range m.copies {
		if status == "" || c.Status == status {
			n++
		}
	}
	return n, nil
}

func (m *memoryRepo) CountAuthors(context.Context) (int, error) {
	m.counts.Add(1)
	return len(m.authors), nil
}

func (m *memoryRepo) CountGenres(_ context.Context, nameContains string) (int, error) {
	m.counts.Add(1)
	n := 0
	for _, g := range m.genres {
		if strings.Contains(g.Name, nameContains) {
			n++
		}
	}
	return n, nil
}

func (m *memoryRepo) ListBooks(_ context.Context, filters shared.ListFilters) ([]BookSummary, int, error) {
	var matched []BookSummary
	for _, b := range m.books {
		if strings.Contains(strings.ToLower(b.Title), strings.ToLower(filters.Search)) {
			matched = append(matched, b.BookSummary)
		}
	}
	total := len(matched)
	start := min(filters.Offset(), total)
	end := min(start+filters.Limit, total)
	return matched[start:end], total, nil
}

func (m *memoryRepo) GetBook(_ context.Context, id int64) (BookDetail, error) {
	for _, b := range m.books {
		if b.ID == id {
			return b, nil
		}
	}
	return BookDetail{}, shared.ErrNotFound
}

func (m *memoryRepo) ListAuthors(_ context.Context, filters shared.ListFilters) ([]Author, int, error) {
	total := len(m.authors)
	start := min(filters.Offset(), total)
	end := min(start+filters.Limit, total)
	return m.authors[start:end], total, nil
}

func (m *memoryRepo) GetAuthor(_ context.Context, id int64) (AuthorDetail, error) {
	for _, a := range m.authors {
		if a.ID == id {
			var books []BookSummary
			for _, b := range m.books {
				if b.AuthorID != nil && *b.AuthorID == id {
					books = append(books, b.BookSummary)
				}
			}
			return AuthorDetail{Author: a, Books: books}, nil
		}
	}
	return AuthorDetail{}, shared.ErrNotFound
}

func (m *memoryRepo) ListGenres(context.Context) ([]GenreCount, error) {
	return m.genres, nil
}

func fixtureRepo() *memoryRepo {
	tolkien := int64(1)
	return &memoryRepo{
		authors: []Author{
			{ID: 1, FirstName: "J.R.R.", LastName: "Tolkien"},
			{ID: 2, FirstName: "Ursula", LastName: "Le Guin"},
		},
		books: []BookDetail{
			{BookSummary: BookSummary{ID: 1, Title: "The Hobbit", AuthorID: &tolkien, AuthorName: "Tolkien, J.R.R."}, ISBN: "9780261103344", Genres: []string{"Fantasy"}},
			{BookSummary: BookSummary{ID: 2, Title: "A Wizard of Earthsea"}},
			{BookSummary: BookSummary{ID: 3, Title: "The Dispossessed"}},
		},
		genres: []GenreCount{
			{ID: 1, Name: "Fantasy", Books: 2},
			{ID: 2, Name: "Science Fiction", Books: 1},
			{ID: 3, Name: "Dark Fantasy", Books: 0},
		},
		copies: []Copy{
			{Status: loans.StatusAvailable},
			{Status: loans.StatusAvailable},
			{Status: loans.StatusOnLoan},
			{Status: loans.StatusMaintenance},
		},
	}
}
