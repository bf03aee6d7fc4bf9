package catalog

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/locallibrary/locallibrary/internal/catalog/shared"
	"github.com/locallibrary/locallibrary/internal/loans"
)

// Repository reads the catalog.
type Repository interface {
	CountBooks(ctx context.Context, titleContains string) (int, error)
	CountCopies(ctx context.Context, status loans.Status) (int, error)
	CountAuthors(ctx context.Context) (int, error)
	CountGenres(ctx context.Context, nameContains string) (int, error)
	ListBooks(ctx context.Context, filters shared.ListFilters) ([]BookSummary, int, error)
	GetBook(ctx context.Context, id int64) (BookDetail, error)
	ListAuthors(ctx context.Context, filters shared.ListFilters) ([]Author, int, error)
	GetAuthor(ctx context.Context, id int64) (AuthorDetail, error)
	ListGenres(ctx context.Context) ([]GenreCount, error)
}

// Querier is the subset of pgxpool.Pool used by the repository.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type repository struct {
	db Querier
}

// NewRepository returns a PostgreSQL backed Repository.
func NewRepository(db Querier) Repository {
	return &repository{db: db}
}

// CountBooks counts books, optionally those whose title contains a word.
// The match is case-sensitive.
func (r *repository) CountBooks(ctx context.Context, titleContains string) (int, error) {
	var n int
	if titleContains == "" {
		err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM books`).Scan(&n)
		return n, err
	}
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM books WHERE title LIKE $1`,
		shared.ListFilters{Search: titleContains}.Pattern()).Scan(&n)
	return n, err
}

// CountCopies counts copies, optionally with a given status.
func (r *repository) CountCopies(ctx context.Context, status loans.Status) (int, error) {
	var n int
	if status == "" {
		err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM book_instances`).Scan(&n)
		return n, err
	}
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM book_instances WHERE status = $1`, string(status)).Scan(&n)
	return n, err
}

func (r *repository) CountAuthors(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM authors`).Scan(&n)
	return n, err
}

// CountGenres counts genres whose name contains a word, case-sensitively.
func (r *repository) CountGenres(ctx context.Context, nameContains string) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM genres WHERE name LIKE $1`,
		shared.ListFilters{Search: nameContains}.Pattern()).Scan(&n)
	return n, err
}

func (r *repository) ListBooks(ctx context.Context, filters shared.ListFilters) ([]BookSummary, int, error) {
	pattern := filters.Pattern()
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM books WHERE title ILIKE $1`, pattern).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.db.Query(ctx, `
		SELECT b.id, b.title, b.author_id, COALESCE(a.last_name || ', ' || a.first_name, '')
		FROM books b
		LEFT JOIN authors a ON a.id = b.author_id
		WHERE b.title ILIKE $1
		ORDER BY b.title, b.id
		LIMIT $2 OFFSET $3`, pattern, filters.Limit, filters.Offset())
	if err != nil {
		return nil, 0, err
	}
	books, err := pgx.CollectRows(rows, scanBookSummary)
	return books, total, err
}

func (r *repository) GetBook(ctx context.Context, id int64) (BookDetail, error) {
	var book BookDetail
	err := r.db.QueryRow(ctx, `
		SELECT b.id, b.title, b.author_id, COALESCE(a.last_name || ', ' || a.first_name, ''),
		       b.summary, b.isbn, COALESCE(l.name, '')
		FROM books b
		LEFT JOIN authors a ON a.id = b.author_id
		LEFT JOIN languages l ON l.id = b.language_id
		WHERE b.id = $1`, id).Scan(
		&book.ID, &book.Title, &book.AuthorID, &book.AuthorName,
		&book.Summary, &book.ISBN, &book.Language,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return BookDetail{}, shared.ErrNotFound
		}
		return BookDetail{}, err
	}

	rows, err := r.db.Query(ctx, `
		SELECT g.name FROM genres g
		JOIN book_genres bg ON bg.genre_id = g.id
		WHERE bg.book_id = $1
		ORDER BY g.name`, id)
	if err != nil {
		return BookDetail{}, err
	}
	if book.Genres, err = pgx.CollectRows(rows, pgx.RowTo[string]); err != nil {
		return BookDetail{}, err
	}

	rows, err = r.db.Query(ctx, `
		SELECT id, imprint, status, due_back
		FROM book_instances
		WHERE book_id = $1
		ORDER BY status, due_back NULLS LAST, imprint`, id)
	if err != nil {
		return BookDetail{}, err
	}
	book.Copies, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (Copy, error) {
		var c Copy
		var status string
		err := row.Scan(&c.ID, &c.Imprint, &status, &c.DueBack)
		c.Status = loans.Status(status)
		return c, err
	})
	return book, err
}

func (r *repository) ListAuthors(ctx context.Context, filters shared.ListFilters) ([]Author, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM authors`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.db.Query(ctx, `
		SELECT id, first_name, last_name, date_of_birth, date_of_death
		FROM authors
		ORDER BY last_name, first_name, id
		LIMIT $1 OFFSET $2`, filters.Limit, filters.Offset())
	if err != nil {
		return nil, 0, err
	}
	authors, err := pgx.CollectRows(rows, scanAuthor)
	return authors, total, err
}

func (r *repository) GetAuthor(ctx context.Context, id int64) (AuthorDetail, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, first_name, last_name, date_of_birth, date_of_death
		FROM authors WHERE id = $1`, id)
	if err != nil {
		return AuthorDetail{}, err
	}
	author, err := pgx.CollectExactlyOneRow(rows, scanAuthor)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return AuthorDetail{}, shared.ErrNotFound
		}
		return AuthorDetail{}, err
	}

	rows, err = r.db.Query(ctx, `
		SELECT b.id, b.title, b.author_id, $2::text
		FROM books b
		WHERE b.author_id = $1
		ORDER BY b.title`, id, author.Name())
	if err != nil {
		return AuthorDetail{}, err
	}
	books, err := pgx.CollectRows(rows, scanBookSummary)
	return AuthorDetail{Author: author, Books: books}, err
}

func (r *repository) ListGenres(ctx context.Context) ([]GenreCount, error) {
	rows, err := r.db.Query(ctx, `
		SELECT g.id, g.name, COUNT(bg.book_id)
		FROM genres g
		LEFT JOIN book_genres bg ON bg.genre_id = g.id
		GROUP BY g.id, g.name
		ORDER BY g.name`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (GenreCount, error) {
		var g GenreCount
		err := row.Scan(&g.ID, &g.Name, &g.Books)
		return g, err
	})
}

func scanBookSummary(row pgx.CollectableRow) (BookSummary, error) {
	var b BookSummary
	err := row.Scan(&b.ID, &b.Title, &b.AuthorID, &b.AuthorName)
	return b, err
}

func scanAuthor(row pgx.CollectableRow) (Author, error) {
	var a Author
	err := row.Scan(&a.ID, &a.FirstName, &a.LastName, &a.DateOfBirth, &a.DateOfDeath)
	return a, err
}
