package books

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/locallibrary/locallibrary/internal/catalog/shared"
	"github.com/locallibrary/locallibrary/internal/platform/db"
)

type Repository interface {
	Get(ctx context.Context, id int64) (Book, error)
	Options(ctx context.Context) (Options, error)
	CopyCount(ctx context.Context, id int64) (int, error)
	Create(ctx context.Context, book Book) (Book, error)
	Update(ctx context.Context, id int64, book Book) error
	Delete(ctx context.Context, id int64) error
}

// Pool is the subset of pgxpool.Pool the repository uses.
type Pool interface {
	db.TxBeginner
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type repository struct {
	pool Pool
}

func NewRepository(pool Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) Get(ctx context.Context, id int64) (Book, error) {
	query := `SELECT id, title, author_id, summary, isbn, language_id FROM books WHERE id = $1`
	var b Book
	err := r.pool.QueryRow(ctx, query, id).Scan(&b.ID, &b.Title, &b.AuthorID, &b.Summary, &b.ISBN, &b.LanguageID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Book{}, shared.ErrNotFound
		}
		return Book{}, err
	}
	rows, err := r.pool.Query(ctx, `SELECT genre_id FROM book_genres WHERE book_id = $1 ORDER BY genre_id`, id)
	if err != nil {
		return Book{}, err
	}
	b.GenreIDs, err = pgx.CollectRows(rows, pgx.RowTo[int64])
	return b, err
}

func (r *repository) Options(ctx context.Context) (Options, error) {
	var opts Options
	var err error
	if opts.Authors, err = r.options(ctx, `SELECT id, last_name || ', ' || first_name FROM authors ORDER BY last_name, first_name`); err != nil {
		return Options{}, err
	}
	if opts.Genres, err = r.options(ctx, `SELECT id, name FROM genres ORDER BY name`); err != nil {
		return Options{}, err
	}
	if opts.Languages, err = r.options(ctx, `SELECT id, name FROM languages ORDER BY name`); err != nil {
		return Options{}, err
	}
	return opts, nil
}

func (r *repository) options(ctx context.Context, query string) ([]Option, error) {
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Option, error) {
		var o Option
		err := row.Scan(&o.ID, &o.Label)
		return o, err
	})
}

func (r *repository) CopyCount(ctx context.Context, id int64) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM book_instances WHERE book_id = $1`, id).Scan(&n)
	return n, err
}

func (r *repository) Create(ctx context.Context, book Book) (Book, error) {
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		query := `INSERT INTO books (title, author_id, summary, isbn, language_id) VALUES ($1, $2, $3, $4, $5) RETURNING id`
		if err := tx.QueryRow(ctx, query, book.Title, book.AuthorID, book.Summary, book.ISBN, book.LanguageID).Scan(&book.ID); err != nil {
			return err
		}
		return replaceGenres(ctx, tx, book.ID, book.GenreIDs)
	})
	if err != nil {
		return Book{}, err
	}
	return book, nil
}

func (r *repository) Update(ctx context.Context, id int64, book Book) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		query := `UPDATE books SET title = $1, author_id = $2, summary = $3, isbn = $4, language_id = $5 WHERE id = $6`
		tag, err := tx.Exec(ctx, query, book.Title, book.AuthorID, book.Summary, book.ISBN, book.LanguageID, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return shared.ErrNotFound
		}
		return replaceGenres(ctx, tx, id, book.GenreIDs)
	})
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func replaceGenres(ctx context.Context, tx pgx.Tx, bookID int64, genreIDs []int64) error {
	if _, err := tx.Exec(ctx, `DELETE FROM book_genres WHERE book_id = $1`, bookID); err != nil {
		return err
	}
	if len(genreIDs) == 0 {
		return nil
	}
	_, err := tx.Exec(ctx, `INSERT INTO book_genres (book_id, genre_id) SELECT $1, unnest($2::bigint[])`, bookID, genreIDs)
	return err
}
