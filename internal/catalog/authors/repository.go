package authors

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/locallibrary/locallibrary/internal/catalog/shared"
)

type Repository interface {
	Get(ctx context.Context, id int64) (Author, error)
	BookTitles(ctx context.Context, id int64) ([]string, error)
	Create(ctx context.Context, author Author) (Author, error)
	Update(ctx context.Context, id int64, author Author) error
	Delete(ctx context.Context, id int64) error
}

// DB is the subset of pgxpool.Pool the repository uses.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type repository struct {
	db DB
}

func NewRepository(db DB) Repository {
	return &repository{db: db}
}

func (r *repository) Get(ctx context.Context, id int64) (Author, error) {
	query := `SELECT id, first_name, last_name, date_of_birth, date_of_death FROM authors WHERE id = $1`
	var a Author
	err := r.db.QueryRow(ctx, query, id).Scan(&a.ID, &a.FirstName, &a.LastName, &a.DateOfBirth, &a.DateOfDeath)
	if errors.Is(err, pgx.ErrNoRows) {
		return Author{}, shared.ErrNotFound
	}
	return a, err
}

func (r *repository) BookTitles(ctx context.Context, id int64) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT title FROM books WHERE author_id = $1 ORDER BY title`, id)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

func (r *repository) Create(ctx context.Context, author Author) (Author, error) {
	query := `INSERT INTO authors (first_name, last_name, date_of_birth, date_of_death) VALUES ($1, $2, $3, $4) RETURNING id`
	err := r.db.QueryRow(ctx, query, author.FirstName, author.LastName, author.DateOfBirth, author.DateOfDeath).Scan(&author.ID)
	if err != nil {
		return Author{}, err
	}
	return author, nil
}

func (r *repository) Update(ctx context.Context, id int64, author Author) error {
	query := `UPDATE authors SET first_name = $1, last_name = $2, date_of_birth = $3, date_of_death = $4 WHERE id = $5`
	tag, err := r.db.Exec(ctx, query, author.FirstName, author.LastName, author.DateOfBirth, author.DateOfDeath, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM authors WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
