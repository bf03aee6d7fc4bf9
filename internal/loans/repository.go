package loans

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotFound indicates the copy does not exist.
var ErrNotFound = errors.New("loans: not found")

// Repository defines persistence operations for book copies.
type Repository interface {
	Get(ctx context.Context, id uuid.UUID) (LoanRecord, error)
	ListBorrowedBy(ctx context.Context, userID int64) ([]LoanRecord, error)
	ListBorrowed(ctx context.Context) ([]LoanRecord, error)
	ListDueBy(ctx context.Context, cutoff time.Time) ([]LoanRecord, error)
	UpdateDueBack(ctx context.Context, id uuid.UUID, dueBack time.Time) error
}

// DB is the subset of pgxpool.Pool used by PGRepository.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	db DB
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(db DB) *PGRepository {
	return &PGRepository{db: db}
}

const selectLoanRecord = `
	SELECT bi.id, bi.due_back, bi.status, bi.borrower_id,
	       b.id, b.title, bi.imprint, COALESCE(u.email, '')
	FROM book_instances bi
	JOIN books b ON b.id = bi.book_id
	LEFT JOIN users u ON u.id = bi.borrower_id`

// Get fetches a copy by id.
func (r *PGRepository) Get(ctx context.Context, id uuid.UUID) (LoanRecord, error) {
	rows, err := r.db.Query(ctx, selectLoanRecord+` WHERE bi.id = $1`, id)
	if err != nil {
		return LoanRecord{}, err
	}
	record, err := pgx.CollectExactlyOneRow(rows, scanLoanRecord)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return LoanRecord{}, ErrNotFound
		}
		return LoanRecord{}, err
	}
	return record, nil
}

// ListBorrowedBy returns the copies a user currently holds, soonest due first.
func (r *PGRepository) ListBorrowedBy(ctx context.Context, userID int64) ([]LoanRecord, error) {
	rows, err := r.db.Query(ctx, selectLoanRecord+`
		WHERE bi.borrower_id = $1 AND bi.status = 'o'
		ORDER BY bi.due_back, b.title`, userID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanLoanRecord)
}

// ListBorrowed returns every copy on loan, soonest due first.
func (r *PGRepository) ListBorrowed(ctx context.Context) ([]LoanRecord, error) {
	rows, err := r.db.Query(ctx, selectLoanRecord+`
		WHERE bi.status = 'o'
		ORDER BY bi.due_back, b.title`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanLoanRecord)
}

// ListDueBy returns copies on loan with a borrower and due on or before cutoff.
func (r *PGRepository) ListDueBy(ctx context.Context, cutoff time.Time) ([]LoanRecord, error) {
	rows, err := r.db.Query(ctx, selectLoanRecord+`
		WHERE bi.status = 'o' AND bi.borrower_id IS NOT NULL AND bi.due_back <= $1
		ORDER BY u.email, bi.due_back`, Date(cutoff))
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanLoanRecord)
}

// UpdateDueBack overwrites the due date of a copy.
func (r *PGRepository) UpdateDueBack(ctx context.Context, id uuid.UUID, dueBack time.Time) error {
	tag, err := r.db.Exec(ctx, `UPDATE book_instances SET due_back = $2 WHERE id = $1`, id, Date(dueBack))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanLoanRecord(row pgx.CollectableRow) (LoanRecord, error) {
	var (
		record LoanRecord
		status string
	)
	err := row.Scan(
		&record.ID,
		&record.DueBack,
		&status,
		&record.BorrowerID,
		&record.BookID,
		&record.BookTitle,
		&record.Imprint,
		&record.BorrowerEmail,
	)
	record.Status = Status(status)
	return record, err
}

var _ Repository = (*PGRepository)(nil)
