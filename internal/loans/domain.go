package loans

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Status is the lending state of a physical copy.
type Status string

const (
	StatusMaintenance Status = "m"
	StatusOnLoan      Status = "o"
	StatusAvailable   Status = "a"
	StatusReserved    Status = "r"
)

// Label returns the human readable status.
func (s Status) Label() string {
	switch s {
	case StatusMaintenance:
		return "Maintenance"
	case StatusOnLoan:
		return "On loan"
	case StatusAvailable:
		return "Available"
	case StatusReserved:
		return "Reserved"
	default:
		return "Unknown"
	}
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusMaintenance, StatusOnLoan, StatusAvailable, StatusReserved:
		return true
	}
	return false
}

var (
	// ErrDueBackRequired means a copy on loan has no due date.
	ErrDueBackRequired = errors.New("loans: copy on loan requires due_back")
	// ErrBorrowerNotOnLoan means a borrower is set on a copy that is not on loan.
	ErrBorrowerNotOnLoan = errors.New("loans: borrower set on copy not on loan")
	// ErrInvalidStatus means the status code is unknown.
	ErrInvalidStatus = errors.New("loans: invalid status")
)

// LoanRecord is one physical copy of a book tracked for lending.
type LoanRecord struct {
	ID         uuid.UUID
	DueBack    *time.Time
	Status     Status
	BorrowerID *int64

	BookID        int64
	BookTitle     string
	Imprint       string
	BorrowerEmail string
}

// Validate checks the record invariants.
func (r LoanRecord) Validate() error {
	if !r.Status.Valid() {
		return ErrInvalidStatus
	}
	if r.Status == StatusOnLoan && r.DueBack == nil {
		return ErrDueBackRequired
	}
	if r.Status != StatusOnLoan && r.BorrowerID != nil {
		return ErrBorrowerNotOnLoan
	}
	return nil
}

// IsOverdue reports whether the copy is on loan past its due date.
func (r LoanRecord) IsOverdue(today time.Time) bool {
	if r.Status != StatusOnLoan || r.DueBack == nil {
		return false
	}
	return Date(*r.DueBack).Before(Date(today))
}

// BorrowedBy reports whether userID currently holds the copy.
func (r LoanRecord) BorrowedBy(userID int64) bool {
	return r.Status == StatusOnLoan && r.BorrowerID != nil && *r.BorrowerID == userID
}

// RenewalRequest is a single renewal attempt. It is never persisted.
type RenewalRequest struct {
	RecordID        uuid.UUID
	ProposedDueBack time.Time
}

// Date truncates t to its calendar date, expressed at midnight UTC.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
