package loans

import "time"

const (
	// RenewalWindowDays is how far ahead a renewal may push the due date.
	RenewalWindowDays = 28
	// DefaultRenewalDays pre-fills the renewal form.
	DefaultRenewalDays = 21

	// FieldDueBack is the form field renewal errors are reported against.
	FieldDueBack = "due_back"
)

// renewalError is a user-correctable input error. Its user message is shown
// next to the due_back field.
type renewalError struct {
	msg  string
	user string
}

func (e *renewalError) Error() string       { return e.msg }
func (e *renewalError) UserMessage() string { return e.user }

var (
	// ErrRenewalInPast rejects a due date before today.
	ErrRenewalInPast error = &renewalError{
		msg:  "loans: renewal date in the past",
		user: "Invalid date - renewal in past",
	}
	// ErrRenewalTooFarAhead rejects a due date more than four weeks out.
	ErrRenewalTooFarAhead error = &renewalError{
		msg:  "loans: renewal date more than 4 weeks ahead",
		user: "Invalid date - renewal more than 4 weeks ahead",
	}
	// ErrNotOnLoan rejects renewing a copy nobody has borrowed.
	ErrNotOnLoan error = &renewalError{
		msg:  "loans: copy is not on loan",
		user: "Copy is not on loan",
	}
	// ErrInvalidDate rejects input that is not a calendar date.
	ErrInvalidDate error = &renewalError{
		msg:  "loans: invalid date",
		user: "Enter a valid date",
	}
)

// ValidateRenewal checks a proposed due date against today. Rules run in
// order and the first failure wins. The proposed date is returned unchanged.
func ValidateRenewal(proposedDueBack, today time.Time) (time.Time, error) {
	proposed, day := Date(proposedDueBack), Date(today)
	if proposed.Before(day) {
		return time.Time{}, ErrRenewalInPast
	}
	if proposed.After(day.AddDate(0, 0, RenewalWindowDays)) {
		return time.Time{}, ErrRenewalTooFarAhead
	}
	return proposedDueBack, nil
}

// DefaultProposedDate is the date offered when the borrower has not picked one.
func DefaultProposedDate(today time.Time) time.Time {
	return Date(today).AddDate(0, 0, DefaultRenewalDays)
}

// ApplyRenewal sets the record's due date. Status and borrower are left
// alone. Call only after ValidateRenewal succeeded.
func ApplyRenewal(record *LoanRecord, newDueBack time.Time) *LoanRecord {
	due := Date(newDueBack)
	record.DueBack = &due
	return record
}
