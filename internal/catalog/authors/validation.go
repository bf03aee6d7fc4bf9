package authors

import (
	"strings"

	"github.com/locallibrary/locallibrary/internal/catalog/shared"
)

// Form field names.
const (
	FieldFirstName   = "first_name"
	FieldLastName    = "last_name"
	FieldDateOfBirth = "date_of_birth"
	FieldDateOfDeath = "date_of_death"
)

var formNames = map[string]string{
	"FirstName":   FieldFirstName,
	"LastName":    FieldLastName,
	"DateOfBirth": FieldDateOfBirth,
	"DateOfDeath": FieldDateOfDeath,
}

// Parse converts the form into an Author, collecting every field error.
func (f Form) Parse() (Author, error) {
	errs := shared.FieldErrors{}
	a := Author{
		FirstName: strings.TrimSpace(f.FirstName),
		LastName:  strings.TrimSpace(f.LastName),
	}
	var err error
	if a.DateOfBirth, err = shared.ParseOptionalDate(f.DateOfBirth); err != nil {
		errs[FieldDateOfBirth] = "Enter a valid date."
	}
	if a.DateOfDeath, err = shared.ParseOptionalDate(f.DateOfDeath); err != nil {
		errs[FieldDateOfDeath] = "Enter a valid date."
	}
	if err := shared.Validator().Struct(a); err != nil {
		for field, msg := range shared.Translate(err, formNames) {
			errs[field] = msg
		}
	}
	if a.DateOfBirth != nil && a.DateOfDeath != nil && a.DateOfDeath.Before(*a.DateOfBirth) {
		errs[FieldDateOfDeath] = "Date of death cannot be before date of birth."
	}
	if len(errs) > 0 {
		return Author{}, errs
	}
	return a, nil
}
