package authors

import "time"

// Author is a writer in the catalog.
type Author struct {
	ID          int64      `json:"id"`
	FirstName   string     `json:"first_name" validate:"required,max=100"`
	LastName    string     `json:"last_name" validate:"required,max=100"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
	DateOfDeath *time.Time `json:"date_of_death,omitempty"`
}

// Name renders "Last, First".
func (a Author) Name() string {
	return a.LastName + ", " + a.FirstName
}

// Form holds the raw values posted by the author form.
type Form struct {
	FirstName   string
	LastName    string
	DateOfBirth string
	DateOfDeath string
}

// FormFrom fills a Form from an existing author.
func FormFrom(a Author) Form {
	f := Form{FirstName: a.FirstName, LastName: a.LastName}
	if a.DateOfBirth != nil {
		f.DateOfBirth = a.DateOfBirth.Format(time.DateOnly)
	}
	if a.DateOfDeath != nil {
		f.DateOfDeath = a.DateOfDeath.Format(time.DateOnly)
	}
	return f
}
