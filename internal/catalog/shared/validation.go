package shared

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validator returns the process-wide validator with catalog rules registered.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		_ = validate.RegisterValidation("isbn13digits", isISBN13)
	})
	return validate
}

// FieldErrors maps form field names to messages.
type FieldErrors map[string]string

func (f FieldErrors) Error() string {
	parts := make([]string, 0, len(f))
	for field, msg := range f {
		parts = append(parts, field+": "+msg)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Is lets errors.Is match ErrValidation.
func (f FieldErrors) Is(target error) bool {
	return target == ErrValidation
}

// AsFieldErrors extracts FieldErrors from err.
func AsFieldErrors(err error) (FieldErrors, bool) {
	var fe FieldErrors
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

// Translate converts validator errors into form messages keyed by the
// struct's form tag.
func Translate(err error, fields map[string]string) FieldErrors {
	out := FieldErrors{}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		out["general"] = err.Error()
		return out
	}
	for _, fe := range verrs {
		name, ok := fields[fe.StructField()]
		if !ok {
			name = strings.ToLower(fe.StructField())
		}
		if _, exists := out[name]; exists {
			continue
		}
		out[name] = message(fe)
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "max":
		return "Ensure this value has at most " + fe.Param() + " characters."
	case "len":
		return "Ensure this value has exactly " + fe.Param() + " characters."
	case "isbn13digits":
		return "Enter a valid 13 digit ISBN."
	default:
		return "Enter a valid value."
	}
}

// ParseOptionalDate parses a YYYY-MM-DD form value; empty input yields nil.
func ParseOptionalDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func isISBN13(fl validator.FieldLevel) bool {
	return ValidISBN13(fl.Field().String())
}

// ValidISBN13 checks length, digits and the ISBN-13 check digit.
func ValidISBN13(isbn string) bool {
	if len(isbn) != 13 {
		return false
	}
	sum := 0
	for i, r := range isbn {
		if r < '0' || r > '9' {
			return false
		}
		d := int(r - '0')
		if i%2 == 1 {
			d *= 3
		}
		sum += d
	}
	return sum%10 == 0
}
