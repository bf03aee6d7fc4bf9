package authors

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locallibrary/locallibrary/internal/catalog/shared"
)

func TestFormParse(t *testing.T) {
	a, err := Form{FirstName: " Mary ", LastName: "Shelley", DateOfBirth: "1797-08-30", DateOfDeath: "1851-02-01"}.Parse()
	require.NoError(t, err)
	assert.Equal(t, "Mary", a.FirstName)
	assert.Equal(t, "Shelley, Mary", a.Name())
	require.NotNil(t, a.DateOfBirth)
	assert.Equal(t, 1797, a.DateOfBirth.Year())
	assert.Nil(t, Form{FirstName: "A", LastName: "B"}.mustParse(t).DateOfDeath)
}

func (f Form) mustParse(t *testing.T) Author {
	t.Helper()
	a, err := f.Parse()
	require.NoError(t, err)
	return a
}

func TestFormParseCollectsFieldErrors(t *testing.T) {
	_, err := Form{LastName: strings.Repeat("x", 101), DateOfBirth: "yesterday"}.Parse()
	require.ErrorIs(t, err, shared.ErrValidation)

	fe, ok := shared.AsFieldErrors(err)
	require.True(t, ok)
	assert.Equal(t, "This field is required.", fe[FieldFirstName])
	assert.Contains(t, fe[FieldLastName], "100")
	assert.Equal(t, "Enter a valid date.", fe[FieldDateOfBirth])
}

func TestFormParseRejectsDeathBeforeBirth(t *testing.T) {
	_, err := Form{FirstName: "A", LastName: "B", DateOfBirth: "1900-01-02", DateOfDeath: "1900-01-01"}.Parse()
	fe, ok := shared.AsFieldErrors(err)
	require.True(t, ok)
	assert.Contains(t, fe[FieldDateOfDeath], "before date of birth")

	_, err = Form{FirstName: "A", LastName: "B", DateOfBirth: "1900-01-01", DateOfDeath: "1900-01-01"}.Parse()
	assert.NoError(t, err)
}
