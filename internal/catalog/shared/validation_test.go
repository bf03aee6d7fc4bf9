package shared

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internalShared "github.com/locallibrary/locallibrary/internal/shared"
)

func TestValidISBN13(t *testing.T) {
	assert.True(t, ValidISBN13("9780306406157"))
	assert.True(t, ValidISBN13("9781853260001"))
	assert.False(t, ValidISBN13("9780306406158"))
	assert.False(t, ValidISBN13("978030640615"))
	assert.False(t, ValidISBN13("97803064061X7"))
}

type sample struct {
	Name string `validate:"required,max=5"`
	ISBN string `validate:"isbn13digits"`
}

func TestTranslateUsesFormNames(t *testing.T) {
	err := Validator().Struct(sample{Name: "", ISBN: "123"})
	require.Error(t, err)

	fe := Translate(err, map[string]string{"Name": "name", "ISBN": "isbn"})
	assert.Equal(t, "This field is required.", fe["name"])
	assert.Equal(t, "Enter a valid 13 digit ISBN.", fe["isbn"])
	assert.ErrorIs(t, fe, ErrValidation)

	got, ok := AsFieldErrors(fe)
	require.True(t, ok)
	assert.Len(t, got, 2)
}

func TestParseOptionalDate(t *testing.T) {
	d, err := ParseOptionalDate("  ")
	require.NoError(t, err)
	assert.Nil(t, d)

	d, err = ParseOptionalDate("1920-01-02")
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, 1920, d.Year())

	_, err = ParseOptionalDate("02/01/1920")
	assert.Error(t, err)
}

func TestFiltersFromQuery(t *testing.T) {
	f := FiltersFromQuery(url.Values{"page": {"3"}, "q": {" 50%_off "}}, 5)
	assert.Equal(t, 3, f.Page)
	assert.Equal(t, 10, f.Offset())
	assert.Equal(t, `%50\%\_off%`, f.Pattern())

	f = FiltersFromQuery(url.Values{"page": {"-1"}}, 0)
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, DefaultLimit, f.Limit)
	assert.Zero(t, f.Offset())
}

func TestFiltersFromQueryClampsHugePages(t *testing.T) {
	f := FiltersFromQuery(url.Values{"page": {"922337203685477581"}}, 10)
	assert.Equal(t, internalShared.MaxPage, f.Page)
	assert.Equal(t, (internalShared.MaxPage-1)*10, f.Offset())
	assert.Positive(t, f.Offset())
}
