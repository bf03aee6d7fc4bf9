package books

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locallibrary/locallibrary/internal/catalog/shared"
)

func TestFormParse(t *testing.T) {
	b, err := Form{
		Title:      " The Hobbit ",
		AuthorID:   "3",
		Summary:    "<p>Bilbo <b>goes</b> there &amp; back</p><script>alert(1)</script>",
		ISBN:       "978-0-306-40615-7",
		GenreIDs:   []string{"2", "1", "2"},
		LanguageID: "",
	}.Parse()
	require.NoError(t, err)
	assert.Equal(t, "The Hobbit", b.Title)
	require.NotNil(t, b.AuthorID)
	assert.Equal(t, int64(3), *b.AuthorID)
	assert.Nil(t, b.LanguageID)
	assert.Equal(t, "Bilbo goes there & back", b.Summary)
	assert.Equal(t, "9780306406157", b.ISBN)
	assert.Equal(t, []int64{2, 1}, b.GenreIDs)
}

func TestFormParseFieldErrors(t *testing.T) {
	_, err := Form{Summary: "<b></b>", ISBN: "9780306406158", AuthorID: "x", GenreIDs: []string{"-1"}}.Parse()
	fe, ok := shared.AsFieldErrors(err)
	require.True(t, ok)
	assert.Equal(t, "This field is required.", fe[FieldTitle])
	assert.Equal(t, "This field is required.", fe[FieldSummary])
	assert.Equal(t, "Enter a valid 13 digit ISBN.", fe[FieldISBN])
	assert.Equal(t, "Select a valid author.", fe[FieldAuthor])
	assert.Equal(t, "Select a valid genre.", fe[FieldGenre])
}

func TestFormFromRoundTrips(t *testing.T) {
	author, lang := int64(4), int64(9)
	f := FormFrom(Book{Title: "T", AuthorID: &author, LanguageID: &lang, GenreIDs: []int64{1, 5}})
	assert.True(t, f.AuthorIs(4))
	assert.True(t, f.LanguageIs(9))
	assert.True(t, f.HasGenre(5))
	assert.False(t, f.HasGenre(2))
}
