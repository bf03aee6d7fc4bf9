package books

import (
	"strconv"
	"strings"
)

// Form holds the raw values posted by the book form.
type Form struct {
	Title      string
	AuthorID   string
	Summary    string
	ISBN       string
	GenreIDs   []string
	LanguageID string
}

// FormFrom fills a Form from an existing book.
func FormFrom(b Book) Form {
	f := Form{Title: b.Title, Summary: b.Summary, ISBN: b.ISBN}
	if b.AuthorID != nil {
		f.AuthorID = strconv.FormatInt(*b.AuthorID, 10)
	}
	if b.LanguageID != nil {
		f.LanguageID = strconv.FormatInt(*b.LanguageID, 10)
	}
	for _, id := range b.GenreIDs {
		f.GenreIDs = append(f.GenreIDs, strconv.FormatInt(id, 10))
	}
	return f
}

// HasGenre reports whether the form selects the genre.
func (f Form) HasGenre(id int64) bool {
	want := strconv.FormatInt(id, 10)
	for _, g := range f.GenreIDs {
		if strings.TrimSpace(g) == want {
			return true
		}
	}
	return false
}

// AuthorIs reports whether the form selects the author.
func (f Form) AuthorIs(id int64) bool {
	return strings.TrimSpace(f.AuthorID) == strconv.FormatInt(id, 10)
}

// LanguageIs reports whether the form selects the language.
func (f Form) LanguageIs(id int64) bool {
	return strings.TrimSpace(f.LanguageID) == strconv.FormatInt(id, 10)
}
