package books

import (
	"html"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/locallibrary/locallibrary/internal/catalog/shared"
)

// Form field names.
const (
	FieldTitle    = "title"
	FieldAuthor   = "author"
	FieldSummary  = "summary"
	FieldISBN     = "isbn"
	FieldGenre    = "genre"
	FieldLanguage = "language"
)

var formNames = map[string]string{
	"Title":      FieldTitle,
	"AuthorID":   FieldAuthor,
	"Summary":    FieldSummary,
	"ISBN":       FieldISBN,
	"GenreIDs":   FieldGenre,
	"LanguageID": FieldLanguage,
}

var summaryPolicy = bluemonday.StrictPolicy()

// SanitizeSummary strips markup from a summary, leaving plain text. Templates
// escape it again on output.
func SanitizeSummary(s string) string {
	return strings.TrimSpace(html.UnescapeString(summaryPolicy.Sanitize(s)))
}

// Parse converts the form into a Book, collecting every field error.
func (f Form) Parse() (Book, error) {
	errs := shared.FieldErrors{}
	b := Book{
		Title:   strings.TrimSpace(f.Title),
		Summary: SanitizeSummary(f.Summary),
		ISBN:    strings.ReplaceAll(strings.TrimSpace(f.ISBN), "-", ""),
	}
	var ok bool
	if b.AuthorID, ok = optionalID(f.AuthorID); !ok {
		errs[FieldAuthor] = "Select a valid author."
	}
	if b.LanguageID, ok = optionalID(f.LanguageID); !ok {
		errs[FieldLanguage] = "Select a valid language."
	}
	seen := map[int64]bool{}
	for _, raw := range f.GenreIDs {
		id, ok := optionalID(raw)
		if !ok {
			errs[FieldGenre] = "Select a valid genre."
			continue
		}
		if id != nil && !seen[*id] {
			seen[*id] = true
			b.GenreIDs = append(b.GenreIDs, *id)
		}
	}
	if err := shared.Validator().Struct(b); err != nil {
		for field, msg := range shared.Translate(err, formNames) {
			errs[field] = msg
		}
	}
	if len(errs) > 0 {
		return Book{}, errs
	}
	return b, nil
}

func optionalID(raw string) (*int64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, false
	}
	return &id, true
}
