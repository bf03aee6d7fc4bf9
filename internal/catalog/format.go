package catalog

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// StatsView is Stats formatted for display.
type StatsView struct {
	Books         string
	Copies        string
	Available     string
	Authors       string
	FantasyGenres string
	BooksWithThe  string
}

// FormatCount renders n with thousands separators.
func FormatCount(n int) string {
	return message.NewPrinter(language.English).Sprintf("%d", n)
}

// View formats every count.
func (s Stats) View() StatsView {
	return StatsView{
		Books:         FormatCount(s.Books),
		Copies:        FormatCount(s.Copies),
		Available:     FormatCount(s.Available),
		Authors:       FormatCount(s.Authors),
		FantasyGenres: FormatCount(s.FantasyGenres),
		BooksWithThe:  FormatCount(s.BooksWithThe),
	}
}
