package catalog

import (
	"time"

	"github.com/google/uuid"

	"github.com/locallibrary/locallibrary/internal/loans"
)

// Author is the read model of an author.
type Author struct {
	ID          int64      `json:"id"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
	DateOfDeath *time.Time `json:"date_of_death,omitempty"`
}

// Name renders "Last, First".
func (a Author) Name() string {
	return a.LastName + ", " + a.FirstName
}

// BookSummary is a row of the book list.
type BookSummary struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	AuthorID   *int64 `json:"author_id,omitempty"`
	AuthorName string `json:"author_name,omitempty"`
}

// Copy is a physical copy as shown on the book page.
type Copy struct {
	ID      uuid.UUID    `json:"id"`
	Imprint string       `json:"imprint"`
	Status  loans.Status `json:"status"`
	DueBack *time.Time   `json:"due_back,omitempty"`
}

// BookDetail is everything the book page shows.
type BookDetail struct {
	BookSummary
	Summary  string   `json:"summary"`
	ISBN     string   `json:"isbn"`
	Language string   `json:"language,omitempty"`
	Genres   []string `json:"genres"`
	Copies   []Copy   `json:"copies"`
}

// AuthorDetail is an author with their books.
type AuthorDetail struct {
	Author
	Books []BookSummary `json:"books"`
}

// GenreCount is a genre with the number of books filed under it.
type GenreCount struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Books int    `json:"books"`
}

// Stats are the counts shown on the home page.
type Stats struct {
	Books         int `json:"books"`
	Copies        int `json:"copies"`
	Available     int `json:"available"`
	Authors       int `json:"authors"`
	FantasyGenres int `json:"fantasy_genres"`
	BooksWithThe  int `json:"books_with_the"`
}
