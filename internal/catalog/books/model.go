package books

// Book is a title in the catalog.
type Book struct {
	ID         int64   `json:"id"`
	Title      string  `json:"title" validate:"required,max=200"`
	AuthorID   *int64  `json:"author_id,omitempty"`
	Summary    string  `json:"summary" validate:"required,max=1000"`
	ISBN       string  `json:"isbn" validate:"required,isbn13digits"`
	GenreIDs   []int64 `json:"genre_ids"`
	LanguageID *int64  `json:"language_id,omitempty"`
}

// Option is an id/label pair for form selects.
type Option struct {
	ID    int64
	Label string
}

// Options are the choices offered by the book form.
type Options struct {
	Authors   []Option
	Genres    []Option
	Languages []Option
}
