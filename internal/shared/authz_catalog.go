package shared

// Catalog permissions. Names mirror the "<app>.<codename>" strings stored in
// the permissions table.
const (
	PermCanMarkReturned = "catalog.can_mark_returned"

	PermAddAuthor    = "catalog.add_author"
	PermChangeAuthor = "catalog.change_author"
	PermDeleteAuthor = "catalog.delete_author"

	PermAddBook    = "catalog.add_book"
	PermChangeBook = "catalog.change_book"
	PermDeleteBook = "catalog.delete_book"
)

// CatalogScopes lists every permission the catalog checks.
func CatalogScopes() []string {
	return []string{
		PermCanMarkReturned,
		PermAddAuthor,
		PermChangeAuthor,
		PermDeleteAuthor,
		PermAddBook,
		PermChangeBook,
		PermDeleteBook,
	}
}
