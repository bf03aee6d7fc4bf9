package books

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locallibrary/locallibrary/internal/catalog/shared"
	"github.com/locallibrary/locallibrary/internal/rbac"
	internalShared "github.com/locallibrary/locallibrary/internal/shared"
	"github.com/locallibrary/locallibrary/internal/view"
)

type memoryRepo struct {
	books     map[int64]Book
	copies    map[int64]int
	nextID    int64
	createErr error
	deleteErr error
}

func (m *memoryRepo) Get(_ context.Context, id int64) (Book, error) {
	b, ok := m.books[id]
	if !ok {
		return Book{}, shared.ErrNotFound
	}
	return b, nil
}

func (m *memoryRepo) Options(context.Context) (Options, error) {
	return Options{
		Authors:   []Option{{ID: 1, Label: "Tolkien, J.R.R."}},
		Genres:    []Option{{ID: 1, Label: "Fantasy"}},
		Languages: []Option{{ID: 1, Label: "English"}},
	}, nil
}

func (m *memoryRepo) CopyCount(_ context.Context, id int64) (int, error) {
	return m.copies[id], nil
}

func (m *memoryRepo) Create(_ context.Context, b Book) (Book, error) {
	if m.createErr != nil {
		return Book{}, m.createErr
	}
	m.nextID++
	b.ID = m.nextID
	m.books[b.ID] = b
	return b, nil
}

func (m *memoryRepo) Update(_ context.Context, id int64, b Book) error {
	if _, ok := m.books[id]; !ok {
		return shared.ErrNotFound
	}
	b.ID = id
	m.books[id] = b
	return nil
}

func (m *memoryRepo) Delete(_ context.Context, id int64) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.books, id)
	return nil
}

type permissions map[int64][]string

func (p permissions) EffectivePermissions(_ context.Context, userID int64) ([]string, error) {
	return p[userID], nil
}

const (
	librarianID = int64(1)
	helperID    = int64(2)
)

func setup(t *testing.T) (*memoryRepo, http.Handler) {
	t.Helper()
	engine, err := view.NewEngine()
	require.NoError(t, err)
	repo := &memoryRepo{books: map[int64]Book{}, copies: map[int64]int{}}
	svc := NewService(repo, nil, nil, nil)
	mw := rbac.Middleware{Service: permissions{
		librarianID: {internalShared.PermAddBook, internalShared.PermChangeBook, internalShared.PermDeleteBook},
		helperID:    {internalShared.PermAddBook, internalShared.PermChangeBook},
	}}
	h := NewHandler(svc.logger, svc, view.Responder{Templates: engine, CSRF: internalShared.NewCSRFManager("k")}, mw)
	r := chi.NewRouter()
	r.Use(mw.Attach)
	r.Route("/catalog", h.MountRoutes)
	return repo, r
}

func do(router http.Handler, userID int64, method, target string, form url.Values) (*httptest.ResponseRecorder, *internalShared.Session) {
	req := httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	sess := &internalShared.Session{ID: "s"}
	if userID > 0 {
		sess.SetUser(strconv.FormatInt(userID, 10))
	}
	req = req.WithContext(internalShared.ContextWithSession(req.Context(), sess))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr, sess
}

func validForm() url.Values {
	return url.Values{
		FieldTitle:   {"The Hobbit"},
		FieldAuthor:  {"1"},
		FieldSummary: {"There and back again."},
		FieldISBN:    {"9780306406157"},
		FieldGenre:   {"1"},
	}
}

func TestCreateBook(t *testing.T) {
	repo, router := setup(t)

	rr, _ := do(router, librarianID, http.MethodGet, "/catalog/book/create", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Tolkien, J.R.R.")

	rr, _ = do(router, librarianID, http.MethodPost, "/catalog/book/create", validForm())
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/catalog/book/1", rr.Header().Get("Location"))
	assert.Equal(t, []int64{1}, repo.books[1].GenreIDs)
}

func TestCreateBookDuplicateISBN(t *testing.T) {
	repo, router := setup(t)
	repo.createErr = &pgconn.PgError{Code: "23505"}

	rr, _ := do(router, librarianID, http.MethodPost, "/catalog/book/create", validForm())
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "A book with this ISBN already exists.")
}

func TestCreateBookStorageFailure(t *testing.T) {
	repo, router := setup(t)
	repo.createErr = errors.New("conn reset")

	rr, _ := do(router, librarianID, http.MethodPost, "/catalog/book/create", validForm())
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, rr.Body.String(), "Could not save the book.")
}

func TestDeleteBookRequiresDeletePermission(t *testing.T) {
	repo, router := setup(t)
	repo.books[5] = Book{ID: 5, Title: "Dune"}

	rr, _ := do(router, helperID, http.MethodPost, "/catalog/book/5/delete", url.Values{})
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Contains(t, repo.books, int64(5))
}

func TestDeleteBookWithCopiesOffersRetry(t *testing.T) {
	repo, router := setup(t)
	repo.books[5] = Book{ID: 5, Title: "Dune"}
	repo.copies[5] = 2
	repo.deleteErr = &pgconn.PgError{Code: "23503"}

	rr, sess := do(router, librarianID, http.MethodPost, "/catalog/book/5/delete", url.Values{})
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/catalog/book/5/delete", rr.Header().Get("Location"))
	flash := sess.PopFlash()
	require.NotNil(t, flash)
	assert.Equal(t, shared.FlashError, flash.Kind)

	rr, _ = do(router, librarianID, http.MethodGet, "/catalog/book/5/delete", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Dune")
}

func TestDeleteBookSucceeds(t *testing.T) {
	repo, router := setup(t)
	repo.books[5] = Book{ID: 5, Title: "Dune"}

	rr, _ := do(router, librarianID, http.MethodPost, "/catalog/book/5/delete", url.Values{})
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, listPath, rr.Header().Get("Location"))
	assert.NotContains(t, repo.books, int64(5))
}
