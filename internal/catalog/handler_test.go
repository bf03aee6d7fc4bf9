package catalog

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internalShared "github.com/locallibrary/locallibrary/internal/shared"
	"github.com/locallibrary/locallibrary/internal/view"
)

func newTestRouter(t *testing.T, pageSize int) http.Handler {
	t.Helper()
	engine, err := view.NewEngine()
	require.NoError(t, err)
	pages := view.Responder{Templates: engine, CSRF: internalShared.NewCSRFManager("test")}
	svc := NewService(fixtureRepo(), nil, nil)
	h := NewHandler(svc.logger, svc, pages, pageSize)

	r := chi.NewRouter()
	r.Route("/catalog", h.MountRoutes)
	return r
}

func withSession(req *http.Request, sess *internalShared.Session) *http.Request {
	return req.WithContext(internalShared.ContextWithSession(req.Context(), sess))
}

func TestIndexCountsVisits(t *testing.T) {
	router := newTestRouter(t, 10)
	sess := &internalShared.Session{ID: "visitor"}

	for want := 0; want < 3; want++ {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, withSession(httptest.NewRequest(http.MethodGet, "/catalog/", nil), sess))
		require.Equal(t, http.StatusOK, rr.Code)
	}
	assert.Equal(t, "3", sess.Get(internalShared.VisitsSessionKey))
}

func TestBookListPaginates(t *testing.T) {
	router := newTestRouter(t, 2)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, withSession(httptest.NewRequest(http.MethodGet, "/catalog/books?page=2", nil), &internalShared.Session{ID: "s"}))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "The Dispossessed")
	assert.NotContains(t, rr.Body.String(), "The Hobbit")
}

func TestBookListFiltersByTitle(t *testing.T) {
	router := newTestRouter(t, 10)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, withSession(httptest.NewRequest(http.MethodGet, "/catalog/books?q=wizard", nil), &internalShared.Session{ID: "s"}))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "A Wizard of Earthsea")
	assert.NotContains(t, rr.Body.String(), "The Hobbit")
}

func TestDetailPagesReturnNotFound(t *testing.T) {
	router := newTestRouter(t, 10)
	for _, target := range []string{"/catalog/book/99", "/catalog/book/abc", "/catalog/author/42", "/catalog/author/0"} {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, withSession(httptest.NewRequest(http.MethodGet, target, nil), &internalShared.Session{ID: "s"}))
		assert.Equal(t, http.StatusNotFound, rr.Code, target)
	}
}

func TestAuthorDetailListsBooks(t *testing.T) {
	router := newTestRouter(t, 10)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, withSession(httptest.NewRequest(http.MethodGet, "/catalog/author/1", nil), &internalShared.Session{ID: "s"}))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Tolkien, J.R.R.")
	assert.Contains(t, rr.Body.String(), "The Hobbit")
}

func TestGenreListShowsCounts(t *testing.T) {
	router := newTestRouter(t, 10)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, withSession(httptest.NewRequest(http.MethodGet, "/catalog/genres", nil), &internalShared.Session{ID: "s"}))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Science Fiction")
}

func TestStatsJSON(t *testing.T) {
	router := newTestRouter(t, 10)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/catalog/api/stats", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var got Stats
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
	assert.Equal(t, 2, got.Available)
}
