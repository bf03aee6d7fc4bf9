package jobs

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type inspectorStub struct {
	info *asynq.QueueInfo
	err  error
}

func (s inspectorStub) GetQueueInfo(string) (*asynq.QueueInfo, error) {
	return s.info, s.err
}

func serveHealth(t *testing.T, inspector QueueInspector) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	r.Route("/jobs", NewHandler(inspector, nil).MountRoutes)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/jobs/health", nil))
	return rr
}

func TestHealthReportsQueueDepth(t *testing.T) {
	rr := serveHealth(t, inspectorStub{info: &asynq.QueueInfo{Queue: QueueDefault, Pending: 4, Retry: 1}})
	require.Equal(t, http.StatusOK, rr.Code)

	var got QueueHealth
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, QueueHealth{Queue: QueueDefault, Pending: 4, Retry: 1}, got)
}

func TestHealthWithoutInspector(t *testing.T) {
	rr := serveHealth(t, nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"queue":"default","pending":0,"active":0,"scheduled":0,"retry":0}`, rr.Body.String())
}

func TestHealthInspectorFailure(t *testing.T) {
	rr := serveHealth(t, inspectorStub{err: errors.New("redis down")})
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Equal(t, "application/problem+json", rr.Header().Get("Content-Type"))
}
