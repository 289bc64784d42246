package query

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/arc-self/git-domain/pkg/events"
	"github.com/arc-self/git-domain/pkg/projection"
	"github.com/arc-self/git-domain/pkg/valueobjects"
)

func testHandler(t *testing.T) (*Handler, string) {
	t.Helper()
	list := projection.NewRepositoryListProjection()
	stats := projection.NewRepositoryStatsProjection()
	history := projection.NewCommitHistoryProjection()
	branch := projection.NewBranchStatusProjection()
	file := projection.NewFileChangeProjection()

	repoID := valueobjects.NewRepositoryId()
	url, err := valueobjects.NewRemoteUrl("https://github.com/example/demo.git")
	require.NoError(t, err)

	cloned, err := events.NewEnvelope(&events.RepositoryCloned{
		RepoID: repoID, RemoteURL: url, LocalPath: "/tmp/demo", At: time.Now().UTC(),
	})
	require.NoError(t, err)
	require.NoError(t, list.Apply(context.Background(), cloned, 1))
	require.NoError(t, stats.Apply(context.Background(), cloned, 1))

	return NewHandler(Projections{Stats: stats, List: list, History: history, Branch: branch, File: file}, nil, nil, zap.NewNop()), repoID.String()
}

func TestGetRepositoryFound(t *testing.T) {
	h, repoID := testHandler(t)
	e := echo.New()
	h.Register(e)

	req := httptest.NewRequest(http.MethodGet, "/v1/repositories/"+repoID, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetRepositoryNotFound(t *testing.T) {
	h, _ := testHandler(t)
	e := echo.New()
	h.Register(e)

	req := httptest.NewRequest(http.MethodGet, "/v1/repositories/does-not-exist", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListRepositoriesByRemoteURLSubstring(t *testing.T) {
	h, _ := testHandler(t)
	e := echo.New()
	h.Register(e)

	req := httptest.NewRequest(http.MethodGet, "/v1/repositories?remote_url_contains=example", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "example")
}

func TestGetCommitHistoryInvalidLimit(t *testing.T) {
	h, repoID := testHandler(t)
	e := echo.New()
	h.Register(e)

	req := httptest.NewRequest(http.MethodGet, "/v1/repositories/"+repoID+"/commits?limit=-1", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDiscoverServiceWithoutDiscoveryConfigured(t *testing.T) {
	h, _ := testHandler(t)
	e := echo.New()
	h.Register(e)

	req := httptest.NewRequest(http.MethodGet, "/v1/discovery/storage-service", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestCheckServiceHealthWithoutDiscoveryConfigured(t *testing.T) {
	h, _ := testHandler(t)
	e := echo.New()
	h.Register(e)

	req := httptest.NewRequest(http.MethodGet, "/v1/discovery/storage-service/health", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestTraceCorrelationWithoutEventLogConfigured(t *testing.T) {
	h, _ := testHandler(t)
	e := echo.New()
	h.Register(e)

	req := httptest.NewRequest(http.MethodGet, "/v1/correlations/"+uuid.NewString(), nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestGetProjectionStatusWithNilSource(t *testing.T) {
	h, _ := testHandler(t)
	e := echo.New()
	h.Register(e)

	req := httptest.NewRequest(http.MethodGet, "/v1/projections/status", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "{}\n", rec.Body.String())
}
