package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Marga-Ghale/ora-project-tracker/internal/api"
	"github.com/Marga-Ghale/ora-project-tracker/internal/api/handlers"
	"github.com/Marga-Ghale/ora-project-tracker/internal/cache"
	"github.com/Marga-Ghale/ora-project-tracker/internal/db"
	"github.com/Marga-Ghale/ora-project-tracker/internal/models"
	"github.com/Marga-Ghale/ora-project-tracker/internal/repository"
	"github.com/Marga-Ghale/ora-project-tracker/internal/service"
)

const missingID = "00000000-0000-4000-8000-000000000000"

type testServer struct {
	router *gin.Engine
	sqlite *db.SQLiteDB
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	return newTestServerWithCache(t, nil)
}

func newCachedTestServer(t *testing.T) *testServer {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return newTestServerWithCache(t, cache.NewProjectCache(db.NewRedisDBFromClient(client), time.Minute))
}

func newTestServerWithCache(t *testing.T, projectCache service.ProjectCache) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	sqlite, err := db.NewSQLiteDB(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(sqlite.Close)
	require.NoError(t, db.RunSQLiteMigrations(sqlite.DB.DB))

	services := service.NewServices(&service.ServiceDeps{
		Repos: repository.NewSQLiteRepositories(sqlite.DB),
		Cache: projectCache,
	})
	h := handlers.NewHandlers(services, handlers.NewHealthHandler(sqlite, nil, nil))

	return &testServer{router: api.NewRouter(h, nil, nil), sqlite: sqlite}
}

func (s *testServer) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	return rr
}

type projectEnvelope struct {
	Success bool                   `json:"success"`
	Data    models.ProjectResponse `json:"data"`
}

type listEnvelope struct {
	Success    bool                      `json:"success"`
	Data       []models.ProjectResponse  `json:"data"`
	Pagination models.PaginationResponse `json:"pagination"`
}

func (s *testServer) create(t *testing.T, body string) models.ProjectResponse {
	t.Helper()
	rr := s.do(http.MethodPost, "/api/projects", body)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var env projectEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	require.True(t, env.Success)
	return env.Data
}

func assertGolden(t *testing.T, name string, rr *httptest.ResponseRecorder) {
	t.Helper()
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, rr.Body.Bytes())
}

func TestProjects_Lifecycle(t *testing.T) {
	s := newTestServer(t)

	p := s.create(t, `{"name":"  Mobile Banking App ","clientName":"Bank Mandiri","startDate":"2026-01-01","endDate":"2026-08-31T00:00:00Z"}`)
	assert.Equal(t, "Mobile Banking App", p.Name)
	assert.Equal(t, "active", p.Status)
	require.NotNil(t, p.StartDate)
	assert.Equal(t, "2026-01-01", *p.StartDate)
	require.NotNil(t, p.EndDate)
	assert.Equal(t, "2026-08-31", *p.EndDate)
	assert.Equal(t, p.CreatedAt, p.UpdatedAt)
	assert.Nil(t, p.DeletedAt)

	rr := s.do(http.MethodGet, "/api/projects/"+p.ID, "")
	require.Equal(t, http.StatusOK, rr.Code)
	var got projectEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, p, got.Data)

	rr = s.do(http.MethodPut, "/api/projects/"+p.ID, `{"clientName":"PT Bank Mandiri","startDate":null,"status":"completed"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, "Mobile Banking App", got.Data.Name)
	assert.Equal(t, "PT Bank Mandiri", got.Data.ClientName)
	assert.Nil(t, got.Data.StartDate)
	assert.Equal(t, "active", got.Data.Status, "PUT never changes status")
	assert.False(t, got.Data.UpdatedAt.Before(p.UpdatedAt))

	rr = s.do(http.MethodPatch, "/api/projects/"+p.ID+"/status", `{"status":"on_hold"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, "on_hold", got.Data.Status)

	rr = s.do(http.MethodDelete, "/api/projects/"+p.ID, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"success":true,"message":"Project deleted successfully"}`, rr.Body.String())

	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/api/projects/"+p.ID, "").Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodDelete, "/api/projects/"+p.ID, "").Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodPut, "/api/projects/"+p.ID, `{"name":"x"}`).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodPatch, "/api/projects/"+p.ID+"/status", `{"status":"active"}`).Code)
}

func TestProjects_UpdateEmptyBodyReturnsStored(t *testing.T) {
	s := newTestServer(t)
	p := s.create(t, `{"name":"A","clientName":"B"}`)

	rr := s.do(http.MethodPut, "/api/projects/"+p.ID, "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var got projectEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, p, got.Data)
}

func TestProjects_UpdateDateOrderUsesStoredValues(t *testing.T) {
	s := newTestServer(t)
	p := s.create(t, `{"name":"A","clientName":"B","startDate":"2026-03-01"}`)

	rr := s.do(http.MethodPut, "/api/projects/"+p.ID, `{"endDate":"2026-02-01"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"success":false,"errors":[{"field":"endDate","message":"endDate must be greater than or equal to startDate"}]}`, rr.Body.String())

	rr = s.do(http.MethodPut, "/api/projects/"+p.ID, `{"endDate":"2026-03-01"}`)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestProjects_ListPaginationAndFilters(t *testing.T) {
	s := newTestServer(t)
	for i := 0; i < 12; i++ {
		s.create(t, `{"name":"Project","clientName":"PT Telkom"}`)
	}
	held := s.create(t, `{"name":"CRM Integration","clientName":"Astra"}`)
	require.Equal(t, http.StatusOK, s.do(http.MethodPatch, "/api/projects/"+held.ID+"/status", `{"status":"on_hold"}`).Code)

	var list listEnvelope
	rr := s.do(http.MethodGet, "/api/projects", "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	assert.Len(t, list.Data, 10)
	assert.Equal(t, models.PaginationResponse{Page: 1, Limit: 10, Total: 13, TotalPages: 2}, list.Pagination)

	rr = s.do(http.MethodGet, "/api/projects?page=2&limit=10", "")
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	assert.Len(t, list.Data, 3)

	rr = s.do(http.MethodGet, "/api/projects?status=on_hold", "")
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	require.Len(t, list.Data, 1)
	assert.Equal(t, held.ID, list.Data[0].ID)

	rr = s.do(http.MethodGet, "/api/projects?status=archived&search=ASTRA", "")
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	assert.Len(t, list.Data, 1, "unknown status is ignored")

	rr = s.do(http.MethodGet, "/api/projects?page=9", "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	assert.NotNil(t, list.Data)
	assert.Empty(t, list.Data)
	assert.Equal(t, 13, list.Pagination.Total)

	rr = s.do(http.MethodGet, "/api/projects?limit=101", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"success":false,"errors":[{"field":"limit","message":"limit must be an integer between 1 and 100"}]}`, rr.Body.String())
}

func TestProjects_Stats(t *testing.T) {
	s := newTestServer(t)
	a := s.create(t, `{"name":"A","clientName":"C"}`)
	s.create(t, `{"name":"B","clientName":"C"}`)
	require.Equal(t, http.StatusOK, s.do(http.MethodPatch, "/api/projects/"+a.ID+"/status", `{"status":"completed"}`).Code)

	rr := s.do(http.MethodGet, "/api/projects/stats", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"success":true,"data":{"total":2,"active":1,"on_hold":0,"completed":1}}`, rr.Body.String())
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	rr := s.do(http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var resp handlers.HealthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "up", resp.Database)
	assert.Equal(t, "disabled", resp.Cache)
	assert.Equal(t, "disabled", resp.WebSocket)
	assert.NotEmpty(t, rr.Header().Get("X-Request-Id"))
}

func TestInternalErrorDoesNotLeak(t *testing.T) {
	s := newTestServer(t)
	s.sqlite.Close()

	rr := s.do(http.MethodGet, "/api/projects", "")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"success":false,"error":"Internal server error"}`, rr.Body.String())

	rr = s.do(http.MethodGet, "/api/health", "")
	assert.Contains(t, rr.Body.String(), `"database":"down"`)
}

func TestGetProject_RepeatReadsAreByteIdentical(t *testing.T) {
	servers := map[string]func(*testing.T) *testServer{
		"storage": newTestServer,
		"cached":  newCachedTestServer,
	}
	for name, newServer := range servers {
		t.Run(name, func(t *testing.T) {
			s := newServer(t)
			p := s.create(t, `{"name":"Data Analytics Dashboard","clientName":"PT Telkom Indonesia","endDate":"2026-12-31"}`)

			first := s.do(http.MethodGet, "/api/projects/"+p.ID, "")
			require.Equal(t, http.StatusOK, first.Code)
			second := s.do(http.MethodGet, "/api/projects/"+p.ID, "")
			require.Equal(t, http.StatusOK, second.Code)

			assert.True(t, bytes.Equal(first.Body.Bytes(), second.Body.Bytes()),
				"first=%s second=%s", first.Body.String(), second.Body.String())
		})
	}
}

func TestCreate_TrailingContentIsNotStored(t *testing.T) {
	s := newTestServer(t)
	rr := s.do(http.MethodPost, "/api/projects", `{"name":"A","clientName":"B"} {"name":"C"}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = s.do(http.MethodGet, "/api/projects", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var list listEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	assert.Empty(t, list.Data)
}

func TestErrorEnvelopes(t *testing.T) {
	s := newTestServer(t)
	completed := s.create(t, `{"name":"Done","clientName":"C"}`)
	require.Equal(t, http.StatusOK, s.do(http.MethodPatch, "/api/projects/"+completed.ID+"/status", `{"status":"completed"}`).Code)
	active := s.create(t, `{"name":"Live","clientName":"C"}`)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{"create_validation", http.MethodPost, "/api/projects", `{"name":"  ","clientName":"","startDate":"2026-13-01","endDate":"2026-01-01"}`, http.StatusBadRequest},
		{"create_empty_body", http.MethodPost, "/api/projects", "", http.StatusBadRequest},
		{"create_wrong_type", http.MethodPost, "/api/projects", `{"name":123,"clientName":"A"}`, http.StatusBadRequest},
		{"malformed_json", http.MethodPost, "/api/projects", `{"name":`, http.StatusBadRequest},
		{"malformed_trailing", http.MethodPost, "/api/projects", `{"name":"A","clientName":"B"} trailing`, http.StatusBadRequest},
		{"invalid_id", http.MethodGet, "/api/projects/not-a-uuid", "", http.StatusBadRequest},
		{"not_found", http.MethodGet, "/api/projects/" + missingID, "", http.StatusNotFound},
		{"invalid_page", http.MethodGet, "/api/projects?page=0&limit=abc", "", http.StatusBadRequest},
		{"status_required", http.MethodPatch, "/api/projects/" + active.ID + "/status", `{}`, http.StatusBadRequest},
		{"status_unknown", http.MethodPatch, "/api/projects/" + missingID + "/status", `{"status":"archived"}`, http.StatusBadRequest},
		{"transition_terminal", http.MethodPatch, "/api/projects/" + completed.ID + "/status", `{"status":"active"}`, http.StatusBadRequest},
		{"transition_same_state", http.MethodPatch, "/api/projects/" + active.ID + "/status", `{"status":"active"}`, http.StatusBadRequest},
		{"route_not_found", http.MethodGet, "/api/nope?x=1", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := s.do(tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, rr.Code)
			assertGolden(t, tt.name, rr)
		})
	}
}
