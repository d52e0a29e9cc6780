package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sla-monitor/internal/config"
	"sla-monitor/internal/logging"
	"sla-monitor/internal/models"
	"sla-monitor/internal/notify"
	"sla-monitor/internal/sla"
)

// stubStore is a minimal sla.Store for driving the engine through HTTP.
type stubStore struct {
	tasks    []models.TaskSnapshot
	fetchErr error
}

func (s *stubStore) FetchActiveTasks(context.Context) ([]models.TaskSnapshot, error) {
	return s.tasks, s.fetchErr
}
func (s *stubStore) InsertViolation(context.Context, models.Violation) error          { return nil }
func (s *stubStore) InsertNotification(context.Context, models.QueuedNotification) error {
	return nil
}
func (s *stubStore) InsertActionLog(context.Context, models.ActionLogEntry) error { return nil }
func (s *stubStore) UpdateTask(context.Context, int64, models.TaskUpdate) error   { return nil }
func (s *stubStore) FindUsersByRole(context.Context, models.Role) ([]models.User, error) {
	return nil, nil
}

// stubHistory is a canned History implementation.
type stubHistory struct {
	violations []models.Violation
	stats      []models.ViolationStats
	err        error
}

func (s *stubHistory) GetViolations(_ context.Context, limit, offset int) ([]models.Violation, error) {
	return s.violations, s.err
}
func (s *stubHistory) GetViolationStats(_ context.Context, windowDays int) ([]models.ViolationStats, error) {
	return s.stats, s.err
}

func testRouter(store *stubStore, history History) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := logging.NewNop()

	var cfg config.Config
	cfg.API.BasePath = "/api/v0"
	cfg.Monitor.StatsWindowDays = 30

	registry := sla.NewRegistry(sla.DefaultRules())
	dispatcher := sla.NewDispatcher(store, nil, logger)
	engine := sla.NewEngine(store, registry, dispatcher, nil, logger)
	hub := notify.NewHub(logger)

	return NewRouter(engine, history, hub, logger, cfg)
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestTriggerMonitor_ReturnsSummary(t *testing.T) {
	store := &stubStore{tasks: []models.TaskSnapshot{{
		ID:         1,
		Title:      "Spin bike resistance",
		Priority:   models.PriorityHigh,
		Status:     models.StatusScheduled,
		AgeMinutes: 300,
		CreatedAt:  time.Now().Add(-5 * time.Hour),
	}}}
	r := testRouter(store, &stubHistory{})

	w := doRequest(r, http.MethodPost, "/api/v0/monitor", "")
	require.Equal(t, http.StatusOK, w.Code)

	var result sla.CycleResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, 1, result.TasksMonitored)
	assert.Equal(t, 1, result.ViolationCount)
	require.Len(t, result.Violations, 1)
	assert.Equal(t, "high_priority_4h", result.Violations[0].RuleID)
}

func TestTriggerMonitor_SnapshotFailureIs500(t *testing.T) {
	store := &stubStore{fetchErr: errors.New("connection refused")}
	r := testRouter(store, &stubHistory{})

	w := doRequest(r, http.MethodPost, "/api/v0/monitor", "")
	require.Equal(t, http.StatusInternalServerError, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "monitoring cycle failed", body["error"])
	assert.Contains(t, body["details"], "connection refused")
}

func TestGetRules_ListsRegistry(t *testing.T) {
	r := testRouter(&stubStore{}, &stubHistory{})

	w := doRequest(r, http.MethodGet, "/api/v0/rules", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Rules []models.Rule `json:"rules"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.Rules, 4)
}

func TestUpdateRule_Toggle(t *testing.T) {
	r := testRouter(&stubStore{}, &stubHistory{})

	w := doRequest(r, http.MethodPatch, "/api/v0/rules/overdue_tasks", `{"enabled": false}`)
	require.Equal(t, http.StatusOK, w.Code)

	var rule models.Rule
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rule))
	assert.Equal(t, "overdue_tasks", rule.ID)
	assert.False(t, rule.Enabled)
}

func TestUpdateRule_UnknownRuleIs404(t *testing.T) {
	r := testRouter(&stubStore{}, &stubHistory{})
	w := doRequest(r, http.MethodPatch, "/api/v0/rules/no_such_rule", `{"enabled": true}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateRule_MissingBodyIs400(t *testing.T) {
	r := testRouter(&stubStore{}, &stubHistory{})
	w := doRequest(r, http.MethodPatch, "/api/v0/rules/overdue_tasks", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetStatistics_DefaultWindow(t *testing.T) {
	history := &stubHistory{stats: []models.ViolationStats{{
		Date:            time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC),
		TotalViolations: 3, CriticalViolations: 1, MediumViolations: 2,
	}}}
	r := testRouter(&stubStore{}, history)

	w := doRequest(r, http.MethodGet, "/api/v0/statistics", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		WindowDays int                     `json:"window_days"`
		Statistics []models.ViolationStats `json:"statistics"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 30, body.WindowDays)
	require.Len(t, body.Statistics, 1)
	assert.Equal(t, 3, body.Statistics[0].TotalViolations)
}

func TestGetStatistics_BadWindowIs400(t *testing.T) {
	r := testRouter(&stubStore{}, &stubHistory{})
	assert.Equal(t, http.StatusBadRequest, doRequest(r, http.MethodGet, "/api/v0/statistics?days=0", "").Code)
	assert.Equal(t, http.StatusBadRequest, doRequest(r, http.MethodGet, "/api/v0/statistics?days=banana", "").Code)
}

func TestGetViolations_Pagination(t *testing.T) {
	history := &stubHistory{violations: []models.Violation{{ID: "v-1", TaskID: 1, RuleID: "overdue_tasks"}}}
	r := testRouter(&stubStore{}, history)

	w := doRequest(r, http.MethodGet, "/api/v0/violations?limit=10&offset=5", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Limit      int                `json:"limit"`
		Offset     int                `json:"offset"`
		Violations []models.Violation `json:"violations"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 10, body.Limit)
	assert.Equal(t, 5, body.Offset)
	require.Len(t, body.Violations, 1)
}

func TestGetViolations_BadPaginationIs400(t *testing.T) {
	r := testRouter(&stubStore{}, &stubHistory{})
	assert.Equal(t, http.StatusBadRequest, doRequest(r, http.MethodGet, "/api/v0/violations?limit=0", "").Code)
	assert.Equal(t, http.StatusBadRequest, doRequest(r, http.MethodGet, "/api/v0/violations?limit=201", "").Code)
	assert.Equal(t, http.StatusBadRequest, doRequest(r, http.MethodGet, "/api/v0/violations?offset=-1", "").Code)
}

func TestHealth(t *testing.T) {
	r := testRouter(&stubStore{}, &stubHistory{})
	w := doRequest(r, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
}
