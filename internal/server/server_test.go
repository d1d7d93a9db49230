package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/pokrok/internal/models"
	"github.com/julianstephens/pokrok/internal/scheduler"
	"github.com/julianstephens/pokrok/internal/service"
	"github.com/julianstephens/pokrok/internal/storage/sqlite"
)

// 2024-03-06 is a Wednesday.
var testNow = time.Date(2024, 3, 6, 10, 0, 0, 0, time.UTC)

func setupTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	store := sqlite.New(filepath.Join(t.TempDir(), "pokrok.db"))
	require.NoError(t, store.Init())
	t.Cleanup(func() { store.Close() })

	svc := service.New(store, scheduler.New(),
		service.WithClock(func() time.Time { return testNow }),
		service.WithTimezone("UTC"),
	)
	ts := httptest.NewServer(New(svc).Router())
	t.Cleanup(ts.Close)
	return ts
}

func do(t *testing.T, ts *httptest.Server, method, path string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, ts.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func createHabit(t *testing.T, ts *httptest.Server, name string) models.Habit {
	t.Helper()
	resp := do(t, ts, http.MethodPost, "/api/habits", map[string]any{"name": name, "frequency": "daily"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decode[models.Habit](t, resp)
}

func TestHealth(t *testing.T) {
	ts := setupTestServer(t)
	resp := do(t, ts, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[map[string]string](t, resp)
	assert.Equal(t, "ok", body["status"])
}

func TestHabitCalendarReturnsFullCollection(t *testing.T) {
	ts := setupTestServer(t)
	read := createHabit(t, ts, "Read")
	createHabit(t, ts, "Walk")

	resp := do(t, ts, http.MethodPost, "/api/habits/calendar", map[string]any{"habitId": read.ID, "date": "2024-03-05"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[listResponse[models.Habit]](t, resp)
	require.Len(t, body.Items, 2)
	for _, h := range body.Items {
		if h.ID == read.ID {
			assert.True(t, h.HabitCompletions["2024-03-05"])
		}
	}

	resp = do(t, ts, http.MethodPost, "/api/habits/calendar", map[string]any{"habitId": read.ID, "date": "2024-03-05", "completed": false})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body = decode[listResponse[models.Habit]](t, resp)
	for _, h := range body.Items {
		assert.False(t, h.HabitCompletions["2024-03-05"])
	}
}

func TestErrorResponses(t *testing.T) {
	ts := setupTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		code   string
	}{
		{"missing habit name", http.MethodPost, "/api/habits", map[string]any{"frequency": "daily"}, http.StatusBadRequest, "validation_error"},
		{"calendar without habit", http.MethodPost, "/api/habits/calendar", map[string]any{"date": "2024-03-05"}, http.StatusBadRequest, "validation_error"},
		{"calendar unknown habit", http.MethodPost, "/api/habits/calendar", map[string]any{"habitId": "nope"}, http.StatusNotFound, "not_found"},
		{"stats unknown habit", http.MethodGet, "/api/habits/nope/stats", nil, http.StatusNotFound, "not_found"},
		{"complete unknown step", http.MethodPost, "/api/daily-steps/nope/complete", map[string]any{"completed": true}, http.StatusNotFound, "not_found"},
		{"bad step date", http.MethodPost, "/api/daily-steps", map[string]any{"title": "x", "date": "tomorrow"}, http.StatusBadRequest, "validation_error"},
		{"bad agenda date", http.MethodGet, "/api/agenda?date=soon", nil, http.StatusBadRequest, "validation_error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, ts, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)
			body := decode[errorResponse](t, resp)
			assert.Equal(t, tt.code, body.Error.Code)
			assert.NotEmpty(t, body.Error.Message)
		})
	}
}

func TestInvalidJSON(t *testing.T) {
	ts := setupTestServer(t)
	resp, err := http.Post(ts.URL+"/api/habits", "application/json", strings.NewReader("{not json"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "invalid_json", decode[errorResponse](t, resp).Error.Code)
}

func TestRecurringStepLifecycle(t *testing.T) {
	ts := setupTestServer(t)

	resp := do(t, ts, http.MethodPost, "/api/daily-steps", map[string]any{
		"title":        "Weekly review",
		"frequency":    "weekly",
		"selectedDays": []string{"monday"},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	step := decode[models.Step](t, resp)
	assert.Equal(t, "2024-03-11", step.CurrentInstanceDate)

	resp = do(t, ts, http.MethodPost, "/api/daily-steps/"+step.ID+"/complete", map[string]any{"date": "2024-03-11", "completed": true})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	step = decode[models.Step](t, resp)
	assert.Equal(t, "2024-03-18", step.CurrentInstanceDate)
	assert.False(t, step.Completed)

	resp = do(t, ts, http.MethodGet, "/api/daily-steps/"+step.ID+"/next?from=2024-03-12", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	next := decode[nextResponse](t, resp)
	assert.True(t, next.HasNext)
	assert.Equal(t, "2024-03-18", next.Date)

	resp = do(t, ts, http.MethodGet, "/api/daily-steps?date=2024-03-11", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	records := decode[listResponse[models.Step]](t, resp)
	require.Len(t, records.Items, 1)
	assert.True(t, records.Items[0].Completed)

	resp = do(t, ts, http.MethodDelete, "/api/daily-steps/"+step.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, decode[deleteResponse](t, resp).Deleted)
}

func TestCompleteStepWithoutBody(t *testing.T) {
	ts := setupTestServer(t)
	resp := do(t, ts, http.MethodPost, "/api/daily-steps", map[string]any{"title": "Call bank", "date": "2024-03-06"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	step := decode[models.Step](t, resp)

	req, err := http.NewRequest(http.MethodPost, ts.URL+"/api/daily-steps/"+step.ID+"/complete", nil)
	require.NoError(t, err)
	raw, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer raw.Body.Close()
	require.Equal(t, http.StatusOK, raw.StatusCode)
	assert.True(t, decode[models.Step](t, raw).Completed)
}

func TestUpdateStepPatch(t *testing.T) {
	ts := setupTestServer(t)
	resp := do(t, ts, http.MethodPost, "/api/daily-steps", map[string]any{"title": "Call bank", "date": "2024-03-06"})
	step := decode[models.Step](t, resp)

	resp = do(t, ts, http.MethodPut, "/api/daily-steps/"+step.ID, map[string]any{"date": "2024-03-08", "isImportant": true})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	updated := decode[models.Step](t, resp)
	assert.Equal(t, "2024-03-08", updated.Date)
	assert.True(t, updated.IsImportant)
	assert.Equal(t, "Call bank", updated.Title)
}

func TestResponseCache(t *testing.T) {
	ts := setupTestServer(t)
	createHabit(t, ts, "Read")

	first := do(t, ts, http.MethodGet, "/api/habits", nil)
	assert.Equal(t, "MISS", first.Header.Get("X-Cache"))
	second := do(t, ts, http.MethodGet, "/api/habits", nil)
	assert.Equal(t, "HIT", second.Header.Get("X-Cache"))
	assert.Len(t, decode[listResponse[models.Habit]](t, second).Items, 1)

	createHabit(t, ts, "Walk")
	third := do(t, ts, http.MethodGet, "/api/habits", nil)
	assert.Equal(t, "MISS", third.Header.Get("X-Cache"))
	assert.Len(t, decode[listResponse[models.Habit]](t, third).Items, 2)
}

func TestAreasAndGoals(t *testing.T) {
	ts := setupTestServer(t)

	resp := do(t, ts, http.MethodPost, "/api/cesta/areas", map[string]any{"name": "Health", "color": "#00ff00"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	area := decode[models.Area](t, resp)

	resp = do(t, ts, http.MethodPost, "/api/goals", map[string]any{"title": "Run 10k", "areaId": area.ID})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	goal := decode[models.Goal](t, resp)
	assert.Equal(t, "active", string(goal.Status))

	resp = do(t, ts, http.MethodGet, "/api/goals", nil)
	assert.Len(t, decode[listResponse[models.Goal]](t, resp).Items, 1)

	resp = do(t, ts, http.MethodDelete, "/api/cesta/areas/"+area.ID, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp = do(t, ts, http.MethodDelete, "/api/cesta/areas/"+area.ID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestWorkflowsAndAgenda(t *testing.T) {
	ts := setupTestServer(t)
	createHabit(t, ts, "Read")

	resp := do(t, ts, http.MethodGet, "/api/workflows/pending", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	pending := decode[listResponse[models.Workflow]](t, resp)
	require.Len(t, pending.Items, 1)
	assert.Equal(t, "2024-03-06", pending.Items[0].Date)

	resp = do(t, ts, http.MethodPost, "/api/workflows/daily-review", map[string]any{"note": "fine"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = do(t, ts, http.MethodGet, "/api/workflows/pending", nil)
	assert.Empty(t, decode[listResponse[models.Workflow]](t, resp).Items)

	resp = do(t, ts, http.MethodGet, "/api/agenda", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	agenda := decode[scheduler.Agenda](t, resp)
	assert.Equal(t, "2024-03-06", agenda.Date)
	assert.Len(t, agenda.Habits, 1)
}

func TestMetricsEndpoint(t *testing.T) {
	ts := setupTestServer(t)
	do(t, ts, http.MethodGet, "/api/habits", nil)

	resp := do(t, ts, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var buf bytes.Buffer
	_, err := buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "pokrok_http_requests_total")
}

func TestListenAndServeStopsOnCancel(t *testing.T) {
	store := sqlite.New(filepath.Join(t.TempDir(), "pokrok.db"))
	require.NoError(t, store.Init())
	defer store.Close()
	srv := New(service.New(store, scheduler.New()))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.ListenAndServe(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
