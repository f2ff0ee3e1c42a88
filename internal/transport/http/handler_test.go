package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"multifeed/internal/domain"
	"multifeed/internal/usecase"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubItems struct {
	items     []domain.EmittedItem
	err       error
	lastLimit int
}

func (s *stubItems) GetItems(ctx context.Context, limit int) ([]domain.EmittedItem, error) {
	s.lastLimit = limit
	return s.items, s.err
}

type stubRunner struct {
	report *usecase.RunReport
	err    error
}

func (s *stubRunner) Run(ctx context.Context) (*usecase.RunReport, error) {
	return s.report, s.err
}

func newTestRouter(items *stubItems, runner *stubRunner) http.Handler {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewServer(log, NewHandler(log, items, runner, 10))
}

func TestHandler_GetItems(t *testing.T) {
	items := &stubItems{items: []domain.EmittedItem{{
		FeedItem:  domain.FeedItem{ID: "a1", Title: "Go 1.24"},
		RunID:     "run-1",
		EmittedAt: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}}}
	router := newTestRouter(items, &stubRunner{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/items?limit=5", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, 5, items.lastLimit)
	var got []domain.EmittedItem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "a1", got[0].ID)
	assert.Equal(t, "run-1", got[0].RunID)
}

func TestHandler_GetItems_DefaultLimitAndEmpty(t *testing.T) {
	items := &stubItems{}
	router := newTestRouter(items, &stubRunner{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/items", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 10, items.lastLimit)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestHandler_GetItems_Errors(t *testing.T) {
	tests := []struct {
		name   string
		method string
		target string
		err    error
		want   int
	}{
		{"bad limit", http.MethodGet, "/api/items?limit=abc", nil, http.StatusBadRequest},
		{"zero limit", http.MethodGet, "/api/items?limit=0", nil, http.StatusBadRequest},
		{"wrong method", http.MethodPost, "/api/items", nil, http.StatusMethodNotAllowed},
		{"storage failure", http.MethodGet, "/api/items", errors.New("db down"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(&stubItems{err: tt.err}, &stubRunner{})
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.target, nil))
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestHandler_TriggerRun(t *testing.T) {
	report := &usecase.RunReport{RunID: "run-7", Fetched: 3, Fresh: 2, Emitted: 2}
	router := newTestRouter(&stubItems{}, &stubRunner{report: report})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/run", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var got usecase.RunReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "run-7", got.RunID)
	assert.Equal(t, 2, got.Emitted)
}

func TestHandler_TriggerRun_Errors(t *testing.T) {
	tests := []struct {
		name   string
		method string
		err    error
		want   int
	}{
		{"in progress", http.MethodPost, usecase.ErrRunInProgress, http.StatusConflict},
		{"fetch failure", http.MethodPost, &domain.FetchError{URL: "https://a.example.com/rss", Err: errors.New("timeout")}, http.StatusBadGateway},
		{"persistence failure", http.MethodPost, &domain.PersistenceError{Op: "load", Err: errors.New("db down")}, http.StatusInternalServerError},
		{"wrong method", http.MethodGet, nil, http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(&stubItems{}, &stubRunner{err: tt.err})
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(tt.method, "/api/run", nil))
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestHandler_TriggerRun_PartialFailureKeepsReport(t *testing.T) {
	report := &usecase.RunReport{RunID: "run-9", Fetched: 4, Fresh: 3, Emitted: 3}
	runErr := &domain.PersistenceError{Op: "save", Err: errors.New("db down")}
	router := newTestRouter(&stubItems{}, &stubRunner{report: report, err: runErr})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/run", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var got struct {
		Error  string             `json:"error"`
		Report *usecase.RunReport `json:"report"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Contains(t, got.Error, "db down")
	require.NotNil(t, got.Report)
	assert.Equal(t, "run-9", got.Report.RunID)
	assert.Equal(t, 3, got.Report.Emitted)
}

func TestHandler_HealthAndCORS(t *testing.T) {
	router := newTestRouter(&stubItems{}, &stubRunner{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/run", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
