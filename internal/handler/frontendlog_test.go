package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crmlite/contact-api/internal/domain"
)

type fakeLogStore struct {
	entries   []domain.FrontendLog
	createErr error
}

func (s *fakeLogStore) Create(_ context.Context, entry *domain.FrontendLog) error {
	if s.createErr != nil {
		return s.createErr
	}
	entry.ID = int64(len(s.entries) + 1)
	s.entries = append(s.entries, *entry)
	return nil
}

func (s *fakeLogStore) Stats(_ context.Context, periodHours int) (*domain.LogStats, error) {
	stats := &domain.LogStats{
		PeriodHours:   periodHours,
		CountsByLevel: make(map[domain.LogLevel]int),
	}
	for _, e := range s.entries {
		stats.CountsByLevel[e.Level]++
		stats.Total++
		if e.Level.IsSevere() && !e.IsResolved && !e.IsIgnored {
			stats.UnresolvedErrors++
		}
	}
	return stats, nil
}

func newLogMux(store *fakeLogStore, batchMax int) *http.ServeMux {
	h := NewFrontendLogHandler(store, batchMax)
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/logs/frontend", h.Ingest)
	mux.HandleFunc("POST /api/logs/frontend/batch", h.IngestBatch)
	mux.HandleFunc("GET /api/logs/frontend/stats", h.Stats)
	return mux
}

func postLog(t *testing.T, mux *http.ServeMux, path, body string) (*httptest.ResponseRecorder, APIResponse) {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = "203.0.113.7:54321"

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	var resp APIResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return rec, resp
}

func TestFrontendLog_Ingest(t *testing.T) {
	store := &fakeLogStore{}
	mux := newLogMux(store, 100)

	body := `{
		"level": "error",
		"message": "Cannot read property of undefined",
		"error_type": "TypeError",
		"url": "https://example.com/users",
		"context": {"action": "create_user"}
	}`
	rec, resp := postLog(t, mux, "/api/logs/frontend", body)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.True(t, resp.Success)
	assert.EqualValues(t, 1, resp.Data.(map[string]any)["log_id"])

	require.Len(t, store.entries, 1)
	entry := store.entries[0]
	assert.Equal(t, domain.LogLevelError, entry.Level)
	assert.Equal(t, "TypeError", *entry.ErrorType)
	assert.JSONEq(t, `{"action":"create_user"}`, string(entry.Context))
	require.NotNil(t, entry.IPAddress)
	assert.Equal(t, "203.0.113.7", *entry.IPAddress)
	assert.False(t, entry.LoggedAt.IsZero())
}

func TestFrontendLog_IngestTruncatesLongMultibyteFields(t *testing.T) {
	store := &fakeLogStore{}
	mux := newLogMux(store, 100)

	// 300 runes of two-byte Cyrillic; a byte-wise cut would split a rune
	// and hand the store invalid UTF-8.
	longType := strings.Repeat("ОшибкаТипа", 30)
	payload, err := json.Marshal(map[string]any{
		"level":      "error",
		"message":    "boom",
		"error_type": longType,
	})
	require.NoError(t, err)

	rec, _ := postLog(t, mux, "/api/logs/frontend", string(payload))
	require.Equal(t, http.StatusCreated, rec.Code)

	require.Len(t, store.entries, 1)
	require.NotNil(t, store.entries[0].ErrorType)
	got := *store.entries[0].ErrorType
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, 255, utf8.RuneCountInString(got))
	assert.Equal(t, string([]rune(longType)[:255]), got)
}

func TestFrontendLog_IngestValidation(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantFields []string
	}{
		{"missing level", `{"message":"hi"}`, []string{"level"}},
		{"missing message", `{"level":"info"}`, []string{"message"}},
		{"bad level", `{"level":"fatal","message":"hi"}`, []string{"level"}},
		{"both missing", `{}`, []string{"level", "message"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeLogStore{}
			mux := newLogMux(store, 100)

			rec, resp := postLog(t, mux, "/api/logs/frontend", tt.body)

			require.Equal(t, http.StatusBadRequest, rec.Code)
			require.NotNil(t, resp.Error)
			assert.Equal(t, "VALIDATION_FAILED", resp.Error.Code)

			details := resp.Error.Details.(map[string]any)
			require.Len(t, details, len(tt.wantFields))
			for _, f := range tt.wantFields {
				assert.Contains(t, details, f)
			}
			assert.Empty(t, store.entries)
		})
	}
}

func TestFrontendLog_IngestXForwardedFor(t *testing.T) {
	store := &fakeLogStore{}
	mux := newLogMux(store, 100)

	req := httptest.NewRequest(http.MethodPost, "/api/logs/frontend",
		strings.NewReader(`{"level":"info","message":"hi"}`))
	req.Header.Set("X-Forwarded-For", "198.51.100.9, 10.0.0.1")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, store.entries, 1)
	assert.Equal(t, "198.51.100.9", *store.entries[0].IPAddress)
}

func TestFrontendLog_Batch(t *testing.T) {
	store := &fakeLogStore{}
	mux := newLogMux(store, 100)

	body := `{"logs":[
		{"level":"info","message":"first"},
		{"level":"nope","message":"second"},
		{"message":"third"},
		{"level":"warning","message":"fourth"}
	]}`
	rec, resp := postLog(t, mux, "/api/logs/frontend/batch", body)

	require.Equal(t, http.StatusCreated, rec.Code)
	data := resp.Data.(map[string]any)
	assert.EqualValues(t, 2, data["saved"])
	assert.EqualValues(t, 4, data["total"])
	assert.Len(t, data["errors"].([]any), 2)
	assert.Len(t, store.entries, 2)
}

func TestFrontendLog_BatchTooLarge(t *testing.T) {
	store := &fakeLogStore{}
	mux := newLogMux(store, 2)

	body := `{"logs":[
		{"level":"info","message":"a"},
		{"level":"info","message":"b"},
		{"level":"info","message":"c"}
	]}`
	rec, resp := postLog(t, mux, "/api/logs/frontend/batch", body)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "BATCH_TOO_LARGE", resp.Error.Code)
	assert.Empty(t, store.entries)
}

func TestFrontendLog_BatchMissingLogs(t *testing.T) {
	store := &fakeLogStore{}
	mux := newLogMux(store, 100)

	rec, resp := postLog(t, mux, "/api/logs/frontend/batch", `{}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_REQUEST", resp.Error.Code)
}

func TestFrontendLog_StoreFailure(t *testing.T) {
	store := &fakeLogStore{createErr: errors.New("db down")}
	mux := newLogMux(store, 100)

	rec, resp := postLog(t, mux, "/api/logs/frontend", `{"level":"info","message":"hi"}`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "INTERNAL_ERROR", resp.Error.Code)
}

func TestFrontendLog_Stats(t *testing.T) {
	store := &fakeLogStore{}
	mux := newLogMux(store, 100)

	postLog(t, mux, "/api/logs/frontend", `{"level":"error","message":"boom"}`)
	postLog(t, mux, "/api/logs/frontend", `{"level":"info","message":"fine"}`)

	req := httptest.NewRequest(http.MethodGet, "/api/logs/frontend/stats?hours=48", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp APIResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))

	data := resp.Data.(map[string]any)
	assert.EqualValues(t, 48, data["period_hours"])
	assert.EqualValues(t, 2, data["total"])
	assert.EqualValues(t, 1, data["unresolved_errors"])

	stats := data["stats"].(map[string]any)
	assert.EqualValues(t, 1, stats["error"])
	assert.EqualValues(t, 1, stats["info"])
}

func TestFrontendLog_StatsInvalidHours(t *testing.T) {
	mux := newLogMux(&fakeLogStore{}, 100)

	req := httptest.NewRequest(http.MethodGet, "/api/logs/frontend/stats?hours=banana", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp APIResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "INVALID_HOURS", resp.Error.Code)
}
