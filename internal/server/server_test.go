package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"StockSentinel/internal/logger"
	"StockSentinel/internal/notifier"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const textUpdate = `{"update_id":5,"message":{"message_id":1,"date":0,"chat":{"id":777,"type":"private"},"text":"AAPL"}}`

func do(t *testing.T, s *Server, method, path, body string) (*httptest.ResponseRecorder, map[string]string) {
	t.Helper()
	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		r = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	s.ServeHTTP(w, r)

	var out map[string]string
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w, out
}

func TestBotEndpoint_Post(t *testing.T) {
	var got []notifier.Update
	s := New(func(_ context.Context, u notifier.Update) error {
		got = append(got, u)
		return nil
	}, logger.Nop())

	w, body := do(t, s, http.MethodPost, "/api/bot", textUpdate)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "success", body["status"])
	require.Len(t, got, 1)
	assert.Equal(t, notifier.Update{UpdateID: 5, ChatID: 777, Text: "AAPL"}, got[0])
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestBotEndpoint_PostNonTextIsAcknowledged(t *testing.T) {
	called := false
	s := New(func(context.Context, notifier.Update) error { called = true; return nil }, logger.Nop())

	w, body := do(t, s, http.MethodPost, "/api/bot", `{"update_id":6}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "success", body["status"])
	assert.False(t, called)
}

func TestBotEndpoint_PostErrors(t *testing.T) {
	s := New(func(context.Context, notifier.Update) error { return errors.New("chat unreachable") }, logger.Nop())

	w, body := do(t, s, http.MethodPost, "/api/bot", textUpdate)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "error", body["status"])
	assert.Equal(t, "chat unreachable", body["error"])

	w, body = do(t, s, http.MethodPost, "/api/bot", `{broken`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "error", body["status"])
}

func TestBotEndpoint_PollingModeRejectsPost(t *testing.T) {
	w, _ := do(t, New(nil, logger.Nop()), http.MethodPost, "/api/bot", textUpdate)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestBotEndpoint_Get(t *testing.T) {
	s := New(nil, logger.Nop())
	s.now = func() time.Time { return time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC) }

	w, body := do(t, s, http.MethodGet, "/api/bot", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]string{
		"status":    "running",
		"message":   StatusMessage,
		"timestamp": "2024-03-05T09:00:00Z",
	}, body)
}

func TestCORSPreflight(t *testing.T) {
	w, _ := do(t, New(nil, logger.Nop()), http.MethodOptions, "/api/bot", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "POST")
}

func TestHealthzAndMetrics(t *testing.T) {
	s := New(nil, logger.Nop())

	w, body := do(t, s, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", body["status"])

	w, _ = do(t, s, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}
