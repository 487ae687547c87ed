package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/phrazzld/profile-api/internal/api/shared"
	"github.com/phrazzld/profile-api/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTraceMiddleware(t *testing.T) {
	base, logBuf := logger.NewTestLogger(t)

	var seenTraceID string
	handler := TraceMiddleware(base)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenTraceID = shared.GetTraceID(r.Context())
		logger.FromContext(r.Context()).Info("inside handler")
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/profiles", nil))

	require.Len(t, seenTraceID, 32)
	assert.Equal(t, seenTraceID, rec.Header().Get(shared.TraceIDHeader))

	entries, err := logBuf.GetLogEntries()
	require.NoError(t, err)
	found := false
	for _, entry := range entries {
		if entry["msg"] == "inside handler" {
			found = true
			assert.Equal(t, seenTraceID, entry["trace_id"])
		}
	}
	assert.True(t, found, "handler log entry should carry the trace ID")
}

func TestTraceMiddlewareUniquePerRequest(t *testing.T) {
	handler := TraceMiddleware(nil)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/", nil))
	second := httptest.NewRecorder()
	handler.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.NotEqual(t, first.Header().Get(shared.TraceIDHeader), second.Header().Get(shared.TraceIDHeader))
}

func TestTraceMiddlewareLogsCompletion(t *testing.T) {
	base, logBuf := logger.NewTestLogger(t)
	handler := TraceMiddleware(base)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))

	entries, err := logBuf.GetLogEntries()
	require.NoError(t, err)
	var status float64
	for _, entry := range entries {
		if entry["msg"] == "request completed" {
			status, _ = entry["status"].(float64)
		}
	}
	assert.Equal(t, float64(http.StatusTeapot), status)
}
