package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestCORSMiddleware(t *testing.T) {
	tests := []struct {
		name           string
		allowedOrigins []string
		method         string
		origin         string
		wantCode       int
		wantOrigin     string
	}{
		{
			name:           "wildcard allows any origin",
			allowedOrigins: []string{"*"},
			method:         http.MethodPost,
			origin:         "https://example.com",
			wantCode:       http.StatusOK,
			wantOrigin:     "*",
		},
		{
			name:           "listed origin is echoed",
			allowedOrigins: []string{"http://localhost:3000"},
			method:         http.MethodGet,
			origin:         "http://localhost:3000",
			wantCode:       http.StatusOK,
			wantOrigin:     "http://localhost:3000",
		},
		{
			name:           "unlisted origin gets no allow header",
			allowedOrigins: []string{"http://localhost:3000"},
			method:         http.MethodGet,
			origin:         "https://evil.example",
			wantCode:       http.StatusOK,
			wantOrigin:     "",
		},
		{
			name:           "preflight short-circuits",
			allowedOrigins: []string{"*"},
			method:         http.MethodOptions,
			origin:         "https://example.com",
			wantCode:       http.StatusNoContent,
			wantOrigin:     "*",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/humanize", nil)
			req.Header.Set("Origin", tt.origin)
			rec := httptest.NewRecorder()

			corsMiddleware(okHandler, tt.allowedOrigins).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, "GET, POST, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
		})
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	var seen string
	handler := requestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))

	t.Run("generates an id", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		id := rec.Header().Get(RequestIDHeader)
		_, err := uuid.Parse(id)
		require.NoError(t, err)
		assert.Equal(t, id, seen)
	})

	t.Run("keeps the caller's id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "abc-123")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
		assert.Equal(t, "abc-123", seen)
	})
}

func TestRequestIDFromContext_Missing(t *testing.T) {
	assert.Empty(t, RequestIDFromContext(httptest.NewRequest(http.MethodGet, "/", nil).Context()))
}

func TestRecoverMiddleware(t *testing.T) {
	handler := recoverMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":"Internal server error"}`, rec.Body.String())
}

func TestLoggingAndMetricsMiddleware_KeepStatus(t *testing.T) {
	handler := loggingMiddleware(metricsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestMetricsPath(t *testing.T) {
	assert.Equal(t, "/humanize", metricsPath("/humanize"))
	assert.Equal(t, "/", metricsPath("/"))
	assert.Equal(t, "other", metricsPath("/wp-admin.php"))
}
