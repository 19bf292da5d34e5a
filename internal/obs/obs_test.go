package obs

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithCorrelation_MergesFields(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	ctx = WithCorrelation(ctx, Correlation{RequestID: "req-1"})
	ctx = WithCorrelation(ctx, Correlation{UserID: "user-1"})

	corr := CorrelationFromContext(ctx)
	assert.Equal(t, "req-1", corr.RequestID)
	assert.Equal(t, "user-1", corr.UserID)
}

func TestRequestContextMiddleware_AssignsRequestID(t *testing.T) {
	handler := RequestContextMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		corr := CorrelationFromContext(r.Context())
		assert.NotEmpty(t, corr.RequestID)
		w.WriteHeader(http.StatusNoContent)
	}))

	r := httptest.NewRequest(http.MethodGet, "/notes", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))
}

func TestRequestContextMiddleware_KeepsCallerProvidedID(t *testing.T) {
	handler := RequestContextMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		corr := CorrelationFromContext(r.Context())
		assert.Equal(t, "caller-chosen", corr.RequestID)
	}))

	r := httptest.NewRequest(http.MethodGet, "/notes", nil)
	r.Header.Set("X-Request-Id", "caller-chosen")
	handler.ServeHTTP(httptest.NewRecorder(), r)
}

func TestAccessLogMiddleware_LogsAndRecoversPanic(t *testing.T) {
	var buf bytes.Buffer
	restore := SetOutputForTests(&buf)
	defer restore()

	handler := AccessLogMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	r := httptest.NewRequest(http.MethodGet, "/notes", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Internal Server Error")
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.True(t, strings.Contains(buf.String(), "panic"))
}

func TestAccessLogMiddleware_RecordsStatus(t *testing.T) {
	var buf bytes.Buffer
	restore := SetOutputForTests(&buf)
	defer restore()

	handler := AccessLogMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	r := httptest.NewRequest(http.MethodGet, "/notes", nil)
	handler.ServeHTTP(httptest.NewRecorder(), r)

	assert.Contains(t, buf.String(), "418")
}
