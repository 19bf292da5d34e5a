package ratelimit

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/kuitang/noteful/internal/auth"
)

func newTestLimiter(rps float64, burst int) *Limiter {
	return New(Config{RPS: rps, Burst: burst, CleanupInterval: time.Hour})
}

func TestAllow_BurstThenDeny(t *testing.T) {
	t.Parallel()
	limiter := newTestLimiter(0.001, 3)
	defer limiter.Stop()

	for i := 0; i < 3; i++ {
		assert.True(t, limiter.Allow("alice"), "request %d within burst", i)
	}
	assert.False(t, limiter.Allow("alice"))
}

func TestAllow_UsersHaveIndependentBuckets(t *testing.T) {
	t.Parallel()
	limiter := newTestLimiter(0.001, 1)
	defer limiter.Stop()

	assert.True(t, limiter.Allow("alice"))
	assert.False(t, limiter.Allow("alice"))
	assert.True(t, limiter.Allow("bob"))
}

func TestCleanup_DropsIdleEntries(t *testing.T) {
	t.Parallel()
	limiter := New(Config{RPS: 1, Burst: 1, CleanupInterval: 10 * time.Millisecond})
	defer limiter.Stop()

	limiter.Allow("alice")
	require.Equal(t, 1, limiter.Len())

	time.Sleep(30 * time.Millisecond)
	limiter.Cleanup()
	assert.Zero(t, limiter.Len())
}

func callerContextRequest(userID primitive.ObjectID) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/notes", nil)
	ctx := auth.WithCaller(r.Context(), auth.Caller{ID: userID, Username: "tim"})
	return r.WithContext(ctx)
}

func TestMiddleware_PassesAndLimits(t *testing.T) {
	t.Parallel()
	limiter := newTestLimiter(0.001, 1)
	defer limiter.Stop()

	var hits int
	handler := Middleware(limiter)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusNoContent)
	}))

	userID := primitive.NewObjectID()
	r := callerContextRequest(userID)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, 1, hits)

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, 1, hits)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Too Many Requests", body["message"])
	assert.Equal(t, float64(http.StatusTooManyRequests), body["status"])
}

func TestMiddleware_SkipsRequestsWithoutCaller(t *testing.T) {
	t.Parallel()
	limiter := newTestLimiter(0.001, 1)
	defer limiter.Stop()

	handler := Middleware(limiter)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	// Unauthenticated requests pass through untouched however many arrive;
	// the auth middleware is the one that rejects them.
	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/login", nil))
		assert.Equal(t, http.StatusNoContent, w.Code)
	}
	assert.Zero(t, limiter.Len())
}
