package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/kuitang/noteful/internal/obs"
)

type contextKey string

const callerKey contextKey = "caller"

// Caller is the authenticated identity attached to a request.
type Caller struct {
	ID       primitive.ObjectID
	Username string
}

// Middleware guards routes with bearer-token authentication.
type Middleware struct {
	tokens *TokenIssuer
}

// NewMiddleware creates auth middleware around the token issuer.
func NewMiddleware(tokens *TokenIssuer) *Middleware {
	return &Middleware{tokens: tokens}
}

// RequireAuth rejects requests without a valid bearer token with 401 and
// otherwise attaches the caller to the request context.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString, ok := BearerToken(r)
		if !ok {
			unauthorized(w)
			return
		}

		user, err := m.tokens.Verify(tokenString)
		if err != nil {
			unauthorized(w)
			return
		}

		callerID, err := primitive.ObjectIDFromHex(user.ID)
		if err != nil {
			unauthorized(w)
			return
		}

		ctx := WithCaller(r.Context(), Caller{ID: callerID, Username: user.Username})
		ctx = obs.WithCorrelation(ctx, obs.Correlation{UserID: user.ID})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// BearerToken extracts the token from the Authorization header.
func BearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// WithCaller returns a context carrying the caller, the same way RequireAuth
// attaches it.
func WithCaller(ctx context.Context, caller Caller) context.Context {
	return context.WithValue(ctx, callerKey, caller)
}

// CallerFromContext returns the authenticated caller. The second return is
// false on routes that did not pass through RequireAuth.
func CallerFromContext(ctx context.Context) (Caller, bool) {
	caller, ok := ctx.Value(callerKey).(Caller)
	return caller, ok
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"message": "Unauthorized",
		"status":  http.StatusUnauthorized,
	})
}
