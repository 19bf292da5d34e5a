package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kuitang/noteful/internal/errs"
	"github.com/kuitang/noteful/internal/store"
	"github.com/kuitang/noteful/internal/validate"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestService() *Service {
	return NewService(store.NewMemory(), NewTokenIssuer(testSecret, time.Hour))
}

func TestHashPassword_Roundtrip(t *testing.T) {
	t.Parallel()
	hash, err := HashPassword("timmyturner")
	require.NoError(t, err)
	assert.NotEqual(t, "timmyturner", hash)
	assert.True(t, VerifyPassword("timmyturner", hash))
	assert.False(t, VerifyPassword("timmyturnip", hash))
}

func TestTokenIssuer_Roundtrip(t *testing.T) {
	t.Parallel()
	issuer := NewTokenIssuer(testSecret, time.Hour)

	user := TokenUser{ID: "000000000000000000000001", Username: "tim"}
	token, err := issuer.Issue(user)
	require.NoError(t, err)

	got, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, user, got)
}

func TestTokenIssuer_RejectsExpired(t *testing.T) {
	t.Parallel()
	issuer := NewTokenIssuer(testSecret, -time.Minute)

	token, err := issuer.Issue(TokenUser{ID: "000000000000000000000001", Username: "tim"})
	require.NoError(t, err)

	_, err = issuer.Verify(token)
	require.Error(t, err)
	assert.Equal(t, errs.Unauthorized, errs.CodeOf(err))
}

func TestTokenIssuer_RejectsWrongSecret(t *testing.T) {
	t.Parallel()
	issuer := NewTokenIssuer(testSecret, time.Hour)
	other := NewTokenIssuer("another-secret-another-secret-ab", time.Hour)

	token, err := other.Issue(TokenUser{ID: "000000000000000000000001", Username: "tim"})
	require.NoError(t, err)

	_, err = issuer.Verify(token)
	require.Error(t, err)
	assert.Equal(t, errs.Unauthorized, errs.CodeOf(err))
}

func TestTokenIssuer_RejectsGarbage(t *testing.T) {
	t.Parallel()
	issuer := NewTokenIssuer(testSecret, time.Hour)

	for _, token := range []string{"", "not-a-token", "a.b.c"} {
		_, err := issuer.Verify(token)
		require.Error(t, err, "token %q", token)
		assert.Equal(t, errs.Unauthorized, errs.CodeOf(err))
	}
}

func TestRegister_DuplicateUsernameIsConflict(t *testing.T) {
	t.Parallel()
	svc := newTestService()
	ctx := context.Background()

	creds := validate.Credentials{Fullname: "Tim Turner", Username: "tim", Password: "timmyturner"}
	user, err := svc.Register(ctx, creds)
	require.NoError(t, err)
	assert.False(t, user.ID.IsZero())
	assert.NotEqual(t, "timmyturner", user.PasswordHash)

	_, err = svc.Register(ctx, creds)
	require.Error(t, err)
	assert.Equal(t, errs.Conflict, errs.CodeOf(err))
	assert.Equal(t, "That username already exists", errs.MessageOf(err))
}

func TestLogin_UnknownUserAndWrongPasswordLookAlike(t *testing.T) {
	t.Parallel()
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, validate.Credentials{Fullname: "Tim Turner", Username: "tim", Password: "timmyturner"})
	require.NoError(t, err)

	_, unknownErr := svc.Login(ctx, "nobody", "timmyturner")
	_, wrongErr := svc.Login(ctx, "tim", "wrong-password")

	for _, err := range []error{unknownErr, wrongErr} {
		require.Error(t, err)
		assert.Equal(t, errs.Unauthorized, errs.CodeOf(err))
		assert.Equal(t, "Incorrect username or password", errs.MessageOf(err))
	}
}

func TestLogin_IssuesVerifiableToken(t *testing.T) {
	t.Parallel()
	svc := newTestService()
	ctx := context.Background()

	user, err := svc.Register(ctx, validate.Credentials{Fullname: "Tim Turner", Username: "tim", Password: "timmyturner"})
	require.NoError(t, err)

	token, err := svc.Login(ctx, "tim", "timmyturner")
	require.NoError(t, err)

	identity, err := svc.Tokens().Verify(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID.Hex(), identity.ID)
	assert.Equal(t, "tim", identity.Username)
}

func TestBearerToken_Parsing(t *testing.T) {
	t.Parallel()
	cases := []struct {
		header string
		token  string
		ok     bool
	}{
		{"", "", false},
		{"Bearer abc", "abc", true},
		{"bearer abc", "abc", true},
		{"Bearer ", "", false},
		{"Basic abc", "", false},
		{"abc", "", false},
	}
	for _, tc := range cases {
		r := httptest.NewRequest(http.MethodGet, "/notes", nil)
		if tc.header != "" {
			r.Header.Set("Authorization", tc.header)
		}
		token, ok := BearerToken(r)
		assert.Equal(t, tc.ok, ok, "header %q", tc.header)
		assert.Equal(t, tc.token, token, "header %q", tc.header)
	}
}

func TestRequireAuth_AttachesCaller(t *testing.T) {
	t.Parallel()
	issuer := NewTokenIssuer(testSecret, time.Hour)
	mw := NewMiddleware(issuer)

	var seen Caller
	handler := mw.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller, ok := CallerFromContext(r.Context())
		require.True(t, ok)
		seen = caller
		w.WriteHeader(http.StatusNoContent)
	}))

	token, err := issuer.Issue(TokenUser{ID: "000000000000000000000001", Username: "tim"})
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodGet, "/notes", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "000000000000000000000001", seen.ID.Hex())
	assert.Equal(t, "tim", seen.Username)
}

func TestRequireAuth_RejectsMissingAndBadTokens(t *testing.T) {
	t.Parallel()
	mw := NewMiddleware(NewTokenIssuer(testSecret, time.Hour))
	handler := mw.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	for _, header := range []string{"", "Bearer bogus"} {
		r := httptest.NewRequest(http.MethodGet, "/notes", nil)
		if header != "" {
			r.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)

		assert.Equal(t, http.StatusUnauthorized, w.Code, "header %q", header)
		assert.True(t, strings.Contains(w.Body.String(), "Unauthorized"))
	}
}
