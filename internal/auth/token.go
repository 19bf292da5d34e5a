package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/kuitang/noteful/internal/errs"
)

// TokenUser is the identity a bearer token carries.
type TokenUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Claims is the JWT payload: the user object plus the registered claims.
// Clients depend on the {"user": {"username", "id"}} shape.
type Claims struct {
	User TokenUser `json:"user"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies bearer tokens.
type TokenIssuer struct {
	secret []byte
	expiry time.Duration
}

// NewTokenIssuer creates an issuer signing HS256 tokens valid for expiry.
func NewTokenIssuer(secret string, expiry time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), expiry: expiry}
}

// Issue signs a fresh token for the user. Refresh is the same operation on an
// already-verified identity, so both login and /refresh call this.
func (ti *TokenIssuer) Issue(user TokenUser) (string, error) {
	now := time.Now()
	claims := Claims{
		User: user,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Username,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ti.expiry)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(ti.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a bearer token and returns the identity it
// carries. Any failure (malformed, bad signature, expired) is the same
// Unauthorized error.
func (ti *TokenIssuer) Verify(tokenString string) (TokenUser, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", token.Header["alg"])
		}
		return ti.secret, nil
	})
	if err != nil || !token.Valid {
		return TokenUser{}, errs.Wrap(errs.Unauthorized, "Unauthorized", err)
	}
	if claims.User.ID == "" {
		return TokenUser{}, errs.New(errs.Unauthorized, "Unauthorized")
	}
	return claims.User, nil
}
