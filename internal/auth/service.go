// Package auth covers signup, credential login, and bearer-token handling.
// It owns the only password-hash and token-signing code in the repo; the
// handlers consume it as an "authenticate and supply the caller id"
// collaborator.
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/kuitang/noteful/internal/errs"
	"github.com/kuitang/noteful/internal/model"
	"github.com/kuitang/noteful/internal/obs"
	"github.com/kuitang/noteful/internal/store"
	"github.com/kuitang/noteful/internal/validate"
)

// Service handles user registration and credential verification.
type Service struct {
	store  store.EntityStore
	tokens *TokenIssuer
}

// NewService creates an auth service on top of the entity store.
func NewService(entityStore store.EntityStore, tokens *TokenIssuer) *Service {
	return &Service{store: entityStore, tokens: tokens}
}

// Tokens exposes the issuer for the middleware and the refresh handler.
func (s *Service) Tokens() *TokenIssuer {
	return s.tokens
}

// Register creates a user from validated credentials. The password is stored
// only as a bcrypt hash. A taken username comes back as a Conflict.
func (s *Service) Register(ctx context.Context, creds validate.Credentials) (model.User, error) {
	hash, err := HashPassword(creds.Password)
	if err != nil {
		return model.User{}, err
	}

	user, err := s.store.CreateUser(ctx, model.User{
		Fullname:     creds.Fullname,
		Username:     creds.Username,
		PasswordHash: hash,
	})
	if errors.Is(err, store.ErrDuplicate) {
		return model.User{}, errs.New(errs.Conflict, "That username already exists")
	}
	if err != nil {
		return model.User{}, fmt.Errorf("create user: %w", err)
	}

	obs.From(ctx).Info("user registered", "username", user.Username)
	return user, nil
}

// Login verifies credentials and issues a token. An unknown username and a
// wrong password produce the same Unauthorized error, so login failures do
// not reveal which usernames exist.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.store.FindUserByUsername(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		// Burn a hash comparison anyway so the miss is not observably faster.
		VerifyPassword(password, dummyHash)
		return "", errs.New(errs.Unauthorized, "Incorrect username or password")
	}
	if err != nil {
		return "", fmt.Errorf("find user: %w", err)
	}

	if !VerifyPassword(password, user.PasswordHash) {
		return "", errs.New(errs.Unauthorized, "Incorrect username or password")
	}

	return s.tokens.Issue(TokenUser{ID: user.ID.Hex(), Username: user.Username})
}

// Refresh reissues a token for an already-verified identity.
func (s *Service) Refresh(user TokenUser) (string, error) {
	return s.tokens.Issue(user)
}

// dummyHash is a bcrypt hash of an unguessable throwaway value, compared
// against when the username does not exist.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"
