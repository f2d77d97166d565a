// Package auth manages the signed-in session: the stored token and cached
// profile, credential validation, and the account flows built on the API.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/linguaku/linguaku/internal/gateway"
	"github.com/linguaku/linguaku/internal/model"
	"github.com/linguaku/linguaku/internal/store"
)

// ErrNotAuthenticated is returned when no usable token is stored.
var ErrNotAuthenticated = gateway.ErrNotAuthenticated

// AuthStore holds the process-wide session. Set and Clear replace the token
// and the cached user together.
type AuthStore interface {
	Token(ctx context.Context) (string, error)
	User(ctx context.Context) (*model.User, error)
	Set(ctx context.Context, token string, user model.User) error
	Clear(ctx context.Context) error
}

// KVStore is an AuthStore on the local key/value store.
type KVStore struct {
	kv  store.KVRepo
	now func() time.Time
}

// NewKVStore creates a KVStore.
func NewKVStore(kv store.KVRepo) *KVStore {
	return &KVStore{kv: kv, now: time.Now}
}

// Token returns the stored token. An absent or expired token yields
// ErrNotAuthenticated.
func (s *KVStore) Token(ctx context.Context) (string, error) {
	tok, err := s.kv.Get(ctx, store.KeyAuthToken)
	if errors.Is(err, store.ErrNotFound) || (err == nil && tok == "") {
		return "", ErrNotAuthenticated
	}
	if err != nil {
		return "", fmt.Errorf("read token: %w", err)
	}
	if Expired(tok, s.now()) {
		return "", ErrNotAuthenticated
	}
	return tok, nil
}

// User returns the cached profile, or ErrNotAuthenticated when none is stored.
func (s *KVStore) User(ctx context.Context) (*model.User, error) {
	raw, err := s.kv.Get(ctx, store.KeyUserData)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotAuthenticated
	}
	if err != nil {
		return nil, fmt.Errorf("read user: %w", err)
	}
	var u model.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	return &u, nil
}

// Set stores token and user in one transaction.
func (s *KVStore) Set(ctx context.Context, token string, user model.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	return s.kv.Apply(ctx, map[string]string{
		store.KeyAuthToken: token,
		store.KeyUserData:  string(raw),
	}, nil)
}

// Clear removes token and user in one transaction.
func (s *KVStore) Clear(ctx context.Context) error {
	return s.kv.Apply(ctx, nil, []string{store.KeyAuthToken, store.KeyUserData})
}

// SessionContext is handed to components that act on behalf of the user.
// It satisfies gateway.TokenSource.
type SessionContext struct {
	store AuthStore
}

// NewSessionContext wraps an AuthStore.
func NewSessionContext(s AuthStore) *SessionContext {
	return &SessionContext{store: s}
}

// Token returns the current bearer token.
func (c *SessionContext) Token(ctx context.Context) (string, error) {
	return c.store.Token(ctx)
}

// User returns the cached profile.
func (c *SessionContext) User(ctx context.Context) (*model.User, error) {
	return c.store.User(ctx)
}

// SignedIn reports whether a usable token is stored.
func (c *SessionContext) SignedIn(ctx context.Context) bool {
	_, err := c.store.Token(ctx)
	return err == nil
}
