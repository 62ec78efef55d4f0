package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gatehouse/gatehouse/internal/auth"
)

// Manager implements Binding over a session store and token codec. Lookup
// re-reads the user on every call, so deactivation takes effect mid-session.
type Manager struct {
	store    Store
	codec    *TokenCodec
	userRepo auth.UserRepository
}

// NewManager creates a session Manager.
func NewManager(store Store, codec *TokenCodec, userRepo auth.UserRepository) *Manager {
	return &Manager{
		store:    store,
		codec:    codec,
		userRepo: userRepo,
	}
}

// Bind creates a session row for the identity and returns its signed token.
func (m *Manager) Bind(ctx context.Context, identity *auth.Identity) (string, error) {
	s := &Session{
		ID:        uuid.New(),
		UserID:    identity.UserID,
		ExpiresAt: time.Now().Add(m.codec.TTL()),
	}

	if err := m.store.Create(ctx, s); err != nil {
		return "", err
	}

	token, err := m.codec.Issue(s.ID, identity.UserID)
	if err != nil {
		return "", err
	}

	return token, nil
}

// Lookup resolves a token back to an Identity. Expired sessions are removed
// on sight and reported as ErrSessionExpired; a deactivated user invalidates
// every session bound to it.
func (m *Manager) Lookup(ctx context.Context, token string) (*auth.Identity, error) {
	sessionID, err := m.codec.Parse(token)
	if err != nil {
		return nil, err
	}

	s, err := m.store.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if time.Now().After(s.ExpiresAt) {
		if err := m.store.Delete(ctx, s.ID); err != nil {
			return nil, err
		}
		return nil, ErrSessionExpired
	}

	u, err := m.userRepo.GetByID(ctx, s.UserID)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("loading session user: %w", err)
	}

	if !u.IsActive {
		return nil, ErrInvalidToken
	}

	return auth.NewIdentity(u), nil
}

// Unbind removes the session named by the token. Unknown sessions unbind
// without error; a bad signature still fails.
func (m *Manager) Unbind(ctx context.Context, token string) error {
	sessionID, err := m.codec.Parse(token)
	if err != nil {
		return err
	}

	return m.store.Delete(ctx, sessionID)
}
