// Package session binds authenticated identities to opaque-to-the-client
// tokens. The token is a signed JWT whose jti names a server-side session
// row, so logout actually revokes and expiry is enforced server-side.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/gatehouse/gatehouse/internal/auth"
)

// ErrInvalidToken is returned when a token fails signature or claim checks,
// or names a session that no longer exists.
var ErrInvalidToken = errors.New("invalid session token")

// ErrSessionExpired is returned when the session row has passed its expiry.
var ErrSessionExpired = errors.New("session expired")

// Session represents a row in the sessions table.
type Session struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Binding associates identities with session tokens across requests.
type Binding interface {
	Bind(ctx context.Context, identity *auth.Identity) (string, error)
	Lookup(ctx context.Context, token string) (*auth.Identity, error)
	Unbind(ctx context.Context, token string) error
}

// Store provides operations on the sessions table.
type Store interface {
	Create(ctx context.Context, s *Session) error
	GetByID(ctx context.Context, id uuid.UUID) (*Session, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteExpired(ctx context.Context) (int64, error)
}
