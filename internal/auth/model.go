package auth

import (
	"time"

	"github.com/google/uuid"
)

// User represents a row in the users table. Users are never deleted;
// deactivation clears IsActive instead.
type User struct {
	ID           uuid.UUID
	PhoneNumber  string // canonical form, unique
	PasswordHash string
	FirstName    string
	LastName     string
	IsActive     bool
	IsSuperuser  bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Identity is the runtime handle for an authenticated user. It is built by
// Authenticate or a session lookup and passed explicitly to every access
// check; there is no ambient request-global user.
type Identity struct {
	UserID      uuid.UUID
	PhoneNumber string
	FirstName   string
	LastName    string
	IsSuperuser bool
}

// NewIdentity builds an Identity from a user record.
func NewIdentity(u *User) *Identity {
	return &Identity{
		UserID:      u.ID,
		PhoneNumber: u.PhoneNumber,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		IsSuperuser: u.IsSuperuser,
	}
}
