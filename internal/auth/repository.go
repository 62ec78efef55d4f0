package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrUserNotFound is returned when a user record is not found.
var ErrUserNotFound = errors.New("user not found")

// ErrDuplicatePhone is returned when a user with the same canonical phone
// number already exists.
var ErrDuplicatePhone = errors.New("phone number already registered")

// UserRepository provides operations on the users table.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByPhone(ctx context.Context, canonicalPhone string) (*User, error)
	List(ctx context.Context) ([]User, error)
	UpdateNames(ctx context.Context, id uuid.UUID, firstName, lastName string) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	CountAll(ctx context.Context) (int, error)
}
