package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gatehouse/gatehouse/internal/phone"
)

// ErrAuthenticationFailed is the single failure returned by Authenticate
// regardless of cause. Callers cannot tell a missing user from a wrong
// password or an inactive account; the cause is logged internally only.
var ErrAuthenticationFailed = errors.New("authentication failed")

// ErrWeakPassword is returned by Register when the password is too short.
var ErrWeakPassword = errors.New("password must be at least 8 characters")

// dummyHash is compared against when no stored hash is available, so the
// missing-user and inactive-account paths cost the same as a real mismatch.
const dummyHash = "$2a$12$R9h/cIPz0gi.URNNX3kh2OPST9/PgBkqquzi.Ss7KIUgO2t0jWMUW"

// Service provides authentication operations over the credential store.
type Service struct {
	userRepo UserRepository
	hasher   PasswordHasher
}

// NewService creates a new auth Service.
func NewService(userRepo UserRepository, hasher PasswordHasher) *Service {
	return &Service{
		userRepo: userRepo,
		hasher:   hasher,
	}
}

// Authenticate resolves a phone number and password to an Identity. The phone
// number is canonicalized first; a malformed number fails before any store
// lookup. Every failure surfaces as ErrAuthenticationFailed.
func (s *Service) Authenticate(ctx context.Context, phoneNumber, password string) (*Identity, error) {
	canonical, err := phone.Canonicalize(phoneNumber)
	if err != nil {
		slog.Debug("authentication rejected", "cause", "invalid_format")
		return nil, ErrAuthenticationFailed
	}

	u, err := s.userRepo.FindByPhone(ctx, canonical)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			s.hasher.Compare(dummyHash, password)
			slog.Debug("authentication rejected", "cause", "user_not_found")
			return nil, ErrAuthenticationFailed
		}
		return nil, fmt.Errorf("finding user by phone: %w", err)
	}

	if !u.IsActive {
		s.hasher.Compare(dummyHash, password)
		slog.Debug("authentication rejected", "cause", "inactive_account", "userId", u.ID)
		return nil, ErrAuthenticationFailed
	}

	if !s.hasher.Compare(u.PasswordHash, password) {
		slog.Debug("authentication rejected", "cause", "invalid_credentials", "userId", u.ID)
		return nil, ErrAuthenticationFailed
	}

	return NewIdentity(u), nil
}

// Register creates a new user with the given credentials. Used both by the
// registration path and by superuser provisioning. The phone number is
// stored in canonical form.
func (s *Service) Register(ctx context.Context, phoneNumber, password, firstName, lastName string, superuser bool) (*User, error) {
	canonical, err := phone.Canonicalize(phoneNumber)
	if err != nil {
		return nil, err
	}

	if len(password) < 8 {
		return nil, ErrWeakPassword
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	u := &User{
		PhoneNumber:  canonical,
		PasswordHash: hash,
		FirstName:    firstName,
		LastName:     lastName,
		IsActive:     true,
		IsSuperuser:  superuser,
	}

	if err := s.userRepo.Create(ctx, u); err != nil {
		return nil, err
	}

	return u, nil
}

// BootstrapSuperuser creates the initial superuser if the users table is
// empty. Returns the generated password (only displayed once). If users
// already exist, returns empty string.
func (s *Service) BootstrapSuperuser(ctx context.Context, phoneNumber string) (string, error) {
	count, err := s.userRepo.CountAll(ctx)
	if err != nil {
		return "", fmt.Errorf("counting users: %w", err)
	}

	if count > 0 {
		return "", nil
	}

	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating random password: %w", err)
	}
	password := base64.RawURLEncoding.EncodeToString(b)

	u, err := s.Register(ctx, phoneNumber, password, "Super", "User", true)
	if err != nil {
		return "", fmt.Errorf("creating superuser: %w", err)
	}

	slog.Info("superuser password created", "phone", u.PhoneNumber, "password", password)

	return password, nil
}
