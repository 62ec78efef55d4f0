package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenCodec issues and parses signed session tokens. The jti claim carries
// the session row ID; no permissions are baked into the token.
type TokenCodec struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewTokenCodec creates a codec with the provided secret, issuer, and lifetime.
func NewTokenCodec(secret, issuer string, ttl time.Duration) *TokenCodec {
	return &TokenCodec{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
	}
}

// TTL returns the configured session lifetime.
func (c *TokenCodec) TTL() time.Duration {
	return c.ttl
}

// Issue signs a token for the given session and user.
func (c *TokenCodec) Issue(sessionID, userID uuid.UUID) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"iss": c.issuer,
		"sub": userID.String(),
		"jti": sessionID.String(),
		"iat": now.Unix(),
		"nbf": now.Unix(),
		"exp": now.Add(c.ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("signing session token: %w", err)
	}
	return signed, nil
}

// Parse verifies a token and returns the session ID it names.
func (c *TokenCodec) Parse(tokenString string) (uuid.UUID, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return c.secret, nil
	}, jwt.WithIssuer(c.issuer), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return uuid.Nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, ErrInvalidToken
	}

	jti, ok := claims["jti"].(string)
	if !ok {
		return uuid.Nil, ErrInvalidToken
	}

	sessionID, err := uuid.Parse(jti)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}

	return sessionID, nil
}
