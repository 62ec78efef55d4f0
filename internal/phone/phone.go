// Package phone normalizes phone numbers into the canonical form used as the
// authentication key: formatting characters (spaces, hyphens, dots,
// parentheses) are stripped, a single leading '+' is preserved, and the
// result must be 9 to 15 digits.
package phone

import (
	"errors"
	"regexp"
	"strings"
)

// ErrInvalidFormat is returned when a phone number cannot be canonicalized.
var ErrInvalidFormat = errors.New("invalid phone number format")

var canonicalRegex = regexp.MustCompile(`^\+?[0-9]{9,15}$`)

// Canonicalize strips formatting from a phone number and validates the
// result. It returns the canonical form, or ErrInvalidFormat.
func Canonicalize(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", ErrInvalidFormat
	}

	var b strings.Builder
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '.' || r == '(' || r == ')':
			// formatting, dropped
		default:
			return "", ErrInvalidFormat
		}
	}

	canonical := b.String()
	if !canonicalRegex.MatchString(canonical) {
		return "", ErrInvalidFormat
	}

	return canonical, nil
}

// IsCanonical reports whether s is already in canonical form.
func IsCanonical(s string) bool {
	return canonicalRegex.MatchString(s)
}
