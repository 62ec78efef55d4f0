package access

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gatehouse/gatehouse/internal/auth"
)

// ErrNotAuthenticated is returned by Require when no identity is present.
var ErrNotAuthenticated = errors.New("authentication required")

// ErrPermissionDenied is returned by Require when the identity lacks the
// required permission.
var ErrPermissionDenied = errors.New("permission denied")

// Gate decides allow/deny for protected operations and UI visibility. It
// re-resolves permissions on every check; the binding never assumes a stable
// permission set for the lifetime of a session.
type Gate struct {
	resolver *Resolver
}

// NewGate creates a Gate over the given resolver.
func NewGate(resolver *Resolver) *Gate {
	return &Gate{resolver: resolver}
}

// Check reports whether the identity holds the permission. It never returns
// an error: an anonymous identity (nil) is false, and a resolver failure is
// logged and treated as false. This is the deny-by-default query used for
// menu and UI visibility.
func (g *Gate) Check(ctx context.Context, identity *auth.Identity, perm Permission) bool {
	if identity == nil {
		return false
	}

	set, err := g.resolver.Resolve(ctx, identity)
	if err != nil {
		slog.Error("permission resolution failed, denying", "userId", identity.UserID, "permission", perm.String(), "error", err)
		return false
	}

	return set.Has(perm)
}

// Require is the hard gate for protected operations. Unlike Check it
// distinguishes the failure: ErrNotAuthenticated for anonymous callers,
// ErrPermissionDenied for authenticated callers lacking the permission.
// Superusers always pass provided the permission is defined.
func (g *Gate) Require(ctx context.Context, identity *auth.Identity, perm Permission) error {
	if identity == nil {
		return ErrNotAuthenticated
	}

	set, err := g.resolver.Resolve(ctx, identity)
	if err != nil {
		return fmt.Errorf("resolving permissions: %w", err)
	}

	if !set.Has(perm) {
		return ErrPermissionDenied
	}

	return nil
}
