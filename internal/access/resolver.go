package access

import (
	"context"
	"fmt"

	"github.com/gatehouse/gatehouse/internal/auth"
)

// Resolver computes the effective permission set for an identity: the union
// of every group's permissions and the user's direct grants. A superuser
// resolves to the universal set (every defined permission) regardless of
// membership.
//
// Resolve is pure: it reads the store and returns a fresh set every call, so
// membership changes are visible on the next check without any cache
// invalidation protocol.
type Resolver struct {
	store Store
}

// NewResolver creates a Resolver over the given store.
func NewResolver(store Store) *Resolver {
	return &Resolver{store: store}
}

// Resolve returns the effective permission set for the identity. An identity
// with no memberships and no grants resolves to an empty set, not an error.
func (r *Resolver) Resolve(ctx context.Context, identity *auth.Identity) (Set, error) {
	set := Set{}

	if identity.IsSuperuser {
		all, err := r.store.ListPermissions(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing permissions: %w", err)
		}
		for _, p := range all {
			set.Add(p.Pair())
		}
		return set, nil
	}

	groups, err := r.store.GroupsFor(ctx, identity.UserID)
	if err != nil {
		return nil, fmt.Errorf("resolving groups: %w", err)
	}

	for _, g := range groups {
		perms, err := r.store.PermissionsForGroup(ctx, g.ID)
		if err != nil {
			return nil, fmt.Errorf("resolving group permissions: %w", err)
		}
		for _, p := range perms {
			set.Add(p)
		}
	}

	direct, err := r.store.DirectPermissionsFor(ctx, identity.UserID)
	if err != nil {
		return nil, fmt.Errorf("resolving direct grants: %w", err)
	}
	for _, p := range direct {
		set.Add(p)
	}

	return set, nil
}
