package access

import (
	"time"

	"github.com/google/uuid"
)

// Permission is a (resource, action) capability unit. The pair is the
// identity; two records with the same pair are the same permission.
type Permission struct {
	Resource string
	Action   string
}

// String renders the permission in "resource:action" form for logs and
// API payloads.
func (p Permission) String() string {
	return p.Resource + ":" + p.Action
}

// PermissionRecord is a row in the permissions catalog.
type PermissionRecord struct {
	ID        uuid.UUID
	Resource  string
	Action    string
	CreatedAt time.Time
}

// Pair returns the capability pair for this record.
func (r PermissionRecord) Pair() Permission {
	return Permission{Resource: r.Resource, Action: r.Action}
}

// Group represents a row in the groups table.
type Group struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
}

// Set is an effective permission set.
type Set map[Permission]struct{}

// Has reports whether the set contains the permission.
func (s Set) Has(p Permission) bool {
	_, ok := s[p]
	return ok
}

// Add inserts a permission into the set.
func (s Set) Add(p Permission) {
	s[p] = struct{}{}
}
