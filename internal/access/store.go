package access

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrGroupNotFound is returned when a group record is not found.
var ErrGroupNotFound = errors.New("group not found")

// ErrDuplicateGroupName is returned when a group with the same name already exists.
var ErrDuplicateGroupName = errors.New("group name already exists")

// ErrPermissionNotFound is returned when a permission record is not found.
var ErrPermissionNotFound = errors.New("permission not found")

// ErrDuplicatePermission is returned when a permission with the same
// (resource, action) pair already exists.
var ErrDuplicatePermission = errors.New("permission already exists")

// Store provides operations on the permission catalog, groups, memberships
// and direct grants. Membership writes are single statements; transactional
// integrity across them belongs to the database.
type Store interface {
	CreatePermission(ctx context.Context, p *PermissionRecord) error
	GetPermissionByID(ctx context.Context, id uuid.UUID) (*PermissionRecord, error)
	ListPermissions(ctx context.Context) ([]PermissionRecord, error)

	CreateGroup(ctx context.Context, g *Group) error
	GetGroupByID(ctx context.Context, id uuid.UUID) (*Group, error)
	ListGroups(ctx context.Context) ([]Group, error)
	DeleteGroup(ctx context.Context, id uuid.UUID) error

	AttachPermission(ctx context.Context, groupID, permissionID uuid.UUID) error
	DetachPermission(ctx context.Context, groupID, permissionID uuid.UUID) error
	AddMember(ctx context.Context, userID, groupID uuid.UUID) error
	RemoveMember(ctx context.Context, userID, groupID uuid.UUID) error
	GrantToUser(ctx context.Context, userID, permissionID uuid.UUID) error
	RevokeFromUser(ctx context.Context, userID, permissionID uuid.UUID) error

	GroupsFor(ctx context.Context, userID uuid.UUID) ([]Group, error)
	PermissionsForGroup(ctx context.Context, groupID uuid.UUID) ([]Permission, error)
	DirectPermissionsFor(ctx context.Context, userID uuid.UUID) ([]Permission, error)
}
