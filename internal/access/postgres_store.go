package access

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewStore creates a new Store backed by the given connection pool.
func NewStore(pool *pgxpool.Pool) Store {
	return &PostgresStore{pool: pool}
}

// CreatePermission inserts a new permission record.
func (s *PostgresStore) CreatePermission(ctx context.Context, p *PermissionRecord) error {
	query := `
		INSERT INTO permissions (resource, action)
		VALUES ($1, $2)
		RETURNING id, created_at`

	err := s.pool.QueryRow(ctx, query, p.Resource, p.Action).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicatePermission
		}
		return fmt.Errorf("inserting permission: %w", err)
	}

	return nil
}

// GetPermissionByID retrieves a single permission record by its UUID.
func (s *PostgresStore) GetPermissionByID(ctx context.Context, id uuid.UUID) (*PermissionRecord, error) {
	query := `
		SELECT id, resource, action, created_at
		FROM permissions
		WHERE id = $1`

	var p PermissionRecord
	err := s.pool.QueryRow(ctx, query, id).Scan(&p.ID, &p.Resource, &p.Action, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPermissionNotFound
		}
		return nil, fmt.Errorf("querying permission: %w", err)
	}

	return &p, nil
}

// ListPermissions retrieves every defined permission, ordered by pair.
func (s *PostgresStore) ListPermissions(ctx context.Context) ([]PermissionRecord, error) {
	query := `
		SELECT id, resource, action, created_at
		FROM permissions
		ORDER BY resource ASC, action ASC`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing permissions: %w", err)
	}
	defer rows.Close()

	var perms []PermissionRecord
	for rows.Next() {
		var p PermissionRecord
		if err := rows.Scan(&p.ID, &p.Resource, &p.Action, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning permission row: %w", err)
		}
		perms = append(perms, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating permission rows: %w", err)
	}

	if perms == nil {
		perms = []PermissionRecord{}
	}

	return perms, nil
}

// CreateGroup inserts a new group record.
func (s *PostgresStore) CreateGroup(ctx context.Context, g *Group) error {
	query := `
		INSERT INTO groups (name)
		VALUES ($1)
		RETURNING id, created_at`

	err := s.pool.QueryRow(ctx, query, g.Name).Scan(&g.ID, &g.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateGroupName
		}
		return fmt.Errorf("inserting group: %w", err)
	}

	return nil
}

// GetGroupByID retrieves a single group by its UUID.
func (s *PostgresStore) GetGroupByID(ctx context.Context, id uuid.UUID) (*Group, error) {
	query := `
		SELECT id, name, created_at
		FROM groups
		WHERE id = $1`

	var g Group
	err := s.pool.QueryRow(ctx, query, id).Scan(&g.ID, &g.Name, &g.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrGroupNotFound
		}
		return nil, fmt.Errorf("querying group: %w", err)
	}

	return &g, nil
}

// ListGroups retrieves all groups ordered by creation time.
func (s *PostgresStore) ListGroups(ctx context.Context) ([]Group, error) {
	query := `
		SELECT id, name, created_at
		FROM groups
		ORDER BY created_at ASC`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing groups: %w", err)
	}
	defer rows.Close()

	var groups []Group
	for rows.Next() {
		var g Group
		if err := rows.Scan(&g.ID, &g.Name, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning group row: %w", err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating group rows: %w", err)
	}

	if groups == nil {
		groups = []Group{}
	}

	return groups, nil
}

// DeleteGroup removes a group together with its memberships and permission
// attachments (ON DELETE CASCADE on the join tables).
func (s *PostgresStore) DeleteGroup(ctx context.Context, id uuid.UUID) error {
	result, err := s.pool.Exec(ctx, "DELETE FROM groups WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("deleting group: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrGroupNotFound
	}

	return nil
}

// AttachPermission adds a permission to a group. Attaching an already
// attached permission is a no-op; the join table keeps no duplicates.
func (s *PostgresStore) AttachPermission(ctx context.Context, groupID, permissionID uuid.UUID) error {
	query := `
		INSERT INTO group_permissions (group_id, permission_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING`

	if _, err := s.pool.Exec(ctx, query, groupID, permissionID); err != nil {
		if err := s.checkGroupAndPermission(ctx, groupID, permissionID); err != nil {
			return err
		}
		return fmt.Errorf("attaching permission: %w", err)
	}

	return nil
}

// DetachPermission removes a permission from a group.
func (s *PostgresStore) DetachPermission(ctx context.Context, groupID, permissionID uuid.UUID) error {
	query := `DELETE FROM group_permissions WHERE group_id = $1 AND permission_id = $2`

	if _, err := s.pool.Exec(ctx, query, groupID, permissionID); err != nil {
		return fmt.Errorf("detaching permission: %w", err)
	}

	return nil
}

// AddMember adds a user to a group. Duplicate (user, group) pairs are
// silently ignored.
func (s *PostgresStore) AddMember(ctx context.Context, userID, groupID uuid.UUID) error {
	query := `
		INSERT INTO user_groups (user_id, group_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING`

	if _, err := s.pool.Exec(ctx, query, userID, groupID); err != nil {
		return fmt.Errorf("adding group member: %w", err)
	}

	return nil
}

// RemoveMember removes a user from a group.
func (s *PostgresStore) RemoveMember(ctx context.Context, userID, groupID uuid.UUID) error {
	query := `DELETE FROM user_groups WHERE user_id = $1 AND group_id = $2`

	if _, err := s.pool.Exec(ctx, query, userID, groupID); err != nil {
		return fmt.Errorf("removing group member: %w", err)
	}

	return nil
}

// GrantToUser grants a permission directly to a user.
func (s *PostgresStore) GrantToUser(ctx context.Context, userID, permissionID uuid.UUID) error {
	query := `
		INSERT INTO user_permissions (user_id, permission_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING`

	if _, err := s.pool.Exec(ctx, query, userID, permissionID); err != nil {
		return fmt.Errorf("granting permission to user: %w", err)
	}

	return nil
}

// RevokeFromUser removes a direct grant from a user.
func (s *PostgresStore) RevokeFromUser(ctx context.Context, userID, permissionID uuid.UUID) error {
	query := `DELETE FROM user_permissions WHERE user_id = $1 AND permission_id = $2`

	if _, err := s.pool.Exec(ctx, query, userID, permissionID); err != nil {
		return fmt.Errorf("revoking permission from user: %w", err)
	}

	return nil
}

// GroupsFor retrieves the groups a user belongs to.
func (s *PostgresStore) GroupsFor(ctx context.Context, userID uuid.UUID) ([]Group, error) {
	query := `
		SELECT g.id, g.name, g.created_at
		FROM groups g
		JOIN user_groups ug ON ug.group_id = g.id
		WHERE ug.user_id = $1
		ORDER BY g.created_at ASC`

	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("querying user groups: %w", err)
	}
	defer rows.Close()

	var groups []Group
	for rows.Next() {
		var g Group
		if err := rows.Scan(&g.ID, &g.Name, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning group row: %w", err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating group rows: %w", err)
	}

	if groups == nil {
		groups = []Group{}
	}

	return groups, nil
}

// PermissionsForGroup retrieves the permission pairs attached to a group.
func (s *PostgresStore) PermissionsForGroup(ctx context.Context, groupID uuid.UUID) ([]Permission, error) {
	query := `
		SELECT p.resource, p.action
		FROM permissions p
		JOIN group_permissions gp ON gp.permission_id = p.id
		WHERE gp.group_id = $1`

	return s.queryPairs(ctx, query, groupID)
}

// DirectPermissionsFor retrieves the permission pairs granted directly to a user.
func (s *PostgresStore) DirectPermissionsFor(ctx context.Context, userID uuid.UUID) ([]Permission, error) {
	query := `
		SELECT p.resource, p.action
		FROM permissions p
		JOIN user_permissions up ON up.permission_id = p.id
		WHERE up.user_id = $1`

	return s.queryPairs(ctx, query, userID)
}

func (s *PostgresStore) queryPairs(ctx context.Context, query string, arg any) ([]Permission, error) {
	rows, err := s.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("querying permissions: %w", err)
	}
	defer rows.Close()

	var perms []Permission
	for rows.Next() {
		var p Permission
		if err := rows.Scan(&p.Resource, &p.Action); err != nil {
			return nil, fmt.Errorf("scanning permission row: %w", err)
		}
		perms = append(perms, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating permission rows: %w", err)
	}

	if perms == nil {
		perms = []Permission{}
	}

	return perms, nil
}

// checkGroupAndPermission distinguishes a missing group from a missing
// permission after a failed join-table insert.
func (s *PostgresStore) checkGroupAndPermission(ctx context.Context, groupID, permissionID uuid.UUID) error {
	if _, err := s.GetGroupByID(ctx, groupID); err != nil {
		if errors.Is(err, ErrGroupNotFound) {
			return ErrGroupNotFound
		}
	}
	if _, err := s.GetPermissionByID(ctx, permissionID); err != nil {
		if errors.Is(err, ErrPermissionNotFound) {
			return ErrPermissionNotFound
		}
	}
	return nil
}
