package database

import (
	"context"
	"fmt"
	"log/slog"
)

// migrations are idempotent DDL statements applied in order at startup.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		phone_number TEXT UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		first_name TEXT NOT NULL DEFAULT '',
		last_name TEXT NOT NULL DEFAULT '',
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		is_superuser BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS permissions (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		resource TEXT NOT NULL,
		action TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (resource, action)
	)`,
	`CREATE TABLE IF NOT EXISTS groups (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		name TEXT UNIQUE NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS group_permissions (
		group_id UUID NOT NULL REFERENCES groups(id) ON DELETE CASCADE,
		permission_id UUID NOT NULL REFERENCES permissions(id) ON DELETE CASCADE,
		PRIMARY KEY (group_id, permission_id)
	)`,
	`CREATE TABLE IF NOT EXISTS user_groups (
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		group_id UUID NOT NULL REFERENCES groups(id) ON DELETE CASCADE,
		PRIMARY KEY (user_id, group_id)
	)`,
	`CREATE TABLE IF NOT EXISTS user_permissions (
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		permission_id UUID NOT NULL REFERENCES permissions(id) ON DELETE CASCADE,
		PRIMARY KEY (user_id, permission_id)
	)`,
	`CREATE TABLE IF NOT EXISTS sessions (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		expires_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS sessions_expires_at_idx ON sessions (expires_at)`,
	`INSERT INTO permissions (resource, action) VALUES
		('users', 'view'), ('users', 'manage'),
		('groups', 'view'), ('groups', 'manage'),
		('permissions', 'view'),
		('post', 'view'), ('post', 'add')
	ON CONFLICT (resource, action) DO NOTHING`,
}

// Migrate applies the schema statements. Safe to run on every startup.
func (db *DB) Migrate(ctx context.Context) error {
	for _, stmt := range migrations {
		if _, err := db.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("applying migration: %w", err)
		}
	}

	slog.Debug("database migrations applied", "statements", len(migrations))
	return nil
}
