package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository implements UserRepository using pgxpool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new UserRepository backed by the given connection pool.
func NewRepository(pool *pgxpool.Pool) UserRepository {
	return &PostgresRepository{pool: pool}
}

// Create inserts a new user record.
func (r *PostgresRepository) Create(ctx context.Context, u *User) error {
	query := `
		INSERT INTO users (phone_number, password_hash, first_name, last_name, is_active, is_superuser)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		u.PhoneNumber,
		u.PasswordHash,
		u.FirstName,
		u.LastName,
		u.IsActive,
		u.IsSuperuser,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicatePhone
		}
		return fmt.Errorf("inserting user: %w", err)
	}

	return nil
}

// GetByID retrieves a single user by its UUID.
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	query := `
		SELECT id, phone_number, password_hash, first_name, last_name,
		       is_active, is_superuser, created_at, updated_at
		FROM users
		WHERE id = $1`

	var u User
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&u.ID, &u.PhoneNumber, &u.PasswordHash, &u.FirstName, &u.LastName,
		&u.IsActive, &u.IsSuperuser, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("querying user: %w", err)
	}

	return &u, nil
}

// FindByPhone retrieves a single user by canonical phone number.
func (r *PostgresRepository) FindByPhone(ctx context.Context, canonicalPhone string) (*User, error) {
	query := `
		SELECT id, phone_number, password_hash, first_name, last_name,
		       is_active, is_superuser, created_at, updated_at
		FROM users
		WHERE phone_number = $1`

	var u User
	err := r.pool.QueryRow(ctx, query, canonicalPhone).Scan(
		&u.ID, &u.PhoneNumber, &u.PasswordHash, &u.FirstName, &u.LastName,
		&u.IsActive, &u.IsSuperuser, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("querying user by phone: %w", err)
	}

	return &u, nil
}

// List retrieves all users ordered by creation time.
func (r *PostgresRepository) List(ctx context.Context) ([]User, error) {
	query := `
		SELECT id, phone_number, password_hash, first_name, last_name,
		       is_active, is_superuser, created_at, updated_at
		FROM users
		ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		err := rows.Scan(
			&u.ID, &u.PhoneNumber, &u.PasswordHash, &u.FirstName, &u.LastName,
			&u.IsActive, &u.IsSuperuser, &u.CreatedAt, &u.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning user row: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating user rows: %w", err)
	}

	if users == nil {
		users = []User{}
	}

	return users, nil
}

// UpdateNames sets the first and last name of a user.
func (r *PostgresRepository) UpdateNames(ctx context.Context, id uuid.UUID, firstName, lastName string) error {
	query := `
		UPDATE users
		SET first_name = $2, last_name = $3, updated_at = NOW()
		WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id, firstName, lastName)
	if err != nil {
		return fmt.Errorf("updating user names: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}

// SetActive flips the active flag on a user. Deactivation is the only
// supported removal path; user rows are never deleted.
func (r *PostgresRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	query := `
		UPDATE users
		SET is_active = $2, updated_at = NOW()
		WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id, active)
	if err != nil {
		return fmt.Errorf("setting user active flag: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}

// CountAll returns the total number of users in the table (including inactive).
func (r *PostgresRepository) CountAll(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM users").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting users: %w", err)
	}
	return count, nil
}
