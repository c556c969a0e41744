package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/kislikjeka/walletclient/internal/platform/user"
)

const userColumns = `id, email, password_hash, balance, created_at, updated_at, last_login_at`

// UserRepository implements user.Repository on PostgreSQL
type UserRepository struct {
	store *Store
}

// NewUserRepository creates a new PostgreSQL user repository
func NewUserRepository(store *Store) *UserRepository {
	return &UserRepository{store: store}
}

// Create inserts a new user
func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	if err := u.Validate(); err != nil {
		return fmt.Errorf("invalid user: %w", err)
	}

	_, err := r.store.q(ctx).Exec(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, u.ID, user.NormalizeEmail(u.Email), u.PasswordHash, u.Balance, u.CreatedAt, u.UpdatedAt, u.LastLoginAt)
	if err != nil {
		if isUniqueViolation(err) {
			return user.ErrUserAlreadyExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by ID. Inside a transaction the row is locked.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	row := r.store.q(ctx).QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`+lockClause(ctx), id)
	return scanUser(row)
}

// GetByEmail retrieves a user by normalized email. Inside a transaction the row is locked.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	row := r.store.q(ctx).QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`+lockClause(ctx), user.NormalizeEmail(email))
	return scanUser(row)
}

// Update saves a user's balance, credentials and timestamps
func (r *UserRepository) Update(ctx context.Context, u *user.User) error {
	if err := u.Validate(); err != nil {
		return fmt.Errorf("invalid user: %w", err)
	}

	result, err := r.store.q(ctx).Exec(ctx, `
		UPDATE users
		SET email = $2, password_hash = $3, balance = $4, updated_at = $5, last_login_at = $6
		WHERE id = $1
	`, u.ID, user.NormalizeEmail(u.Email), u.PasswordHash, u.Balance, u.UpdatedAt, u.LastLoginAt)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if result.RowsAffected() == 0 {
		return user.ErrUserNotFound
	}
	return nil
}

// List returns every user ordered by creation time
func (r *UserRepository) List(ctx context.Context) ([]*user.User, error) {
	rows, err := r.store.q(ctx).Query(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at, email`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*user.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func scanUser(row pgx.Row) (*user.User, error) {
	var u user.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Balance, &u.CreatedAt, &u.UpdatedAt, &u.LastLoginAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	u.CreatedAt = u.CreatedAt.UTC()
	u.UpdatedAt = u.UpdatedAt.UTC()
	return &u, nil
}
