package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fkhayef/chama/internal/database"
)

// Repository handles user persistence. Lookups return (nil, nil) when the
// user does not exist. Create returns ErrUserExists on a duplicate username
// or email.
type Repository interface {
	Create(ctx context.Context, u *User) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
}

// PostgresRepository is the Postgres implementation of Repository
type PostgresRepository struct {
	db *sql.DB
}

var _ Repository = (*PostgresRepository)(nil)

// NewPostgresRepository creates a new user repository
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const selectUsers = `SELECT id, username, email, password_hash, created_at FROM users`

func (r *PostgresRepository) queryOne(ctx context.Context, query string, arg any) (*User, error) {
	user := &User{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// Create inserts a new user
func (r *PostgresRepository) Create(ctx context.Context, u *User) (*User, error) {
	query := `
		INSERT INTO users (username, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id, username, email, password_hash, created_at
	`

	user := &User{}
	err := r.db.QueryRowContext(ctx, query, u.Username, u.Email, u.PasswordHash).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.CreatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err, "users_username_key") || database.IsUniqueViolation(err, "users_email_key") {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// GetByID retrieves a user by their ID
func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*User, error) {
	return r.queryOne(ctx, selectUsers+` WHERE id = $1`, id)
}

// GetByUsername retrieves a user by their username
func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (*User, error) {
	return r.queryOne(ctx, selectUsers+` WHERE username = $1`, username)
}

// GetByEmail retrieves a user by their email
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.queryOne(ctx, selectUsers+` WHERE email = $1`, email)
}
