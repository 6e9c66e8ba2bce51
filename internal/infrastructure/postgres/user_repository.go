package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"emailsummary/internal/domain/user"
)

// UserRepository implements the user.Repository interface for PostgreSQL
type UserRepository struct {
	db *DB
}

// NewUserRepository creates a new PostgreSQL user repository
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a user with the legacy cadence defaults switched on.
func (r *UserRepository) Create(ctx context.Context, email, passwordHash string) (*user.User, error) {
	query := `
		INSERT INTO users (email_address, password_hash, is_daily, is_weekly, is_monthly)
		VALUES ($1, $2, TRUE, TRUE, TRUE)
		RETURNING id, email_address, password_hash, is_daily, is_weekly, is_monthly, date_created, date_modified
	`

	var u user.User
	err := r.db.QueryRowContext(ctx, query, email, passwordHash).Scan(
		&u.ID, &u.Email, &u.PasswordHash,
		&u.IsDaily, &u.IsWeekly, &u.IsMonthly,
		&u.CreatedAt, &u.ModifiedAt,
	)
	if err != nil {
		if isUniqueViolation(err, constraintUserEmail) {
			return nil, user.ErrEmailAlreadyRegistered
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &u, nil
}

// GetByEmail retrieves a user by email address
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	query := `
		SELECT id, email_address, password_hash, is_daily, is_weekly, is_monthly, date_created, date_modified
		FROM users
		WHERE email_address = $1
	`

	var u user.User
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&u.ID, &u.Email, &u.PasswordHash,
		&u.IsDaily, &u.IsWeekly, &u.IsMonthly,
		&u.CreatedAt, &u.ModifiedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, user.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &u, nil
}

// GetID returns the primary key of the user with the given email
func (r *UserRepository) GetID(ctx context.Context, email string) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `SELECT id FROM users WHERE email_address = $1`, email).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, user.ErrUserNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get user id: %w", err)
	}
	return id, nil
}
