package user

import (
	"context"
	"time"
)

// Repository defines the interface for user data access
type Repository interface {
	// Create inserts a user; fails with ErrEmailAlreadyRegistered on a duplicate email.
	Create(ctx context.Context, email, passwordHash string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetID(ctx context.Context, email string) (int64, error)
}

// SessionRepository defines the interface for session data access
type SessionRepository interface {
	// CreateSession stores a fresh token for email, re-rolling on collision.
	CreateSession(ctx context.Context, email string, expiresAt time.Time) (*Session, error)

	// GetSessionAndUser fails with apperr.ErrUnauthorized when no row matches
	// and apperr.ErrSessionExpired when the row has lapsed.
	GetSessionAndUser(ctx context.Context, token string) (*Session, error)

	DeleteSession(ctx context.Context, token string) error
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}
