package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"emailsummary/internal/domain/user"
	"emailsummary/internal/shared/apperr"
	"emailsummary/internal/shared/auth"
)

// SessionRepository implements the user.SessionRepository interface for PostgreSQL
type SessionRepository struct {
	db       *DB
	now      func() time.Time
	newToken func() (string, error)
}

// NewSessionRepository creates a new PostgreSQL session repository
func NewSessionRepository(db *DB) *SessionRepository {
	return &SessionRepository{
		db:       db,
		now:      time.Now,
		newToken: auth.GenerateSessionToken,
	}
}

// CreateSession stores a fresh token for email. A token collision re-rolls.
func (r *SessionRepository) CreateSession(ctx context.Context, email string, expiresAt time.Time) (*user.Session, error) {
	query := `
		INSERT INTO sessions (user_id, session_token, expires_at)
		SELECT id, $2, $3 FROM users WHERE email_address = $1
		RETURNING session_token, date_created, expires_at
	`

	for attempt := 0; attempt < maxKeyAttempts; attempt++ {
		token, err := r.newToken()
		if err != nil {
			return nil, fmt.Errorf("failed to generate session token: %w", err)
		}

		sess := user.Session{Email: email}
		err = r.db.QueryRowContext(ctx, query, email, token, expiresAt).Scan(
			&sess.Token, &sess.CreatedAt, &sess.ExpiresAt,
		)
		switch {
		case err == nil:
			return &sess, nil
		case errors.Is(err, sql.ErrNoRows):
			return nil, user.ErrUserNotFound
		case isUniqueViolation(err, constraintSessionToken):
			continue
		default:
			return nil, fmt.Errorf("failed to create session: %w", err)
		}
	}

	return nil, fmt.Errorf("failed to create session: token collided %d times", maxKeyAttempts)
}

// GetSessionAndUser resolves a token to its session and owner. Lapsed sessions
// are reported as expired, not deleted; the reaper removes them.
func (r *SessionRepository) GetSessionAndUser(ctx context.Context, token string) (*user.Session, error) {
	query := `
		SELECT s.session_token, u.email_address, s.date_created, s.expires_at
		FROM sessions s
		INNER JOIN users u ON u.id = s.user_id
		WHERE s.session_token = $1
	`

	var sess user.Session
	err := r.db.QueryRowContext(ctx, query, token).Scan(
		&sess.Token, &sess.Email, &sess.CreatedAt, &sess.ExpiresAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.Wrap(apperr.ErrUnauthorized, "unknown session", user.ErrSessionNotFound)
	}
	if err != nil {
		return nil, apperr.Storage("failed to get session", err)
	}

	if sess.Expired(r.now()) {
		return nil, apperr.Wrap(apperr.ErrSessionExpired, "session expired", nil)
	}

	return &sess, nil
}

// DeleteSession removes a session by token
func (r *SessionRepository) DeleteSession(ctx context.Context, token string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE session_token = $1`, token)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return user.ErrSessionNotFound
	}

	return nil
}

// DeleteExpiredSessions removes every session that lapsed before now.
func (r *SessionRepository) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return rows, nil
}
