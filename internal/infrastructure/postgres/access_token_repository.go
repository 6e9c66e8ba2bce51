package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"emailsummary/internal/domain/account"
)

const accessTokenColumns = `
	t.id, t.uuid, t.user_id, u.email_address, t.access_token, t.item_id, t.is_active, t.is_expired, t.date_created
`

func scanAccessToken(row interface{ Scan(...any) error }) (*account.AccessToken, error) {
	var tok account.AccessToken
	err := row.Scan(
		&tok.ID, &tok.UUID, &tok.UserID, &tok.Email,
		&tok.Token, &tok.ItemID, &tok.IsActive, &tok.IsExpired, &tok.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &tok, nil
}

// CreateAccessToken stores a credential for email under a fresh uuid.
func (r *AccountRepository) CreateAccessToken(ctx context.Context, email, token, itemID string) (*account.AccessToken, error) {
	query := `
		WITH inserted AS (
			INSERT INTO access_tokens (user_id, uuid, access_token, item_id, is_active, is_expired)
			SELECT id, $2, $3, $4, TRUE, FALSE FROM users WHERE email_address = $1
			RETURNING *
		)
		SELECT ` + accessTokenColumns + `
		FROM inserted t
		INNER JOIN users u ON u.id = t.user_id
	`

	for attempt := 0; attempt < maxKeyAttempts; attempt++ {
		tok, err := scanAccessToken(r.db.QueryRowContext(ctx, query, email, r.newUUID(), token, itemID))
		switch {
		case err == nil:
			return tok, nil
		case errors.Is(err, sql.ErrNoRows):
			return nil, fmt.Errorf("failed to create access token: no user %q", email)
		case isUniqueViolation(err, constraintTokenUUID):
			continue
		default:
			return nil, fmt.Errorf("failed to create access token: %w", err)
		}
	}

	return nil, fmt.Errorf("failed to create access token: uuid collided %d times", maxKeyAttempts)
}

// ListAccessTokens returns the active credentials of email, oldest first.
func (r *AccountRepository) ListAccessTokens(ctx context.Context, email string) ([]*account.AccessToken, error) {
	query := `
		SELECT ` + accessTokenColumns + `
		FROM access_tokens t
		INNER JOIN users u ON u.id = t.user_id
		WHERE u.email_address = $1 AND t.is_active = TRUE
		ORDER BY t.date_created, t.id
	`

	rows, err := r.db.QueryContext(ctx, query, email)
	if err != nil {
		return nil, fmt.Errorf("failed to list access tokens: %w", err)
	}
	defer rows.Close()

	tokens := make([]*account.AccessToken, 0)
	for rows.Next() {
		tok, err := scanAccessToken(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan access token: %w", err)
		}
		tokens = append(tokens, tok)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating access tokens: %w", err)
	}

	return tokens, nil
}

// GetAccessTokenByUUID retrieves a credential by its external identifier
func (r *AccountRepository) GetAccessTokenByUUID(ctx context.Context, uuid string) (*account.AccessToken, error) {
	query := `
		SELECT ` + accessTokenColumns + `
		FROM access_tokens t
		INNER JOIN users u ON u.id = t.user_id
		WHERE t.uuid = $1
	`

	tok, err := scanAccessToken(r.db.QueryRowContext(ctx, query, uuid))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, account.ErrAccessTokenNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get access token: %w", err)
	}
	return tok, nil
}

// DeactivateAccessToken soft-deletes a credential. Only the owner may do so.
func (r *AccountRepository) DeactivateAccessToken(ctx context.Context, uuid, email string) error {
	query := `
		UPDATE access_tokens t
		SET is_active = FALSE
		FROM users u
		WHERE u.id = t.user_id AND t.uuid = $1 AND u.email_address = $2
	`

	result, err := r.db.ExecContext(ctx, query, uuid, email)
	if err != nil {
		return fmt.Errorf("failed to deactivate access token: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return account.ErrAccessTokenNotFound
	}

	return nil
}

// MarkAccessTokenExpired flags a credential the provider has revoked
func (r *AccountRepository) MarkAccessTokenExpired(ctx context.Context, token string) error {
	return markAccessTokenExpired(ctx, r.db, token)
}

func markAccessTokenExpired(ctx context.Context, db *DB, token string) error {
	result, err := db.ExecContext(ctx, `UPDATE access_tokens SET is_expired = TRUE WHERE access_token = $1`, token)
	if err != nil {
		return fmt.Errorf("failed to mark access token expired: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return account.ErrAccessTokenNotFound
	}

	return nil
}
