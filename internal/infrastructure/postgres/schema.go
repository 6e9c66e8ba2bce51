package postgres

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/lib/pq"
)

const schemaSQL = `
	CREATE TABLE IF NOT EXISTS users (
	    id BIGSERIAL PRIMARY KEY,
	    email_address TEXT NOT NULL UNIQUE,
	    password_hash TEXT NOT NULL,
	    is_daily BOOLEAN NOT NULL DEFAULT TRUE,
	    is_weekly BOOLEAN NOT NULL DEFAULT TRUE,
	    is_monthly BOOLEAN NOT NULL DEFAULT TRUE,
	    date_created TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
	    date_modified TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS sessions (
	    id BIGSERIAL PRIMARY KEY,
	    user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	    session_token TEXT NOT NULL UNIQUE,
	    date_created TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
	    expires_at TIMESTAMP WITH TIME ZONE NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions(expires_at);

	CREATE TABLE IF NOT EXISTS access_tokens (
	    id BIGSERIAL PRIMARY KEY,
	    user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	    uuid TEXT NOT NULL UNIQUE,
	    access_token TEXT NOT NULL,
	    item_id TEXT NOT NULL,
	    is_active BOOLEAN NOT NULL DEFAULT TRUE,
	    is_expired BOOLEAN NOT NULL DEFAULT FALSE,
	    date_created TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_access_tokens_user_id ON access_tokens(user_id);

	CREATE TABLE IF NOT EXISTS institutions (
	    id BIGSERIAL PRIMARY KEY,
	    institution_id TEXT NOT NULL UNIQUE,
	    name TEXT,
	    date_created TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS accounts (
	    id BIGSERIAL PRIMARY KEY,
	    uuid TEXT NOT NULL UNIQUE,
	    access_token_id BIGINT NOT NULL REFERENCES access_tokens(id) ON DELETE CASCADE,
	    account_id TEXT NOT NULL UNIQUE,
	    name TEXT,
	    official_name TEXT,
	    mask TEXT,
	    type TEXT,
	    subtype TEXT,
	    institution_id BIGINT REFERENCES institutions(id),
	    date_created TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_accounts_access_token_id ON accounts(access_token_id);

	CREATE TABLE IF NOT EXISTS subscriptions (
	    id BIGSERIAL PRIMARY KEY,
	    user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	    access_token_id BIGINT NOT NULL REFERENCES access_tokens(id) ON DELETE CASCADE,
	    account_id BIGINT NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
	    is_daily BOOLEAN NOT NULL DEFAULT FALSE,
	    is_weekly BOOLEAN NOT NULL DEFAULT FALSE,
	    is_monthly BOOLEAN NOT NULL DEFAULT FALSE,
	    date_created TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
	    date_modified TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
	    UNIQUE (user_id, access_token_id, account_id)
	);
`

// Migrate creates any missing tables. It is safe to run repeatedly.
func (db *DB) Migrate(ctx context.Context) error {
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Println("Database: schema is up to date")
	return nil
}

// Unique constraint names as Postgres derives them from the schema above.
const (
	constraintUserEmail      = "users_email_address_key"
	constraintSessionToken   = "sessions_session_token_key"
	constraintTokenUUID      = "access_tokens_uuid_key"
	constraintAccountUUID    = "accounts_uuid_key"
	uniqueViolationErrorCode = "23505"
)

// isUniqueViolation reports whether err is a unique violation on constraint.
// An empty constraint matches any unique violation.
func isUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	if pqErr.Code != uniqueViolationErrorCode {
		return false
	}
	return constraint == "" || pqErr.Constraint == constraint
}

// maxKeyAttempts bounds the re-roll loop for randomly generated keys.
const maxKeyAttempts = 5
