package postgres

import (
	"context"
	"fmt"
	"strings"

	"emailsummary/internal/domain/digest"
)

// DigestRepository implements the digest.Repository interface for PostgreSQL
type DigestRepository struct {
	db *DB
}

// NewDigestRepository creates a new PostgreSQL digest repository
func NewDigestRepository(db *DB) *DigestRepository {
	return &DigestRepository{db: db}
}

// GetMailerData returns one row per active (recipient, credential, account)
// linkage, ordered by email then institution name.
func (r *DigestRepository) GetMailerData(ctx context.Context, filter digest.MailerFilter) ([]digest.MailerRow, error) {
	query, args, err := mailerDataQuery(filter)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get mailer data: %w", err)
	}
	defer rows.Close()

	result := make([]digest.MailerRow, 0)
	for rows.Next() {
		var row digest.MailerRow
		if err := rows.Scan(&row.Email, &row.InstitutionName, &row.AccessToken, &row.AccountID); err != nil {
			return nil, fmt.Errorf("failed to scan mailer row: %w", err)
		}
		result = append(result, row)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating mailer rows: %w", err)
	}

	return result, nil
}

// MarkAccessTokenExpired flags a credential the provider has revoked
func (r *DigestRepository) MarkAccessTokenExpired(ctx context.Context, token string) error {
	return markAccessTokenExpired(ctx, r.db, token)
}

// mailerDataQuery builds the join for filter. The cadence column name comes
// from a fixed whitelist, never from input.
func mailerDataQuery(filter digest.MailerFilter) (string, []any, error) {
	var b strings.Builder
	b.WriteString(`
		SELECT u.email_address, COALESCE(i.name, ''), t.access_token, a.account_id
		FROM access_tokens t
		INNER JOIN users u ON u.id = t.user_id
		INNER JOIN accounts a ON a.access_token_id = t.id
		LEFT JOIN institutions i ON i.id = a.institution_id`)

	if filter.Cadence != "" {
		column, ok := filter.Cadence.Column()
		if !ok {
			return "", nil, fmt.Errorf("unknown cadence %q", filter.Cadence)
		}
		b.WriteString(`
		INNER JOIN subscriptions s
			ON s.user_id = u.id AND s.access_token_id = t.id AND s.account_id = a.id AND s.` + column + ` = TRUE`)
	}

	b.WriteString(`
		WHERE t.is_active = TRUE`)

	var args []any
	if filter.Email != "" {
		args = append(args, filter.Email)
		b.WriteString(`
		AND u.email_address = $1`)
	}

	b.WriteString(`
		ORDER BY u.email_address, i.name, t.id, a.id`)

	return b.String(), args, nil
}
