package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"emailsummary/internal/domain/subscription"
)

// SubscriptionRepository implements the subscription.Repository interface for PostgreSQL
type SubscriptionRepository struct {
	db *DB
}

// NewSubscriptionRepository creates a new PostgreSQL subscription repository
func NewSubscriptionRepository(db *DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

// Upsert writes the cadence flags for (user, credential, account). The
// credential must belong to the user and the account to the credential.
func (r *SubscriptionRepository) Upsert(ctx context.Context, params subscription.UpsertParams) (*subscription.Subscription, error) {
	query := `
		INSERT INTO subscriptions (user_id, access_token_id, account_id, is_daily, is_weekly, is_monthly)
		SELECT u.id, t.id, a.id, $4, $5, $6
		FROM users u
		INNER JOIN access_tokens t ON t.user_id = u.id
		INNER JOIN accounts a ON a.access_token_id = t.id
		WHERE u.email_address = $1 AND t.uuid = $2 AND a.uuid = $3 AND t.is_active = TRUE
		ON CONFLICT (user_id, access_token_id, account_id)
		DO UPDATE SET
			is_daily = EXCLUDED.is_daily,
			is_weekly = EXCLUDED.is_weekly,
			is_monthly = EXCLUDED.is_monthly,
			date_modified = NOW()
		RETURNING id, is_daily, is_weekly, is_monthly, date_created, date_modified
	`

	sub := subscription.Subscription{
		AccessTokenUUID: params.AccessTokenUUID,
		AccountUUID:     params.AccountUUID,
	}
	err := r.db.QueryRowContext(
		ctx, query,
		params.Email, params.AccessTokenUUID, params.AccountUUID,
		params.IsDaily, params.IsWeekly, params.IsMonthly,
	).Scan(&sub.ID, &sub.IsDaily, &sub.IsWeekly, &sub.IsMonthly, &sub.CreatedAt, &sub.ModifiedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, subscription.ErrTargetNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to upsert subscription: %w", err)
	}

	return &sub, nil
}

// ListForAccount returns the user's subscriptions on one account
func (r *SubscriptionRepository) ListForAccount(ctx context.Context, email, accountUUID string) ([]*subscription.Subscription, error) {
	query := `
		SELECT s.id, t.uuid, a.uuid, s.is_daily, s.is_weekly, s.is_monthly, s.date_created, s.date_modified
		FROM subscriptions s
		INNER JOIN users u ON u.id = s.user_id
		INNER JOIN access_tokens t ON t.id = s.access_token_id
		INNER JOIN accounts a ON a.id = s.account_id
		WHERE u.email_address = $1 AND a.uuid = $2
		ORDER BY s.id
	`

	rows, err := r.db.QueryContext(ctx, query, email, accountUUID)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	defer rows.Close()

	subs := make([]*subscription.Subscription, 0)
	for rows.Next() {
		var sub subscription.Subscription
		err := rows.Scan(
			&sub.ID, &sub.AccessTokenUUID, &sub.AccountUUID,
			&sub.IsDaily, &sub.IsWeekly, &sub.IsMonthly,
			&sub.CreatedAt, &sub.ModifiedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan subscription: %w", err)
		}
		subs = append(subs, &sub)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating subscriptions: %w", err)
	}

	return subs, nil
}
