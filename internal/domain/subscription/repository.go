package subscription

import "context"

// Repository defines the interface for subscription data access
type Repository interface {
	// Upsert inserts or overwrites the flags for (user, credential, account).
	// Fails with ErrTargetNotFound when the credential or account is not the user's.
	Upsert(ctx context.Context, params UpsertParams) (*Subscription, error)

	// ListForAccount returns the user's subscriptions on one account.
	ListForAccount(ctx context.Context, email, accountUUID string) ([]*Subscription, error)
}
