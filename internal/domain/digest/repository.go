package digest

import "context"

// Repository is the slice of storage the digest run needs.
type Repository interface {
	// GetMailerData returns active linkages ordered by email then institution name.
	GetMailerData(ctx context.Context, filter MailerFilter) ([]MailerRow, error)

	// MarkAccessTokenExpired flags a credential the provider has revoked.
	MarkAccessTokenExpired(ctx context.Context, token string) error
}

// SessionResolver maps a session token to its owner's email.
type SessionResolver interface {
	ResolveSession(ctx context.Context, token string) (string, error)
}
