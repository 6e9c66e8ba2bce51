package account

import "context"

// Repository defines the interface for credential, institution and account data access.
// This interface is defined in the domain layer, but implemented in the infrastructure layer
type Repository interface {
	// CreateAccessToken stores a credential for email, re-rolling the uuid on collision.
	CreateAccessToken(ctx context.Context, email, token, itemID string) (*AccessToken, error)

	// ListAccessTokens returns the active credentials of email.
	ListAccessTokens(ctx context.Context, email string) ([]*AccessToken, error)

	GetAccessTokenByUUID(ctx context.Context, uuid string) (*AccessToken, error)

	// DeactivateAccessToken soft-deletes a credential owned by email.
	DeactivateAccessToken(ctx context.Context, uuid, email string) error

	// MarkAccessTokenExpired flags a credential the provider has revoked.
	MarkAccessTokenExpired(ctx context.Context, token string) error

	GetInstitution(ctx context.Context, institutionID string) (*Institution, error)

	// CreateInstitution is idempotent on institutionID.
	CreateInstitution(ctx context.Context, institutionID, name string) (*Institution, error)

	// ListAccounts returns the cached accounts of a credential.
	ListAccounts(ctx context.Context, token string) ([]*Account, error)

	// CreateAccount caches an account, re-rolling the uuid on collision.
	CreateAccount(ctx context.Context, params CreateAccountParams) (*Account, error)
}
