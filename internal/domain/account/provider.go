package account

import "context"

// Provider is the account-aggregation API as the account domain needs it.
// Implemented by the Plaid client in the infrastructure layer.
type Provider interface {
	GetItemAccounts(ctx context.Context, accessToken string) (*ItemAccounts, error)
	GetInstitutionName(ctx context.Context, institutionID string) (string, error)
	ExchangePublicToken(ctx context.Context, publicToken string) (accessToken, itemID string, err error)
	CreateLinkToken(ctx context.Context, req LinkTokenRequest) (*LinkToken, error)
}
