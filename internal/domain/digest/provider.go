package digest

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionsRequest asks for one credential's transactions over an inclusive date range.
type TransactionsRequest struct {
	AccessToken string
	StartDate   string
	EndDate     string
	AccountIDs  []string
}

// UpstreamAccount is an account with balances as reported alongside transactions.
type UpstreamAccount struct {
	AccountID string
	Name      string
	Mask      string
	Type      string
	Current   decimal.NullDecimal
	Available decimal.NullDecimal
}

// UpstreamTransaction carries the provider's own polarity: positive is money out.
type UpstreamTransaction struct {
	AccountID string
	Date      string
	Name      string
	Amount    decimal.Decimal
	Pending   bool
}

type TransactionsResult struct {
	Accounts     []UpstreamAccount
	Transactions []UpstreamTransaction
}

// ItemStatus is the provider's view of a credential's last refresh.
type ItemStatus struct {
	LastSuccessfulUpdate *time.Time
}

// Provider is the account-aggregation API as the digest needs it.
// Implemented by the Plaid client in the infrastructure layer; a credential the
// provider has revoked surfaces as an error matching account.ErrItemLoginRequired.
type Provider interface {
	GetTransactions(ctx context.Context, req TransactionsRequest) (*TransactionsResult, error)
	GetItemStatus(ctx context.Context, accessToken string) (*ItemStatus, error)
}
