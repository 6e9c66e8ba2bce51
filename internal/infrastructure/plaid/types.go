package plaid

import (
	"time"

	"github.com/shopspring/decimal"

	"emailsummary/internal/domain/digest"
)

// Account is an account as returned by accounts/get and transactions/get
type Account struct {
	AccountID    string   `json:"account_id"`
	Name         string   `json:"name"`
	OfficialName string   `json:"official_name"`
	Mask         string   `json:"mask"`
	Type         string   `json:"type"`
	Subtype      string   `json:"subtype"`
	Balances     Balances `json:"balances"`
}

// Balances are nullable; an institution may report either, both or neither.
type Balances struct {
	Available       decimal.NullDecimal `json:"available"`
	Current         decimal.NullDecimal `json:"current"`
	ISOCurrencyCode string              `json:"iso_currency_code"`
}

func (a Account) toDigest() digest.UpstreamAccount {
	return digest.UpstreamAccount{
		AccountID: a.AccountID,
		Name:      a.Name,
		Mask:      a.Mask,
		Type:      a.Type,
		Current:   a.Balances.Current,
		Available: a.Balances.Available,
	}
}

// Transaction is one entry from transactions/get. Positive amounts are money
// leaving the account.
type Transaction struct {
	TransactionID string          `json:"transaction_id"`
	AccountID     string          `json:"account_id"`
	Amount        decimal.Decimal `json:"amount"`
	Date          string          `json:"date"`
	Name          string          `json:"name"`
	MerchantName  string          `json:"merchant_name"`
	Pending       bool            `json:"pending"`
}

func (t Transaction) toDigest() digest.UpstreamTransaction {
	return digest.UpstreamTransaction{
		AccountID: t.AccountID,
		Date:      t.Date,
		Name:      t.Name,
		Amount:    t.Amount,
		Pending:   t.Pending,
	}
}

// Item identifies a linked credential and its institution
type Item struct {
	ItemID        string `json:"item_id"`
	InstitutionID string `json:"institution_id"`
}

type transactionsGetResponse struct {
	Accounts          []Account     `json:"accounts"`
	Transactions      []Transaction `json:"transactions"`
	TotalTransactions int           `json:"total_transactions"`
	Item              Item          `json:"item"`
	RequestID         string        `json:"request_id"`
}

type itemGetResponse struct {
	Item   Item `json:"item"`
	Status struct {
		Transactions *struct {
			LastSuccessfulUpdate *time.Time `json:"last_successful_update"`
			LastFailedUpdate     *time.Time `json:"last_failed_update"`
		} `json:"transactions"`
	} `json:"status"`
	RequestID string `json:"request_id"`
}

type accountsGetResponse struct {
	Accounts  []Account `json:"accounts"`
	Item      Item      `json:"item"`
	RequestID string    `json:"request_id"`
}

type institutionsGetByIDResponse struct {
	Institution struct {
		InstitutionID string `json:"institution_id"`
		Name          string `json:"name"`
	} `json:"institution"`
	RequestID string `json:"request_id"`
}

type publicTokenExchangeResponse struct {
	AccessToken string `json:"access_token"`
	ItemID      string `json:"item_id"`
	RequestID   string `json:"request_id"`
}
