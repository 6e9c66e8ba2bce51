package account

import (
	"errors"
	"time"
)

// Domain errors
var (
	ErrAccessTokenNotFound = errors.New("access token not found")
	ErrInstitutionNotFound = errors.New("institution not found")
	ErrAccountNotFound     = errors.New("account not found")

	// ErrItemLoginRequired means the provider revoked a credential and the
	// user must re-authenticate through the link flow.
	ErrItemLoginRequired = errors.New("item login required")
)

// AccessToken is a stored upstream credential. Token is never exposed; UUID is
// the externally addressable identifier.
type AccessToken struct {
	ID        int64     `json:"-"`
	UUID      string    `json:"uuid"`
	UserID    int64     `json:"-"`
	Email     string    `json:"-"`
	Token     string    `json:"-"`
	ItemID    string    `json:"itemId"`
	IsActive  bool      `json:"isActive"`
	IsExpired bool      `json:"isExpired"`
	CreatedAt time.Time `json:"createdAt"`
}

// Institution is cached on first encounter; its name is never refreshed.
type Institution struct {
	ID            int64  `json:"-"`
	InstitutionID string `json:"institutionId"`
	Name          string `json:"name"`
}

// Account is a locally cached upstream account, joined to its institution.
type Account struct {
	ID              int64     `json:"-"`
	UUID            string    `json:"uuid"`
	AccountID       string    `json:"accountId"`
	AccessTokenID   int64     `json:"-"`
	InstitutionID   string    `json:"institutionId"`
	InstitutionName string    `json:"institutionName"`
	Name            string    `json:"name"`
	OfficialName    string    `json:"officialName,omitempty"`
	Mask            string    `json:"mask,omitempty"`
	Type            string    `json:"type"`
	Subtype         string    `json:"subtype,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

// CreateAccountParams contains parameters for caching an upstream account
type CreateAccountParams struct {
	AccessTokenID int64
	InstitutionID int64
	AccountID     string
	Name          string
	OfficialName  string
	Mask          string
	Type          string
	Subtype       string
}

// LinkedInstitution is one active credential with its accounts, as shown to the owner.
type LinkedInstitution struct {
	AccessTokenUUID string     `json:"accessTokenUuid"`
	InstitutionID   string     `json:"institutionId"`
	InstitutionName string     `json:"institutionName"`
	IsExpired       bool       `json:"isExpired"`
	Accounts        []*Account `json:"accounts"`
}

// UpstreamAccount is an account as reported by the aggregation provider.
type UpstreamAccount struct {
	AccountID    string
	Name         string
	OfficialName string
	Mask         string
	Type         string
	Subtype      string
}

// ItemAccounts is the provider's view of one item.
type ItemAccounts struct {
	ItemID        string
	InstitutionID string
	Accounts      []UpstreamAccount
}

// LinkTokenRequest asks the provider for a link token. AccessToken is set
// only to re-authenticate an existing item.
type LinkTokenRequest struct {
	ClientUserID string
	AccessToken  string
}

type LinkToken struct {
	LinkToken  string `json:"link_token"`
	Expiration string `json:"expiration"`
	RequestID  string `json:"request_id"`
}
