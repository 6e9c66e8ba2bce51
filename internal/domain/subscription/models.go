package subscription

import (
	"errors"
	"time"
)

// Domain errors
var (
	ErrTargetNotFound = errors.New("access token or account not found for user")
	ErrInvalidInput   = errors.New("invalid input")
)

// Cadence names one of the three digest schedules.
type Cadence string

const (
	CadenceDaily   Cadence = "daily"
	CadenceWeekly  Cadence = "weekly"
	CadenceMonthly Cadence = "monthly"
)

// Column returns the subscriptions column holding the flag for c.
func (c Cadence) Column() (string, bool) {
	switch c {
	case CadenceDaily:
		return "is_daily", true
	case CadenceWeekly:
		return "is_weekly", true
	case CadenceMonthly:
		return "is_monthly", true
	default:
		return "", false
	}
}

// Subscription ties a user, a credential and an account to three cadence flags.
// At most one exists per (user, credential, account).
type Subscription struct {
	ID              int64     `json:"-"`
	AccessTokenUUID string    `json:"accessTokenUuid"`
	AccountUUID     string    `json:"accountUuid"`
	IsDaily         bool      `json:"isDaily"`
	IsWeekly        bool      `json:"isWeekly"`
	IsMonthly       bool      `json:"isMonthly"`
	CreatedAt       time.Time `json:"createdAt"`
	ModifiedAt      time.Time `json:"modifiedAt"`
}

// UpsertParams contains parameters for creating or overwriting a subscription
type UpsertParams struct {
	Email           string
	AccessTokenUUID string
	AccountUUID     string
	IsDaily         bool
	IsWeekly        bool
	IsMonthly       bool
}

// Validate validates the upsert parameters
func (p UpsertParams) Validate() error {
	if p.Email == "" {
		return errors.New("email is required")
	}
	if p.AccessTokenUUID == "" {
		return errors.New("accessTokenUuid is required")
	}
	if p.AccountUUID == "" {
		return errors.New("accountUuid is required")
	}
	return nil
}
