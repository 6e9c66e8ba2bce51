package user

import (
	"errors"
	"time"
)

// Domain errors
var (
	ErrUserNotFound           = errors.New("user not found")
	ErrEmailAlreadyRegistered = errors.New("email address already registered")
	ErrInvalidCredentials     = errors.New("invalid email or password")
	ErrInvalidInviteCode      = errors.New("invalid invite code")
	ErrSessionNotFound        = errors.New("session not found")
)

// User is a registered recipient. The cadence defaults predate per-account
// subscriptions and are kept only for the registration row.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	IsDaily      bool      `json:"isDaily"`
	IsWeekly     bool      `json:"isWeekly"`
	IsMonthly    bool      `json:"isMonthly"`
	CreatedAt    time.Time `json:"createdAt"`
	ModifiedAt   time.Time `json:"modifiedAt"`
}

// Session is a login session joined to its owner's email.
type Session struct {
	Token     string    `json:"-"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired reports whether the session has lapsed at now.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

type RegisterParams struct {
	Email      string
	Password   string
	InviteCode string
}
