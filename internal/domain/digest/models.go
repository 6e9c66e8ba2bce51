package digest

import (
	"github.com/shopspring/decimal"

	"emailsummary/internal/domain/subscription"
)

// MailerFilter narrows GetMailerData. Empty Email means every user; empty
// Cadence means every active linkage regardless of subscription flags.
type MailerFilter struct {
	Email   string
	Cadence subscription.Cadence
}

// SignedTransaction is a transaction in the net-outflow convention.
type SignedTransaction struct {
	Date    string
	Name    string
	Amount  decimal.Decimal
	Pending bool
}

// AccountDigest is the structured result for one account over a window.
type AccountDigest struct {
	AccountID    string
	Name         string
	Mask         string
	Type         string
	Balance      decimal.NullDecimal
	Transactions []SignedTransaction
	Net          decimal.Decimal
	Unavailable  bool
}

// InstitutionDigest groups the accounts reached through one credential.
type InstitutionDigest struct {
	InstitutionName string
	RefreshNotice   string
	NeedsReauth     bool
	Accounts        []AccountDigest
}

// RecipientDigest is everything rendered into one email.
type RecipientDigest struct {
	Email        string
	Window       Window
	Institutions []InstitutionDigest
}

// Empty reports whether there is nothing to send.
func (d *RecipientDigest) Empty() bool {
	return len(d.Institutions) == 0
}

// Result summarizes one dispatch.
type Result struct {
	Window     Window
	Recipients int
	Sent       int
	Failures   []RecipientFailure
}

// RecipientFailure records a recipient whose digest could not be built or sent.
type RecipientFailure struct {
	Email string
	Err   error
}

// Failed reports whether any recipient failed.
func (r *Result) Failed() bool {
	return len(r.Failures) > 0
}
