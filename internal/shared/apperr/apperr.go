// Package apperr defines the error kinds shared across layers.
// HTTP handlers map kinds to status codes; everything else just wraps and returns.
package apperr

import "errors"

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrSessionExpired = errors.New("client session has expired")
	ErrBadRequest     = errors.New("bad request")
	ErrStorage        = errors.New("storage error")
	ErrUpstream       = errors.New("upstream provider error")
	ErrMailTransport  = errors.New("mail transport error")
)

// Error attaches a kind to an underlying cause. errors.Is matches both.
type Error struct {
	Kind  error
	Msg   string
	Cause error
}

// Wrap returns an error of the given kind. cause may be nil.
func Wrap(kind error, msg string, cause error) error {
	return &Error{Kind: kind, Msg: msg, Cause: cause}
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return e.Msg
	}
	return e.Msg + ": " + e.Cause.Error()
}

func (e *Error) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

// Storage wraps a persistence failure.
func Storage(msg string, cause error) error {
	return Wrap(ErrStorage, msg, cause)
}

// Upstream wraps an aggregation provider failure.
func Upstream(msg string, cause error) error {
	return Wrap(ErrUpstream, msg, cause)
}

// BadRequest builds a validation error with no underlying cause.
func BadRequest(msg string) error {
	return Wrap(ErrBadRequest, msg, nil)
}
