// Package messages holds the fixed response strings written at the HTTP boundary.
// Internal error detail never goes into a response body; one of these does.
package messages

const (
	AccessDenied           = "Access Denied"
	BadRequest             = "Bad Request"
	Created                = "Created"
	InternalServerError    = "Internal Server Error"
	MethodNotAllowed       = "Method Not Allowed"
	NoContent              = "No Content"
	OK                     = "OK"
	RateLimitExceeded      = "Rate Limit Exceeded"
	Unauthorized           = "Unauthorized"
	EmailAlreadyRegistered = "Email Address Already Registered"
	SessionHasExpired      = "Client Session Has Expired"
)
