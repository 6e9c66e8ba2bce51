package middleware

import (
	"context"
	"errors"
	"log"
	"net/http"

	"emailsummary/internal/shared/apperr"
	"emailsummary/internal/shared/messages"
)

type ContextKey string

const EmailKey ContextKey = "email"

// SessionResolver maps a session token to the email of the user that owns it.
type SessionResolver interface {
	ResolveSession(ctx context.Context, token string) (string, error)
}

// Auth requires a live session cookie and stores the caller's email in the request context.
func Auth(resolver SessionResolver, cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(cookieName)
			if err != nil || cookie.Value == "" {
				http.Error(w, messages.Unauthorized, http.StatusUnauthorized)
				return
			}

			email, err := resolver.ResolveSession(r.Context(), cookie.Value)
			switch {
			case err == nil:
			case errors.Is(err, apperr.ErrSessionExpired):
				log.Printf("Auth: expired session on %s %s", r.Method, r.URL.Path)
				http.Error(w, messages.SessionHasExpired, http.StatusUnauthorized)
				return
			case errors.Is(err, apperr.ErrUnauthorized):
				log.Printf("Auth: unknown session on %s %s", r.Method, r.URL.Path)
				http.Error(w, messages.Unauthorized, http.StatusUnauthorized)
				return
			default:
				log.Printf("Auth: failed to resolve session: %v", err)
				http.Error(w, messages.InternalServerError, http.StatusInternalServerError)
				return
			}

			ctx := context.WithValue(r.Context(), EmailKey, email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// EmailFromContext returns the email stored by Auth.
func EmailFromContext(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(EmailKey).(string)
	return email, ok && email != ""
}
