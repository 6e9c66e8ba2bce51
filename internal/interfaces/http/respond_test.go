package http

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"emailsummary/internal/domain/user"
	"emailsummary/internal/shared/apperr"
	"emailsummary/internal/shared/messages"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"Bad credentials", apperr.Wrap(apperr.ErrUnauthorized, "login failed", user.ErrInvalidCredentials), http.StatusUnauthorized, messages.AccessDenied},
		{"Unknown session", apperr.Wrap(apperr.ErrUnauthorized, "no session", user.ErrSessionNotFound), http.StatusUnauthorized, messages.Unauthorized},
		{"Expired session", fmt.Errorf("resolve: %w", apperr.ErrSessionExpired), http.StatusUnauthorized, messages.Unauthorized},
		{"Duplicate email", user.ErrEmailAlreadyRegistered, http.StatusConflict, messages.EmailAlreadyRegistered},
		{"Bad request", apperr.BadRequest("period is required"), http.StatusBadRequest, messages.BadRequest},
		{"Storage", apperr.Storage("query failed", errors.New("pq: connection refused")), http.StatusInternalServerError, messages.InternalServerError},
		{"Unknown", errors.New("boom"), http.StatusInternalServerError, messages.InternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, msg := classify(tt.err)
			if status != tt.wantStatus || msg != tt.wantMsg {
				t.Errorf("classify() = (%d, %q), want (%d, %q)", status, msg, tt.wantStatus, tt.wantMsg)
			}
		})
	}
}
