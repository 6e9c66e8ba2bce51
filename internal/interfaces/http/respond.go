package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"emailsummary/internal/domain/user"
	"emailsummary/internal/shared/apperr"
	"emailsummary/internal/shared/messages"
)

// writeError maps an error to a status code and one of the fixed message strings.
// Internal detail is logged, never written.
func writeError(w http.ResponseWriter, op string, err error) {
	status, msg := classify(err)
	if status >= http.StatusInternalServerError {
		log.Printf("%s error: %v", op, err)
	} else {
		log.Printf("%s rejected (%d): %v", op, status, err)
	}
	http.Error(w, msg, status)
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, user.ErrInvalidCredentials):
		return http.StatusUnauthorized, messages.AccessDenied
	case errors.Is(err, apperr.ErrUnauthorized), errors.Is(err, apperr.ErrSessionExpired):
		return http.StatusUnauthorized, messages.Unauthorized
	case errors.Is(err, user.ErrEmailAlreadyRegistered):
		return http.StatusConflict, messages.EmailAlreadyRegistered
	case errors.Is(err, apperr.ErrBadRequest):
		return http.StatusBadRequest, messages.BadRequest
	default:
		return http.StatusInternalServerError, messages.InternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

func writeText(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	w.Write([]byte(msg))
}

func methodNotAllowed(w http.ResponseWriter) {
	http.Error(w, messages.MethodNotAllowed, http.StatusMethodNotAllowed)
}
