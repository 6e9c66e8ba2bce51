package http

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"emailsummary/internal/domain/user"
	"emailsummary/internal/shared/messages"
)

// SessionService is what the auth endpoints need from the user domain.
type SessionService interface {
	Register(ctx context.Context, params user.RegisterParams) (*user.Session, error)
	Login(ctx context.Context, email, password string) (*user.Session, error)
	Logout(ctx context.Context, token string) error
}

// AuthHandler serves registration, login and logout
type AuthHandler struct {
	sessions   SessionService
	cookieName string
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(sessions SessionService, cookieName string) *AuthHandler {
	return &AuthHandler{sessions: sessions, cookieName: cookieName}
}

type RegisterRequest struct {
	EmailAddress string `json:"emailAddress"`
	Password     string `json:"password"`
	InviteCode   string `json:"inviteCode"`
}

type LoginRequest struct {
	EmailAddress string `json:"emailAddress"`
	Password     string `json:"password"`
}

// HandleRegister creates a user and opens a session
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("Error decoding register request: %v", err)
		http.Error(w, messages.BadRequest, http.StatusBadRequest)
		return
	}

	sess, err := h.sessions.Register(r.Context(), user.RegisterParams{
		Email:      req.EmailAddress,
		Password:   req.Password,
		InviteCode: req.InviteCode,
	})
	if err != nil {
		writeError(w, "register", err)
		return
	}

	h.setSessionCookie(w, sess)
	writeText(w, http.StatusCreated, messages.Created)
}

// HandleLogin verifies credentials and opens a session
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("Error decoding login request: %v", err)
		http.Error(w, messages.BadRequest, http.StatusBadRequest)
		return
	}

	sess, err := h.sessions.Login(r.Context(), req.EmailAddress, req.Password)
	if err != nil {
		writeError(w, "login", err)
		return
	}

	h.setSessionCookie(w, sess)
	writeText(w, http.StatusOK, messages.OK)
}

// HandleLogout deletes the session and clears the cookie
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	if cookie, err := r.Cookie(h.cookieName); err == nil {
		if err := h.sessions.Logout(r.Context(), cookie.Value); err != nil {
			writeError(w, "logout", err)
			return
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
	})
	writeText(w, http.StatusOK, messages.OK)
}

// setSessionCookie writes the session cookie. The Secure flag is added by the
// SecureCookies middleware when TLS is on.
func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, sess *user.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    sess.Token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Expires:  sess.ExpiresAt,
	})
}
