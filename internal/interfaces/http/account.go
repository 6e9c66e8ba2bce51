package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"emailsummary/internal/domain/account"
	"emailsummary/internal/shared/messages"
	"emailsummary/internal/shared/middleware"
)

// AccountService is what the account endpoints need from the account domain.
type AccountService interface {
	ListLinkedAccounts(ctx context.Context, email string) ([]*account.LinkedInstitution, error)
	LinkItem(ctx context.Context, email, publicToken string) (*account.AccessToken, error)
	CreateLinkToken(ctx context.Context, email, accessTokenUUID string) (*account.LinkToken, error)
	Unlink(ctx context.Context, email, accessTokenUUID string) error
}

// AccountHandler serves linked accounts and the link flow
type AccountHandler struct {
	accounts AccountService
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(accounts AccountService) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

type AccessTokenRequest struct {
	PublicToken string `json:"public_token"`
}

type LinkTokenRequest struct {
	AccessTokenUUID string `json:"access_token_uuid"`
}

// HandleListAccounts returns every linked institution of the caller with its accounts
func (h *AccountHandler) HandleListAccounts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	email, ok := middleware.EmailFromContext(r.Context())
	if !ok {
		http.Error(w, messages.Unauthorized, http.StatusUnauthorized)
		return
	}

	linked, err := h.accounts.ListLinkedAccounts(r.Context(), email)
	if err != nil {
		writeError(w, "accounts", err)
		return
	}

	writeJSON(w, http.StatusOK, linked)
}

// HandleAccessToken links a new credential (POST) or unlinks one (DELETE)
func (h *AccountHandler) HandleAccessToken(w http.ResponseWriter, r *http.Request) {
	email, ok := middleware.EmailFromContext(r.Context())
	if !ok {
		http.Error(w, messages.Unauthorized, http.StatusUnauthorized)
		return
	}

	switch r.Method {
	case http.MethodPost:
		h.handleLinkItem(w, r, email)
	case http.MethodDelete:
		h.handleUnlink(w, r, email)
	default:
		methodNotAllowed(w)
	}
}

func (h *AccountHandler) handleLinkItem(w http.ResponseWriter, r *http.Request, email string) {
	var req AccessTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("Error decoding access token request: %v", err)
		http.Error(w, messages.BadRequest, http.StatusBadRequest)
		return
	}

	tok, err := h.accounts.LinkItem(r.Context(), email, req.PublicToken)
	if err != nil {
		writeError(w, "access_token", err)
		return
	}

	writeJSON(w, http.StatusCreated, tok)
}

func (h *AccountHandler) handleUnlink(w http.ResponseWriter, r *http.Request, email string) {
	if err := h.accounts.Unlink(r.Context(), email, r.URL.Query().Get("uuid")); err != nil {
		writeError(w, "access_token", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleCreateLinkToken starts a link flow, in update mode when a credential uuid is given
func (h *AccountHandler) HandleCreateLinkToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	email, ok := middleware.EmailFromContext(r.Context())
	if !ok {
		http.Error(w, messages.Unauthorized, http.StatusUnauthorized)
		return
	}

	// The body is optional.
	var req LinkTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		log.Printf("Error decoding link token request: %v", err)
		http.Error(w, messages.BadRequest, http.StatusBadRequest)
		return
	}

	lt, err := h.accounts.CreateLinkToken(r.Context(), email, req.AccessTokenUUID)
	if err != nil {
		writeError(w, "create_link_token", err)
		return
	}

	writeJSON(w, http.StatusOK, lt)
}
