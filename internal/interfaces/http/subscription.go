package http

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"emailsummary/internal/domain/subscription"
	"emailsummary/internal/shared/messages"
	"emailsummary/internal/shared/middleware"
)

// SubscriptionService is what the subscription endpoints need from the subscription domain.
type SubscriptionService interface {
	Subscribe(ctx context.Context, params subscription.UpsertParams) (*subscription.Subscription, error)
	ListForAccount(ctx context.Context, email, accountUUID string) ([]*subscription.Subscription, error)
}

// SubscriptionHandler serves per-account cadence flags
type SubscriptionHandler struct {
	subscriptions SubscriptionService
}

// NewSubscriptionHandler creates a new subscription handler
func NewSubscriptionHandler(subscriptions SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptions: subscriptions}
}

type SubscriptionRequest struct {
	AccessTokenUUID string `json:"accessTokenUuid"`
	AccountUUID     string `json:"accountUuid"`
	IsDaily         bool   `json:"isDaily"`
	IsWeekly        bool   `json:"isWeekly"`
	IsMonthly       bool   `json:"isMonthly"`
}

// HandleSubscriptions lists (GET) or upserts (POST) the caller's subscriptions
func (h *SubscriptionHandler) HandleSubscriptions(w http.ResponseWriter, r *http.Request) {
	email, ok := middleware.EmailFromContext(r.Context())
	if !ok {
		http.Error(w, messages.Unauthorized, http.StatusUnauthorized)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.handleList(w, r, email)
	case http.MethodPost:
		h.handleUpsert(w, r, email)
	default:
		methodNotAllowed(w)
	}
}

func (h *SubscriptionHandler) handleList(w http.ResponseWriter, r *http.Request, email string) {
	subs, err := h.subscriptions.ListForAccount(r.Context(), email, r.URL.Query().Get("accountUuid"))
	if err != nil {
		writeError(w, "subscriptions", err)
		return
	}

	writeJSON(w, http.StatusOK, subs)
}

func (h *SubscriptionHandler) handleUpsert(w http.ResponseWriter, r *http.Request, email string) {
	var req SubscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("Error decoding subscription request: %v", err)
		http.Error(w, messages.BadRequest, http.StatusBadRequest)
		return
	}

	sub, err := h.subscriptions.Subscribe(r.Context(), subscription.UpsertParams{
		Email:           email,
		AccessTokenUUID: req.AccessTokenUUID,
		AccountUUID:     req.AccountUUID,
		IsDaily:         req.IsDaily,
		IsWeekly:        req.IsWeekly,
		IsMonthly:       req.IsMonthly,
	})
	if err != nil {
		writeError(w, "subscriptions", err)
		return
	}

	writeJSON(w, http.StatusOK, sub)
}
