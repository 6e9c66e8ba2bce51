package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"emailsummary/internal/domain/subscription"
	"emailsummary/internal/shared/apperr"
)

func TestHandleSubscriptions_Upsert(t *testing.T) {
	var got subscription.UpsertParams
	svc := &MockSubscriptionService{
		SubscribeFunc: func(ctx context.Context, params subscription.UpsertParams) (*subscription.Subscription, error) {
			got = params
			return &subscription.Subscription{
				AccessTokenUUID: params.AccessTokenUUID,
				AccountUUID:     params.AccountUUID,
				IsDaily:         params.IsDaily,
				IsWeekly:        params.IsWeekly,
				IsMonthly:       params.IsMonthly,
			}, nil
		},
	}
	handler := NewSubscriptionHandler(svc)

	body := `{"accessTokenUuid":"tok-uuid","accountUuid":"acc-uuid","isDaily":true,"isWeekly":false,"isMonthly":true}`
	req := withEmail(httptest.NewRequest(http.MethodPost, "/api/subscriptions", strings.NewReader(body)), "a@example.com")
	w := httptest.NewRecorder()
	handler.HandleSubscriptions(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	want := subscription.UpsertParams{
		Email:           "a@example.com",
		AccessTokenUUID: "tok-uuid",
		AccountUUID:     "acc-uuid",
		IsDaily:         true,
		IsMonthly:       true,
	}
	if got != want {
		t.Errorf("params = %+v, want %+v", got, want)
	}

	var sub subscription.Subscription
	if err := json.NewDecoder(w.Body).Decode(&sub); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !sub.IsDaily || sub.IsWeekly || !sub.IsMonthly {
		t.Errorf("response = %+v", sub)
	}
}

func TestHandleSubscriptions_Errors(t *testing.T) {
	tests := []struct {
		name           string
		method         string
		target         string
		body           string
		email          string
		svc            *MockSubscriptionService
		expectedStatus int
	}{
		{
			name:   "Missing uuids",
			method: http.MethodPost,
			target: "/api/subscriptions",
			body:   `{"isDaily":true}`,
			email:  "a@example.com",
			svc: &MockSubscriptionService{
				SubscribeFunc: func(ctx context.Context, params subscription.UpsertParams) (*subscription.Subscription, error) {
					return nil, apperr.Wrap(apperr.ErrBadRequest, "accessTokenUuid is required", subscription.ErrInvalidInput)
				},
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:   "List without accountUuid",
			method: http.MethodGet,
			target: "/api/subscriptions",
			email:  "a@example.com",
			svc: &MockSubscriptionService{
				ListForAccountFunc: func(ctx context.Context, email, accountUUID string) ([]*subscription.Subscription, error) {
					return nil, apperr.Wrap(apperr.ErrBadRequest, "accountUuid is required", subscription.ErrInvalidInput)
				},
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "No caller",
			method:         http.MethodGet,
			target:         "/api/subscriptions?accountUuid=acc-uuid",
			svc:            &MockSubscriptionService{},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Method not allowed",
			method:         http.MethodDelete,
			target:         "/api/subscriptions",
			email:          "a@example.com",
			svc:            &MockSubscriptionService{},
			expectedStatus: http.StatusMethodNotAllowed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewSubscriptionHandler(tt.svc)

			req := httptest.NewRequest(tt.method, tt.target, strings.NewReader(tt.body))
			if tt.email != "" {
				req = withEmail(req, tt.email)
			}
			w := httptest.NewRecorder()
			handler.HandleSubscriptions(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, w.Code)
			}
		})
	}
}

func TestHandleSubscriptions_List(t *testing.T) {
	svc := &MockSubscriptionService{
		ListForAccountFunc: func(ctx context.Context, email, accountUUID string) ([]*subscription.Subscription, error) {
			if email != "a@example.com" || accountUUID != "acc-uuid" {
				t.Errorf("args = %q, %q", email, accountUUID)
			}
			return []*subscription.Subscription{{AccountUUID: accountUUID, IsWeekly: true}}, nil
		},
	}
	handler := NewSubscriptionHandler(svc)

	req := withEmail(httptest.NewRequest(http.MethodGet, "/api/subscriptions?accountUuid=acc-uuid", nil), "a@example.com")
	w := httptest.NewRecorder()
	handler.HandleSubscriptions(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"isWeekly":true`) {
		t.Errorf("body = %s", w.Body.String())
	}
}
