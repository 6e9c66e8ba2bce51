package http

import (
	"context"
	"net/http"

	"emailsummary/internal/domain/account"
	"emailsummary/internal/domain/digest"
	"emailsummary/internal/domain/subscription"
	"emailsummary/internal/domain/user"
	"emailsummary/internal/shared/middleware"
)

// MockDispatcher implements DigestDispatcher for testing
type MockDispatcher struct {
	AuthenticateFunc func(ctx context.Context, bearer, sessionToken string) (digest.Caller, error)
	DispatchFunc     func(ctx context.Context, caller digest.Caller, req digest.Request) (*digest.Result, error)

	DispatchCalls int
}

func (m *MockDispatcher) Authenticate(ctx context.Context, bearer, sessionToken string) (digest.Caller, error) {
	if m.AuthenticateFunc != nil {
		return m.AuthenticateFunc(ctx, bearer, sessionToken)
	}
	return digest.SystemCaller{}, nil
}

func (m *MockDispatcher) Dispatch(ctx context.Context, caller digest.Caller, req digest.Request) (*digest.Result, error) {
	m.DispatchCalls++
	if m.DispatchFunc != nil {
		return m.DispatchFunc(ctx, caller, req)
	}
	return &digest.Result{}, nil
}

// MockSessionService implements SessionService for testing
type MockSessionService struct {
	RegisterFunc func(ctx context.Context, params user.RegisterParams) (*user.Session, error)
	LoginFunc    func(ctx context.Context, email, password string) (*user.Session, error)
	LogoutFunc   func(ctx context.Context, token string) error
}

func (m *MockSessionService) Register(ctx context.Context, params user.RegisterParams) (*user.Session, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, params)
	}
	return nil, nil
}

func (m *MockSessionService) Login(ctx context.Context, email, password string) (*user.Session, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, email, password)
	}
	return nil, nil
}

func (m *MockSessionService) Logout(ctx context.Context, token string) error {
	if m.LogoutFunc != nil {
		return m.LogoutFunc(ctx, token)
	}
	return nil
}

// MockAccountService implements AccountService for testing
type MockAccountService struct {
	ListLinkedAccountsFunc func(ctx context.Context, email string) ([]*account.LinkedInstitution, error)
	LinkItemFunc           func(ctx context.Context, email, publicToken string) (*account.AccessToken, error)
	CreateLinkTokenFunc    func(ctx context.Context, email, accessTokenUUID string) (*account.LinkToken, error)
	UnlinkFunc             func(ctx context.Context, email, accessTokenUUID string) error
}

func (m *MockAccountService) ListLinkedAccounts(ctx context.Context, email string) ([]*account.LinkedInstitution, error) {
	if m.ListLinkedAccountsFunc != nil {
		return m.ListLinkedAccountsFunc(ctx, email)
	}
	return []*account.LinkedInstitution{}, nil
}

func (m *MockAccountService) LinkItem(ctx context.Context, email, publicToken string) (*account.AccessToken, error) {
	if m.LinkItemFunc != nil {
		return m.LinkItemFunc(ctx, email, publicToken)
	}
	return &account.AccessToken{}, nil
}

func (m *MockAccountService) CreateLinkToken(ctx context.Context, email, accessTokenUUID string) (*account.LinkToken, error) {
	if m.CreateLinkTokenFunc != nil {
		return m.CreateLinkTokenFunc(ctx, email, accessTokenUUID)
	}
	return &account.LinkToken{}, nil
}

func (m *MockAccountService) Unlink(ctx context.Context, email, accessTokenUUID string) error {
	if m.UnlinkFunc != nil {
		return m.UnlinkFunc(ctx, email, accessTokenUUID)
	}
	return nil
}

// MockSubscriptionService implements SubscriptionService for testing
type MockSubscriptionService struct {
	SubscribeFunc      func(ctx context.Context, params subscription.UpsertParams) (*subscription.Subscription, error)
	ListForAccountFunc func(ctx context.Context, email, accountUUID string) ([]*subscription.Subscription, error)
}

func (m *MockSubscriptionService) Subscribe(ctx context.Context, params subscription.UpsertParams) (*subscription.Subscription, error) {
	if m.SubscribeFunc != nil {
		return m.SubscribeFunc(ctx, params)
	}
	return &subscription.Subscription{}, nil
}

func (m *MockSubscriptionService) ListForAccount(ctx context.Context, email, accountUUID string) ([]*subscription.Subscription, error) {
	if m.ListForAccountFunc != nil {
		return m.ListForAccountFunc(ctx, email, accountUUID)
	}
	return []*subscription.Subscription{}, nil
}

// withEmail attaches a caller the way the Auth middleware does.
func withEmail(r *http.Request, email string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), middleware.EmailKey, email))
}
