package digest

import (
	"context"
	"sync"
)

// MockProvider is a mock implementation of Provider interface
type MockProvider struct {
	GetTransactionsFunc func(ctx context.Context, req TransactionsRequest) (*TransactionsResult, error)
	GetItemStatusFunc   func(ctx context.Context, accessToken string) (*ItemStatus, error)

	mu               sync.Mutex
	TransactionCalls []TransactionsRequest
}

func (m *MockProvider) GetTransactions(ctx context.Context, req TransactionsRequest) (*TransactionsResult, error) {
	m.mu.Lock()
	m.TransactionCalls = append(m.TransactionCalls, req)
	m.mu.Unlock()
	if m.GetTransactionsFunc != nil {
		return m.GetTransactionsFunc(ctx, req)
	}
	return &TransactionsResult{}, nil
}

func (m *MockProvider) GetItemStatus(ctx context.Context, accessToken string) (*ItemStatus, error) {
	if m.GetItemStatusFunc != nil {
		return m.GetItemStatusFunc(ctx, accessToken)
	}
	return &ItemStatus{}, nil
}

// MockRepository is a mock implementation of Repository interface
type MockRepository struct {
	GetMailerDataFunc          func(ctx context.Context, filter MailerFilter) ([]MailerRow, error)
	MarkAccessTokenExpiredFunc func(ctx context.Context, token string) error

	MailerDataCalls []MailerFilter
	ExpiredTokens   []string
}

func (m *MockRepository) GetMailerData(ctx context.Context, filter MailerFilter) ([]MailerRow, error) {
	m.MailerDataCalls = append(m.MailerDataCalls, filter)
	if m.GetMailerDataFunc != nil {
		return m.GetMailerDataFunc(ctx, filter)
	}
	return nil, nil
}

func (m *MockRepository) MarkAccessTokenExpired(ctx context.Context, token string) error {
	m.ExpiredTokens = append(m.ExpiredTokens, token)
	if m.MarkAccessTokenExpiredFunc != nil {
		return m.MarkAccessTokenExpiredFunc(ctx, token)
	}
	return nil
}

// MockSessionResolver is a mock implementation of SessionResolver interface
type MockSessionResolver struct {
	ResolveSessionFunc func(ctx context.Context, token string) (string, error)
}

func (m *MockSessionResolver) ResolveSession(ctx context.Context, token string) (string, error) {
	if m.ResolveSessionFunc != nil {
		return m.ResolveSessionFunc(ctx, token)
	}
	return "", nil
}

// MockMailer records every message it is asked to send.
type MockMailer struct {
	SendFunc func(ctx context.Context, msg Message) error
	Sent     []Message
}

func (m *MockMailer) Send(ctx context.Context, msg Message) error {
	if m.SendFunc != nil {
		if err := m.SendFunc(ctx, msg); err != nil {
			return err
		}
	}
	m.Sent = append(m.Sent, msg)
	return nil
}
