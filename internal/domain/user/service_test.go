package user

import (
	"context"
	"errors"
	"testing"
	"time"

	"emailsummary/internal/shared/apperr"
	"emailsummary/internal/shared/auth"
)

// MockRepository is a mock implementation of Repository interface
type MockRepository struct {
	CreateFunc     func(ctx context.Context, email, passwordHash string) (*User, error)
	GetByEmailFunc func(ctx context.Context, email string) (*User, error)
	GetIDFunc      func(ctx context.Context, email string) (int64, error)
}

func (m *MockRepository) Create(ctx context.Context, email, passwordHash string) (*User, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, email, passwordHash)
	}
	return &User{ID: 1, Email: email, PasswordHash: passwordHash}, nil
}

func (m *MockRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, ErrUserNotFound
}

func (m *MockRepository) GetID(ctx context.Context, email string) (int64, error) {
	if m.GetIDFunc != nil {
		return m.GetIDFunc(ctx, email)
	}
	return 0, ErrUserNotFound
}

// MockSessionRepository is a mock implementation of SessionRepository interface
type MockSessionRepository struct {
	CreateSessionFunc         func(ctx context.Context, email string, expiresAt time.Time) (*Session, error)
	GetSessionAndUserFunc     func(ctx context.Context, token string) (*Session, error)
	DeleteSessionFunc         func(ctx context.Context, token string) error
	DeleteExpiredSessionsFunc func(ctx context.Context, now time.Time) (int64, error)
}

func (m *MockSessionRepository) CreateSession(ctx context.Context, email string, expiresAt time.Time) (*Session, error) {
	if m.CreateSessionFunc != nil {
		return m.CreateSessionFunc(ctx, email, expiresAt)
	}
	return &Session{Token: "token", Email: email, ExpiresAt: expiresAt}, nil
}

func (m *MockSessionRepository) GetSessionAndUser(ctx context.Context, token string) (*Session, error) {
	if m.GetSessionAndUserFunc != nil {
		return m.GetSessionAndUserFunc(ctx, token)
	}
	return nil, apperr.ErrUnauthorized
}

func (m *MockSessionRepository) DeleteSession(ctx context.Context, token string) error {
	if m.DeleteSessionFunc != nil {
		return m.DeleteSessionFunc(ctx, token)
	}
	return nil
}

func (m *MockSessionRepository) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	if m.DeleteExpiredSessionsFunc != nil {
		return m.DeleteExpiredSessionsFunc(ctx, now)
	}
	return 0, nil
}

func newTestService(users Repository, sessions SessionRepository) *Service {
	svc := NewService(users, sessions, "let-me-in", time.Hour)
	svc.now = func() time.Time { return time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC) }
	return svc
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		params  RegisterParams
		users   *MockRepository
		wantErr error
	}{
		{
			name:   "Success",
			params: RegisterParams{Email: " New@Example.com ", Password: "secret", InviteCode: "let-me-in"},
			users:  &MockRepository{},
		},
		{
			name:    "Missing password",
			params:  RegisterParams{Email: "new@example.com", InviteCode: "let-me-in"},
			users:   &MockRepository{},
			wantErr: apperr.ErrBadRequest,
		},
		{
			name:    "Wrong invite code",
			params:  RegisterParams{Email: "new@example.com", Password: "secret", InviteCode: "guess"},
			users:   &MockRepository{},
			wantErr: ErrInvalidInviteCode,
		},
		{
			name:   "Duplicate email",
			params: RegisterParams{Email: "dup@example.com", Password: "secret", InviteCode: "let-me-in"},
			users: &MockRepository{
				CreateFunc: func(ctx context.Context, email, passwordHash string) (*User, error) {
					return nil, ErrEmailAlreadyRegistered
				},
			},
			wantErr: ErrEmailAlreadyRegistered,
		},
		{
			name:   "Storage failure",
			params: RegisterParams{Email: "new@example.com", Password: "secret", InviteCode: "let-me-in"},
			users: &MockRepository{
				CreateFunc: func(ctx context.Context, email, passwordHash string) (*User, error) {
					return nil, errors.New("disk full")
				},
			},
			wantErr: apperr.ErrStorage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var createdEmail, createdHash string
			create := tt.users.CreateFunc
			tt.users.CreateFunc = func(ctx context.Context, email, passwordHash string) (*User, error) {
				createdEmail, createdHash = email, passwordHash
				if create != nil {
					return create(ctx, email, passwordHash)
				}
				return &User{ID: 1, Email: email}, nil
			}

			svc := newTestService(tt.users, &MockSessionRepository{})
			sess, err := svc.Register(ctx, tt.params)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Register() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Register() unexpected error: %v", err)
			}
			if createdEmail != "new@example.com" {
				t.Errorf("stored email = %q, want normalized %q", createdEmail, "new@example.com")
			}
			if ok, _ := auth.CheckPassword(createdHash, "secret"); !ok {
				t.Error("stored hash does not verify against the password")
			}
			if sess.Email != "new@example.com" {
				t.Errorf("session email = %q", sess.Email)
			}
			wantExpiry := time.Date(2024, 3, 10, 13, 0, 0, 0, time.UTC)
			if !sess.ExpiresAt.Equal(wantExpiry) {
				t.Errorf("session expiry = %v, want %v", sess.ExpiresAt, wantExpiry)
			}
		})
	}
}

func TestRegister_EmptyInviteCodeRejectsAll(t *testing.T) {
	svc := NewService(&MockRepository{}, &MockSessionRepository{}, "", time.Hour)

	_, err := svc.Register(context.Background(), RegisterParams{Email: "a@example.com", Password: "x"})
	if !errors.Is(err, ErrInvalidInviteCode) {
		t.Errorf("Register() error = %v, want ErrInvalidInviteCode", err)
	}
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	hash, err := auth.HashPassword("correct")
	if err != nil {
		t.Fatalf("HashPassword() failed: %v", err)
	}

	users := &MockRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*User, error) {
			switch email {
			case "known@example.com":
				return &User{ID: 7, Email: email, PasswordHash: hash}, nil
			case "broken@example.com":
				return nil, errors.New("connection reset")
			default:
				return nil, ErrUserNotFound
			}
		},
	}

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{"Success", "Known@Example.com", "correct", nil},
		{"Wrong password", "known@example.com", "wrong", apperr.ErrUnauthorized},
		{"Unknown user", "ghost@example.com", "correct", apperr.ErrUnauthorized},
		{"Missing fields", "", "", apperr.ErrBadRequest},
		{"Storage failure", "broken@example.com", "correct", apperr.ErrStorage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(users, &MockSessionRepository{})
			sess, err := svc.Login(ctx, tt.email, tt.password)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Login() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Login() unexpected error: %v", err)
			}
			if sess.Email != "known@example.com" {
				t.Errorf("session email = %q", sess.Email)
			}
		})
	}
}

func TestResolveSession(t *testing.T) {
	ctx := context.Background()
	sessions := &MockSessionRepository{
		GetSessionAndUserFunc: func(ctx context.Context, token string) (*Session, error) {
			switch token {
			case "live":
				return &Session{Token: token, Email: "a@example.com"}, nil
			case "old":
				return nil, apperr.Wrap(apperr.ErrSessionExpired, "session expired", nil)
			default:
				return nil, apperr.Wrap(apperr.ErrUnauthorized, "no session", nil)
			}
		},
	}
	svc := newTestService(&MockRepository{}, sessions)

	email, err := svc.ResolveSession(ctx, "live")
	if err != nil || email != "a@example.com" {
		t.Errorf("ResolveSession(live) = %q, %v", email, err)
	}

	if _, err := svc.ResolveSession(ctx, "old"); !errors.Is(err, apperr.ErrSessionExpired) {
		t.Errorf("ResolveSession(old) error = %v, want ErrSessionExpired", err)
	}

	if _, err := svc.ResolveSession(ctx, "missing"); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Errorf("ResolveSession(missing) error = %v, want ErrUnauthorized", err)
	}

	if _, err := svc.ResolveSession(ctx, ""); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Errorf("ResolveSession(\"\") error = %v, want ErrUnauthorized", err)
	}
}

func TestLogout(t *testing.T) {
	var deleted string
	sessions := &MockSessionRepository{
		DeleteSessionFunc: func(ctx context.Context, token string) error {
			deleted = token
			if token == "gone" {
				return ErrSessionNotFound
			}
			return nil
		},
	}
	svc := newTestService(&MockRepository{}, sessions)

	if err := svc.Logout(context.Background(), "abc"); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if deleted != "abc" {
		t.Errorf("deleted token = %q, want %q", deleted, "abc")
	}
	if err := svc.Logout(context.Background(), "gone"); err != nil {
		t.Errorf("Logout() of missing session error = %v, want nil", err)
	}
}

func TestReapExpiredSessions(t *testing.T) {
	var gotNow time.Time
	sessions := &MockSessionRepository{
		DeleteExpiredSessionsFunc: func(ctx context.Context, now time.Time) (int64, error) {
			gotNow = now
			return 3, nil
		},
	}
	svc := newTestService(&MockRepository{}, sessions)

	n, err := svc.ReapExpiredSessions(context.Background())
	if err != nil {
		t.Fatalf("ReapExpiredSessions() error = %v", err)
	}
	if n != 3 {
		t.Errorf("ReapExpiredSessions() = %d, want 3", n)
	}
	if !gotNow.Equal(svc.now()) {
		t.Errorf("now passed to repository = %v, want %v", gotNow, svc.now())
	}
}

func TestSessionExpired(t *testing.T) {
	expires := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := &Session{ExpiresAt: expires}

	if s.Expired(expires) {
		t.Error("Expired() at the expiry instant = true, want false")
	}
	if !s.Expired(expires.Add(time.Second)) {
		t.Error("Expired() after expiry = false, want true")
	}
}
