package user

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"emailsummary/internal/shared/apperr"
	"emailsummary/internal/shared/auth"
)

// Service handles registration, login and session lifecycle.
type Service struct {
	users      Repository
	sessions   SessionRepository
	inviteCode string
	sessionTTL time.Duration
	now        func() time.Time
}

// NewService creates a new user service
func NewService(users Repository, sessions SessionRepository, inviteCode string, sessionTTL time.Duration) *Service {
	return &Service{
		users:      users,
		sessions:   sessions,
		inviteCode: inviteCode,
		sessionTTL: sessionTTL,
		now:        time.Now,
	}
}

// Register creates a user and opens a session for it.
func (s *Service) Register(ctx context.Context, params RegisterParams) (*Session, error) {
	email := normalizeEmail(params.Email)
	if email == "" || params.Password == "" {
		return nil, apperr.BadRequest("email address and password are required")
	}
	if !auth.SecretsEqual(params.InviteCode, s.inviteCode) {
		return nil, apperr.Wrap(apperr.ErrBadRequest, "registration rejected", ErrInvalidInviteCode)
	}

	hash, err := auth.HashPassword(params.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	if _, err := s.users.Create(ctx, email, hash); err != nil {
		if errors.Is(err, ErrEmailAlreadyRegistered) {
			return nil, err
		}
		return nil, apperr.Storage("failed to create user", err)
	}

	log.Printf("User: registered %s", email)
	return s.openSession(ctx, email)
}

// Login verifies the password and opens a session.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, apperr.BadRequest("email address and password are required")
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			auth.BurnPasswordCheck(password)
			return nil, apperr.Wrap(apperr.ErrUnauthorized, "login failed", ErrInvalidCredentials)
		}
		return nil, apperr.Storage("failed to load user", err)
	}

	ok, err := auth.CheckPassword(u.PasswordHash, password)
	if err != nil {
		log.Printf("User: unreadable password hash for %s: %v", email, err)
	}
	if !ok {
		return nil, apperr.Wrap(apperr.ErrUnauthorized, "login failed", ErrInvalidCredentials)
	}

	return s.openSession(ctx, email)
}

// Logout deletes the session. A missing session is not an error.
func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.sessions.DeleteSession(ctx, token); err != nil && !errors.Is(err, ErrSessionNotFound) {
		return apperr.Storage("failed to delete session", err)
	}
	return nil
}

// ResolveSession returns the email owning token.
func (s *Service) ResolveSession(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", apperr.Wrap(apperr.ErrUnauthorized, "missing session token", nil)
	}
	sess, err := s.sessions.GetSessionAndUser(ctx, token)
	if err != nil {
		return "", err
	}
	return sess.Email, nil
}

// ReapExpiredSessions deletes every session whose expiry has passed.
func (s *Service) ReapExpiredSessions(ctx context.Context) (int64, error) {
	n, err := s.sessions.DeleteExpiredSessions(ctx, s.now())
	if err != nil {
		return 0, apperr.Storage("failed to delete expired sessions", err)
	}
	log.Printf("User: reaped %d expired sessions", n)
	return n, nil
}

func (s *Service) openSession(ctx context.Context, email string) (*Session, error) {
	sess, err := s.sessions.CreateSession(ctx, email, s.now().Add(s.sessionTTL))
	if err != nil {
		return nil, apperr.Storage("failed to create session", err)
	}
	return sess, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
