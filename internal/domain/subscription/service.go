package subscription

import (
	"context"
	"errors"

	"emailsummary/internal/shared/apperr"
)

// Service contains the business logic for subscription operations
type Service struct {
	repo Repository
}

// NewService creates a new subscription service
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Subscribe records the cadence flags for one of the caller's accounts.
func (s *Service) Subscribe(ctx context.Context, params UpsertParams) (*Subscription, error) {
	if err := params.Validate(); err != nil {
		return nil, apperr.Wrap(apperr.ErrBadRequest, err.Error(), ErrInvalidInput)
	}

	sub, err := s.repo.Upsert(ctx, params)
	if err != nil {
		if errors.Is(err, ErrTargetNotFound) {
			return nil, apperr.Wrap(apperr.ErrBadRequest, "unknown access token or account", err)
		}
		return nil, apperr.Storage("failed to upsert subscription", err)
	}
	return sub, nil
}

// ListForAccount returns the caller's subscriptions for accountUUID.
func (s *Service) ListForAccount(ctx context.Context, email, accountUUID string) ([]*Subscription, error) {
	if accountUUID == "" {
		return nil, apperr.Wrap(apperr.ErrBadRequest, "accountUuid is required", ErrInvalidInput)
	}

	subs, err := s.repo.ListForAccount(ctx, email, accountUUID)
	if err != nil {
		return nil, apperr.Storage("failed to list subscriptions", err)
	}
	if subs == nil {
		subs = []*Subscription{}
	}
	return subs, nil
}
