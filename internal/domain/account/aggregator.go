package account

import (
	"context"
	"errors"
	"log"

	"github.com/google/uuid"

	"emailsummary/internal/shared/apperr"
)

// Aggregator keeps the local account cache in step with the provider.
// Local rows always win; the provider is only asked when a credential has none.
type Aggregator struct {
	repo     Repository
	provider Provider
}

// NewAggregator creates a new account aggregator
func NewAggregator(repo Repository, provider Provider) *Aggregator {
	return &Aggregator{repo: repo, provider: provider}
}

// ListLinkedAccounts returns every active credential of email with its accounts.
// A provider failure for one credential yields an empty account list for it.
func (a *Aggregator) ListLinkedAccounts(ctx context.Context, email string) ([]*LinkedInstitution, error) {
	tokens, err := a.repo.ListAccessTokens(ctx, email)
	if err != nil {
		return nil, apperr.Storage("failed to list access tokens", err)
	}

	linked := make([]*LinkedInstitution, 0, len(tokens))
	for _, tok := range tokens {
		accounts, err := a.accountsFor(ctx, tok)
		if err != nil {
			if errors.Is(err, apperr.ErrStorage) {
				return nil, err
			}
			log.Printf("Aggregator: accounts unavailable for token %s: %v", tok.UUID, err)
			accounts = nil
		}

		entry := &LinkedInstitution{
			AccessTokenUUID: tok.UUID,
			IsExpired:       tok.IsExpired,
			Accounts:        accounts,
		}
		if len(accounts) > 0 {
			entry.InstitutionID = accounts[0].InstitutionID
			entry.InstitutionName = accounts[0].InstitutionName
		}
		if entry.Accounts == nil {
			entry.Accounts = []*Account{}
		}
		linked = append(linked, entry)
	}

	return linked, nil
}

// LinkItem exchanges a public token from the link flow and stores the credential.
func (a *Aggregator) LinkItem(ctx context.Context, email, publicToken string) (*AccessToken, error) {
	if publicToken == "" {
		return nil, apperr.BadRequest("public_token is required")
	}

	token, itemID, err := a.provider.ExchangePublicToken(ctx, publicToken)
	if err != nil {
		return nil, apperr.Upstream("failed to exchange public token", err)
	}

	tok, err := a.repo.CreateAccessToken(ctx, email, token, itemID)
	if err != nil {
		return nil, apperr.Storage("failed to store access token", err)
	}

	// Prime the cache so the first listing does not wait on the provider.
	if _, err := a.accountsFor(ctx, tok); err != nil {
		log.Printf("Aggregator: failed to cache accounts for new token %s: %v", tok.UUID, err)
	}

	return tok, nil
}

// CreateLinkToken starts a link flow. With accessTokenUUID set, the flow
// re-authenticates that existing credential instead of linking a new one.
func (a *Aggregator) CreateLinkToken(ctx context.Context, email, accessTokenUUID string) (*LinkToken, error) {
	req := LinkTokenRequest{ClientUserID: ClientUserID(email)}

	if accessTokenUUID != "" {
		tok, err := a.repo.GetAccessTokenByUUID(ctx, accessTokenUUID)
		if err != nil {
			if errors.Is(err, ErrAccessTokenNotFound) {
				return nil, apperr.Wrap(apperr.ErrBadRequest, "unknown access token", err)
			}
			return nil, apperr.Storage("failed to load access token", err)
		}
		if tok.Email != email {
			return nil, apperr.Wrap(apperr.ErrBadRequest, "unknown access token", ErrAccessTokenNotFound)
		}
		req.AccessToken = tok.Token
	}

	lt, err := a.provider.CreateLinkToken(ctx, req)
	if err != nil {
		return nil, apperr.Upstream("failed to create link token", err)
	}
	return lt, nil
}

// Unlink soft-deletes a credential owned by email.
func (a *Aggregator) Unlink(ctx context.Context, email, accessTokenUUID string) error {
	if accessTokenUUID == "" {
		return apperr.BadRequest("uuid is required")
	}
	if err := a.repo.DeactivateAccessToken(ctx, accessTokenUUID, email); err != nil {
		if errors.Is(err, ErrAccessTokenNotFound) {
			return apperr.Wrap(apperr.ErrBadRequest, "unknown access token", err)
		}
		return apperr.Storage("failed to deactivate access token", err)
	}
	log.Printf("Aggregator: %s unlinked token %s", email, accessTokenUUID)
	return nil
}

// ClientUserID derives the stable, non-identifying user id sent to the provider.
func ClientUserID(email string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("mailto:"+email)).String()
}

func (a *Aggregator) accountsFor(ctx context.Context, tok *AccessToken) ([]*Account, error) {
	local, err := a.repo.ListAccounts(ctx, tok.Token)
	if err != nil {
		return nil, apperr.Storage("failed to list accounts", err)
	}
	if len(local) > 0 {
		return local, nil
	}

	item, err := a.provider.GetItemAccounts(ctx, tok.Token)
	if err != nil {
		return nil, apperr.Upstream("failed to fetch accounts", err)
	}

	inst, err := a.resolveInstitution(ctx, item.InstitutionID)
	if err != nil {
		return nil, err
	}

	for _, ua := range item.Accounts {
		_, err := a.repo.CreateAccount(ctx, CreateAccountParams{
			AccessTokenID: tok.ID,
			InstitutionID: inst.ID,
			AccountID:     ua.AccountID,
			Name:          ua.Name,
			OfficialName:  ua.OfficialName,
			Mask:          ua.Mask,
			Type:          ua.Type,
			Subtype:       ua.Subtype,
		})
		if err != nil {
			return nil, apperr.Storage("failed to cache account", err)
		}
	}

	local, err = a.repo.ListAccounts(ctx, tok.Token)
	if err != nil {
		return nil, apperr.Storage("failed to list accounts", err)
	}
	return local, nil
}

// resolveInstitution returns the cached institution, creating it on first
// encounter. A failed name lookup caches an empty name.
func (a *Aggregator) resolveInstitution(ctx context.Context, institutionID string) (*Institution, error) {
	inst, err := a.repo.GetInstitution(ctx, institutionID)
	if err == nil {
		return inst, nil
	}
	if !errors.Is(err, ErrInstitutionNotFound) {
		return nil, apperr.Storage("failed to load institution", err)
	}

	name, err := a.provider.GetInstitutionName(ctx, institutionID)
	if err != nil {
		log.Printf("Aggregator: institution %s name lookup failed: %v", institutionID, err)
		name = ""
	}

	inst, err = a.repo.CreateInstitution(ctx, institutionID, name)
	if err != nil {
		return nil, apperr.Storage("failed to create institution", err)
	}
	return inst, nil
}
