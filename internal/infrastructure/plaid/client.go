package plaid

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"emailsummary/internal/domain/account"
	"emailsummary/internal/domain/digest"
)

const (
	defaultTimeout = 60 * time.Second

	transactionsGetPath      = "/transactions/get"
	itemGetPath              = "/item/get"
	accountsGetPath          = "/accounts/get"
	institutionsGetByIDPath  = "/institutions/get_by_id"
	linkTokenCreatePath      = "/link/token/create"
	publicTokenExchangePath  = "/item/public_token/exchange"
	transactionsPageSize     = 500
	itemLoginRequiredErrCode = "ITEM_LOGIN_REQUIRED"
)

var environments = map[string]string{
	"sandbox":     "https://sandbox.plaid.com",
	"development": "https://development.plaid.com",
	"production":  "https://production.plaid.com",
}

// Config carries the credentials and link settings for one Plaid environment.
type Config struct {
	ClientID     string
	Secret       string
	Env          string
	Products     []string
	CountryCodes []string
	RedirectURI  string
	ClientName   string
}

// Client handles communication with the Plaid API
type Client struct {
	httpClient *http.Client
	baseURL    string
	cfg        Config
}

// Ensure Client implements both provider interfaces
var (
	_ account.Provider = (*Client)(nil)
	_ digest.Provider  = (*Client)(nil)
)

// NewClient creates a new Plaid API client for cfg.Env
func NewClient(cfg Config) (*Client, error) {
	baseURL, ok := environments[cfg.Env]
	if !ok {
		return nil, fmt.Errorf("unknown plaid environment %q", cfg.Env)
	}
	return &Client{
		httpClient: &http.Client{
			Timeout:   defaultTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		baseURL: baseURL,
		cfg:     cfg,
	}, nil
}

// APIError is the error body Plaid returns with any non-200 status.
type APIError struct {
	StatusCode     int    `json:"-"`
	ErrorType      string `json:"error_type"`
	ErrorCode      string `json:"error_code"`
	ErrorMessage   string `json:"error_message"`
	DisplayMessage string `json:"display_message"`
	RequestID      string `json:"request_id"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("plaid error (status %d): %s %s - %s", e.StatusCode, e.ErrorType, e.ErrorCode, e.ErrorMessage)
}

// Is lets a revoked credential match account.ErrItemLoginRequired.
func (e *APIError) Is(target error) bool {
	return target == account.ErrItemLoginRequired && e.ErrorCode == itemLoginRequiredErrCode
}

// post sends body with client credentials to path and decodes the reply into out.
func (c *Client) post(ctx context.Context, path string, body map[string]any, out any) error {
	body["client_id"] = c.cfg.ClientID
	body["secret"] = c.cfg.Secret

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if err := json.Unmarshal(respBody, apiErr); err != nil {
			return fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(respBody))
		}
		return apiErr
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}

// GetTransactions fetches every transaction in the request's window, following
// offset pagination until the reported total is reached.
func (c *Client) GetTransactions(ctx context.Context, req digest.TransactionsRequest) (*digest.TransactionsResult, error) {
	result := &digest.TransactionsResult{}

	for offset := 0; ; {
		options := map[string]any{"count": transactionsPageSize, "offset": offset}
		if len(req.AccountIDs) > 0 {
			options["account_ids"] = req.AccountIDs
		}

		var page transactionsGetResponse
		err := c.post(ctx, transactionsGetPath, map[string]any{
			"access_token": req.AccessToken,
			"start_date":   req.StartDate,
			"end_date":     req.EndDate,
			"options":      options,
		}, &page)
		if err != nil {
			return nil, err
		}

		if offset == 0 {
			for _, a := range page.Accounts {
				result.Accounts = append(result.Accounts, a.toDigest())
			}
		}
		for _, tx := range page.Transactions {
			result.Transactions = append(result.Transactions, tx.toDigest())
		}

		offset += len(page.Transactions)
		if len(page.Transactions) == 0 || offset >= page.TotalTransactions {
			break
		}
	}

	return result, nil
}

// GetItemStatus reports when the item's transactions last refreshed
func (c *Client) GetItemStatus(ctx context.Context, accessToken string) (*digest.ItemStatus, error) {
	var resp itemGetResponse
	if err := c.post(ctx, itemGetPath, map[string]any{"access_token": accessToken}, &resp); err != nil {
		return nil, err
	}

	status := &digest.ItemStatus{}
	if resp.Status.Transactions != nil {
		status.LastSuccessfulUpdate = resp.Status.Transactions.LastSuccessfulUpdate
	}
	return status, nil
}

// GetItemAccounts lists the accounts of an item with its institution id
func (c *Client) GetItemAccounts(ctx context.Context, accessToken string) (*account.ItemAccounts, error) {
	var resp accountsGetResponse
	if err := c.post(ctx, accountsGetPath, map[string]any{"access_token": accessToken}, &resp); err != nil {
		return nil, err
	}

	item := &account.ItemAccounts{
		ItemID:        resp.Item.ItemID,
		InstitutionID: resp.Item.InstitutionID,
	}
	for _, a := range resp.Accounts {
		item.Accounts = append(item.Accounts, account.UpstreamAccount{
			AccountID:    a.AccountID,
			Name:         a.Name,
			OfficialName: a.OfficialName,
			Mask:         a.Mask,
			Type:         a.Type,
			Subtype:      a.Subtype,
		})
	}
	return item, nil
}

// GetInstitutionName looks up an institution's display name
func (c *Client) GetInstitutionName(ctx context.Context, institutionID string) (string, error) {
	if institutionID == "" {
		return "", errors.New("institution id is required")
	}

	var resp institutionsGetByIDResponse
	err := c.post(ctx, institutionsGetByIDPath, map[string]any{
		"institution_id": institutionID,
		"country_codes":  c.cfg.CountryCodes,
	}, &resp)
	if err != nil {
		return "", err
	}
	return resp.Institution.Name, nil
}

// ExchangePublicToken trades a link flow's public token for a durable access token
func (c *Client) ExchangePublicToken(ctx context.Context, publicToken string) (string, string, error) {
	var resp publicTokenExchangeResponse
	if err := c.post(ctx, publicTokenExchangePath, map[string]any{"public_token": publicToken}, &resp); err != nil {
		return "", "", err
	}
	return resp.AccessToken, resp.ItemID, nil
}

// CreateLinkToken starts a link flow. Update mode (AccessToken set) must not
// name products.
func (c *Client) CreateLinkToken(ctx context.Context, req account.LinkTokenRequest) (*account.LinkToken, error) {
	body := map[string]any{
		"client_name":   c.cfg.ClientName,
		"language":      "en",
		"country_codes": c.cfg.CountryCodes,
		"user":          map[string]string{"client_user_id": req.ClientUserID},
	}
	if req.AccessToken != "" {
		body["access_token"] = req.AccessToken
	} else {
		body["products"] = c.cfg.Products
	}
	if c.cfg.RedirectURI != "" {
		body["redirect_uri"] = c.cfg.RedirectURI
	}

	var lt account.LinkToken
	if err := c.post(ctx, linkTokenCreatePath, body, &lt); err != nil {
		return nil, err
	}
	return &lt, nil
}
