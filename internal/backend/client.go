package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/Indraanil/Innovation-in-Realstate-7-12-on-blockchain/internal/domain"
)

// Client handles REST communication with the property registry backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a backend client.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Register creates a backend identity from a wallet id. Name and email are
// optional investor profile fields. A duplicate registration surfaces as an
// *APIError recognizable via IsAlreadyExists.
func (c *Client) Register(ctx context.Context, walletID, name, email string) (AuthResult, error) {
	var resp registerResponse
	err := c.doJSON(ctx, http.MethodPost, "/api/auth/register", "",
		registerRequest{WalletAddress: walletID, Name: name, Email: email}, &resp)
	if err != nil {
		return AuthResult{}, err
	}

	return AuthResult{Token: resp.AccessToken}, nil
}

// Login exchanges a wallet id for a token and the stored profile.
func (c *Client) Login(ctx context.Context, walletID string) (AuthResult, error) {
	var resp loginResponse
	err := c.doJSON(ctx, http.MethodPost, "/api/auth/login", "",
		loginRequest{WalletAddress: walletID}, &resp)
	if err != nil {
		return AuthResult{}, err
	}

	return AuthResult{Token: resp.AccessToken, User: resp.User}, nil
}

// GetProperty fetches current pricing/availability for a property.
func (c *Client) GetProperty(ctx context.Context, propertyID string) (domain.Property, error) {
	var prop domain.Property
	path := "/api/properties/" + url.PathEscape(propertyID)
	if err := c.doJSON(ctx, http.MethodGet, path, "", nil, &prop); err != nil {
		return domain.Property{}, err
	}
	return prop, nil
}

// SettleBuy settles a purchase on the backend ledger. Bearer-authenticated.
func (c *Client) SettleBuy(ctx context.Context, token string, req SettlementRequest) (SettlementResult, error) {
	return c.settle(ctx, token, "/api/trade/buy", req)
}

// SettleSell settles a sale on the backend ledger. Bearer-authenticated.
func (c *Client) SettleSell(ctx context.Context, token string, req SettlementRequest) (SettlementResult, error) {
	return c.settle(ctx, token, "/api/trade/sell", req)
}

func (c *Client) settle(ctx context.Context, token, path string, req SettlementRequest) (SettlementResult, error) {
	var resp settlementResponse
	if err := c.doJSON(ctx, http.MethodPost, path, token, req, &resp); err != nil {
		return SettlementResult{}, err
	}

	return SettlementResult{
		TxnID: resp.Transaction.TxnID,
		Price: resp.Transaction.Price,
		Fee:   resp.Transaction.Fee,
	}, nil
}

// doJSON runs one request/response cycle. Non-2xx responses become
// *APIError with the backend's error message when one is present.
func (c *Client) doJSON(ctx context.Context, method, path, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errResp errorResponse
		if json.Unmarshal(data, &errResp) == nil && errResp.Error != "" {
			return &APIError{Status: resp.StatusCode, Message: errResp.Error}
		}
		return &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
