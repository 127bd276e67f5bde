package backend

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Indraanil/Innovation-in-Realstate-7-12-on-blockchain/internal/domain"
)

// APIError is a non-2xx business response from the backend.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend error (%d): %s", e.Status, e.Message)
}

// IsAlreadyExists detects the duplicate-registration signal. Callers must
// fall back to login when they see it; a registration response is never
// assumed to carry a usable token.
func IsAlreadyExists(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Status == 400 && strings.Contains(strings.ToLower(apiErr.Message), "already exists")
}

type registerRequest struct {
	WalletAddress string `json:"wallet_address"`
	Name          string `json:"name,omitempty"`
	Email         string `json:"email,omitempty"`
}

type registerResponse struct {
	Success     bool   `json:"success"`
	UserID      string `json:"user_id"`
	AccessToken string `json:"access_token"`
}

type loginRequest struct {
	WalletAddress string `json:"wallet_address"`
}

type loginResponse struct {
	Success     bool               `json:"success"`
	AccessToken string             `json:"access_token"`
	User        domain.UserProfile `json:"user"`
}

// AuthResult is the outcome of register or login: a bearer token plus the
// denormalized profile (empty on the registration path).
type AuthResult struct {
	Token string
	User  domain.UserProfile
}

// SettlementRequest is the payload of the buy/sell settlement endpoints.
type SettlementRequest struct {
	PropertyID       string `json:"property_id"`
	TokenAmount      int64  `json:"token_amount"`
	PaymentReference string `json:"payment_reference"`
	OrderReference   string `json:"order_reference"`
}

type settlementResponse struct {
	Success     bool `json:"success"`
	Transaction struct {
		TxnID string          `json:"txn_id"`
		Price decimal.Decimal `json:"price"`
		Fee   decimal.Decimal `json:"fee"`
	} `json:"transaction"`
}

// SettlementResult is the backend's record of a settled trade. This record,
// not the gateway approval, is the sole point of truth for whether units
// changed hands.
type SettlementResult struct {
	TxnID string
	Price decimal.Decimal
	Fee   decimal.Decimal
}

type errorResponse struct {
	Error string `json:"error"`
}
