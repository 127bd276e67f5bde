package domain

import "github.com/shopspring/decimal"

// Property is the pricing/availability view of a tokenized property as
// returned by the registry backend.
type Property struct {
	PropertyID      string          `json:"property_id"`
	Name            string          `json:"name"`
	City            string          `json:"city"`
	TotalValue      decimal.Decimal `json:"total_value"`
	TotalTokens     int64           `json:"total_tokens"`
	AvailableTokens int64           `json:"available_tokens"`
	Status          string          `json:"status"`
}

// UnitPrice returns the current per-token price: TotalValue / TotalTokens.
// Always computed from the latest registry values at request time; price
// drift between display and execution is accepted, not guarded against.
func (p *Property) UnitPrice() decimal.Decimal {
	if p.TotalTokens <= 0 {
		return decimal.Zero
	}
	return p.TotalValue.Div(decimal.NewFromInt(p.TotalTokens))
}
