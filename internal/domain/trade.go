package domain

import "github.com/shopspring/decimal"

// Direction of a trade at the orchestrator surface.
type Direction string

const (
	DirectionBuy  Direction = "buy"
	DirectionSell Direction = "sell"
)

// Mode maps a trade direction onto the gateway order mode.
func (d Direction) Mode() Mode {
	if d == DirectionSell {
		return ModePayout
	}
	return ModePayment
}

// TradeReceipt is the result of a fully settled buy or sell: the gateway
// references plus the backend settlement record. Ephemeral, never persisted
// locally; the backend ledger is the sole point of truth.
type TradeReceipt struct {
	Direction        Direction       `json:"direction"`
	PropertyID       string          `json:"property_id"`
	UnitCount        int64           `json:"unit_count"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	OrderReference   string          `json:"order_reference"`
	PaymentReference string          `json:"payment_reference"`
	SettlementTxnID  string          `json:"settlement_txn_id"`
	Fee              decimal.Decimal `json:"fee"`
}
