package domain

import "github.com/shopspring/decimal"

// Mode is the direction of an order through the payment gateway.
type Mode string

const (
	ModePayment Mode = "payment" // buy direction: funds in
	ModePayout  Mode = "payout"  // sell direction: funds out
)

// OrderState is the gateway state machine position of an order.
type OrderState string

const (
	StateIdle            OrderState = "idle"
	StateMethodSelection OrderState = "method_selection"
	StateProcessing      OrderState = "processing"
	StateApproved        OrderState = "approved"
	StateCancelled       OrderState = "cancelled"
)

// Order is one attempted payment or payout transaction held in the
// gateway's single order slot. At most one order is open at a time.
type Order struct {
	Mode          Mode            `json:"mode"`
	Amount        decimal.Decimal `json:"amount"`
	SubjectID     string          `json:"subject_id"`
	Reference     string          `json:"reference"`      // generated at creation, prefix per mode
	TransactionID string          `json:"transaction_id"` // generated only on successful processing
	Method        string          `json:"method,omitempty"`
	PayerName     string          `json:"payer_name,omitempty"`
	PayerContact  string          `json:"payer_contact,omitempty"`
	State         OrderState      `json:"state"`
}
