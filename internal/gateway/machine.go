// Package gateway simulates an external payment/payout processor behind an
// asynchronous single-outstanding-order contract. The machine owns exactly
// one order slot; a checkout handle plays the resolve/reject pair of the
// contract and is bound to the order until the caller acknowledges or
// cancels.
package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Indraanil/Innovation-in-Realstate-7-12-on-blockchain/internal/domain"
	"github.com/Indraanil/Innovation-in-Realstate-7-12-on-blockchain/internal/infra"
)

// Reference prefixes are distinct per mode so an order reference is
// discriminable by direction, and transaction prefixes differ from
// reference prefixes.
const (
	PaymentRefPrefix = "PAY-"
	PayoutRefPrefix  = "OUT-"
	PaymentTxnPrefix = "TXP-"
	PayoutTxnPrefix  = "TXO-"
)

// Mode-dependent method sets. Disjoint in presentation, functionally
// equivalent.
var (
	paymentMethods = []string{"upi", "card", "netbanking"}
	payoutMethods  = []string{"bank_imps", "bank_neft", "upi_payout"}
)

// CheckoutParams describe the order to open.
type CheckoutParams struct {
	Mode         domain.Mode
	Amount       decimal.Decimal
	SubjectID    string
	PayerName    string
	PayerContact string
}

// Result is the resolution of an approved checkout.
type Result struct {
	Approved      bool   `json:"approved"`
	Reference     string `json:"reference"`
	TransactionID string `json:"transaction_id"`
}

type outcome struct {
	result Result
	err    error
}

// Checkout is the caller's handle on the outstanding order: the promise
// side of the gateway contract.
type Checkout struct {
	reference string
	done      chan outcome
}

// Reference returns the order reference generated at creation.
func (c *Checkout) Reference() string {
	return c.reference
}

// Wait suspends until the checkout resolves (acknowledged approval) or
// rejects (cancellation), or the context ends.
func (c *Checkout) Wait(ctx context.Context) (Result, error) {
	select {
	case <-ctx.Done():
		return Result{}, ctx.Err()
	case o := <-c.done:
		return o.result, o.err
	}
}

// Machine is the single-slot order state machine:
// Idle → MethodSelection → Processing → Approved | Cancelled → Idle.
type Machine struct {
	mu      sync.Mutex
	state   domain.OrderState
	order   *domain.Order
	pending *Checkout
	delay   time.Duration
}

// NewMachine creates an idle machine. delay is the artificial processing
// latency; it runs to completion with no cancellation and no timeout.
func NewMachine(delay time.Duration) *Machine {
	return &Machine{
		state: domain.StateIdle,
		delay: delay,
	}
}

// TriggerCheckout opens an order in the single slot and returns its
// handle. Rejects immediately, without transitioning, when an order is
// already open.
func (m *Machine) TriggerCheckout(params CheckoutParams) (*Checkout, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != domain.StateIdle {
		infra.CountCheckout(string(params.Mode), "conflict")
		return nil, domain.ErrOrderConflict
	}

	if params.Mode != domain.ModePayment && params.Mode != domain.ModePayout {
		return nil, fmt.Errorf("unknown order mode: %s", params.Mode)
	}
	if !params.Amount.IsPositive() {
		return nil, fmt.Errorf("order amount must be positive, got %s", params.Amount)
	}
	if params.SubjectID == "" {
		return nil, fmt.Errorf("order subject is required")
	}

	order := &domain.Order{
		Mode:         params.Mode,
		Amount:       params.Amount,
		SubjectID:    params.SubjectID,
		Reference:    newReference(params.Mode),
		PayerName:    params.PayerName,
		PayerContact: params.PayerContact,
		State:        domain.StateMethodSelection,
	}

	checkout := &Checkout{
		reference: order.Reference,
		done:      make(chan outcome, 1),
	}

	m.order = order
	m.pending = checkout
	m.state = domain.StateMethodSelection

	slog.Info("GATEWAY: Checkout opened",
		slog.String("reference", order.Reference),
		slog.String("mode", string(order.Mode)),
		slog.String("amount", order.Amount.String()))

	return checkout, nil
}

// Methods returns the method set for the open order's mode.
func (m *Machine) Methods() ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.order == nil {
		return nil, domain.ErrNoOpenOrder
	}

	if m.order.Mode == domain.ModePayout {
		return append([]string(nil), payoutMethods...), nil
	}
	return append([]string(nil), paymentMethods...), nil
}

// SelectMethod picks a method and starts processing. The artificial delay
// then elapses with no possibility of cancellation mid-flight; at its end
// a mode-prefixed transaction id is generated and the machine moves to
// Approved.
func (m *Machine) SelectMethod(method string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != domain.StateMethodSelection {
		if m.order == nil {
			return domain.ErrNoOpenOrder
		}
		return fmt.Errorf("cannot select a method in state %s", m.state)
	}

	valid := paymentMethods
	if m.order.Mode == domain.ModePayout {
		valid = payoutMethods
	}
	if !contains(valid, method) {
		return fmt.Errorf("unknown %s method: %s", m.order.Mode, method)
	}

	m.order.Method = method
	m.order.State = domain.StateProcessing
	m.state = domain.StateProcessing

	slog.Info("GATEWAY: Processing started",
		slog.String("reference", m.order.Reference),
		slog.String("method", method),
		slog.Duration("delay", m.delay))

	go m.finishProcessing(m.order.Reference)
	return nil
}

// finishProcessing waits out the scripted delay, then approves the order.
func (m *Machine) finishProcessing(reference string) {
	time.Sleep(m.delay)

	m.mu.Lock()
	defer m.mu.Unlock()

	// The slot cannot have changed: Processing admits no cancellation and
	// no new checkout. The guard is an invariant check only.
	if m.state != domain.StateProcessing || m.order == nil || m.order.Reference != reference {
		slog.Error("GATEWAY: Processing finished on a stale order", slog.String("reference", reference))
		return
	}

	m.order.TransactionID = newTransactionID(m.order.Mode)
	m.order.State = domain.StateApproved
	m.state = domain.StateApproved

	slog.Info("GATEWAY: Order approved",
		slog.String("reference", m.order.Reference),
		slog.String("transaction_id", m.order.TransactionID))
}

// Acknowledge completes an approved order: it resolves the outstanding
// checkout with the transaction reference data and returns the machine to
// Idle, freeing the slot.
func (m *Machine) Acknowledge() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != domain.StateApproved {
		if m.order == nil {
			return domain.ErrNoOpenOrder
		}
		return fmt.Errorf("cannot acknowledge in state %s", m.state)
	}

	m.pending.done <- outcome{result: Result{
		Approved:      true,
		Reference:     m.order.Reference,
		TransactionID: m.order.TransactionID,
	}}

	infra.CountCheckout(string(m.order.Mode), "approved")
	m.clearSlot()
	return nil
}

// Cancel is the explicit user cancellation. In Idle it is a no-op; from
// MethodSelection it rejects the outstanding checkout and frees the slot.
// Processing and Approved admit no cancellation.
func (m *Machine) Cancel() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.state {
	case domain.StateIdle:
		return nil
	case domain.StateMethodSelection:
		m.order.State = domain.StateCancelled
		m.pending.done <- outcome{err: domain.ErrPaymentCancelled}
		infra.CountCheckout(string(m.order.Mode), "cancelled")
		slog.Info("GATEWAY: Order cancelled", slog.String("reference", m.order.Reference))
		m.clearSlot()
		return nil
	default:
		return fmt.Errorf("cannot cancel in state %s", m.state)
	}
}

// State returns the current machine state.
func (m *Machine) State() domain.OrderState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// CurrentOrder returns a copy of the open order, if any.
func (m *Machine) CurrentOrder() (domain.Order, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.order == nil {
		return domain.Order{}, false
	}
	return *m.order, true
}

func (m *Machine) clearSlot() {
	m.order = nil
	m.pending = nil
	m.state = domain.StateIdle
}

func newReference(mode domain.Mode) string {
	prefix := PaymentRefPrefix
	if mode == domain.ModePayout {
		prefix = PayoutRefPrefix
	}
	return prefix + uuid.NewString()[:8]
}

func newTransactionID(mode domain.Mode) string {
	prefix := PaymentTxnPrefix
	if mode == domain.ModePayout {
		prefix = PayoutTxnPrefix
	}
	return prefix + uuid.NewString()[:8]
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
