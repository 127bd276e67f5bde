package domain

import "errors"

// Failure taxonomy for the trading core. Callers classify with errors.Is;
// every failure is returned to the immediate caller, nothing is swallowed.
var (
	// ErrUnauthenticated blocks trading entry before any network call is made.
	ErrUnauthenticated = errors.New("no active session")

	// ErrProviderRejected means the wallet provider (or the user at the
	// provider) declined the connection. Never fatal: the demo fallback
	// remains available.
	ErrProviderRejected = errors.New("wallet connection rejected")

	// ErrOrderConflict rejects a checkout while another order is open.
	ErrOrderConflict = errors.New("an order is already in progress")

	// ErrPaymentCancelled is the user cancelling an open checkout.
	// No backend mutation occurred; safe to retry from scratch.
	ErrPaymentCancelled = errors.New("order cancelled")

	// ErrPaymentFailed is a declined or failed payment authorization.
	// No backend mutation occurred; safe to retry from scratch.
	ErrPaymentFailed = errors.New("payment failed")

	// ErrSettlementFailed means the payment or payout succeeded but the
	// backend settlement call failed. More severe than ErrPaymentFailed:
	// funds already moved on the payment side and the seam needs
	// reconciliation. Must never be conflated with a payment failure.
	ErrSettlementFailed = errors.New("settlement failed after payment")

	// ErrNoOpenOrder is returned by checkout operations that need an
	// open order slot when the machine is idle.
	ErrNoOpenOrder = errors.New("no open order")
)
