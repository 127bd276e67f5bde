package gateway

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Indraanil/Innovation-in-Realstate-7-12-on-blockchain/internal/domain"
)

const testDelay = 5 * time.Millisecond

func paymentParams() CheckoutParams {
	return CheckoutParams{
		Mode:      domain.ModePayment,
		Amount:    decimal.NewFromInt(500000),
		SubjectID: "PROP-1001",
		PayerName: "Asha",
	}
}

func payoutParams() CheckoutParams {
	p := paymentParams()
	p.Mode = domain.ModePayout
	return p
}

// driveToApproved selects the first available method and waits for the
// processing delay to elapse.
func driveToApproved(t *testing.T, m *Machine) {
	t.Helper()

	methods, err := m.Methods()
	if err != nil {
		t.Fatalf("Methods failed: %v", err)
	}
	if err := m.SelectMethod(methods[0]); err != nil {
		t.Fatalf("SelectMethod failed: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for m.State() != domain.StateApproved {
		if time.Now().After(deadline) {
			t.Fatalf("Machine never reached Approved, state=%s", m.State())
		}
		time.Sleep(time.Millisecond)
	}
}

func TestMachine_FullPaymentFlow(t *testing.T) {
	m := NewMachine(testDelay)

	checkout, err := m.TriggerCheckout(paymentParams())
	if err != nil {
		t.Fatalf("TriggerCheckout failed: %v", err)
	}
	if !strings.HasPrefix(checkout.Reference(), PaymentRefPrefix) {
		t.Errorf("Payment reference must carry %q, got %q", PaymentRefPrefix, checkout.Reference())
	}
	if m.State() != domain.StateMethodSelection {
		t.Fatalf("Expected MethodSelection, got %s", m.State())
	}

	driveToApproved(t, m)

	if err := m.Acknowledge(); err != nil {
		t.Fatalf("Acknowledge failed: %v", err)
	}

	res, err := checkout.Wait(context.Background())
	if err != nil {
		t.Fatalf("Wait failed: %v", err)
	}
	if !res.Approved {
		t.Errorf("Expected approved result")
	}
	if res.Reference != checkout.Reference() {
		t.Errorf("Result reference mismatch: %q vs %q", res.Reference, checkout.Reference())
	}
	if !strings.HasPrefix(res.TransactionID, PaymentTxnPrefix) {
		t.Errorf("Transaction id must carry %q, got %q", PaymentTxnPrefix, res.TransactionID)
	}
	if strings.HasPrefix(res.TransactionID, PaymentRefPrefix) {
		t.Errorf("Transaction prefix must differ from reference prefix")
	}

	if m.State() != domain.StateIdle {
		t.Errorf("Slot must be cleared after acknowledgment, state=%s", m.State())
	}
	if _, open := m.CurrentOrder(); open {
		t.Errorf("No order may remain after acknowledgment")
	}
}

func TestMachine_PayoutPrefixes(t *testing.T) {
	m := NewMachine(testDelay)

	checkout, err := m.TriggerCheckout(payoutParams())
	if err != nil {
		t.Fatalf("TriggerCheckout failed: %v", err)
	}
	if !strings.HasPrefix(checkout.Reference(), PayoutRefPrefix) {
		t.Errorf("Payout reference must carry %q, got %q", PayoutRefPrefix, checkout.Reference())
	}

	driveToApproved(t, m)
	if err := m.Acknowledge(); err != nil {
		t.Fatalf("Acknowledge failed: %v", err)
	}

	res, err := checkout.Wait(context.Background())
	if err != nil {
		t.Fatalf("Wait failed: %v", err)
	}
	if !strings.HasPrefix(res.TransactionID, PayoutTxnPrefix) {
		t.Errorf("Payout transaction id must carry %q, got %q", PayoutTxnPrefix, res.TransactionID)
	}
}

func TestMachine_SingleSlot(t *testing.T) {
	m := NewMachine(testDelay)

	first, err := m.TriggerCheckout(paymentParams())
	if err != nil {
		t.Fatalf("First checkout failed: %v", err)
	}

	// Second checkout in MethodSelection is rejected immediately.
	if _, err := m.TriggerCheckout(payoutParams()); !errors.Is(err, domain.ErrOrderConflict) {
		t.Fatalf("Expected ErrOrderConflict in MethodSelection, got %v", err)
	}

	// The original order is unaffected.
	order, open := m.CurrentOrder()
	if !open || order.Reference != first.Reference() {
		t.Fatalf("Original order disturbed by rejected checkout")
	}

	if err := m.SelectMethod("upi"); err != nil {
		t.Fatalf("SelectMethod failed: %v", err)
	}

	// Still rejected during Processing.
	if _, err := m.TriggerCheckout(paymentParams()); !errors.Is(err, domain.ErrOrderConflict) {
		t.Fatalf("Expected ErrOrderConflict in Processing, got %v", err)
	}
}

func TestMachine_CancelFromMethodSelection(t *testing.T) {
	m := NewMachine(testDelay)

	checkout, err := m.TriggerCheckout(paymentParams())
	if err != nil {
		t.Fatalf("TriggerCheckout failed: %v", err)
	}

	if err := m.Cancel(); err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}

	_, err = checkout.Wait(context.Background())
	if !errors.Is(err, domain.ErrPaymentCancelled) {
		t.Fatalf("Expected ErrPaymentCancelled, got %v", err)
	}
	if m.State() != domain.StateIdle {
		t.Errorf("Machine must return to Idle after cancel, state=%s", m.State())
	}

	// Slot is free again.
	if _, err := m.TriggerCheckout(paymentParams()); err != nil {
		t.Errorf("Slot must accept a new checkout after cancel: %v", err)
	}
}

func TestMachine_CancelInIdleIsNoOp(t *testing.T) {
	m := NewMachine(testDelay)
	if err := m.Cancel(); err != nil {
		t.Fatalf("Cancel in Idle must be a no-op, got %v", err)
	}
	if m.State() != domain.StateIdle {
		t.Errorf("State changed by idle cancel: %s", m.State())
	}
}

func TestMachine_NoCancelMidFlight(t *testing.T) {
	m := NewMachine(50 * time.Millisecond)

	if _, err := m.TriggerCheckout(paymentParams()); err != nil {
		t.Fatalf("TriggerCheckout failed: %v", err)
	}
	if err := m.SelectMethod("card"); err != nil {
		t.Fatalf("SelectMethod failed: %v", err)
	}

	if err := m.Cancel(); err == nil {
		t.Fatalf("Cancel during Processing must fail")
	}
}

func TestMachine_MethodSets(t *testing.T) {
	m := NewMachine(testDelay)

	if _, err := m.TriggerCheckout(paymentParams()); err != nil {
		t.Fatalf("TriggerCheckout failed: %v", err)
	}
	payment, err := m.Methods()
	if err != nil {
		t.Fatalf("Methods failed: %v", err)
	}

	// Payout methods are rejected for a payment order.
	if err := m.SelectMethod("bank_imps"); err == nil {
		t.Fatalf("Disbursement method must be invalid for a payment order")
	}
	if err := m.Cancel(); err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}

	if _, err := m.TriggerCheckout(payoutParams()); err != nil {
		t.Fatalf("TriggerCheckout failed: %v", err)
	}
	payout, err := m.Methods()
	if err != nil {
		t.Fatalf("Methods failed: %v", err)
	}

	for _, pm := range payment {
		for _, om := range payout {
			if pm == om {
				t.Errorf("Method sets must be disjoint, both contain %q", pm)
			}
		}
	}
}

func TestMachine_RejectsInvalidParams(t *testing.T) {
	m := NewMachine(testDelay)

	p := paymentParams()
	p.Amount = decimal.Zero
	if _, err := m.TriggerCheckout(p); err == nil {
		t.Errorf("Zero amount must be rejected")
	}

	p = paymentParams()
	p.SubjectID = ""
	if _, err := m.TriggerCheckout(p); err == nil {
		t.Errorf("Missing subject must be rejected")
	}

	p = paymentParams()
	p.Mode = "refund"
	if _, err := m.TriggerCheckout(p); err == nil {
		t.Errorf("Unknown mode must be rejected")
	}

	if m.State() != domain.StateIdle {
		t.Errorf("Rejected params must not transition the machine")
	}
}

func TestMachine_AcknowledgeRequiresApproved(t *testing.T) {
	m := NewMachine(testDelay)

	if err := m.Acknowledge(); !errors.Is(err, domain.ErrNoOpenOrder) {
		t.Errorf("Expected ErrNoOpenOrder in Idle, got %v", err)
	}

	if _, err := m.TriggerCheckout(paymentParams()); err != nil {
		t.Fatalf("TriggerCheckout failed: %v", err)
	}
	if err := m.Acknowledge(); err == nil {
		t.Errorf("Acknowledge in MethodSelection must fail")
	}
}

func TestCheckout_WaitHonorsContext(t *testing.T) {
	m := NewMachine(testDelay)

	checkout, err := m.TriggerCheckout(paymentParams())
	if err != nil {
		t.Fatalf("TriggerCheckout failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if _, err := checkout.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Expected deadline error, got %v", err)
	}
}
