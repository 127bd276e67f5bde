// Package trading sequences pricing lookup, payment authorization and
// backend settlement into one logical buy or sell operation.
package trading

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/Indraanil/Innovation-in-Realstate-7-12-on-blockchain/internal/backend"
	"github.com/Indraanil/Innovation-in-Realstate-7-12-on-blockchain/internal/domain"
	"github.com/Indraanil/Innovation-in-Realstate-7-12-on-blockchain/internal/gateway"
	"github.com/Indraanil/Innovation-in-Realstate-7-12-on-blockchain/internal/infra"
)

// TokenSource exposes the active session to the orchestrator.
type TokenSource interface {
	Token() string
	Current() domain.Session
}

// Orchestrator drives one trade at a time through the payment gateway and
// the backend ledger. It never commits a local state change: the backend
// settlement call is the sole point of truth for ownership.
type Orchestrator struct {
	sessions TokenSource
	backend  *backend.Client
	gateway  *gateway.Machine
}

// NewOrchestrator wires the trading orchestrator.
func NewOrchestrator(sessions TokenSource, client *backend.Client, machine *gateway.Machine) *Orchestrator {
	return &Orchestrator{
		sessions: sessions,
		backend:  client,
		gateway:  machine,
	}
}

// Buy purchases unitCount tokens of a property. Suspends until the gateway
// checkout resolves or rejects.
func (o *Orchestrator) Buy(ctx context.Context, propertyID string, unitCount int64) (domain.TradeReceipt, error) {
	return o.trade(ctx, domain.DirectionBuy, propertyID, unitCount)
}

// Sell disposes of unitCount tokens of a property via a payout.
func (o *Orchestrator) Sell(ctx context.Context, propertyID string, unitCount int64) (domain.TradeReceipt, error) {
	return o.trade(ctx, domain.DirectionSell, propertyID, unitCount)
}

func (o *Orchestrator) trade(ctx context.Context, dir domain.Direction, propertyID string, unitCount int64) (domain.TradeReceipt, error) {
	// Authorization gate: no network call happens without a token.
	token := o.sessions.Token()
	if token == "" {
		return domain.TradeReceipt{}, domain.ErrUnauthenticated
	}

	if unitCount <= 0 {
		return domain.TradeReceipt{}, fmt.Errorf("unit count must be positive, got %d", unitCount)
	}

	// Always the latest price at request time. Drift between display and
	// execution is accepted; no quote is locked.
	prop, err := o.backend.GetProperty(ctx, propertyID)
	if err != nil {
		return domain.TradeReceipt{}, fmt.Errorf("pricing lookup failed: %w", err)
	}

	unitPrice := prop.UnitPrice()
	if !unitPrice.IsPositive() {
		return domain.TradeReceipt{}, fmt.Errorf("property %s has no positive unit price", propertyID)
	}
	totalAmount := unitPrice.Mul(decimal.NewFromInt(unitCount))

	user := o.sessions.Current().User
	checkout, err := o.gateway.TriggerCheckout(gateway.CheckoutParams{
		Mode:         dir.Mode(),
		Amount:       totalAmount,
		SubjectID:    propertyID,
		PayerName:    user.Name,
		PayerContact: user.Email,
	})
	if err != nil {
		infra.CountTrade(string(dir), "rejected")
		return domain.TradeReceipt{}, err
	}

	slog.Info("💳 Awaiting gateway authorization",
		slog.String("direction", string(dir)),
		slog.String("reference", checkout.Reference()),
		slog.String("amount", totalAmount.String()))

	res, err := checkout.Wait(ctx)
	if err != nil {
		// No backend mutation has happened; a retry starts from scratch.
		switch {
		case errors.Is(err, domain.ErrPaymentCancelled):
			infra.CountTrade(string(dir), "payment_cancelled")
			return domain.TradeReceipt{}, err
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return domain.TradeReceipt{}, err
		default:
			infra.CountTrade(string(dir), "payment_failed")
			return domain.TradeReceipt{}, fmt.Errorf("%w: %w", domain.ErrPaymentFailed, err)
		}
	}

	req := backend.SettlementRequest{
		PropertyID:       propertyID,
		TokenAmount:      unitCount,
		PaymentReference: res.TransactionID,
		OrderReference:   res.Reference,
	}

	var settled backend.SettlementResult
	if dir == domain.DirectionSell {
		settled, err = o.backend.SettleSell(ctx, token, req)
	} else {
		settled, err = o.backend.SettleBuy(ctx, token, req)
	}
	if err != nil {
		// The payment side already moved; this seam needs reconciliation
		// and must never read as a payment failure.
		infra.CountTrade(string(dir), "settlement_failed")
		return domain.TradeReceipt{}, fmt.Errorf("%w: %w", domain.ErrSettlementFailed, err)
	}

	infra.CountTrade(string(dir), "settled")
	slog.Info("✅ Trade settled",
		slog.String("direction", string(dir)),
		slog.String("property_id", propertyID),
		slog.Int64("units", unitCount),
		slog.String("settlement_txn", settled.TxnID))

	return domain.TradeReceipt{
		Direction:        dir,
		PropertyID:       propertyID,
		UnitCount:        unitCount,
		UnitPrice:        unitPrice,
		TotalAmount:      totalAmount,
		OrderReference:   res.Reference,
		PaymentReference: res.TransactionID,
		SettlementTxnID:  settled.TxnID,
		Fee:              settled.Fee,
	}, nil
}
