package httpserver

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Indraanil/Innovation-in-Realstate-7-12-on-blockchain/internal/domain"
	"github.com/Indraanil/Innovation-in-Realstate-7-12-on-blockchain/internal/gateway"
	"github.com/Indraanil/Innovation-in-Realstate-7-12-on-blockchain/internal/session"
	"github.com/Indraanil/Innovation-in-Realstate-7-12-on-blockchain/internal/trading"
)

type handlers struct {
	sessions     *session.Manager
	orchestrator *trading.Orchestrator
	machine      *gateway.Machine
}

type connectRequest struct {
	Mode     string `json:"mode"` // "provider" or "demo"
	WalletID string `json:"wallet_id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
}

type tradeRequest struct {
	PropertyID  string `json:"property_id"`
	TokenAmount int64  `json:"token_amount"`
}

type methodRequest struct {
	Method string `json:"method"`
}

func (h *handlers) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "healthy"})
}

func (h *handlers) connect(c echo.Context) error {
	var req connectRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errBody(err))
	}

	profile := domain.UserProfile{Name: req.Name, Email: req.Email}

	var (
		sess domain.Session
		err  error
	)
	if req.Mode == "demo" {
		sess, err = h.sessions.ConnectDemo(c.Request().Context(), req.WalletID, profile)
	} else {
		sess, err = h.sessions.Connect(c.Request().Context(), profile)
	}
	if err != nil {
		return h.fail(c, err)
	}

	return c.JSON(http.StatusOK, sess)
}

func (h *handlers) disconnect(c echo.Context) error {
	if err := h.sessions.Disconnect(c.Request().Context()); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"disconnected": true})
}

func (h *handlers) session(c echo.Context) error {
	sess := h.sessions.Current()
	return c.JSON(http.StatusOK, map[string]any{
		"connected": sess.Connected(),
		"session":   sess,
	})
}

func (h *handlers) buy(c echo.Context) error {
	return h.trade(c, h.orchestrator.Buy)
}

func (h *handlers) sell(c echo.Context) error {
	return h.trade(c, h.orchestrator.Sell)
}

// trade blocks until the gateway checkout resolves; the UI drives the
// checkout through the /api/checkout endpoints meanwhile.
func (h *handlers) trade(c echo.Context, run func(ctx context.Context, propertyID string, unitCount int64) (domain.TradeReceipt, error)) error {
	var req tradeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errBody(err))
	}

	receipt, err := run(c.Request().Context(), req.PropertyID, req.TokenAmount)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, receipt)
}

func (h *handlers) checkout(c echo.Context) error {
	state := h.machine.State()
	body := map[string]any{"state": state}

	if order, open := h.machine.CurrentOrder(); open {
		body["order"] = order
		if methods, err := h.machine.Methods(); err == nil {
			body["methods"] = methods
		}
	}

	return c.JSON(http.StatusOK, body)
}

func (h *handlers) selectMethod(c echo.Context) error {
	var req methodRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errBody(err))
	}
	if err := h.machine.SelectMethod(req.Method); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"state": string(h.machine.State())})
}

func (h *handlers) confirm(c echo.Context) error {
	if err := h.machine.Acknowledge(); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"acknowledged": true})
}

func (h *handlers) cancel(c echo.Context) error {
	if err := h.machine.Cancel(); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"cancelled": true})
}

// fail maps the core failure taxonomy onto HTTP status codes.
func (h *handlers) fail(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		return c.JSON(http.StatusUnauthorized, errBody(err))
	case errors.Is(err, domain.ErrProviderRejected):
		body := errBody(err)
		body["demo_available"] = true
		return c.JSON(http.StatusForbidden, body)
	case errors.Is(err, domain.ErrOrderConflict):
		return c.JSON(http.StatusConflict, errBody(err))
	case errors.Is(err, domain.ErrSettlementFailed):
		// Checked before payment errors: this condition is strictly more
		// severe and must stay distinct.
		return c.JSON(http.StatusBadGateway, errBody(err))
	case errors.Is(err, domain.ErrPaymentCancelled), errors.Is(err, domain.ErrPaymentFailed):
		return c.JSON(http.StatusPaymentRequired, errBody(err))
	case errors.Is(err, domain.ErrNoOpenOrder):
		return c.JSON(http.StatusNotFound, errBody(err))
	default:
		return c.JSON(http.StatusInternalServerError, errBody(err))
	}
}

func errBody(err error) map[string]any {
	return map[string]any{"error": err.Error()}
}
