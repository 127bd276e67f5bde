// Package httpserver is the UI event boundary: the out-of-scope UI invokes
// the core through these endpoints.
package httpserver

import (
	"context"
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Indraanil/Innovation-in-Realstate-7-12-on-blockchain/internal/gateway"
	"github.com/Indraanil/Innovation-in-Realstate-7-12-on-blockchain/internal/infra"
	"github.com/Indraanil/Innovation-in-Realstate-7-12-on-blockchain/internal/session"
	"github.com/Indraanil/Innovation-in-Realstate-7-12-on-blockchain/internal/trading"
)

// Server exposes the trading core over HTTP.
type Server struct {
	echo *echo.Echo
	addr string
}

// NewServer wires the routes over the core components.
func NewServer(addr string, sessions *session.Manager, orchestrator *trading.Orchestrator, machine *gateway.Machine) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	h := &handlers{
		sessions:     sessions,
		orchestrator: orchestrator,
		machine:      machine,
	}

	e.GET("/health", h.health)
	e.GET("/metrics", echo.WrapHandler(infra.MetricsHandler()))

	e.POST("/api/session/connect", h.connect)
	e.POST("/api/session/disconnect", h.disconnect)
	e.GET("/api/session", h.session)

	e.POST("/api/trade/buy", h.buy)
	e.POST("/api/trade/sell", h.sell)

	e.GET("/api/checkout", h.checkout)
	e.POST("/api/checkout/method", h.selectMethod)
	e.POST("/api/checkout/confirm", h.confirm)
	e.POST("/api/checkout/cancel", h.cancel)

	return &Server{echo: e, addr: addr}
}

// Start blocks serving requests.
func (s *Server) Start() error {
	slog.Info("🌐 UI boundary listening", slog.String("addr", s.addr))
	return s.echo.Start(s.addr)
}

// Stop shuts the server down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Handler exposes the underlying handler for tests.
func (s *Server) Handler() *echo.Echo {
	return s.echo
}
