// Package-level Prometheus metrics for observability.
//
// Primary series updated during operation:
//   - client_session_connects_total{source}        – wallet connects by identity source
//   - client_checkouts_total{mode,result}          – gateway checkouts (approved|cancelled|conflict)
//   - client_trades_total{direction,result}        – trades (settled|rejected|payment_cancelled|payment_failed|settlement_failed)
//
// Registered in init() and served at /metrics on the UI-facing server.

package infra

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	mtxSessionConnects = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "client_session_connects_total",
			Help: "Wallet connects by identity source",
		},
		[]string{"source"},
	)

	mtxCheckouts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "client_checkouts_total",
			Help: "Gateway checkouts by mode and result",
		},
		[]string{"mode", "result"},
	)

	mtxTrades = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "client_trades_total",
			Help: "Trades by direction and result",
		},
		[]string{"direction", "result"},
	)
)

func init() {
	prometheus.MustRegister(mtxSessionConnects, mtxCheckouts, mtxTrades)
}

// CountSessionConnect records a successful connect for an identity source.
func CountSessionConnect(source string) {
	mtxSessionConnects.WithLabelValues(source).Inc()
}

// CountCheckout records a gateway checkout outcome.
func CountCheckout(mode, result string) {
	mtxCheckouts.WithLabelValues(mode, result).Inc()
}

// CountTrade records a trade outcome.
func CountTrade(direction, result string) {
	mtxTrades.WithLabelValues(direction, result).Inc()
}

// MetricsHandler returns the Prometheus exposition handler.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
