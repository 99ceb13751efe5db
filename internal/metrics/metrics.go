// Package metrics exposes Prometheus instruments for ledger activity.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var Transactions = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "qqtime_transactions_total",
	Help: "Transactions appended to the ledger, by type",
}, []string{"type"})

var Rejections = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "qqtime_rejections_total",
	Help: "Ledger operations rejected before reaching the engine, by reason",
}, []string{"reason"})

var Clamps = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "qqtime_clamps_total",
	Help: "Operations whose result was clamped, by bound (floor or ceiling)",
}, []string{"bound"})

var BalanceMinutes = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "qqtime_balance_minutes",
	Help: "Current bank balance in minutes",
})

var HistoryLength = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "qqtime_history_transactions",
	Help: "Number of transactions in the history",
})

var ConfirmationsRequested = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "qqtime_confirmations_requested_total",
	Help: "Destructive operations that were returned to the caller for confirmation",
}, []string{"operation"})

var WebSocketClients = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "qqtime_websocket_clients",
	Help: "Views currently subscribed to change notifications",
})

var WebSocketEvictions = promauto.NewCounter(prometheus.CounterOpts{
	Name: "qqtime_websocket_evictions_total",
	Help: "Views disconnected because they fell behind",
})

var HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "qqtime_http_requests_total",
	Help: "HTTP requests served, by method and status class",
}, []string{"method", "code"})

var HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "qqtime_http_request_duration_seconds",
	Help:    "HTTP request latency",
	Buckets: prometheus.DefBuckets,
}, []string{"method"})

// Recorder is what the bank reports to. The Prometheus implementation is
// the default; tests can pass Discard.
type Recorder interface {
	Transaction(typ string)
	Rejection(reason string)
	Clamp(bound string)
	State(balance, history int)
	ConfirmationRequested(op string)
}

type prom struct{}

// Prometheus returns a Recorder backed by the package collectors.
func Prometheus() Recorder { return prom{} }

func (prom) Transaction(typ string) { Transactions.WithLabelValues(typ).Inc() }
func (prom) Rejection(reason string) { Rejections.WithLabelValues(reason).Inc() }
func (prom) Clamp(bound string) { Clamps.WithLabelValues(bound).Inc() }
func (prom) ConfirmationRequested(op string) {
	ConfirmationsRequested.WithLabelValues(op).Inc()
}
func (prom) State(balance, history int) {
	BalanceMinutes.Set(float64(balance))
	HistoryLength.Set(float64(history))
}

type discard struct{}

// Discard drops everything.
var Discard Recorder = discard{}

func (discard) Transaction(string) {}
func (discard) Rejection(string) {}
func (discard) Clamp(string) {}
func (discard) State(int, int) {}
func (discard) ConfirmationRequested(string) {}
