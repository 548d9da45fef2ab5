package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus collectors for the application.
// Following the explicit dependency injection pattern, this struct
// is passed to all components that need to record metrics.
type Metrics struct {
	// Name resolution metrics
	resolveAttemptsTotal *prometheus.CounterVec
	resolveDuration      *prometheus.HistogramVec

	// Solana RPC metrics
	solanaRPCCallsTotal   *prometheus.CounterVec
	solanaRPCCallDuration *prometheus.HistogramVec

	// Explorer / collaborator HTTP metrics
	collaboratorCallsTotal   *prometheus.CounterVec
	collaboratorCallDuration *prometheus.HistogramVec

	// Classification metrics
	transactionsFetchedTotal *prometheus.CounterVec
	classificationsTotal     *prometheus.CounterVec

	// HTTP server metrics
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// NewMetrics creates a new Metrics instance and registers all collectors.
// If registry is nil, prometheus.DefaultRegisterer is used.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}

	factory := promauto.With(registry)

	return &Metrics{
		resolveAttemptsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "resolve_attempts_total",
				Help: "Total number of name-resolution strategy attempts by strategy and status",
			},
			[]string{"strategy", "status"},
		),
		resolveDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "resolve_duration_seconds",
				Help:    "Duration of name-resolution strategy attempts in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
			},
			[]string{"strategy"},
		),

		solanaRPCCallsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "solana_rpc_calls_total",
				Help: "Total number of Solana RPC calls by method and status",
			},
			[]string{"method", "status", "endpoint"},
		),
		solanaRPCCallDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "solana_rpc_call_duration_seconds",
				Help:    "Duration of Solana RPC calls in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
			},
			[]string{"method", "endpoint"},
		),

		collaboratorCallsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "collaborator_calls_total",
				Help: "Total number of explorer/indexer HTTP calls by collaborator and status",
			},
			[]string{"collaborator", "status"},
		),
		collaboratorCallDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "collaborator_call_duration_seconds",
				Help:    "Duration of explorer/indexer HTTP calls in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
			},
			[]string{"collaborator"},
		),

		transactionsFetchedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "transactions_fetched_total",
				Help: "Total number of raw transaction records fetched per chain",
			},
			[]string{"chain"},
		),
		classificationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "classifications_total",
				Help: "Total number of classified transactions by chain and category",
			},
			[]string{"chain", "category"},
		),

		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests by handler, method and status",
			},
			[]string{"handler", "method", "status"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
			},
			[]string{"handler", "method"},
		),
	}
}

// RecordResolveAttempt records one name-resolution strategy attempt.
func (m *Metrics) RecordResolveAttempt(strategy, status string, duration float64) {
	m.resolveAttemptsTotal.WithLabelValues(strategy, status).Inc()
	m.resolveDuration.WithLabelValues(strategy).Observe(duration)
}

// RecordRPCCall records a Solana RPC call with duration.
func (m *Metrics) RecordRPCCall(method, status, endpoint string, duration float64) {
	m.solanaRPCCallsTotal.WithLabelValues(method, status, endpoint).Inc()
	m.solanaRPCCallDuration.WithLabelValues(method, endpoint).Observe(duration)
}

// RecordCollaboratorCall records an explorer/indexer HTTP call with duration.
func (m *Metrics) RecordCollaboratorCall(collaborator, status string, duration float64) {
	m.collaboratorCallsTotal.WithLabelValues(collaborator, status).Inc()
	m.collaboratorCallDuration.WithLabelValues(collaborator).Observe(duration)
}

// RecordTransactionsFetched records raw transaction records fetched for a chain.
func (m *Metrics) RecordTransactionsFetched(chain string, count int) {
	m.transactionsFetchedTotal.WithLabelValues(chain).Add(float64(count))
}

// RecordClassification records one classified transaction.
func (m *Metrics) RecordClassification(chain, category string) {
	m.classificationsTotal.WithLabelValues(chain, category).Inc()
}

// RecordHTTPRequest records an HTTP request with duration.
func (m *Metrics) RecordHTTPRequest(handler, method string, statusCode int, duration float64) {
	m.httpRequestsTotal.WithLabelValues(handler, method, strconv.Itoa(statusCode)).Inc()
	m.httpRequestDuration.WithLabelValues(handler, method).Observe(duration)
}
