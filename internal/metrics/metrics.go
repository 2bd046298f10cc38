// Package metrics exposes Prometheus instrumentation for the feed and
// engine pipeline.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every collector the process registers. Each instance
// carries its own registry so constructing one in tests never collides
// with another.
type Metrics struct {
	registry *prometheus.Registry

	// Snapshot pipeline
	SnapshotDuration *prometheus.HistogramVec
	SnapshotErrors   *prometheus.CounterVec

	// Engine output
	AnalysesTotal   *prometheus.CounterVec
	ConfluenceScore *prometheus.GaugeVec
	ContractsSeen   *prometheus.GaugeVec

	// Transport
	WSClients      prometheus.Gauge
	JournalEntries prometheus.Counter
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		SnapshotDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "zerodte_snapshot_duration_seconds",
				Help:    "Time spent assembling a chain snapshot from the feed",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
			},
			[]string{"ticker"},
		),

		SnapshotErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "zerodte_snapshot_errors_total",
				Help: "Total number of failed snapshot fetches by ticker",
			},
			[]string{"ticker"},
		),

		AnalysesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "zerodte_analyses_total",
				Help: "Total number of completed analyses by ticker and state",
			},
			[]string{"ticker", "state"},
		),

		ConfluenceScore: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "zerodte_confluence_score",
				Help: "Confluence score from the most recent analysis",
			},
			[]string{"ticker"},
		),

		ContractsSeen: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "zerodte_snapshot_contracts",
				Help: "Number of contracts in the most recent snapshot",
			},
			[]string{"ticker"},
		),

		WSClients: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "zerodte_ws_clients",
				Help: "Number of connected websocket clients",
			},
		),

		JournalEntries: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "zerodte_journal_entries_total",
				Help: "Total number of recommendations written to the journal",
			},
		),
	}

	m.registry.MustRegister(
		m.SnapshotDuration,
		m.SnapshotErrors,
		m.AnalysesTotal,
		m.ConfluenceScore,
		m.ContractsSeen,
		m.WSClients,
		m.JournalEntries,
	)

	return m
}

// ObserveSnapshot records the outcome of one snapshot fetch.
func (m *Metrics) ObserveSnapshot(ticker string, elapsed time.Duration, err error) {
	if err != nil {
		m.SnapshotErrors.WithLabelValues(ticker).Inc()
		return
	}
	m.SnapshotDuration.WithLabelValues(ticker).Observe(elapsed.Seconds())
}

// RecordAnalysis records the state and score of one completed analysis.
func (m *Metrics) RecordAnalysis(ticker, state string, score int, contracts int) {
	m.AnalysesTotal.WithLabelValues(ticker, state).Inc()
	m.ConfluenceScore.WithLabelValues(ticker).Set(float64(score))
	m.ContractsSeen.WithLabelValues(ticker).Set(float64(contracts))
}

// ClientConnected tracks a websocket client joining.
func (m *Metrics) ClientConnected() {
	m.WSClients.Inc()
}

// ClientDisconnected tracks a websocket client leaving.
func (m *Metrics) ClientDisconnected() {
	m.WSClients.Dec()
}

// RecordJournalEntry counts one journaled recommendation.
func (m *Metrics) RecordJournalEntry() {
	m.JournalEntries.Inc()
}

// Handler returns the HTTP handler serving this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
