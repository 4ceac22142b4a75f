// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Scan metrics
	ScanCyclesTotal    *prometheus.CounterVec
	ScanCycleDuration  prometheus.Histogram
	CandidatesScored   *prometheus.CounterVec
	CandidatesFiltered *prometheus.CounterVec

	// Emission metrics
	AlertsEmitted        *prometheus.CounterVec
	EmissionsSuppressed  *prometheus.CounterVec
	SecurityVetoes       *prometheus.CounterVec
	NotificationFailures prometheus.Counter

	// Tracking metrics
	HorizonFires      *prometheus.CounterVec
	TrackedAlertsOpen prometheus.Gauge
	OutcomesAnalyzed  *prometheus.CounterVec

	// External API metrics
	MarketDataLatency *prometheus.HistogramVec
	MarketDataErrors  *prometheus.CounterVec
	BreakerOpen       prometheus.Gauge

	// Health metrics
	LastSuccessfulScan prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "tokenscout"
	}

	return &Metrics{
		// Scan metrics
		ScanCyclesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "cycles_total",
			Help:      "Total number of scan cycles by status",
		}, []string{"status"}),
		ScanCycleDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "cycle_duration_seconds",
			Help:      "Scan cycle duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		CandidatesScored: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "candidates_scored_total",
			Help:      "Total number of candidate pools scored by network",
		}, []string{"network"}),
		CandidatesFiltered: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "candidates_filtered_total",
			Help:      "Total number of candidates rejected by filter check",
		}, []string{"network", "check"}),

		// Emission metrics
		AlertsEmitted: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "emission",
			Name:      "alerts_total",
			Help:      "Total number of alerts emitted by network and kind",
		}, []string{"network", "kind"}),
		EmissionsSuppressed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "emission",
			Name:      "suppressed_total",
			Help:      "Total number of candidates suppressed by the re-alert gate",
		}, []string{"network"}),
		SecurityVetoes: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "emission",
			Name:      "security_vetoes_total",
			Help:      "Total number of candidates dropped by the security oracle",
		}, []string{"network"}),
		NotificationFailures: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "emission",
			Name:      "notification_failures_total",
			Help:      "Total number of failed notification deliveries",
		}),

		// Tracking metrics
		HorizonFires: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tracking",
			Name:      "horizon_fires_total",
			Help:      "Total number of horizon fires by horizon minutes",
		}, []string{"horizon"}),
		TrackedAlertsOpen: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "tracking",
			Name:      "open_alerts",
			Help:      "Current number of open alerts under tracking",
		}),
		OutcomesAnalyzed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tracking",
			Name:      "outcomes_analyzed_total",
			Help:      "Total number of outcome analyses by prediction quality",
		}, []string{"quality"}),

		// External API metrics
		MarketDataLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "marketdata",
			Name:      "request_latency_seconds",
			Help:      "Market-data API request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		MarketDataErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "marketdata",
			Name:      "request_errors_total",
			Help:      "Total number of failed market-data API requests",
		}, []string{"operation"}),
		BreakerOpen: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "marketdata",
			Name:      "breaker_open",
			Help:      "1 when the market-data circuit breaker is open",
		}),

		// Health metrics
		LastSuccessfulScan: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_scan_timestamp",
			Help:      "Unix timestamp of last successful scan cycle",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordScanCycle records one completed scan cycle.
func RecordScanCycle(status string, durationSeconds float64) {
	DefaultMetrics.ScanCyclesTotal.WithLabelValues(status).Inc()
	DefaultMetrics.ScanCycleDuration.Observe(durationSeconds)
}

// RecordCandidateScored increments the scored-candidate counter.
func RecordCandidateScored(network string) {
	DefaultMetrics.CandidatesScored.WithLabelValues(network).Inc()
}

// RecordCandidateFiltered records a filter rejection by check name.
func RecordCandidateFiltered(network, check string) {
	DefaultMetrics.CandidatesFiltered.WithLabelValues(network, check).Inc()
}

// RecordAlertEmitted records an emitted alert. kind is "first" or "re-alert".
func RecordAlertEmitted(network, kind string) {
	DefaultMetrics.AlertsEmitted.WithLabelValues(network, kind).Inc()
}

// RecordSuppressed increments the re-alert suppression counter.
func RecordSuppressed(network string) {
	DefaultMetrics.EmissionsSuppressed.WithLabelValues(network).Inc()
}

// RecordSecurityVeto increments the security veto counter.
func RecordSecurityVeto(network string) {
	DefaultMetrics.SecurityVetoes.WithLabelValues(network).Inc()
}

// RecordHorizonFire records one horizon sample.
func RecordHorizonFire(horizon string) {
	DefaultMetrics.HorizonFires.WithLabelValues(horizon).Inc()
}

// RecordOutcome records one outcome analysis by quality label.
func RecordOutcome(quality string) {
	DefaultMetrics.OutcomesAnalyzed.WithLabelValues(quality).Inc()
}

// RecordMarketDataRequest records market-data request metrics.
func RecordMarketDataRequest(operation string, seconds float64, err error) {
	DefaultMetrics.MarketDataLatency.WithLabelValues(operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.MarketDataErrors.WithLabelValues(operation).Inc()
	}
}
