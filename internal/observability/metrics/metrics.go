package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "console_"

	resultSuccess      = "success"
	resultError        = "error"
	resultUnauthorized = "unauthorized"
)

var (
	registerOnce sync.Once

	trackerRequests *prometheus.CounterVec
	trackerLatency  *prometheus.HistogramVec

	loginTotal *prometheus.CounterVec

	pollRuns    *prometheus.CounterVec
	pollSkipped *prometheus.CounterVec

	liveMarkers prometheus.Gauge

	exportTotal   *prometheus.CounterVec
	exportLatency *prometheus.HistogramVec
)

// Init registers console metrics. Safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		trackerRequests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "tracker_requests_total",
				Help: "Total tracking server requests by method and result",
			},
			[]string{"method", "result"},
		)
		trackerLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "tracker_request_latency_seconds",
				Help:    "Tracking server request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "result"},
		)

		loginTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "login_total",
				Help: "Total login attempts by result",
			},
			[]string{"result"},
		)

		pollRuns = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "poll_runs_total",
				Help: "Total poll callback runs by subscription and result",
			},
			[]string{"subscription", "result"},
		)
		pollSkipped = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "poll_ticks_skipped_total",
				Help: "Ticks skipped because the previous callback was still running",
			},
			[]string{"subscription"},
		)

		liveMarkers = prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: metricPrefix + "live_markers",
				Help: "Markers currently projected on the live map",
			},
		)

		exportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "export_total",
				Help: "Total report exports by format and result",
			},
			[]string{"format", "result"},
		)
		exportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "export_latency_seconds",
				Help:    "Report export latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format", "result"},
		)

		prometheus.MustRegister(
			trackerRequests,
			trackerLatency,
			loginTotal,
			pollRuns,
			pollSkipped,
			liveMarkers,
			exportTotal,
			exportLatency,
		)
	})
}

// ObserveRequest records one tracking server request.
func ObserveRequest(method, result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if trackerRequests != nil {
		trackerRequests.WithLabelValues(method, result).Inc()
	}
	if trackerLatency != nil {
		trackerLatency.WithLabelValues(method, result).Observe(duration.Seconds())
	}
}

// IncLogin increments the login attempt counter.
func IncLogin(result string) {
	if result == "" {
		result = "unknown"
	}
	if loginTotal != nil {
		loginTotal.WithLabelValues(result).Inc()
	}
}

// IncPollRun records one poll callback completion.
func IncPollRun(subscription, result string) {
	if subscription == "" {
		subscription = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if pollRuns != nil {
		pollRuns.WithLabelValues(subscription, result).Inc()
	}
}

// IncPollSkipped records a tick dropped by the no-overlap rule.
func IncPollSkipped(subscription string) {
	if subscription == "" {
		subscription = "unknown"
	}
	if pollSkipped != nil {
		pollSkipped.WithLabelValues(subscription).Inc()
	}
}

// SetLiveMarkers sets the projected marker count.
func SetLiveMarkers(count int) {
	if liveMarkers != nil {
		liveMarkers.Set(float64(count))
	}
}

// ObserveExport records one report export.
func ObserveExport(format, result string, duration time.Duration) {
	if format == "" {
		format = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if exportTotal != nil {
		exportTotal.WithLabelValues(format, result).Inc()
	}
	if exportLatency != nil {
		exportLatency.WithLabelValues(format, result).Observe(duration.Seconds())
	}
}

// Exported result labels for callers.
const (
	ResultSuccess      = resultSuccess
	ResultError        = resultError
	ResultUnauthorized = resultUnauthorized
)
