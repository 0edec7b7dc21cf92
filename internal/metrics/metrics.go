package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// StatusTransitions counts committed job status changes, labeled by the
	// status entered.
	StatusTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shoptrack_status_transitions_total",
		Help: "Number of committed job status transitions.",
	}, []string{"to_status"})

	// ImportRows counts rows processed by the bulk order feed.
	ImportRows = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shoptrack_import_rows_total",
		Help: "Number of bulk feed rows processed, by outcome.",
	}, []string{"outcome"})

	// SweepAlerts counts jobs flagged by the overdue sweep.
	SweepAlerts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shoptrack_sweep_alerts_total",
		Help: "Number of jobs flagged as overdue by the background sweep.",
	}, []string{"status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "shoptrack_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "status"})
)

// ObserveRequest records one HTTP request for the latency histogram.
func ObserveRequest(method string, status int, elapsed time.Duration) {
	requestDuration.WithLabelValues(method, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

// Handler exposes the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
