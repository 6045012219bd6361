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
	// Tracks the number of outbound API calls to the upstream oracle service.
	UpstreamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hermes_api_requests_total",
			Help: "Total number of upstream Hermes/Benchmarks API requests made (by endpoint and status).",
		},
		[]string{"endpoint", "status"},
	)

	// Measures duration of upstream API requests.
	UpstreamRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hermes_api_request_duration_seconds",
			Help:    "Duration of upstream API requests in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15), // 1ms → ~16s
		},
		[]string{"endpoint"},
	)

	DirectoryRebuildsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_directory_rebuilds_total",
			Help: "Number of feed directory cache rebuilds per asset class.",
		},
		[]string{"class"},
	)
)

// ObserveUpstreamRequest records one upstream HTTP attempt. A status of 0 marks
// a transport-level failure.
func ObserveUpstreamRequest(endpoint string, status int, elapsed time.Duration) {
	UpstreamRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
	UpstreamRequestDuration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

// StartServer exposes /metrics on addr in a background goroutine.
func StartServer(addr string) {
	go func() {
		http.Handle("/metrics", promhttp.Handler())
		http.ListenAndServe(addr, nil) //nolint:errcheck
	}()
}
