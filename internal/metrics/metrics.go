package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds every pokrok collector. It is separate from the default
	// registry so tests can build servers repeatedly.
	Registry = prometheus.NewRegistry()

	ReqCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pokrok_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	ReqDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pokrok_request_duration_seconds",
			Help:    "Request duration seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	ErrorCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pokrok_errors_total",
			Help: "Total API errors by code",
		},
		[]string{"code"},
	)

	// Rollbacks counts optimistic mutations reverted after a failed request.
	Rollbacks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pokrok_optimistic_rollbacks_total",
			Help: "Optimistic mutations rolled back",
		},
		[]string{"kind"},
	)

	CacheResults = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pokrok_cache_lookups_total",
			Help: "Response cache lookups by result",
		},
		[]string{"result"},
	)
)

func init() {
	Registry.MustRegister(
		ReqCount,
		ReqDuration,
		ErrorCount,
		Rollbacks,
		CacheResults,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// Handler exposes the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// ObserveRequest records one finished HTTP request.
func ObserveRequest(method, path string, status int, elapsed time.Duration) {
	ReqCount.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	ReqDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}
