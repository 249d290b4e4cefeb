package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "newspost"

// Metrics holds the Prometheus collectors for one server instance.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
	postsCreated     prometheus.Counter
	postsDeleted     prometheus.Counter
	blobBytesWritten prometheus.Counter
	blobErrors       *prometheus.CounterVec
}

// NewMetrics builds a Metrics instance backed by its own registry, so that
// several servers (for example in tests) never collide on registration.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := MustNewMetrics(reg)
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m.registry = reg
	return m
}

// MustNewMetrics registers the newspost collectors with reg and panics on conflict.
func MustNewMetrics(reg prometheus.Registerer) *Metrics {
	httpRequests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests served, by method, route pattern and status.",
		},
		[]string{"method", "route", "status"},
	)
	httpDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency, by method and route pattern.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	postsCreated := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "posts_created_total",
		Help:      "Posts inserted.",
	})
	postsDeleted := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "posts_deleted_total",
		Help:      "Posts removed.",
	})
	blobBytesWritten := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "blob_bytes_written_total",
		Help:      "Bytes written to the uploads directory.",
	})
	blobErrors := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "blob_operation_errors_total",
			Help:      "Failed blob store operations, by operation.",
		},
		[]string{"operation"},
	)

	reg.MustRegister(httpRequests, httpDuration, postsCreated, postsDeleted, blobBytesWritten, blobErrors)

	return &Metrics{
		httpRequests:     httpRequests,
		httpDuration:     httpDuration,
		postsCreated:     postsCreated,
		postsDeleted:     postsDeleted,
		blobBytesWritten: blobBytesWritten,
		blobErrors:       blobErrors,
	}
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil || m.registry == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) observeRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (m *Metrics) postCreated() {
	if m != nil {
		m.postsCreated.Inc()
	}
}

func (m *Metrics) postDeleted() {
	if m != nil {
		m.postsDeleted.Inc()
	}
}

func (m *Metrics) blobWritten(n int64) {
	if m != nil && n > 0 {
		m.blobBytesWritten.Add(float64(n))
	}
}

func (m *Metrics) blobFailed(operation string) {
	if m != nil {
		m.blobErrors.WithLabelValues(operation).Inc()
	}
}
