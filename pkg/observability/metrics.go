package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPRequestSize     *prometheus.HistogramVec
	HTTPResponseSize    *prometheus.HistogramVec

	// Authorization metrics
	GuardDecisionsTotal   *prometheus.CounterVec
	SessionResolutions    *prometheus.CounterVec
	SessionRefreshesTotal *prometheus.CounterVec
	SignInsTotal          *prometheus.CounterVec

	// Quota metrics
	QuotaDenialsTotal *prometheus.CounterVec
	UploadsTotal      *prometheus.CounterVec

	// Storage metrics
	StorageOperationsTotal   *prometheus.CounterVec
	StorageOperationDuration *prometheus.HistogramVec
	StorageErrorsTotal       *prometheus.CounterVec

	// Cache metrics
	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec

	// Database metrics
	DBConnectionsActive prometheus.Gauge
	DBConnectionsIdle   prometheus.Gauge

	// Redis metrics
	RedisCommandsTotal   *prometheus.CounterVec
	RedisCommandDuration *prometheus.HistogramVec

	// Business metrics
	ProfilesTotal      prometheus.Gauge
	ActiveSessionsTotal prometheus.Gauge
	PDFsTotal          prometheus.Gauge
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pdfgpt_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pdfgpt_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		HTTPRequestSize: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pdfgpt_http_request_size_bytes",
				Help:    "HTTP request size in bytes",
				Buckets: prometheus.ExponentialBuckets(100, 10, 8),
			},
			[]string{"method", "path"},
		),
		HTTPResponseSize: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pdfgpt_http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: prometheus.ExponentialBuckets(100, 10, 8),
			},
			[]string{"method", "path"},
		),

		GuardDecisionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pdfgpt_guard_decisions_total",
				Help: "Total number of route guard decisions",
			},
			[]string{"decision", "rule"},
		),
		SessionResolutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pdfgpt_session_resolutions_total",
				Help: "Total number of session token resolutions",
			},
			[]string{"outcome"},
		),
		SessionRefreshesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pdfgpt_session_refreshes_total",
				Help: "Total number of session profile refreshes",
			},
			[]string{"outcome"},
		),
		SignInsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pdfgpt_sign_ins_total",
				Help: "Total number of sign-ins",
			},
			[]string{"provider", "outcome"},
		),

		QuotaDenialsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pdfgpt_quota_denials_total",
				Help: "Total number of requests denied by quota",
			},
			[]string{"quota"},
		),
		UploadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pdfgpt_uploads_total",
				Help: "Total number of PDF uploads",
			},
			[]string{"status"},
		),

		StorageOperationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pdfgpt_storage_operations_total",
				Help: "Total number of blob storage operations",
			},
			[]string{"operation", "backend", "status"},
		),
		StorageOperationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pdfgpt_storage_operation_duration_seconds",
				Help:    "Blob storage operation duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "backend"},
		),
		StorageErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pdfgpt_storage_errors_total",
				Help: "Total number of blob storage errors",
			},
			[]string{"operation", "backend", "error_type"},
		),

		CacheHitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pdfgpt_cache_hits_total",
				Help: "Total number of cache hits",
			},
			[]string{"cache_type"},
		),
		CacheMissesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pdfgpt_cache_misses_total",
				Help: "Total number of cache misses",
			},
			[]string{"cache_type"},
		),

		DBConnectionsActive: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "pdfgpt_db_connections_active",
				Help: "Number of active database connections",
			},
		),
		DBConnectionsIdle: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "pdfgpt_db_connections_idle",
				Help: "Number of idle database connections",
			},
		),

		RedisCommandsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pdfgpt_redis_commands_total",
				Help: "Total number of Redis commands",
			},
			[]string{"command", "status"},
		),
		RedisCommandDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pdfgpt_redis_command_duration_seconds",
				Help:    "Redis command duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"command"},
		),

		ProfilesTotal: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "pdfgpt_profiles_total",
				Help: "Total number of user profiles",
			},
		),
		ActiveSessionsTotal: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "pdfgpt_active_sessions_total",
				Help: "Number of unexpired sessions",
			},
		),
		PDFsTotal: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "pdfgpt_pdfs_total",
				Help: "Total number of stored PDFs",
			},
		),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestSize,
		m.HTTPResponseSize,
		m.GuardDecisionsTotal,
		m.SessionResolutions,
		m.SessionRefreshesTotal,
		m.SignInsTotal,
		m.QuotaDenialsTotal,
		m.UploadsTotal,
		m.StorageOperationsTotal,
		m.StorageOperationDuration,
		m.StorageErrorsTotal,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.DBConnectionsActive,
		m.DBConnectionsIdle,
		m.RedisCommandsTotal,
		m.RedisCommandDuration,
		m.ProfilesTotal,
		m.ActiveSessionsTotal,
		m.PDFsTotal,
	)

	return m
}

// responseWriter wraps http.ResponseWriter to capture status code and size
type responseWriter struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.bytesWritten += n
	return n, err
}

// HTTPMetricsMiddleware instruments HTTP requests with Prometheus metrics
func HTTPMetricsMiddleware(metrics *Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			rw := &responseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			if r.ContentLength > 0 {
				metrics.HTTPRequestSize.WithLabelValues(r.Method, r.URL.Path).Observe(float64(r.ContentLength))
			}

			next.ServeHTTP(rw, r)

			duration := time.Since(start).Seconds()
			status := strconv.Itoa(rw.statusCode)

			metrics.HTTPRequestsTotal.WithLabelValues(r.Method, r.URL.Path, status).Inc()
			metrics.HTTPRequestDuration.WithLabelValues(r.Method, r.URL.Path).Observe(duration)
			metrics.HTTPResponseSize.WithLabelValues(r.Method, r.URL.Path).Observe(float64(rw.bytesWritten))
		})
	}
}

// MetricsHandler returns the Prometheus scrape handler for the registry
func MetricsHandler(registry *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

// CollectDBStats copies database pool statistics into gauges. Intended
// to be called periodically.
func (m *Metrics) CollectDBStats(stats func() (active, idle int)) {
	active, idle := stats()
	m.DBConnectionsActive.Set(float64(active))
	m.DBConnectionsIdle.Set(float64(idle))
}
