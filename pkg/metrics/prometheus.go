// Package metrics provides Prometheus metrics for the spreadline service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager manages all Prometheus metrics for the spreadline service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Core Business Metrics - matchups priced and what fed them
	matchupsPriced   prometheus.Counter
	matchupsDegraded prometheus.Counter
	consensusBooks   prometheus.Histogram
	modelEdge        prometheus.Histogram

	// Upstream Metrics - one set per external collaborator
	upstreamRequests *prometheus.CounterVec
	upstreamLatency  *prometheus.HistogramVec

	// License Metrics - cache effectiveness and verdict mix
	licenseCacheHits      prometheus.Counter
	licenseCacheMisses    prometheus.Counter
	licenseCacheEvictions prometheus.Counter
	licenseVerdicts       *prometheus.CounterVec

	// Analysis Metrics
	analysisRequests prometheus.Counter
	analysisLatency  prometheus.Histogram

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Enhanced Error Metrics - Detailed error tracking
	errorRateByType     *prometheus.CounterVec
	errorRateByEndpoint *prometheus.CounterVec
	errorLatency        *prometheus.HistogramVec

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "spreadline",
		subsystem:        "pricing",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		metricPrefix:     "",
		registry:         prometheus.DefaultRegisterer,
	}

	// Apply all options
	for _, opt := range opts {
		opt(m)
	}

	// Initialize metrics
	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	// Ensure metrics are registered on the configured registry (custom by default)
	auto := promauto.With(m.registry)

	// Core Business Metrics
	m.matchupsPriced = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "matchups_priced_total",
		Help:      "Total number of matchups that produced a model projection",
	})

	m.matchupsDegraded = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "matchups_degraded_total",
		Help:      "Total number of matchups served with at least one upstream absent",
	})

	m.consensusBooks = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "consensus_book_count",
		Help:      "Number of allow-listed books contributing to each consensus line",
		Buckets:   []float64{0, 1, 2, 3},
	})

	m.modelEdge = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "model_edge_points",
		Help:      "Absolute difference between model spread and market consensus",
		Buckets:   []float64{0.5, 1, 1.5, 2, 3, 4, 6, 8, 12},
	})

	// Upstream Metrics
	m.upstreamRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "upstream_requests_total",
			Help:      "Total upstream calls by provider and outcome",
		},
		[]string{"provider", "outcome"},
	)

	m.upstreamLatency = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "upstream_latency_milliseconds",
			Help:      "Upstream call latency in milliseconds by provider",
			Buckets:   m.histogramBuckets,
		},
		[]string{"provider"},
	)

	// License Metrics
	m.licenseCacheHits = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "license_cache_hits_total",
		Help:      "Total license verifications served from the in-process cache",
	})

	m.licenseCacheMisses = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "license_cache_misses_total",
		Help:      "Total license verifications that required an upstream call",
	})

	m.licenseCacheEvictions = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "license_cache_evictions_total",
		Help:      "Total cache entries dropped on read after TTL expiry",
	})

	m.licenseVerdicts = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "license_verdicts_total",
			Help:      "Total license verdicts by outcome",
		},
		[]string{"verdict"},
	)

	// Analysis Metrics
	m.analysisRequests = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "analysis_requests_total",
		Help:      "Total LLM analysis generations attempted",
	})

	m.analysisLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "analysis_latency_milliseconds",
		Help:      "LLM analysis latency in milliseconds",
		Buckets:   []float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000},
	})

	// HTTP Performance Metrics
	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint and method",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	// Enhanced Error Metrics
	m.errorRateByType = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_by_type_total",
			Help:      "Total errors by type and severity",
		},
		[]string{"error_type", "severity"},
	)

	m.errorRateByEndpoint = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_by_endpoint_total",
			Help:      "Total errors by endpoint and method",
		},
		[]string{"endpoint", "method", "error_type"},
	)

	m.errorLatency = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "error_latency_milliseconds",
			Help:      "Latency of requests that ended in an error",
			Buckets:   m.histogramBuckets,
		},
		[]string{"component", "error_type"},
	)

	// System Performance Metrics
	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_usage_bytes",
		Help:      "System memory usage in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutine_count",
		Help:      "Number of goroutines",
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_gc_pause_time_milliseconds",
		Help:      "GC pause time in milliseconds",
		Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
	})
}

// RecordMatchupPriced increments the priced matchups counter.
func RecordMatchupPriced() {
	globalManager.matchupsPriced.Inc()
}

// RecordMatchupDegraded increments the degraded matchups counter.
func RecordMatchupDegraded() {
	globalManager.matchupsDegraded.Inc()
}

// RecordConsensusBookCount records how many books fed a consensus line.
func RecordConsensusBookCount(count int) {
	globalManager.consensusBooks.Observe(float64(count))
}

// RecordModelEdge records the absolute model-vs-market edge in points.
func RecordModelEdge(edge float64) {
	if edge < 0 {
		edge = -edge
	}
	globalManager.modelEdge.Observe(edge)
}

// RecordUpstreamRequest records an upstream call outcome for a provider.
func RecordUpstreamRequest(provider, outcome string) {
	globalManager.upstreamRequests.WithLabelValues(provider, outcome).Inc()
}

// RecordUpstreamLatency records upstream call latency in milliseconds.
func RecordUpstreamLatency(provider string, latencyMs float64) {
	globalManager.upstreamLatency.WithLabelValues(provider).Observe(latencyMs)
}

// RecordLicenseCacheHit increments the license cache hit counter.
func RecordLicenseCacheHit() {
	globalManager.licenseCacheHits.Inc()
}

// RecordLicenseCacheMiss increments the license cache miss counter.
func RecordLicenseCacheMiss() {
	globalManager.licenseCacheMisses.Inc()
}

// RecordLicenseCacheEviction increments the license cache eviction counter.
func RecordLicenseCacheEviction() {
	globalManager.licenseCacheEvictions.Inc()
}

// RecordLicenseVerdict records a license verdict by outcome.
func RecordLicenseVerdict(verdict string) {
	globalManager.licenseVerdicts.WithLabelValues(verdict).Inc()
}

// RecordAnalysisRequest increments the analysis request counter.
func RecordAnalysisRequest() {
	globalManager.analysisRequests.Inc()
}

// RecordAnalysisLatency records LLM analysis latency in milliseconds.
func RecordAnalysisLatency(latencyMs float64) {
	globalManager.analysisLatency.Observe(latencyMs)
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByType records an error by type and severity.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error by endpoint.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorLatency records the latency of a failed operation.
func RecordErrorLatency(component, errorType string, latencyMs float64) {
	globalManager.errorLatency.WithLabelValues(component, errorType).Observe(latencyMs)
}

// UpdateSystemMemoryUsage sets the current memory usage.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the current goroutine count.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records a GC pause observation in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom registry used for all service metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
