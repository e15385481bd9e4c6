// Package metrics provides Prometheus metrics for the KPI evaluation service.
package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector exposed by the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	scoreBuckets     []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Evaluation metrics
	evaluations       *prometheus.CounterVec
	evaluationLatency prometheus.Histogram
	rowsScored        prometheus.Counter
	rowsExcluded      *prometheus.CounterVec
	finalScore        prometheus.Histogram
	categories        *prometheus.CounterVec
	zeroWeightBatches prometheus.Counter

	// Output metrics
	exports *prometheus.CounterVec
	charts  prometheus.Counter

	// File pool metrics
	workerActiveCount prometheus.Gauge
	filesProcessed    *prometheus.CounterVec

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	uploadBytes         prometheus.Histogram

	// Error metrics
	errorRateByType     *prometheus.CounterVec
	errorRateByEndpoint *prometheus.CounterVec
	errorLatency        *prometheus.HistogramVec

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// Configure rebuilds the global collectors from opts on a fresh registry,
// which GetRegistry returns from then on. Call it at startup before any
// metric is recorded.
func Configure(opts ...Option) {
	registry := prometheus.NewRegistry()
	all := append(append([]Option{}, opts...), WithPrometheusRegistry(registry))
	globalManager = NewManager(all...)
	customRegistry = registry
}

// Prefix returns the namespace and subsystem shared by the global metric
// names, e.g. "kpi_eval_".
func Prefix() string {
	return globalManager.prefix()
}

func (m *Manager) prefix() string {
	var b strings.Builder
	for _, part := range []string{m.namespace, m.subsystem} {
		if part != "" {
			b.WriteString(part)
			b.WriteByte('_')
		}
	}
	return b.String()
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "kpi",
		subsystem:        "eval",
		histogramBuckets: prometheus.DefBuckets,
		scoreBuckets:     []float64{60, 70, 80, 85, 90, 95, 100, 105, 110, 120, 150},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: buckets, ConstLabels: m.constLabels}
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.evaluations = auto.NewCounterVec(m.counterOpts("evaluations_total",
		"Total number of KPI batch evaluations by mode and outcome"), []string{"mode", "outcome"})
	m.evaluationLatency = auto.NewHistogram(m.histogramOpts("evaluation_latency_milliseconds",
		"Time spent filtering and scoring a batch in milliseconds", m.histogramBuckets))
	m.rowsScored = auto.NewCounter(m.counterOpts("rows_scored_total",
		"Total number of KPI rows that contributed to a final score"))
	m.rowsExcluded = auto.NewCounterVec(m.counterOpts("rows_excluded_total",
		"Total number of KPI rows excluded before scoring, by reason"), []string{"reason"})
	m.finalScore = auto.NewHistogram(m.histogramOpts("final_score",
		"Distribution of final KPI scores", m.scoreBuckets))
	m.categories = auto.NewCounterVec(m.counterOpts("category_total",
		"Total number of evaluations per performance category"), []string{"category"})
	m.zeroWeightBatches = auto.NewCounter(m.counterOpts("zero_weight_batches_total",
		"Total number of batches rejected because their total weight was zero"))

	m.exports = auto.NewCounterVec(m.counterOpts("exports_total",
		"Total number of evaluation exports by format"), []string{"format"})
	m.charts = auto.NewCounter(m.counterOpts("charts_total",
		"Total number of rendered weighted-score charts"))

	m.workerActiveCount = auto.NewGauge(m.gaugeOpts("worker_active_count",
		"Number of file workers currently evaluating"))
	m.filesProcessed = auto.NewCounterVec(m.counterOpts("files_processed_total",
		"Total number of input files evaluated by outcome"), []string{"outcome"})

	m.httpRequests = auto.NewCounterVec(m.counterOpts("http_requests_total",
		"Total number of HTTP requests by endpoint and method"), []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(m.histogramOpts("http_request_duration_milliseconds",
		"HTTP request duration in milliseconds", m.histogramBuckets), []string{"endpoint", "method", "status_code"})
	m.uploadBytes = auto.NewHistogram(m.histogramOpts("upload_bytes",
		"Size of uploaded KPI files in bytes", prometheus.ExponentialBuckets(1024, 4, 8)))

	m.errorRateByType = auto.NewCounterVec(m.counterOpts("errors_by_type_total",
		"Total number of errors by type and severity"), []string{"error_type", "severity"})
	m.errorRateByEndpoint = auto.NewCounterVec(m.counterOpts("errors_by_endpoint_total",
		"Total number of errors by endpoint"), []string{"endpoint", "method", "error_type"})
	m.errorLatency = auto.NewHistogramVec(m.histogramOpts("error_latency_milliseconds",
		"Latency of operations that failed, in milliseconds", m.histogramBuckets), []string{"component", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_bytes",
		"Allocated heap memory in bytes"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutines",
		"Number of running goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(m.histogramOpts("system_gc_pause_milliseconds",
		"Average GC pause time in milliseconds", m.histogramBuckets))
}

// Evaluation Metrics Functions.

// RecordEvaluation records one finished batch evaluation.
func RecordEvaluation(mode, outcome string, latencyMs float64) {
	globalManager.evaluations.WithLabelValues(mode, outcome).Inc()
	globalManager.evaluationLatency.Observe(latencyMs)
}

// RecordRowsScored adds n scored rows.
func RecordRowsScored(n int) {
	globalManager.rowsScored.Add(float64(n))
}

// RecordRowExcluded counts one excluded row.
func RecordRowExcluded(reason string) {
	globalManager.rowsExcluded.WithLabelValues(reason).Inc()
}

// RecordFinalScore records a final score and its category.
func RecordFinalScore(score float64, category string) {
	globalManager.finalScore.Observe(score)
	globalManager.categories.WithLabelValues(category).Inc()
}

// RecordZeroWeightBatch counts a batch rejected for zero total weight.
func RecordZeroWeightBatch() {
	globalManager.zeroWeightBatches.Inc()
}

// Output Metrics Functions.

// RecordExport counts an export in the given format.
func RecordExport(format string) {
	globalManager.exports.WithLabelValues(format).Inc()
}

// RecordChart counts a rendered chart.
func RecordChart() {
	globalManager.charts.Inc()
}

// Worker Metrics Functions.

// UpdateWorkerActiveCount sets the number of busy file workers.
func UpdateWorkerActiveCount(count int) {
	globalManager.workerActiveCount.Set(float64(count))
}

// RecordFileProcessed counts an evaluated file by outcome.
func RecordFileProcessed(outcome string) {
	globalManager.filesProcessed.WithLabelValues(outcome).Inc()
}

// HTTP Metrics Functions.

// RecordHTTPRequest increments the HTTP request counter.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request latency in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordUploadSize records the size of an uploaded file.
func RecordUploadSize(bytes int64) {
	globalManager.uploadBytes.Observe(float64(bytes))
}

// Error Metrics Functions.

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorLatency records the latency of an operation that resulted in an error.
func RecordErrorLatency(component, errorType string, latencyMs float64) {
	globalManager.errorLatency.WithLabelValues(component, errorType).Observe(latencyMs)
}

// System Performance Metrics Functions.

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
