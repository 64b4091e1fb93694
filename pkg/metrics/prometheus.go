// Package metrics provides Prometheus metrics for the medalgrid backend and client.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector used by the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Backend: what the grid asks for and what it gets
	readRequests    *prometheus.CounterVec
	rowsServed      *prometheus.CounterVec
	mutations       *prometheus.CounterVec
	filterValueReqs prometheus.Counter
	recordsTotal    prometheus.Gauge

	// Store
	storeQueryLatency *prometheus.HistogramVec
	storeErrors       *prometheus.CounterVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Data service (client side)
	clientCalls       *prometheus.CounterVec
	clientCallLatency *prometheus.HistogramVec

	// Outbound call queue
	queueCapacity    prometheus.Gauge
	queueSize        prometheus.Gauge
	queueUtilization prometheus.Gauge
	queueEnqueued    prometheus.Counter
	queueDequeued    prometheus.Counter
	queueRejected    *prometheus.CounterVec

	// Workers
	workerCount             prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// Grid reconciliation
	gridTransactions *prometheus.CounterVec
	gridRefreshes    prometheus.Counter

	// Errors
	errorsByComponent *prometheus.CounterVec
	errorsByEndpoint  *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// customRegistry avoids the default Go collectors.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "medalgrid",
		subsystem:        "grid",
		histogramBuckets: []float64{0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
		constLabels:      prometheus.Labels{},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.readRequests = auto.NewCounterVec(
		m.counterOpts("read_requests_total", "Read requests by level (group or leaf)"),
		[]string{"level"},
	)
	m.rowsServed = auto.NewCounterVec(
		m.counterOpts("rows_served_total", "Rows returned to the grid by level"),
		[]string{"level"},
	)
	m.mutations = auto.NewCounterVec(
		m.counterOpts("mutations_total", "Record mutations by operation"),
		[]string{"op"},
	)
	m.filterValueReqs = auto.NewCounter(
		m.counterOpts("filter_value_requests_total", "Set filter value requests"),
	)
	m.recordsTotal = auto.NewGauge(
		m.gaugeOpts("records_total", "Records held by the store"),
	)

	m.storeQueryLatency = auto.NewHistogramVec(
		m.histogramOpts("store_query_latency_milliseconds", "Store query latency in milliseconds", m.histogramBuckets),
		[]string{"op"},
	)
	m.storeErrors = auto.NewCounterVec(
		m.counterOpts("store_errors_total", "Store errors by operation"),
		[]string{"op"},
	)

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "HTTP requests by endpoint, method and status"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.histogramBuckets),
		[]string{"endpoint", "method", "status_code"},
	)

	m.clientCalls = auto.NewCounterVec(
		m.counterOpts("client_calls_total", "Data service calls by endpoint and outcome"),
		[]string{"endpoint", "outcome"},
	)
	m.clientCallLatency = auto.NewHistogramVec(
		m.histogramOpts("client_call_latency_milliseconds", "Data service round trip in milliseconds", m.histogramBuckets),
		[]string{"endpoint"},
	)

	m.queueCapacity = auto.NewGauge(m.gaugeOpts("queue_capacity", "Capacity of the outbound call queue"))
	m.queueSize = auto.NewGauge(m.gaugeOpts("queue_size", "Calls waiting in the outbound queue"))
	m.queueUtilization = auto.NewGauge(m.gaugeOpts("queue_utilization_ratio", "Queue size divided by capacity"))
	m.queueEnqueued = auto.NewCounter(m.counterOpts("queue_enqueued_total", "Calls accepted by the queue"))
	m.queueDequeued = auto.NewCounter(m.counterOpts("queue_dequeued_total", "Calls handed to workers"))
	m.queueRejected = auto.NewCounterVec(
		m.counterOpts("queue_rejected_total", "Calls rejected by the queue by reason"),
		[]string{"reason"},
	)

	m.workerCount = auto.NewGauge(m.gaugeOpts("worker_count", "Data service workers"))
	m.workerProcessingLatency = auto.NewHistogram(
		m.histogramOpts("worker_processing_latency_milliseconds", "Time a worker spends on one call", m.histogramBuckets),
	)
	m.workerErrors = auto.NewCounter(m.counterOpts("worker_errors_total", "Calls that failed in a worker"))

	m.gridTransactions = auto.NewCounterVec(
		m.counterOpts("transactions_total", "Server-side store transactions applied by the bridge"),
		[]string{"kind", "status"},
	)
	m.gridRefreshes = auto.NewCounter(
		m.counterOpts("soft_refreshes_total", "Soft refreshes requested by the bridge"),
	)

	m.errorsByComponent = auto.NewCounterVec(
		m.counterOpts("errors_by_component_total", "Errors by component and type"),
		[]string{"component", "error_type"},
	)
	m.errorsByEndpoint = auto.NewCounterVec(
		m.counterOpts("errors_by_endpoint_total", "HTTP errors by endpoint, method and type"),
		[]string{"endpoint", "method", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes", "Heap bytes in use"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count", "Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(
		m.histogramOpts("system_gc_pause_time_milliseconds", "Average GC pause in milliseconds",
			[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}),
	)
}

// RecordRead counts a read request and the rows it returned.
// level is "group" or "leaf".
func RecordRead(level string, rows int) {
	globalManager.readRequests.WithLabelValues(level).Inc()
	globalManager.rowsServed.WithLabelValues(level).Add(float64(rows))
}

// RecordMutation counts a create, update or delete.
func RecordMutation(op string) {
	globalManager.mutations.WithLabelValues(op).Inc()
}

// RecordFilterValuesRequest counts a set filter value request.
func RecordFilterValuesRequest() {
	globalManager.filterValueReqs.Inc()
}

// UpdateRecordsTotal sets the number of records in the store.
func UpdateRecordsTotal(count int) {
	globalManager.recordsTotal.Set(float64(count))
}

// RecordStoreQueryLatency observes a store call.
func RecordStoreQueryLatency(op string, latencyMs float64) {
	globalManager.storeQueryLatency.WithLabelValues(op).Observe(latencyMs)
}

// RecordStoreError counts a failed store call.
func RecordStoreError(op string) {
	globalManager.storeErrors.WithLabelValues(op).Inc()
}

// RecordHTTPRequest counts an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration observes an HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordClientCall counts a data service call outcome: ok, http_error,
// transport_error, rejected or marshal_error.
func RecordClientCall(endpoint, outcome string) {
	globalManager.clientCalls.WithLabelValues(endpoint, outcome).Inc()
}

// RecordClientCallLatency observes a data service round trip.
func RecordClientCallLatency(endpoint string, latencyMs float64) {
	globalManager.clientCallLatency.WithLabelValues(endpoint).Observe(latencyMs)
}

// UpdateQueueCapacity sets the outbound queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueSize sets the outbound queue depth and utilization.
func UpdateQueueSize(size, capacity int) {
	globalManager.queueSize.Set(float64(size))
	if capacity > 0 {
		globalManager.queueUtilization.Set(float64(size) / float64(capacity))
	}
}

// RecordQueueEnqueue counts an accepted call.
func RecordQueueEnqueue() {
	globalManager.queueEnqueued.Inc()
}

// RecordQueueDequeue counts a call handed to a worker.
func RecordQueueDequeue() {
	globalManager.queueDequeued.Inc()
}

// RecordQueueRejected counts a rejected call by reason.
func RecordQueueRejected(reason string) {
	globalManager.queueRejected.WithLabelValues(reason).Inc()
	globalManager.errorsByComponent.WithLabelValues("queue", reason).Inc()
}

// UpdateWorkerCount sets the number of data service workers.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// RecordWorkerProcessingLatency observes one call handled by a worker.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError counts a failed call.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// RecordGridTransaction counts a transaction applied to the grid engine.
func RecordGridTransaction(kind, status string) {
	globalManager.gridTransactions.WithLabelValues(kind, status).Inc()
}

// RecordSoftRefresh counts a soft refresh of the grid engine store.
func RecordSoftRefresh() {
	globalManager.gridRefreshes.Inc()
}

// RecordErrorByComponent counts an error by component and type.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByEndpoint counts an HTTP error by endpoint.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// UpdateSystemMemoryUsage sets heap bytes in use.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine count.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime observes the average GC pause.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the registry the global manager uses.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
