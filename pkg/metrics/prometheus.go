// Package metrics provides Prometheus metrics for the Flappy Ghost game core and ghost store.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager owns every collector exported by the process.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Round lifecycle
	roundTransitions *prometheus.CounterVec
	ticks            prometheus.Counter
	obstaclesPassed  prometheus.Counter
	deaths           *prometheus.CounterVec
	finalScore       prometheus.Histogram

	// Ghosts
	ghostLoads       *prometheus.CounterVec
	ghostLoadLatency prometheus.Histogram
	ghostSetSize     prometheus.Gauge

	// Death records
	deathRecords *prometheus.CounterVec

	// Document store
	storeQueries      *prometheus.CounterVec
	storeQueryLatency prometheus.Histogram
	storeInserts      *prometheus.CounterVec
	storeDocuments    *prometheus.GaugeVec
	storeSubscribers  prometheus.Gauge

	// Write queue and workers
	queueSize               prometheus.Gauge
	queueCapacity           prometheus.Gauge
	queueEnqueueErrors      *prometheus.CounterVec
	workerCount             prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorsByComponent *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// customRegistry avoids exporting the default Go collectors.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "flappyghost",
		subsystem:        "",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.customLabels,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.customLabels,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.customLabels,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: buckets, ConstLabels: m.customLabels,
	})
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	m.roundTransitions = m.counterVec("round_transitions_total", "Round state transitions by source and target phase", "from", "to")
	m.ticks = m.counter("ticks_total", "Simulation ticks executed while running")
	m.obstaclesPassed = m.counter("obstacles_passed_total", "Obstacles passed by the live player")
	m.deaths = m.counterVec("deaths_total", "Rounds ended, by collision kind", "kind")
	m.finalScore = m.histogram("final_score", "Score at the end of each round", []float64{0, 1, 2, 5, 10, 20, 50, 100, 200})

	m.ghostLoads = m.counterVec("ghost_loads_total", "Ghost set loads by result", "result")
	m.ghostLoadLatency = m.histogram("ghost_load_latency_milliseconds", "Latency of ghost set loads", m.histogramBuckets)
	m.ghostSetSize = m.gauge("ghost_set_size", "Number of ghosts in the most recently loaded set")

	m.deathRecords = m.counterVec("death_records_total", "Death records by outcome (enqueued, skipped, dropped, written, failed)", "outcome")

	m.storeQueries = m.counterVec("store_queries_total", "Document store queries by collection and strategy", "collection", "strategy")
	m.storeQueryLatency = m.histogram("store_query_latency_milliseconds", "Document store query latency", m.histogramBuckets)
	m.storeInserts = m.counterVec("store_inserts_total", "Document store inserts by collection and result", "collection", "result")
	m.storeDocuments = promauto.With(m.registry).NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: "store_documents", Help: "Documents held per collection", ConstLabels: m.customLabels,
	}, []string{"collection"})
	m.storeSubscribers = m.gauge("store_subscribers", "Active change-feed subscribers")

	m.queueSize = m.gauge("queue_size", "Pending death record writes")
	m.queueCapacity = m.gauge("queue_capacity", "Capacity of the death record write queue")
	m.queueEnqueueErrors = m.counterVec("queue_enqueue_errors_total", "Rejected enqueues by reason", "reason")
	m.workerCount = m.gauge("worker_count", "Number of write workers")
	m.workerProcessingLatency = m.histogram("worker_processing_latency_milliseconds", "Time to persist one death record", m.histogramBuckets)
	m.workerErrors = m.counter("worker_errors_total", "Death record writes that failed")

	m.httpRequests = m.counterVec("http_requests_total", "HTTP requests by endpoint, method and status", "endpoint", "method", "status_code")
	m.httpRequestDuration = promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: "http_request_duration_milliseconds",
		Help: "HTTP request duration in milliseconds", Buckets: m.histogramBuckets, ConstLabels: m.customLabels,
	}, []string{"endpoint", "method", "status_code"})

	m.errorsByComponent = m.counterVec("errors_total", "Errors by component and type", "component", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "Heap bytes allocated")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = m.histogram("system_gc_pause_time_milliseconds", "Average GC pause in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000})
}

func on() bool { return globalManager != nil && globalManager.enabled }

// RecordRoundTransition counts a phase change.
func RecordRoundTransition(from, to string) {
	if on() {
		globalManager.roundTransitions.WithLabelValues(from, to).Inc()
	}
}

// RecordTick counts one simulation tick.
func RecordTick() {
	if on() {
		globalManager.ticks.Inc()
	}
}

// RecordObstaclePassed counts one scored obstacle.
func RecordObstaclePassed() {
	if on() {
		globalManager.obstaclesPassed.Inc()
	}
}

// RecordDeath counts a round end and observes the final score.
func RecordDeath(kind string, score int) {
	if on() {
		globalManager.deaths.WithLabelValues(kind).Inc()
		globalManager.finalScore.Observe(float64(score))
	}
}

// RecordGhostLoad records a ghost load outcome.
func RecordGhostLoad(result string, latencyMs float64, size int) {
	if on() {
		globalManager.ghostLoads.WithLabelValues(result).Inc()
		globalManager.ghostLoadLatency.Observe(latencyMs)
		globalManager.ghostSetSize.Set(float64(size))
	}
}

// RecordDeathRecord counts a death record by outcome.
func RecordDeathRecord(outcome string) {
	if on() {
		globalManager.deathRecords.WithLabelValues(outcome).Inc()
	}
}

// RecordStoreQuery counts a store query and its latency.
func RecordStoreQuery(collection, strategy string, latencyMs float64) {
	if on() {
		globalManager.storeQueries.WithLabelValues(collection, strategy).Inc()
		globalManager.storeQueryLatency.Observe(latencyMs)
	}
}

// RecordStoreInsert counts an insert attempt.
func RecordStoreInsert(collection, result string) {
	if on() {
		globalManager.storeInserts.WithLabelValues(collection, result).Inc()
	}
}

// UpdateStoreDocuments sets the document count of a collection.
func UpdateStoreDocuments(collection string, count int) {
	if on() {
		globalManager.storeDocuments.WithLabelValues(collection).Set(float64(count))
	}
}

// AddStoreSubscribers adjusts the subscriber gauge by delta.
func AddStoreSubscribers(delta int) {
	if on() {
		globalManager.storeSubscribers.Add(float64(delta))
	}
}

// UpdateQueueSize sets the number of pending writes.
func UpdateQueueSize(size int) {
	if on() {
		globalManager.queueSize.Set(float64(size))
	}
}

// UpdateQueueCapacity sets the queue capacity gauge.
func UpdateQueueCapacity(capacity int) {
	if on() {
		globalManager.queueCapacity.Set(float64(capacity))
	}
}

// RecordQueueEnqueueError counts a rejected enqueue.
func RecordQueueEnqueueError(reason string) {
	if on() {
		globalManager.queueEnqueueErrors.WithLabelValues(reason).Inc()
	}
}

// UpdateWorkerCount sets the number of write workers.
func UpdateWorkerCount(count int) {
	if on() {
		globalManager.workerCount.Set(float64(count))
	}
}

// RecordWorkerProcessingLatency observes one write.
func RecordWorkerProcessingLatency(latencyMs float64) {
	if on() {
		globalManager.workerProcessingLatency.Observe(latencyMs)
	}
}

// RecordWorkerError counts a failed write.
func RecordWorkerError() {
	if on() {
		globalManager.workerErrors.Inc()
	}
}

// RecordHTTPRequest counts an HTTP request and observes its duration.
func RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	if on() {
		globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
		globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
	}
}

// RecordErrorByComponent counts an error for a component.
func RecordErrorByComponent(component, errorType string) {
	if on() {
		globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
	}
}

// UpdateSystemMemoryUsage sets heap usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	if on() {
		globalManager.systemMemoryUsage.Set(float64(bytes))
	}
}

// UpdateSystemGoroutineCount sets the goroutine gauge.
func UpdateSystemGoroutineCount(count int) {
	if on() {
		globalManager.systemGoroutineCount.Set(float64(count))
	}
}

// RecordSystemGCPauseTime observes average GC pause.
func RecordSystemGCPauseTime(pauseMs float64) {
	if on() {
		globalManager.systemGCPauseTime.Observe(pauseMs)
	}
}

// GetRegistry returns the custom registry backing /healthz.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// RefreshInterval is how often gauge updaters should sample.
func RefreshInterval() time.Duration {
	if globalManager == nil {
		return defaultRefreshInterval
	}
	return globalManager.refreshInterval
}
