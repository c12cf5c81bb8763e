// Package metrics provides Prometheus metrics for the persona pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the persona pipeline.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Ingestion
	samplesRecorded *prometheus.CounterVec
	samplesRejected *prometheus.CounterVec

	// Detection
	detections       prometheus.Counter
	insufficientData prometheus.Counter
	detectionLatency prometheus.Histogram
	personaScore     *prometheus.GaugeVec
	activePersona    *prometheus.GaugeVec
	transitions      *prometheus.CounterVec
	holds            prometheus.Counter

	// Adaptation
	adaptationCommands *prometheus.CounterVec
	activeArtifacts    prometheus.Gauge
	adaptationErrors   prometheus.Counter

	// Queues
	queueSize         *prometheus.GaugeVec
	queueDropped      *prometheus.CounterVec
	queueEnqueueTotal *prometheus.CounterVec
	queueDequeueTotal *prometheus.CounterVec

	// Offline analysis
	analyzedLogs      *prometheus.CounterVec
	clusteringRuns    *prometheus.CounterVec
	analysisLatency   prometheus.Histogram
	workerActiveCount prometheus.Gauge

	// HTTP observer
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
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
		namespace:        "persona",
		subsystem:        "pipeline",
		histogramBuckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50, 100},
		enabled:          true,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)
	if !m.enabled {
		// Collectors still exist so the recorders never need nil checks.
		auto = promauto.With(nil)
	}
	labels := prometheus.Labels(m.customLabels)

	counterOpts := func(name, help string) prometheus.CounterOpts {
		return prometheus.CounterOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: labels}
	}
	gaugeOpts := func(name, help string) prometheus.GaugeOpts {
		return prometheus.GaugeOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: labels}
	}
	histogramOpts := func(name, help string) prometheus.HistogramOpts {
		return prometheus.HistogramOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: labels, Buckets: m.histogramBuckets}
	}

	m.samplesRecorded = auto.NewCounterVec(counterOpts("samples_recorded_total", "Samples accepted into the sliding windows"), []string{"kind"})
	m.samplesRejected = auto.NewCounterVec(counterOpts("samples_rejected_total", "Malformed samples dropped at ingestion"), []string{"kind"})

	m.detections = auto.NewCounter(counterOpts("detections_total", "Detection passes executed"))
	m.insufficientData = auto.NewCounter(counterOpts("insufficient_data_total", "Detection passes forced to Neutral for lack of data"))
	m.detectionLatency = auto.NewHistogram(histogramOpts("detection_latency_milliseconds", "Time spent in one extract/score/stabilize pass"))
	m.personaScore = auto.NewGaugeVec(gaugeOpts("persona_score", "Latest smoothed score per persona"), []string{"persona"})
	m.activePersona = auto.NewGaugeVec(gaugeOpts("persona_active", "1 for the current persona, 0 otherwise"), []string{"persona"})
	m.transitions = auto.NewCounterVec(counterOpts("persona_transitions_total", "Accepted persona changes"), []string{"from", "to"})
	m.holds = auto.NewCounter(counterOpts("persona_holds_total", "Candidate changes held back by the cooldown"))

	m.adaptationCommands = auto.NewCounterVec(counterOpts("adaptation_commands_total", "Adaptation commands issued"), []string{"kind"})
	m.activeArtifacts = auto.NewGauge(gaugeOpts("adaptation_artifacts", "World artifacts currently owned by the dispatcher"))
	m.adaptationErrors = auto.NewCounter(counterOpts("adaptation_errors_total", "World failures while realizing or removing artifacts"))

	m.queueSize = auto.NewGaugeVec(gaugeOpts("queue_size", "Items waiting in the queue"), []string{"queue"})
	m.queueDropped = auto.NewCounterVec(counterOpts("queue_dropped_total", "Items dropped because the queue was full or closed"), []string{"queue"})
	m.queueEnqueueTotal = auto.NewCounterVec(counterOpts("queue_enqueue_total", "Items enqueued"), []string{"queue"})
	m.queueDequeueTotal = auto.NewCounterVec(counterOpts("queue_dequeue_total", "Items dequeued"), []string{"queue"})

	m.analyzedLogs = auto.NewCounterVec(counterOpts("analyzer_logs_total", "Session logs processed by the analyzer"), []string{"status"})
	m.clusteringRuns = auto.NewCounterVec(counterOpts("analyzer_clustering_total", "Clustering attempts by outcome"), []string{"status"})
	m.analysisLatency = auto.NewHistogram(histogramOpts("analyzer_log_latency_milliseconds", "Time to load and score one session log"))
	m.workerActiveCount = auto.NewGauge(gaugeOpts("worker_active_count", "Number of active analyzer workers"))

	m.httpRequests = auto.NewCounterVec(counterOpts("http_requests_total", "Total number of HTTP requests by endpoint and method"), []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds"), []string{"endpoint", "method", "status_code"})
}

// RecordSample counts an accepted sample of the given kind (position, action, speed).
func RecordSample(kind string) {
	globalManager.samplesRecorded.WithLabelValues(kind).Inc()
}

// RecordRejectedSample counts a malformed sample that was dropped.
func RecordRejectedSample(kind string) {
	globalManager.samplesRejected.WithLabelValues(kind).Inc()
}

// RecordDetection counts a detection pass and its latency.
func RecordDetection(latencyMs float64) {
	globalManager.detections.Inc()
	globalManager.detectionLatency.Observe(latencyMs)
}

// RecordInsufficientData counts a pass that lacked data.
func RecordInsufficientData() {
	globalManager.insufficientData.Inc()
}

// RecordTransition counts an accepted persona change.
func RecordTransition(from, to string) {
	globalManager.transitions.WithLabelValues(from, to).Inc()
}

// RecordHold counts a change held back by the cooldown.
func RecordHold() {
	globalManager.holds.Inc()
}

// UpdateActivePersona flips the active gauge to the given persona.
func UpdateActivePersona(active string, all []string) {
	for _, p := range all {
		v := 0.0
		if p == active {
			v = 1
		}
		globalManager.activePersona.WithLabelValues(p).Set(v)
	}
}

// UpdatePersonaScore sets the smoothed score for a persona.
func UpdatePersonaScore(persona string, score float64) {
	globalManager.personaScore.WithLabelValues(persona).Set(score)
}

// RecordAdaptationCommand counts an issued command (clear, apply, refresh).
func RecordAdaptationCommand(kind string) {
	globalManager.adaptationCommands.WithLabelValues(kind).Inc()
}

// UpdateActiveArtifacts sets the number of artifacts owned by the dispatcher.
func UpdateActiveArtifacts(n int) {
	globalManager.activeArtifacts.Set(float64(n))
}

// RecordAdaptationError counts a world failure.
func RecordAdaptationError() {
	globalManager.adaptationErrors.Inc()
}

// UpdateQueueSize sets the current size of the named queue.
func UpdateQueueSize(queue string, size int) {
	globalManager.queueSize.WithLabelValues(queue).Set(float64(size))
}

// RecordQueueEnqueue increments the enqueue counter of the named queue.
func RecordQueueEnqueue(queue string) {
	globalManager.queueEnqueueTotal.WithLabelValues(queue).Inc()
}

// RecordQueueDequeue increments the dequeue counter of the named queue.
func RecordQueueDequeue(queue string) {
	globalManager.queueDequeueTotal.WithLabelValues(queue).Inc()
}

// RecordQueueDropped counts an item that could not be enqueued.
func RecordQueueDropped(queue string) {
	globalManager.queueDropped.WithLabelValues(queue).Inc()
}

// RecordAnalyzedLog counts a processed log by status (scored, skipped, duplicate).
func RecordAnalyzedLog(status string, latencyMs float64) {
	globalManager.analyzedLogs.WithLabelValues(status).Inc()
	globalManager.analysisLatency.Observe(latencyMs)
}

// RecordClustering counts a clustering attempt by status (ok, unavailable, disabled).
func RecordClustering(status string) {
	globalManager.clusteringRuns.WithLabelValues(status).Inc()
}

// UpdateWorkerActiveCount sets the number of active workers.
func UpdateWorkerActiveCount(count int) {
	globalManager.workerActiveCount.Set(float64(count))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
