// Package metrics provides Prometheus metrics for the mapty workout tracker.
package metrics

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager manages all Prometheus metrics for the tracker.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer
	gatherer         *prometheus.Registry

	// Workout lifecycle
	workoutsRecorded *prometheus.CounterVec
	workoutsRemoved  prometheus.Counter
	validationErrors *prometheus.CounterVec
	totalWorkouts    prometheus.Gauge
	markerCount      prometheus.Gauge

	// Controller actions
	actions      *prometheus.CounterVec
	restores     *prometheus.CounterVec
	geolocations *prometheus.CounterVec

	// Storage
	storageLatency    *prometheus.HistogramVec
	persistenceErrors *prometheus.CounterVec

	// Event loop
	queueCapacity    prometheus.Gauge
	queueSize        prometheus.Gauge
	queueUtilization prometheus.Gauge
	queueEnqueue     prometheus.Counter
	queueDequeue     prometheus.Counter
	queueEnqueueErrs prometheus.Counter
	eventLatency     *prometheus.HistogramVec
	eventErrors      *prometheus.CounterVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec
	errorLatency         *prometheus.HistogramVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Observer
}

// Process-wide manager used by the Record and Update helpers.
var globalManager atomic.Pointer[Manager] //nolint:gochecknoglobals // intentional global for singleton metrics manager

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	if err := Init(); err != nil {
		panic(err)
	}
}

// Init replaces the process-wide manager with one built from opts on a fresh
// registry, which GetRegistry then serves.
func Init(opts ...Option) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrInitFailed, r)
		}
	}()
	reg := prometheus.NewRegistry()
	m := NewManager(append([]Option{WithPrometheusRegistry(reg)}, opts...)...)
	m.gatherer = reg
	globalManager.Store(m)
	return nil
}

// active returns the process-wide manager, or nil when metrics are disabled.
func active() *Manager {
	m := globalManager.Load()
	if m == nil || !m.enabled {
		return nil
	}
	return m
}

// Enabled reports whether the manager records anything.
func (m *Manager) Enabled() bool { return m.enabled }

// RefreshInterval is how often gauge updaters should sample.
func (m *Manager) RefreshInterval() time.Duration { return m.refreshInterval }

// RefreshInterval returns the process-wide gauge sampling interval.
func RefreshInterval() time.Duration {
	return globalManager.Load().refreshInterval
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "mapty",
		subsystem:        "tracker",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		metricPrefix:     "",
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) name(n string) string {
	if m.metricPrefix == "" {
		return n
	}
	return m.metricPrefix + "_" + n
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		ConstLabels: m.customLabels,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		ConstLabels: m.customLabels,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		ConstLabels: m.customLabels,
	})
}

func (m *Manager) histogramVec(name, help string, buckets []float64, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.customLabels,
	}, labels)
}

// initializeMetrics creates all the Prometheus metrics on the configured registry.
func (m *Manager) initializeMetrics() {
	m.workoutsRecorded = m.counterVec("workouts_recorded_total", "Total number of workouts recorded", "type")
	m.workoutsRemoved = m.counter("workouts_removed_total", "Total number of workouts removed")
	m.validationErrors = m.counterVec("validation_errors_total", "Rejected form submissions by offending field", "field")
	m.totalWorkouts = m.gauge("workouts", "Current number of workouts in the list")
	m.markerCount = m.gauge("markers", "Current number of markers on the map")

	m.actions = m.counterVec("actions_total", "Controller actions by name", "action")
	m.restores = m.counterVec("restores_total", "Startup restores by outcome", "outcome")
	m.geolocations = m.counterVec("geolocations_total", "Geolocation callbacks by outcome", "outcome")

	m.storageLatency = m.histogramVec("storage_latency_milliseconds", "Storage operation latency in milliseconds",
		m.histogramBuckets, "op")
	m.persistenceErrors = m.counterVec("persistence_errors_total", "Failed storage operations", "op")

	m.queueCapacity = m.gauge("queue_capacity", "Maximum event queue capacity")
	m.queueSize = m.gauge("queue_size", "Current size of the event queue")
	m.queueUtilization = m.gauge("queue_utilization_ratio", "Queue utilization ratio (current size / capacity)")
	m.queueEnqueue = m.counter("queue_enqueue_total", "Total number of events enqueued")
	m.queueDequeue = m.counter("queue_dequeue_total", "Total number of events dequeued")
	m.queueEnqueueErrs = m.counter("queue_enqueue_errors_total", "Total number of rejected enqueues")
	m.eventLatency = m.histogramVec("event_latency_milliseconds", "Event handling latency in milliseconds",
		m.histogramBuckets, "event")
	m.eventErrors = m.counterVec("event_errors_total", "Events that returned an error", "event")

	m.httpRequests = m.counterVec("http_requests_total", "Total number of HTTP requests by endpoint and method",
		"endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds", "HTTP request duration in milliseconds",
		m.histogramBuckets, "endpoint", "method", "status_code")

	m.errorRateByComponent = m.counterVec("errors_by_component_total", "Total number of errors by component",
		"component", "error_type")
	m.errorRateByType = m.counterVec("errors_by_type_total", "Total number of errors by type",
		"error_type", "severity")
	m.errorRateByEndpoint = m.counterVec("errors_by_endpoint_total", "Total number of errors by endpoint",
		"endpoint", "method", "error_type")
	m.errorLatency = m.histogramVec("error_latency_milliseconds", "Latency of operations that resulted in errors",
		m.histogramBuckets, "component", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "System memory usage in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = m.histogramVec("system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}).WithLabelValues()
}

// RecordWorkoutRecorded counts a recorded workout of the given type.
func RecordWorkoutRecorded(kind string) {
	if m := active(); m != nil {
		m.workoutsRecorded.WithLabelValues(kind).Inc()
	}
}

// RecordWorkoutRemoved counts a removed workout.
func RecordWorkoutRemoved() {
	if m := active(); m != nil {
		m.workoutsRemoved.Inc()
	}
}

// RecordValidationError counts a rejected submission.
func RecordValidationError(field string) {
	if m := active(); m != nil {
		m.validationErrors.WithLabelValues(field).Inc()
	}
}

// UpdateTotalWorkouts sets the current list length.
func UpdateTotalWorkouts(count int) {
	if m := active(); m != nil {
		m.totalWorkouts.Set(float64(count))
	}
}

// UpdateMarkerCount sets the current number of markers.
func UpdateMarkerCount(count int) {
	if m := active(); m != nil {
		m.markerCount.Set(float64(count))
	}
}

// RecordAction counts a controller action such as sort, focus or reset.
func RecordAction(action string) {
	if m := active(); m != nil {
		m.actions.WithLabelValues(action).Inc()
	}
}

// RecordRestore counts a startup restore by outcome: restored, empty, corrupt.
func RecordRestore(outcome string) {
	if m := active(); m != nil {
		m.restores.WithLabelValues(outcome).Inc()
	}
}

// RecordGeolocation counts a geolocation callback by outcome.
func RecordGeolocation(outcome string) {
	if m := active(); m != nil {
		m.geolocations.WithLabelValues(outcome).Inc()
	}
}

// RecordStorageLatency records storage latency for op (save, load).
func RecordStorageLatency(op string, latencyMs float64) {
	if m := active(); m != nil {
		m.storageLatency.WithLabelValues(op).Observe(latencyMs)
	}
}

// RecordPersistenceError counts a failed storage operation.
func RecordPersistenceError(op string) {
	if m := active(); m != nil {
		m.persistenceErrors.WithLabelValues(op).Inc()
		m.errorRateByComponent.WithLabelValues("storage", op).Inc()
	}
}

// Queue Metrics Functions.

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	if m := active(); m != nil {
		m.queueCapacity.Set(float64(capacity))
	}
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	if m := active(); m != nil {
		m.queueSize.Set(float64(size))
	}
}

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	if m := active(); m != nil {
		m.queueUtilization.Set(utilization)
	}
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	if m := active(); m != nil {
		m.queueEnqueue.Inc()
	}
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	if m := active(); m != nil {
		m.queueDequeue.Inc()
	}
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	if m := active(); m != nil {
		m.queueEnqueueErrs.Inc()
	}
}

// RecordEventLatency records how long the loop spent on one event.
func RecordEventLatency(event string, latencyMs float64) {
	if m := active(); m != nil {
		m.eventLatency.WithLabelValues(event).Observe(latencyMs)
	}
}

// RecordEventError counts an event whose handler returned an error.
func RecordEventError(event string) {
	if m := active(); m != nil {
		m.eventErrors.WithLabelValues(event).Inc()
	}
}

// HTTP Metrics Functions.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	if m := active(); m != nil {
		m.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	}
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	if m := active(); m != nil {
		m.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
	}
}

// Error Metrics Functions.

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	if m := active(); m != nil {
		m.errorRateByComponent.WithLabelValues(component, errorType).Inc()
	}
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	if m := active(); m != nil {
		m.errorRateByType.WithLabelValues(errorType, severity).Inc()
	}
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	if m := active(); m != nil {
		m.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
	}
}

// RecordErrorLatency records the latency of an operation that resulted in an error.
func RecordErrorLatency(component, errorType string, latencyMs float64) {
	if m := active(); m != nil {
		m.errorLatency.WithLabelValues(component, errorType).Observe(latencyMs)
	}
}

// System Performance Metrics Functions.

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	if m := active(); m != nil {
		m.systemMemoryUsage.Set(float64(bytes))
	}
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	if m := active(); m != nil {
		m.systemGoroutineCount.Set(float64(count))
	}
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	if m := active(); m != nil {
		m.systemGCPauseTime.Observe(pauseMs)
	}
}

// GetRegistry returns the registry of the process-wide manager.
func GetRegistry() *prometheus.Registry {
	return globalManager.Load().gatherer
}
