// Package metrics provides Prometheus metrics for the looplink remote-command service.
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

// Manager manages all Prometheus metrics for the looplink service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Poll Pipeline Metrics - fetch -> ingest -> reconcile cycle health
	pollCycles       prometheus.Counter
	pollStageErrors  *prometheus.CounterVec
	pollSkippedNoNet prometheus.Counter

	// Profile Ingestion Metrics
	profileIngests      prometheus.Counter
	profileIngestErrors prometheus.Counter
	lastProfileSyncUnix prometheus.Gauge
	scheduleBreakpoints *prometheus.GaugeVec

	// Reconciliation Metrics
	reconcilePasses        prometheus.Counter
	reconcileEntriesSeen   prometheus.Counter
	reconcileEntriesFailed prometheus.Counter
	overrideActive         prometheus.Gauge
	reconcileDuration      prometheus.Histogram

	// Command Dispatch Metrics
	dispatches      *prometheus.CounterVec
	dispatchLatency *prometheus.HistogramVec
	authFailures    prometheus.Counter

	// Slot Store Metrics
	slotWrites        prometheus.Counter
	slotNotifications prometheus.Counter

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

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
		namespace:        "looplink",
		subsystem:        "remote",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
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

	// Poll Pipeline Metrics
	m.pollCycles = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "poll_cycles_total",
		Help:      "Total number of completed fetch/ingest/reconcile poll cycles",
	})

	m.pollStageErrors = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "poll_stage_errors_total",
			Help:      "Total number of poll cycle errors by pipeline stage",
		},
		[]string{"stage"},
	)

	m.pollSkippedNoNet = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "poll_skipped_offline_total",
		Help:      "Total number of poll cycles skipped because connectivity was absent",
	})

	// Profile Ingestion Metrics
	m.profileIngests = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "profile_ingests_total",
		Help:      "Total number of successfully ingested remote profiles",
	})

	m.profileIngestErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "profile_ingest_errors_total",
		Help:      "Total number of profile ingestion failures",
	})

	m.lastProfileSyncUnix = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "profile_last_sync_unix",
		Help:      "Unix timestamp of the last successful profile sync",
	})

	m.scheduleBreakpoints = auto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "schedule_breakpoints",
			Help:      "Number of breakpoints per ingested schedule",
		},
		[]string{"schedule"},
	)

	// Reconciliation Metrics
	m.reconcilePasses = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "reconcile_passes_total",
		Help:      "Total number of treatment-log reconciliation passes",
	})

	m.reconcileEntriesSeen = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "reconcile_entries_total",
		Help:      "Total number of treatment-log entries examined",
	})

	m.reconcileEntriesFailed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "reconcile_entries_skipped_total",
		Help:      "Total number of malformed treatment-log entries skipped",
	})

	m.overrideActive = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "override_active",
		Help:      "Whether an override is currently considered active (1) or not (0)",
	})

	m.reconcileDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "reconcile_duration_milliseconds",
		Help:      "Reconciliation pass duration in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	// Command Dispatch Metrics
	m.dispatches = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "dispatches_total",
			Help:      "Total number of remote command dispatches by transport and outcome",
		},
		[]string{"transport", "outcome"},
	)

	m.dispatchLatency = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "dispatch_latency_milliseconds",
			Help:      "Remote command dispatch latency in milliseconds by transport",
			Buckets:   m.histogramBuckets,
		},
		[]string{"transport"},
	)

	m.authFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "auth_failures_total",
		Help:      "Total number of denied authentication attempts before SMS dispatch",
	})

	// Slot Store Metrics
	m.slotWrites = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "slot_writes_total",
		Help:      "Total number of observable slot writes",
	})

	m.slotNotifications = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "slot_notifications_total",
		Help:      "Total number of observer notifications delivered",
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

	// System Performance Metrics
	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_bytes",
		Help:      "Current allocated memory in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutines",
		Help:      "Current number of goroutines",
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_gc_pause_milliseconds",
		Help:      "Garbage collection pause time in milliseconds",
		Buckets:   m.histogramBuckets,
	})
}

// GetRegistry returns the custom Prometheus registry used for all metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Package-level helpers operating on the global manager.

// RecordPollCycle increments the completed poll cycle counter.
func RecordPollCycle() { globalManager.pollCycles.Inc() }

// RecordPollStageError increments the error counter for a pipeline stage.
func RecordPollStageError(stage string) {
	globalManager.pollStageErrors.WithLabelValues(stage).Inc()
}

// RecordPollSkippedOffline increments the connectivity-skip counter.
func RecordPollSkippedOffline() { globalManager.pollSkippedNoNet.Inc() }

// RecordProfileIngest increments the successful ingest counter and sync timestamp.
func RecordProfileIngest() {
	globalManager.profileIngests.Inc()
	globalManager.lastProfileSyncUnix.SetToCurrentTime()
}

// RecordProfileIngestError increments the ingest failure counter.
func RecordProfileIngestError() { globalManager.profileIngestErrors.Inc() }

// UpdateScheduleBreakpoints records the breakpoint count for a named schedule.
func UpdateScheduleBreakpoints(schedule string, count int) {
	globalManager.scheduleBreakpoints.WithLabelValues(schedule).Set(float64(count))
}

// RecordReconcilePass increments the reconciliation pass counter.
func RecordReconcilePass() { globalManager.reconcilePasses.Inc() }

// RecordReconcileEntry increments the examined-entries counter.
func RecordReconcileEntry() { globalManager.reconcileEntriesSeen.Inc() }

// RecordReconcileEntrySkipped increments the malformed-entries counter.
func RecordReconcileEntrySkipped() { globalManager.reconcileEntriesFailed.Inc() }

// UpdateOverrideActive sets the active-override gauge.
func UpdateOverrideActive(active bool) {
	if active {
		globalManager.overrideActive.Set(1)
		return
	}
	globalManager.overrideActive.Set(0)
}

// RecordReconcileDuration observes the duration of a reconciliation pass.
func RecordReconcileDuration(ms float64) { globalManager.reconcileDuration.Observe(ms) }

// RecordDispatch increments the dispatch counter for a transport and outcome.
func RecordDispatch(transport, outcome string) {
	globalManager.dispatches.WithLabelValues(transport, outcome).Inc()
}

// RecordDispatchLatency observes dispatch latency for a transport.
func RecordDispatchLatency(transport string, ms float64) {
	globalManager.dispatchLatency.WithLabelValues(transport).Observe(ms)
}

// RecordAuthFailure increments the authentication denial counter.
func RecordAuthFailure() { globalManager.authFailures.Inc() }

// RecordSlotWrite increments the slot write counter.
func RecordSlotWrite() { globalManager.slotWrites.Inc() }

// RecordSlotNotification increments the observer notification counter.
func RecordSlotNotification() { globalManager.slotNotifications.Inc() }

// RecordHTTPRequest increments the HTTP request counter.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration observes HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, ms float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(ms)
}

// UpdateSystemMemoryUsage sets the allocated-memory gauge.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine gauge.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime observes a GC pause duration.
func RecordSystemGCPauseTime(ms float64) { globalManager.systemGCPauseTime.Observe(ms) }
