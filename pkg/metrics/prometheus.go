// Package metrics provides Prometheus metrics for the competition engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every collector exported by the service.
type Manager struct {
	namespace      string
	subsystem      string
	rankingBuckets []float64
	httpBuckets    []float64
	enabled        bool
	registry       prometheus.Registerer

	// Domain
	entriesRegistered  prometheus.Counter
	entriesMerged      prometheus.Counter
	scoreSubmissions   *prometheus.CounterVec
	rankingsComputed   prometheus.Counter
	rankingDuration    prometheus.Histogram
	startListOps       *prometheus.CounterVec
	timelineSlots      prometheus.Gauge
	skippedEntries     *prometheus.CounterVec
	diplomaItems       *prometheus.CounterVec
	notificationsSent  *prometheus.CounterVec
	domainFailures     *prometheus.CounterVec
	highlightChanges   prometheus.Counter
	judgeSessionsFinal prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

var globalManager *Manager //nolint:gochecknoglobals // singleton recorder used by package-level helpers

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // process registry served at /metrics

func init() { //nolint:gochecknoinits // global metrics setup
	customRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	globalManager = NewManager(WithRegisterer(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:      "pirouette",
		subsystem:      "engine",
		rankingBuckets: []float64{0.5, 1, 2.5, 5, 10, 25, 50, 100, 250},
		httpBuckets:    []float64{1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
		enabled:        true,
		registry:       prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	}, labels)
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.entriesRegistered = m.counter("entries_registered_total", "Entries created through registration")
	m.entriesMerged = m.counter("entries_merged_total", "Duplicate entries folded into a primary entry")
	m.scoreSubmissions = m.counterVec("score_submissions_total", "Judge score records written", "outcome")
	m.rankingsComputed = m.counter("rankings_computed_total", "Award rankings computed for an event")
	m.rankingDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ranking_duration_milliseconds",
		Help:      "Time spent aggregating and ranking one event",
		Buckets:   m.rankingBuckets,
	})
	m.startListOps = m.counterVec("startlist_operations_total", "Start-list operations by kind", "op")
	m.timelineSlots = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "timeline_slots",
		Help:      "Slots in the most recently rendered timeline",
	})
	m.skippedEntries = m.counterVec("skipped_entries_total", "Malformed entries skipped during a computation", "stage")
	m.diplomaItems = m.counterVec("diploma_items_total", "Certificates produced by outcome", "outcome")
	m.notificationsSent = m.counterVec("notifications_total", "Notifications handed to the sender by outcome", "outcome")
	m.domainFailures = m.counterVec("domain_failures_total", "Operations rejected with a domain error", "kind")
	m.highlightChanges = m.counter("highlight_changes_total", "Highlight pointer writes")
	m.judgeSessionsFinal = m.counter("judge_sessions_completed_total", "Submits on the last category of a judge session")

	m.httpRequests = m.counterVec("http_requests_total", "HTTP requests by route, method and status", "route", "method", "status_code")
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "HTTP request duration in milliseconds",
		Buckets:   m.httpBuckets,
	}, []string{"route", "method", "status_code"})
}

// RecordEntryRegistered counts a created entry.
func RecordEntryRegistered() {
	if globalManager.enabled {
		globalManager.entriesRegistered.Inc()
	}
}

// RecordEntriesMerged counts entries removed by a merge.
func RecordEntriesMerged(n int) {
	if globalManager.enabled && n > 0 {
		globalManager.entriesMerged.Add(float64(n))
	}
}

// RecordScoreSubmission counts written (or skipped) score records.
func RecordScoreSubmission(outcome string, n int) {
	if globalManager.enabled && n > 0 {
		globalManager.scoreSubmissions.WithLabelValues(outcome).Add(float64(n))
	}
}

// RecordRanking records one ranking computation and its duration.
func RecordRanking(durationMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.rankingsComputed.Inc()
	globalManager.rankingDuration.Observe(durationMs)
}

// RecordStartListOperation counts default/save/publish/unpublish operations.
func RecordStartListOperation(op string) {
	if globalManager.enabled {
		globalManager.startListOps.WithLabelValues(op).Inc()
	}
}

// UpdateTimelineSlots sets the size of the last rendered timeline.
func UpdateTimelineSlots(n int) {
	if globalManager.enabled {
		globalManager.timelineSlots.Set(float64(n))
	}
}

// RecordSkippedEntry counts an entry skipped at the given stage.
func RecordSkippedEntry(stage string) {
	if globalManager.enabled {
		globalManager.skippedEntries.WithLabelValues(stage).Inc()
	}
}

// RecordDiplomaItem counts a rendered or failed certificate.
func RecordDiplomaItem(outcome string) {
	if globalManager.enabled {
		globalManager.diplomaItems.WithLabelValues(outcome).Inc()
	}
}

// RecordNotification counts a notification attempt.
func RecordNotification(outcome string) {
	if globalManager.enabled {
		globalManager.notificationsSent.WithLabelValues(outcome).Inc()
	}
}

// RecordDomainFailure counts an operation rejected with the given error kind.
func RecordDomainFailure(kind string) {
	if globalManager.enabled {
		globalManager.domainFailures.WithLabelValues(kind).Inc()
	}
}

// RecordHighlightChange counts a highlight pointer write.
func RecordHighlightChange() {
	if globalManager.enabled {
		globalManager.highlightChanges.Inc()
	}
}

// RecordJudgeSessionCompleted counts a final-category submit.
func RecordJudgeSessionCompleted() {
	if globalManager.enabled {
		globalManager.judgeSessionsFinal.Inc()
	}
}

// RecordHTTPRequest records one HTTP request with its duration.
func RecordHTTPRequest(route, method, statusCode string, durationMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.httpRequests.WithLabelValues(route, method, statusCode).Inc()
	globalManager.httpRequestDuration.WithLabelValues(route, method, statusCode).Observe(durationMs)
}

// GetRegistry returns the registry served at /metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
