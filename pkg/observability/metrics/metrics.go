package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/credgate/credgate/pkg/consts"
)

var (
	// VerdictsTotal counts emitted verdicts by final label.
	VerdictsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "credgate_verdicts_total",
			Help: "The total number of verdicts emitted, labeled by final label",
		},
		[]string{"label"},
	)

	// GateRejections counts inputs rejected by the gatekeeper, by reason.
	GateRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "credgate_gate_rejections_total",
			Help: "The total number of inputs rejected by the input gatekeeper, by reason",
		},
		[]string{"reason"},
	)

	// StageDuration tracks per-stage pipeline latency.
	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "credgate_stage_duration_seconds",
			Help:    "Duration of each decision pipeline stage in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"stage"},
	)

	// DecisionDuration tracks end-to-end decision latency.
	DecisionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "credgate_decision_duration_seconds",
			Help:    "End-to-end duration of a decision in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// ClassifierRequests counts classifier invocations by backend and outcome.
	ClassifierRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "credgate_classifier_requests_total",
			Help: "The total number of classifier invocations, by backend and outcome",
		},
		[]string{"backend", "outcome"},
	)

	// ClassifierLatency tracks classifier invocation latency by backend.
	ClassifierLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "credgate_classifier_latency_seconds",
			Help:    "The latency of classifier invocations in seconds, by backend",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"backend"},
	)

	// CacheOperations counts lookup cache activity by cache name and operation
	// (hit, miss, evict, coalesced).
	CacheOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "credgate_cache_operations_total",
			Help: "The total number of lookup cache operations, by cache and operation",
		},
		[]string{"cache", "operation"},
	)

	// CacheEntries reports the current number of entries per cache.
	CacheEntries = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "credgate_cache_entries",
			Help: "The current number of entries held by each lookup cache",
		},
		[]string{"cache"},
	)

	// SearchRequests counts web search calls by provider and outcome.
	SearchRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "credgate_search_requests_total",
			Help: "The total number of web search requests, by provider and outcome",
		},
		[]string{"provider", "outcome"},
	)

	// SearchLatency tracks web search latency by provider.
	SearchLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "credgate_search_latency_seconds",
			Help:    "The latency of web search requests in seconds, by provider",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider"},
	)

	// CorroborationMatches tracks how many trusted-source matches each
	// corroboration lookup produced.
	CorroborationMatches = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "credgate_corroboration_matches",
			Help:    "Distribution of trusted-source match counts per corroboration lookup",
			Buckets: []float64{0, 1, 2, 3},
		},
	)

	// EvidenceOverrides counts verdicts where corroborating evidence overrode
	// the classifier's label.
	EvidenceOverrides = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "credgate_evidence_overrides_total",
			Help: "The total number of verdicts where trusted-source evidence overrode the classifier",
		},
	)

	// CorrectionLookups counts correction lookups by outcome (found, none).
	CorrectionLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "credgate_correction_lookups_total",
			Help: "The total number of correction lookups, by outcome",
		},
		[]string{"outcome"},
	)

	// Extractions counts article extraction attempts by outcome.
	Extractions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "credgate_extractions_total",
			Help: "The total number of article extraction attempts, by outcome",
		},
		[]string{"outcome"},
	)

	// StoreOperations counts verdict store activity by backend, operation and outcome.
	StoreOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "credgate_store_operations_total",
			Help: "The total number of verdict store operations, by backend, operation and outcome",
		},
		[]string{"backend", "operation", "outcome"},
	)

	// FeedRefreshes counts trusted-outlet feed snapshot refreshes by outcome.
	FeedRefreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "credgate_feed_refreshes_total",
			Help: "The total number of trusted-outlet feed refreshes, by outcome",
		},
		[]string{"outcome"},
	)

	// FeedHeadlines reports the number of headlines in the current feed snapshot.
	FeedHeadlines = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "credgate_feed_headlines",
			Help: "The number of headlines held in the current trusted-outlet feed snapshot",
		},
	)

	// HTTPRequests counts API requests by method, route and status class.
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "credgate_http_requests_total",
			Help: "The total number of API requests, by method, route and status",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPDuration tracks API request latency by route.
	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "credgate_http_request_duration_seconds",
			Help:    "The latency of API requests in seconds, by route",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	// RateLimited counts requests rejected by the rate limiter.
	RateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "credgate_rate_limited_total",
			Help: "The total number of API requests rejected by the rate limiter",
		},
	)
)

// RecordVerdict increments the verdict counter for a final label.
func RecordVerdict(label string) {
	if label == "" {
		label = consts.UnknownLabel
	}
	VerdictsTotal.WithLabelValues(label).Inc()
}

// RecordGateRejection increments the gate rejection counter for a reason.
func RecordGateRejection(reason string) {
	if reason == "" {
		reason = consts.UnknownLabel
	}
	GateRejections.WithLabelValues(reason).Inc()
}

// RecordStageDuration records the duration of a pipeline stage.
func RecordStageDuration(stage string, seconds float64) {
	StageDuration.WithLabelValues(stage).Observe(seconds)
}

// RecordDecisionDuration records the end-to-end duration of a decision.
func RecordDecisionDuration(seconds float64) {
	DecisionDuration.Observe(seconds)
}

// RecordClassifierRequest records a classifier invocation outcome.
func RecordClassifierRequest(backend, outcome string) {
	ClassifierRequests.WithLabelValues(backend, outcome).Inc()
}

// RecordClassifierLatency records the latency of a classifier invocation.
func RecordClassifierLatency(backend string, seconds float64) {
	ClassifierLatency.WithLabelValues(backend).Observe(seconds)
}

// RecordCacheOperation records a lookup cache operation.
func RecordCacheOperation(cache, operation string) {
	CacheOperations.WithLabelValues(cache, operation).Inc()
}

// SetCacheEntries sets the current entry count for a cache.
func SetCacheEntries(cache string, n int) {
	CacheEntries.WithLabelValues(cache).Set(float64(n))
}

// RecordSearchRequest records a web search outcome.
func RecordSearchRequest(provider, outcome string) {
	SearchRequests.WithLabelValues(provider, outcome).Inc()
}

// RecordSearchLatency records the latency of a web search request.
func RecordSearchLatency(provider string, seconds float64) {
	SearchLatency.WithLabelValues(provider).Observe(seconds)
}

// RecordCorroborationMatches records the number of trusted-source matches
// produced by one corroboration lookup.
func RecordCorroborationMatches(n int) {
	CorroborationMatches.Observe(float64(n))
}

// RecordEvidenceOverride records that evidence overrode the classifier.
func RecordEvidenceOverride() {
	EvidenceOverrides.Inc()
}

// RecordCorrectionLookup records a correction lookup outcome.
func RecordCorrectionLookup(found bool) {
	outcome := "none"
	if found {
		outcome = "found"
	}
	CorrectionLookups.WithLabelValues(outcome).Inc()
}

// RecordExtraction records an article extraction outcome.
func RecordExtraction(outcome string) {
	Extractions.WithLabelValues(outcome).Inc()
}

// RecordStoreOperation records a verdict store operation outcome.
func RecordStoreOperation(backend, operation string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	StoreOperations.WithLabelValues(backend, operation, outcome).Inc()
}

// RecordFeedRefresh records a feed snapshot refresh outcome.
func RecordFeedRefresh(err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	FeedRefreshes.WithLabelValues(outcome).Inc()
}

// SetFeedHeadlines sets the current feed snapshot headline count.
func SetFeedHeadlines(n int) {
	FeedHeadlines.Set(float64(n))
}

// RecordHTTPRequest records a completed API request.
func RecordHTTPRequest(method, route string, status int) {
	HTTPRequests.WithLabelValues(method, route, statusClass(status)).Inc()
}

// RecordHTTPDuration records the latency of a completed API request.
func RecordHTTPDuration(route string, seconds float64) {
	HTTPDuration.WithLabelValues(route).Observe(seconds)
}

// RecordRateLimited records a request rejected by the rate limiter.
func RecordRateLimited() {
	RateLimited.Inc()
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	default:
		return consts.UnknownLabel
	}
}
