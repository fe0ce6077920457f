package metrics

import (
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default time windows for rolling decision statistics
var DefaultTimeWindows = []string{"1m", "5m", "15m", "1h"}

// Default interval between rolling stat recomputations
const DefaultUpdateInterval = 10 * time.Second

// Capacity of the decision ring buffer; old records fall off once exceeded.
const decisionBufferCapacity = 8192

// RollingStatsConfig configures the rolling decision statistics system.
type RollingStatsConfig struct {
	Enabled        bool
	TimeWindows    []string
	UpdateInterval string
}

// DecisionRecord is one decision outcome tracked for rolling statistics.
type DecisionRecord struct {
	Timestamp      time.Time
	Label          string
	LatencySeconds float64
	Overridden     bool
	Failed         bool
}

// decisionRingBuffer is a fixed-capacity ring of decision records.
type decisionRingBuffer struct {
	data     []DecisionRecord
	head     int
	size     int
	capacity int
	mutex    sync.RWMutex
}

func newDecisionRingBuffer(capacity int) *decisionRingBuffer {
	return &decisionRingBuffer{
		data:     make([]DecisionRecord, capacity),
		capacity: capacity,
	}
}

func (rb *decisionRingBuffer) add(rec DecisionRecord) {
	rb.mutex.Lock()
	defer rb.mutex.Unlock()

	rb.data[rb.head] = rec
	rb.head = (rb.head + 1) % rb.capacity
	if rb.size < rb.capacity {
		rb.size++
	}
}

// since returns the records at or after the given time, oldest first.
func (rb *decisionRingBuffer) since(t time.Time) []DecisionRecord {
	rb.mutex.RLock()
	defer rb.mutex.RUnlock()

	result := make([]DecisionRecord, 0, rb.size)
	for i := 0; i < rb.size; i++ {
		idx := (rb.head - rb.size + i + rb.capacity) % rb.capacity
		if !rb.data[idx].Timestamp.Before(t) {
			result = append(result, rb.data[idx])
		}
	}
	return result
}

// Gauges recomputed by the background updater.
var (
	// VerdictsWindowed reports verdict counts by label over each time window.
	VerdictsWindowed *prometheus.GaugeVec

	// DecisionLatencyAvg reports average decision latency over each time window.
	DecisionLatencyAvg *prometheus.GaugeVec

	// DecisionLatencyP95 reports P95 decision latency over each time window.
	DecisionLatencyP95 *prometheus.GaugeVec

	// OverrideRateWindowed reports the share of decisions where evidence
	// overrode the classifier, over each time window.
	OverrideRateWindowed *prometheus.GaugeVec

	// FailureRateWindowed reports the share of failed decisions over each
	// time window.
	FailureRateWindowed *prometheus.GaugeVec

	rollingInitOnce sync.Once
)

// RollingStatsManager recomputes windowed decision statistics in the background.
type RollingStatsManager struct {
	config         RollingStatsConfig
	timeWindows    []time.Duration
	windowLabels   []string
	updateInterval time.Duration

	buffer *decisionRingBuffer

	stopChan chan struct{}
	running  bool
}

var (
	globalRollingManager      *RollingStatsManager
	globalRollingManagerMutex sync.RWMutex
)

// InitializeRollingStats sets up the rolling decision statistics system and
// starts its background updater.
func InitializeRollingStats(cfg RollingStatsConfig) error {
	rollingInitOnce.Do(func() {
		VerdictsWindowed = promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "credgate_verdicts_windowed_total",
				Help: "Verdict counts by label over each time window",
			},
			[]string{"label", "time_window"},
		)

		DecisionLatencyAvg = promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "credgate_decision_latency_avg_seconds",
				Help: "Average decision latency over each time window",
			},
			[]string{"time_window"},
		)

		DecisionLatencyP95 = promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "credgate_decision_latency_p95_seconds",
				Help: "P95 decision latency over each time window",
			},
			[]string{"time_window"},
		)

		OverrideRateWindowed = promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "credgate_override_rate_windowed",
				Help: "Share of decisions where trusted-source evidence overrode the classifier, per time window",
			},
			[]string{"time_window"},
		)

		FailureRateWindowed = promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "credgate_failure_rate_windowed",
				Help: "Share of failed decisions per time window",
			},
			[]string{"time_window"},
		)
	})

	manager := NewRollingStatsManager(cfg)

	globalRollingManagerMutex.Lock()
	globalRollingManager = manager
	globalRollingManagerMutex.Unlock()

	manager.Start()
	return nil
}

// NewRollingStatsManager creates a manager from config, skipping unparseable
// window durations.
func NewRollingStatsManager(cfg RollingStatsConfig) *RollingStatsManager {
	windowStrings := cfg.TimeWindows
	if len(windowStrings) == 0 {
		windowStrings = DefaultTimeWindows
	}

	timeWindows := make([]time.Duration, 0, len(windowStrings))
	windowLabels := make([]string, 0, len(windowStrings))
	for _, ws := range windowStrings {
		d, err := time.ParseDuration(ws)
		if err != nil {
			continue
		}
		timeWindows = append(timeWindows, d)
		windowLabels = append(windowLabels, ws)
	}

	updateInterval := DefaultUpdateInterval
	if cfg.UpdateInterval != "" {
		if d, err := time.ParseDuration(cfg.UpdateInterval); err == nil {
			updateInterval = d
		}
	}

	return &RollingStatsManager{
		config:         cfg,
		timeWindows:    timeWindows,
		windowLabels:   windowLabels,
		updateInterval: updateInterval,
		buffer:         newDecisionRingBuffer(decisionBufferCapacity),
		stopChan:       make(chan struct{}),
	}
}

// Start begins the background recomputation goroutine.
func (m *RollingStatsManager) Start() {
	if m.running {
		return
	}
	m.running = true

	go func() {
		ticker := time.NewTicker(m.updateInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				m.compute()
			case <-m.stopChan:
				return
			}
		}
	}()
}

// Stop halts the background recomputation.
func (m *RollingStatsManager) Stop() {
	if !m.running {
		return
	}
	close(m.stopChan)
	m.running = false
}

// Record adds a decision record to the rolling buffer.
func (m *RollingStatsManager) Record(rec DecisionRecord) {
	if !m.config.Enabled {
		return
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}
	m.buffer.add(rec)
}

// RollingSnapshot summarizes decisions over one time window.
type RollingSnapshot struct {
	Window       string         `json:"window"`
	Total        int            `json:"total"`
	ByLabel      map[string]int `json:"by_label"`
	AvgLatency   float64        `json:"avg_latency_seconds"`
	P95Latency   float64        `json:"p95_latency_seconds"`
	OverrideRate float64        `json:"override_rate"`
	FailureRate  float64        `json:"failure_rate"`
}

// Snapshot summarizes the records within the given window duration.
func (m *RollingStatsManager) Snapshot(window time.Duration, label string) RollingSnapshot {
	records := m.buffer.since(time.Now().Add(-window))
	snap := RollingSnapshot{Window: label, ByLabel: make(map[string]int)}
	if len(records) == 0 {
		return snap
	}

	latencies := make([]float64, 0, len(records))
	var latencySum float64
	var overrides, failures int
	for _, rec := range records {
		snap.ByLabel[rec.Label]++
		latencies = append(latencies, rec.LatencySeconds)
		latencySum += rec.LatencySeconds
		if rec.Overridden {
			overrides++
		}
		if rec.Failed {
			failures++
		}
	}

	snap.Total = len(records)
	snap.AvgLatency = latencySum / float64(len(records))
	snap.P95Latency = percentile(latencies, 0.95)
	snap.OverrideRate = float64(overrides) / float64(len(records))
	snap.FailureRate = float64(failures) / float64(len(records))
	return snap
}

func (m *RollingStatsManager) compute() {
	for i, window := range m.timeWindows {
		label := m.windowLabels[i]
		snap := m.Snapshot(window, label)

		for verdictLabel, count := range snap.ByLabel {
			VerdictsWindowed.WithLabelValues(verdictLabel, label).Set(float64(count))
		}
		DecisionLatencyAvg.WithLabelValues(label).Set(snap.AvgLatency)
		DecisionLatencyP95.WithLabelValues(label).Set(snap.P95Latency)
		OverrideRateWindowed.WithLabelValues(label).Set(snap.OverrideRate)
		FailureRateWindowed.WithLabelValues(label).Set(snap.FailureRate)
	}
}

// RecordDecision routes a decision record to the global manager, if running.
func RecordDecision(rec DecisionRecord) {
	globalRollingManagerMutex.RLock()
	manager := globalRollingManager
	globalRollingManagerMutex.RUnlock()

	if manager != nil {
		manager.Record(rec)
	}
}

// SnapshotDecisions returns a rolling summary over the given window from the
// global manager, or an empty snapshot if the system is not running.
func SnapshotDecisions(window time.Duration, label string) RollingSnapshot {
	globalRollingManagerMutex.RLock()
	manager := globalRollingManager
	globalRollingManagerMutex.RUnlock()

	if manager == nil {
		return RollingSnapshot{Window: label, ByLabel: map[string]int{}}
	}
	return manager.Snapshot(window, label)
}

// StopRollingStats stops the global manager, if running.
func StopRollingStats() {
	globalRollingManagerMutex.Lock()
	defer globalRollingManagerMutex.Unlock()

	if globalRollingManager != nil {
		globalRollingManager.Stop()
		globalRollingManager = nil
	}
}

func percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	idx := int(float64(len(sorted)-1) * p)
	return sorted[idx]
}
