package metrics

import (
	"testing"
	"time"
)

func TestNewRollingStatsManager(t *testing.T) {
	tests := []struct {
		name            string
		config          RollingStatsConfig
		wantTimeWindows int
		wantInterval    time.Duration
	}{
		{
			name:            "Default configuration",
			config:          RollingStatsConfig{Enabled: true},
			wantTimeWindows: 4, // 1m, 5m, 15m, 1h
			wantInterval:    DefaultUpdateInterval,
		},
		{
			name: "Custom time windows",
			config: RollingStatsConfig{
				Enabled:     true,
				TimeWindows: []string{"30s", "2m", "10m"},
			},
			wantTimeWindows: 3,
			wantInterval:    DefaultUpdateInterval,
		},
		{
			name: "Invalid windows are skipped",
			config: RollingStatsConfig{
				Enabled:     true,
				TimeWindows: []string{"1m", "not-a-duration", "5m"},
			},
			wantTimeWindows: 2,
			wantInterval:    DefaultUpdateInterval,
		},
		{
			name: "Custom update interval",
			config: RollingStatsConfig{
				Enabled:        true,
				UpdateInterval: "30s",
			},
			wantTimeWindows: 4,
			wantInterval:    30 * time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewRollingStatsManager(tt.config)
			if len(m.timeWindows) != tt.wantTimeWindows {
				t.Errorf("time windows = %d, want %d", len(m.timeWindows), tt.wantTimeWindows)
			}
			if m.updateInterval != tt.wantInterval {
				t.Errorf("update interval = %v, want %v", m.updateInterval, tt.wantInterval)
			}
		})
	}
}

func TestDecisionRingBuffer(t *testing.T) {
	rb := newDecisionRingBuffer(3)
	now := time.Now()

	for i := 0; i < 5; i++ {
		rb.add(DecisionRecord{
			Timestamp:      now.Add(time.Duration(i) * time.Second),
			Label:          "REAL",
			LatencySeconds: float64(i),
		})
	}

	// Capacity 3: only the last three records survive.
	records := rb.since(now)
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}
	if records[0].LatencySeconds != 2 {
		t.Errorf("oldest surviving record latency = %v, want 2", records[0].LatencySeconds)
	}
	if records[2].LatencySeconds != 4 {
		t.Errorf("newest record latency = %v, want 4", records[2].LatencySeconds)
	}
}

func TestDecisionRingBufferSinceFilters(t *testing.T) {
	rb := newDecisionRingBuffer(16)
	now := time.Now()

	rb.add(DecisionRecord{Timestamp: now.Add(-2 * time.Hour), Label: "FAKE"})
	rb.add(DecisionRecord{Timestamp: now.Add(-30 * time.Second), Label: "REAL"})
	rb.add(DecisionRecord{Timestamp: now, Label: "REAL"})

	records := rb.since(now.Add(-time.Minute))
	if len(records) != 2 {
		t.Fatalf("got %d records within window, want 2", len(records))
	}
	for _, rec := range records {
		if rec.Label != "REAL" {
			t.Errorf("unexpected record in window: %+v", rec)
		}
	}
}

func TestRollingSnapshot(t *testing.T) {
	m := NewRollingStatsManager(RollingStatsConfig{Enabled: true})
	now := time.Now()

	m.Record(DecisionRecord{Timestamp: now, Label: "REAL", LatencySeconds: 0.2, Overridden: true})
	m.Record(DecisionRecord{Timestamp: now, Label: "FAKE", LatencySeconds: 0.4})
	m.Record(DecisionRecord{Timestamp: now, Label: "INVALID", LatencySeconds: 0.001})
	m.Record(DecisionRecord{Timestamp: now, Label: "REAL", LatencySeconds: 0.3, Failed: false})

	snap := m.Snapshot(time.Minute, "1m")
	if snap.Total != 4 {
		t.Fatalf("snapshot total = %d, want 4", snap.Total)
	}
	if snap.ByLabel["REAL"] != 2 || snap.ByLabel["FAKE"] != 1 || snap.ByLabel["INVALID"] != 1 {
		t.Errorf("unexpected label counts: %v", snap.ByLabel)
	}
	if snap.OverrideRate != 0.25 {
		t.Errorf("override rate = %v, want 0.25", snap.OverrideRate)
	}
	if snap.FailureRate != 0 {
		t.Errorf("failure rate = %v, want 0", snap.FailureRate)
	}
}

func TestRollingSnapshotEmpty(t *testing.T) {
	m := NewRollingStatsManager(RollingStatsConfig{Enabled: true})

	snap := m.Snapshot(time.Minute, "1m")
	if snap.Total != 0 {
		t.Errorf("empty snapshot total = %d, want 0", snap.Total)
	}
	if snap.ByLabel == nil {
		t.Error("empty snapshot should still carry a label map")
	}
}

func TestRecordIgnoredWhenDisabled(t *testing.T) {
	m := NewRollingStatsManager(RollingStatsConfig{Enabled: false})

	m.Record(DecisionRecord{Label: "REAL", LatencySeconds: 0.2})

	snap := m.Snapshot(time.Hour, "1h")
	if snap.Total != 0 {
		t.Errorf("disabled manager recorded %d records, want 0", snap.Total)
	}
}

func TestPercentile(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		p        float64
		expected float64
	}{
		{"Empty", nil, 0.95, 0},
		{"Single", []float64{0.5}, 0.95, 0.5},
		{"Median of odd set", []float64{3, 1, 2}, 0.5, 2},
		{"P95 of ten", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.95, 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := percentile(tt.values, tt.p)
			if result != tt.expected {
				t.Errorf("percentile(%v, %v) = %v, want %v", tt.values, tt.p, result, tt.expected)
			}
		})
	}
}

func TestManagerStartStop(t *testing.T) {
	m := NewRollingStatsManager(RollingStatsConfig{Enabled: true, UpdateInterval: "10ms"})

	m.Start()
	if !m.running {
		t.Fatal("manager should be running after Start")
	}
	m.Stop()
	if m.running {
		t.Fatal("manager should not be running after Stop")
	}
	// Second Stop must not panic on a closed channel.
	m.Stop()
}
