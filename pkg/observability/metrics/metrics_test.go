package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestStatusClass(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		expected string
	}{
		{"OK", 200, "2xx"},
		{"Created", 201, "2xx"},
		{"Redirect", 302, "3xx"},
		{"Bad request", 400, "4xx"},
		{"Rate limited", 429, "4xx"},
		{"Server error", 500, "5xx"},
		{"Unavailable", 503, "5xx"},
		{"Unset", 0, "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := statusClass(tt.status)
			if result != tt.expected {
				t.Errorf("statusClass(%d) = %s, want %s", tt.status, result, tt.expected)
			}
		})
	}
}

func TestRecordVerdictCounters(t *testing.T) {
	before := testutil.ToFloat64(VerdictsTotal.WithLabelValues("REAL"))

	RecordVerdict("REAL")
	RecordVerdict("REAL")

	after := testutil.ToFloat64(VerdictsTotal.WithLabelValues("REAL"))
	if after-before != 2 {
		t.Errorf("expected REAL verdict counter to grow by 2, grew by %v", after-before)
	}
}

func TestRecordVerdictDefaultsEmptyLabel(t *testing.T) {
	before := testutil.ToFloat64(VerdictsTotal.WithLabelValues("unknown"))

	RecordVerdict("")

	after := testutil.ToFloat64(VerdictsTotal.WithLabelValues("unknown"))
	if after-before != 1 {
		t.Errorf("expected empty label to count as unknown, grew by %v", after-before)
	}
}

func TestRecordCacheOperation(t *testing.T) {
	before := testutil.ToFloat64(CacheOperations.WithLabelValues("corroboration", "hit"))

	RecordCacheOperation("corroboration", "hit")

	after := testutil.ToFloat64(CacheOperations.WithLabelValues("corroboration", "hit"))
	if after-before != 1 {
		t.Errorf("expected cache hit counter to grow by 1, grew by %v", after-before)
	}
}

func TestRecordCorrectionLookupOutcomes(t *testing.T) {
	foundBefore := testutil.ToFloat64(CorrectionLookups.WithLabelValues("found"))
	noneBefore := testutil.ToFloat64(CorrectionLookups.WithLabelValues("none"))

	RecordCorrectionLookup(true)
	RecordCorrectionLookup(false)
	RecordCorrectionLookup(false)

	if got := testutil.ToFloat64(CorrectionLookups.WithLabelValues("found")) - foundBefore; got != 1 {
		t.Errorf("found outcome grew by %v, want 1", got)
	}
	if got := testutil.ToFloat64(CorrectionLookups.WithLabelValues("none")) - noneBefore; got != 2 {
		t.Errorf("none outcome grew by %v, want 2", got)
	}
}

func TestRecordStoreOperationOutcome(t *testing.T) {
	okBefore := testutil.ToFloat64(StoreOperations.WithLabelValues("memory", "record", "success"))

	RecordStoreOperation("memory", "record", nil)

	if got := testutil.ToFloat64(StoreOperations.WithLabelValues("memory", "record", "success")) - okBefore; got != 1 {
		t.Errorf("success outcome grew by %v, want 1", got)
	}
}

func TestSetCacheEntries(t *testing.T) {
	SetCacheEntries("correction", 17)

	if got := testutil.ToFloat64(CacheEntries.WithLabelValues("correction")); got != 17 {
		t.Errorf("cache entries gauge = %v, want 17", got)
	}
}

// Smoke tests: recording must never panic even for odd inputs.
func TestRecordHelpersSmoke(_ *testing.T) {
	RecordGateRejection("")
	RecordStageDuration("gate", 0.001)
	RecordDecisionDuration(0.1)
	RecordClassifierRequest("remote", "success")
	RecordClassifierLatency("remote", 0.2)
	RecordSearchRequest("duckduckgo", "error")
	RecordSearchLatency("duckduckgo", 1.5)
	RecordCorroborationMatches(3)
	RecordEvidenceOverride()
	RecordExtraction("success")
	RecordFeedRefresh(nil)
	SetFeedHeadlines(42)
	RecordHTTPRequest("POST", "/api/v1/verdicts", 200)
	RecordHTTPDuration("/api/v1/verdicts", 0.05)
	RecordRateLimited()
}

func BenchmarkRecordVerdict(b *testing.B) {
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		RecordVerdict("FAKE")
	}
}
