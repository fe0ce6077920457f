package commands

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestStatusCommandStructure(t *testing.T) {
	cmd := NewStatusCmd()

	if cmd.Use != "status" {
		t.Errorf("expected Use %q, got %q", "status", cmd.Use)
	}
	if cmd.Short != "Check service health" {
		t.Errorf("unexpected Short: %q", cmd.Short)
	}
	if cmd.RunE == nil {
		t.Error("status command should have a RunE function")
	}
}

func TestStatusCmdAgainstRunningService(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"healthy","service":"credgate","classifier":"remote","store":{"backend":"memory","enabled":true,"healthy":true},"caches":[{"name":"corroboration","entries":1,"capacity":128,"hits":4,"misses":2,"evictions":0}],"decisions":{"window":"5m","total":6,"by_label":{"REAL":4,"FAKE":1,"INVALID":1},"avg_latency_seconds":0.1,"p95_latency_seconds":0.3,"override_rate":0.5,"failure_rate":0}}`))
	}))
	defer srv.Close()

	for _, format := range []string{"table", "json", "yaml"} {
		t.Run(format, func(t *testing.T) {
			rootCmd := newTestRootCmd()
			rootCmd.AddCommand(NewStatusCmd())
			rootCmd.SetArgs([]string{"status", "-s", srv.URL, "-o", format})

			if _, err := rootCmd.ExecuteC(); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestStatusCmdUnreachableService(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	rootCmd := newTestRootCmd()
	rootCmd.AddCommand(NewStatusCmd())
	rootCmd.SetArgs([]string{"status", "-s", srv.URL})

	if _, err := rootCmd.ExecuteC(); err == nil {
		t.Error("expected error for unreachable service, got nil")
	}
}
