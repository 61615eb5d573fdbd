package observability

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveAPI("GET", "/api/tasks", "200", time.Millisecond)
	m.ObserveAIRequest("gemini", "ok", time.Second)
	m.IncSuggestionResolved("task", true)
	if err := m.WritePrometheus(&bytes.Buffer{}); err != nil {
		t.Fatalf("nil write: %v", err)
	}
}

func TestWritePrometheus(t *testing.T) {
	m := NewMetrics()
	m.ObserveAPI("GET", "/api/tasks", "200", 30*time.Millisecond)
	m.ObserveAPI("GET", "/api/tasks", "200", 2*time.Second)
	m.ObserveAIRequest("gemini", "skipped", 0)
	m.IncSuggestionResolved("habit", false)
	m.APIInflightInc()

	var buf bytes.Buffer
	if err := m.WritePrometheus(&buf); err != nil {
		t.Fatalf("WritePrometheus: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		`lp_api_requests_total{method="GET",route="/api/tasks",status="200"} 2`,
		`lp_api_request_duration_seconds_bucket{method="GET",route="/api/tasks",le="0.05"} 1`,
		`lp_api_request_duration_seconds_count{method="GET",route="/api/tasks"} 2`,
		`lp_ai_requests_total{provider="gemini",outcome="skipped"} 1`,
		`lp_suggestions_resolved_total{kind="habit",decision="rejected"} 1`,
		`lp_api_inflight_requests 1`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
	if strings.Contains(out, "lp_ai_request_duration_seconds_count") {
		t.Fatalf("skipped attempt should not be timed")
	}
}
