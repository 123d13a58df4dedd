package observability

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	m.ObserveAPI("GET", "/api/types/:id", "200", time.Millisecond)
	m.ObserveStorage("save_type", "ok", time.Millisecond)
	m.ApiInflightInc()
	m.ApiInflightDec()
	if err := m.WritePrometheus(&bytes.Buffer{}); err != nil {
		t.Fatalf("WritePrometheus: %v", err)
	}
}

func TestInitDisabledReturnsNil(t *testing.T) {
	if m := Init(MetricsConfig{}); m != nil {
		t.Fatalf("expected nil metrics when disabled")
	}
}

func TestStorageAndAPIExposition(t *testing.T) {
	m := newMetrics(MetricsConfig{Enabled: true})
	m.ObserveStorage("save_type", "ok", 2*time.Millisecond)
	m.ObserveStorage("save_type", "error", 3*time.Millisecond)
	m.ObserveAPI("GET", "/api/types/:id", "500", 10*time.Millisecond)

	if got := m.storageFailures.Value(); got != 1 {
		t.Fatalf("storage failures: want=1 got=%v", got)
	}
	if got := m.apiReqError.Value(); got != 1 {
		t.Fatalf("api errors: want=1 got=%v", got)
	}

	var buf bytes.Buffer
	if err := m.WritePrometheus(&buf); err != nil {
		t.Fatalf("WritePrometheus: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		`pg_storage_operations_total{op="save_type",status="ok"} 1.000000`,
		`pg_storage_operation_duration_seconds_count{op="save_type"} 2`,
		`pg_api_requests_total{method="GET",route="/api/types/:id",status="500"} 1.000000`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in exposition:\n%s", want, out)
		}
	}
}

func TestParseHeaders(t *testing.T) {
	got := parseHeaders(" api-key = abc , broken, empty= ,x=y")
	if len(got) != 2 || got["api-key"] != "abc" || got["x"] != "y" {
		t.Fatalf("unexpected headers: %v", got)
	}
	if parseHeaders("") != nil {
		t.Fatalf("expected nil for empty input")
	}
	if sampleRatio(0) != 0.1 || sampleRatio(3) != 1 || sampleRatio(0.5) != 0.5 {
		t.Fatalf("unexpected sample ratio clamp")
	}
}
