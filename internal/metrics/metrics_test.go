package metrics_test

import (
	"fmt"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Paintersrp/forkprobe/internal/metrics"
)

func TestRegistryExposesMetrics(t *testing.T) {
	metrics.EmitBuildInfo()
	metrics.RecordFork(41)
	metrics.RecordFork(41)
	metrics.RecordForkFailure(42)
	metrics.RecordState(41, "exited")

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{}).ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Fatalf("unexpected status code from metrics handler: %d", rec.Code)
	}

	body := rec.Body.String()
	for _, line := range []string{
		`forkprobe_forks_total{generation="41"} 2`,
		`forkprobe_fork_failures_total{generation="42"} 1`,
		`forkprobe_state_transitions_total{generation="41",state="exited"} 1`,
	} {
		if !strings.Contains(body, line) {
			t.Fatalf("expected metric line %q in body:\n%s", line, body)
		}
	}
	if !strings.Contains(body, "forkprobe_build_info{") {
		t.Fatalf("expected build info metric in body:\n%s", body)
	}
}

func TestWriteTextfile(t *testing.T) {
	dir := t.TempDir()
	metrics.SetGeneration(7, "Great-great-great-great-grandchild", 1234, 1200)
	metrics.ObserveSleep(7, "before_exit", 20*time.Millisecond)

	if err := metrics.WriteTextfile(dir, 7); err != nil {
		t.Fatalf("WriteTextfile returned error: %v", err)
	}
	data, err := os.ReadFile(metrics.TextfilePath(dir, 7))
	if err != nil {
		t.Fatalf("read textfile: %v", err)
	}
	want := fmt.Sprintf(`forkprobe_generation_info{generation="7",parent_pid="%d",pid="%d",role="Great-great-great-great-grandchild"} 1`, 1200, 1234)
	if !strings.Contains(string(data), want) {
		t.Fatalf("expected %q in textfile:\n%s", want, data)
	}
}

func TestWriteTextfileWithoutDirIsNoop(t *testing.T) {
	if err := metrics.WriteTextfile("", 0); err != nil {
		t.Fatalf("WriteTextfile returned error: %v", err)
	}
}
