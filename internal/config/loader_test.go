package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
)

func TestLoadValidProbe(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("PROBE_METRICS", "./metrics")

	probePath := filepath.Join(dir, "probe.yaml")
	manifest := []byte(`generations: 3
reap: Subreaper
metricsDir: ${PROBE_METRICS}
schedule:
  - sleepBeforeExit: 10s
  - sleepBeforeFork: 250ms
    sleepAfterFork: 1s
    sleepBeforeExit: 2s
`)
	if err := os.WriteFile(probePath, manifest, 0o644); err != nil {
		t.Fatalf("write probe: %v", err)
	}

	doc, err := Load(probePath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	assert.Equal(t, doc.Generations, 3)
	assert.Equal(t, doc.Reap, ReapSubreaper)
	assert.Equal(t, doc.MetricsDir, filepath.Join(dir, "metrics"))
	assert.Assert(t, is.Len(doc.Schedule, 3), "schedule should be padded to the generation count")
	assert.Equal(t, doc.Schedule[0].SleepBeforeExit.Duration, 10*time.Second)
	assert.Equal(t, doc.Schedule[1].SleepBeforeFork.Duration, 250*time.Millisecond)
	assert.Equal(t, doc.Schedule[1].Lifetime(), 3250*time.Millisecond)
	assert.Equal(t, doc.Schedule[2].Lifetime(), time.Duration(0))
}

func TestParseInfersGenerationCount(t *testing.T) {
	doc, err := Parse([]byte("schedule:\n  - sleepBeforeExit: 1s\n  - {}\n"))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if got, want := doc.Generations, 2; got != want {
		t.Fatalf("unexpected generation count: got %d want %d", got, want)
	}
	if got, want := doc.Reap, ReapNone; got != want {
		t.Fatalf("unexpected reap default: got %q want %q", got, want)
	}
}

func TestParseRejectsInvalidDocuments(t *testing.T) {
	cases := []struct {
		name     string
		manifest string
		want     string
	}{
		{name: "empty", manifest: "", want: "generations: must be at least 1"},
		{name: "negative generations", manifest: "generations: -1\n", want: "generations: must be at least 1"},
		{name: "schedule longer than generations", manifest: "generations: 1\nschedule:\n  - {}\n  - {}\n", want: "has 2 entries for 1 generations"},
		{name: "negative sleep", manifest: "schedule:\n  - sleepAfterFork: -1s\n", want: "schedule[0].sleepAfterFork: must be non-negative"},
		{name: "bad duration", manifest: "schedule:\n  - sleepBeforeFork: soon\n", want: "invalid duration"},
		{name: "unknown reap mode", manifest: "generations: 1\nreap: sometimes\n", want: "unknown reap mode"},
		{name: "unknown field", manifest: "generations: 1\nforks: 2\n", want: "field forks not found"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.manifest))
			if err == nil {
				t.Fatalf("Parse returned nil error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("unexpected error: got %q want substring %q", err, tc.want)
			}
		})
	}
}

func TestMarshalRoundTripsDefault(t *testing.T) {
	data, err := Marshal(Default())
	if err != nil {
		t.Fatalf("Marshal returned error: %v", err)
	}
	doc, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse returned error: %v\n%s", err, data)
	}
	assert.Equal(t, doc.Generations, 3)
	assert.Equal(t, doc.Schedule[0].SleepBeforeExit.Duration, 999999*time.Second)
	assert.Equal(t, doc.Schedule[1].SleepBeforeFork.Duration, time.Second)
	assert.Equal(t, doc.Schedule[1].SleepBeforeExit.Duration, 5*time.Second)
	assert.DeepEqual(t, doc, Default())
}

func TestDurationUnmarshalText(t *testing.T) {
	cases := []struct {
		text string
		want time.Duration
	}{
		{text: "", want: 0},
		{text: "0s", want: 0},
		{text: "1m30s", want: 90 * time.Second},
		{text: "250ms", want: 250 * time.Millisecond},
	}
	for _, tc := range cases {
		var d Duration
		if err := d.UnmarshalText([]byte(tc.text)); err != nil {
			t.Fatalf("UnmarshalText(%q) returned error: %v", tc.text, err)
		}
		assert.Equal(t, d, Duration{Duration: tc.want})
	}

	var d Duration
	err := d.UnmarshalText([]byte("soon"))
	assert.ErrorContains(t, err, `invalid duration "soon"`)
	assert.Equal(t, Seconds(3), Duration{Duration: 3 * time.Second})
}

func TestCloneIsIndependent(t *testing.T) {
	orig := Default()
	cp := orig.Clone()
	cp.Schedule[1].SleepBeforeFork = Seconds(7)
	if orig.Schedule[1].SleepBeforeFork.Duration != time.Second {
		t.Fatalf("clone shares schedule with original")
	}
	if got := orig.Generation(5); got.Lifetime() != 0 {
		t.Fatalf("out of range generation should have a zero schedule, got %v", got.Lifetime())
	}
}
