package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registry = prometheus.NewRegistry()

	forks = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "forkprobe",
		Name:      "forks_total",
		Help:      "Total number of generations successfully forked, by forking generation.",
	}, []string{"generation"})

	forkFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "forkprobe",
		Name:      "fork_failures_total",
		Help:      "Total number of failed fork attempts, by forking generation.",
	}, []string{"generation"})

	generationInfo = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "forkprobe",
		Name:      "generation_info",
		Help:      "Identity of the generation running in this process.",
	}, []string{"generation", "role", "pid", "parent_pid"})

	stateTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "forkprobe",
		Name:      "state_transitions_total",
		Help:      "Lifecycle states entered by the generation.",
	}, []string{"generation", "state"})

	sleepSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "forkprobe",
		Name:      "sleep_seconds",
		Help:      "Time actually spent in scheduled sleeps.",
		Buckets:   prometheus.ExponentialBuckets(0.001, 10, 8),
	}, []string{"generation", "phase"})

	buildInfo = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "forkprobe",
		Name:      "build_info",
		Help:      "Build metadata for the running forkprobe binary.",
	}, []string{"go_version", "vcs", "vcs_revision", "vcs_time", "vcs_modified"})

	buildInfoOnce sync.Once
)

func init() {
	registry.MustRegister(forks, forkFailures, generationInfo, stateTransitions, sleepSeconds, buildInfo)
}

// Registry returns the Prometheus registry containing all forkprobe metrics.
func Registry() *prometheus.Registry {
	return registry
}

// RecordFork counts a successful fork performed by generation.
func RecordFork(generation int) {
	forks.WithLabelValues(strconv.Itoa(generation)).Inc()
}

// RecordForkFailure counts a fork attempted by generation that failed.
func RecordForkFailure(generation int) {
	forkFailures.WithLabelValues(strconv.Itoa(generation)).Inc()
}

// SetGeneration publishes which generation this process runs.
func SetGeneration(generation int, role string, pid, parentPID int) {
	generationInfo.WithLabelValues(strconv.Itoa(generation), role, strconv.Itoa(pid), strconv.Itoa(parentPID)).Set(1)
}

// RecordState counts entry into a lifecycle state.
func RecordState(generation int, state string) {
	if state == "" {
		return
	}
	stateTransitions.WithLabelValues(strconv.Itoa(generation), state).Inc()
}

// ObserveSleep records how long a scheduled sleep phase lasted.
func ObserveSleep(generation int, phase string, d time.Duration) {
	sleepSeconds.WithLabelValues(strconv.Itoa(generation), phase).Observe(d.Seconds())
}

// EmitBuildInfo publishes build metadata about the running binary.
func EmitBuildInfo() {
	buildInfoOnce.Do(func() {
		labels := prometheus.Labels{
			"go_version":   runtime.Version(),
			"vcs":          "",
			"vcs_revision": "",
			"vcs_time":     "",
			"vcs_modified": "",
		}
		if info, ok := debug.ReadBuildInfo(); ok {
			if info.GoVersion != "" {
				labels["go_version"] = info.GoVersion
			}
			for _, setting := range info.Settings {
				switch setting.Key {
				case "vcs":
					labels["vcs"] = setting.Value
				case "vcs.revision":
					labels["vcs_revision"] = setting.Value
				case "vcs.time":
					labels["vcs_time"] = setting.Value
				case "vcs.modified":
					labels["vcs_modified"] = setting.Value
				}
			}
		}
		buildInfo.With(labels).Set(1)
	})
}

// TextfilePath is where WriteTextfile stores the metrics of a generation.
func TextfilePath(dir string, generation int) string {
	return filepath.Join(dir, fmt.Sprintf("forkprobe-generation-%d.prom", generation))
}

// WriteTextfile writes the registry in the node exporter textfile format.
// Each generation is a separate process, so each writes its own file.
func WriteTextfile(dir string, generation int) error {
	if dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create metrics dir: %w", err)
	}
	if err := prometheus.WriteToTextfile(TextfilePath(dir, generation), registry); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}
