package probe

import (
	"strings"
	"testing"
	"time"

	"github.com/Paintersrp/forkprobe/internal/config"
)

func envLookup(entries []string) func(string) (string, bool) {
	values := make(map[string]string, len(entries))
	for _, entry := range entries {
		key, value, _ := strings.Cut(entry, "=")
		values[key] = value
	}
	return func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}
}

func TestHandoffRoundTrip(t *testing.T) {
	cfg := config.Default()
	cfg.Reap = config.ReapSubreaper
	env, err := handoffEnv(2, 4100, cfg)
	if err != nil {
		t.Fatalf("handoffEnv returned error: %v", err)
	}

	got, err := readHandoff(envLookup(env))
	if err != nil {
		t.Fatalf("readHandoff returned error: %v", err)
	}
	if got.generation != 2 || got.rootPID != 4100 {
		t.Fatalf("unexpected handoff: generation=%d root=%d", got.generation, got.rootPID)
	}
	if got.cfg.Reap != config.ReapSubreaper {
		t.Fatalf("reap mode lost in handoff: %q", got.cfg.Reap)
	}
	if got.cfg.Schedule[1].SleepBeforeExit.Duration != 5*time.Second {
		t.Fatalf("schedule lost in handoff: %+v", got.cfg.Schedule)
	}
}

func TestReadHandoffErrors(t *testing.T) {
	valid, err := handoffEnv(1, 1, config.Default())
	if err != nil {
		t.Fatalf("handoffEnv returned error: %v", err)
	}
	cases := []struct {
		name string
		env  []string
		want string
	}{
		{name: "missing generation", env: nil, want: EnvGeneration + " is not set"},
		{name: "bad generation", env: []string{EnvGeneration + "=two"}, want: "invalid generation"},
		{name: "missing config", env: []string{EnvGeneration + "=1"}, want: EnvConfig + " is not set"},
		{name: "generation out of range", env: append(append([]string{}, valid...), EnvGeneration+"=3"), want: "outside a 3 generation probe"},
		{name: "bad config", env: []string{EnvGeneration + "=1", EnvConfig + "=generations: nope"}, want: EnvConfig},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			_, err := readHandoff(envLookup(tc.env))
			if err == nil {
				t.Fatalf("readHandoff returned nil error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("unexpected error: got %q want substring %q", err, tc.want)
			}
		})
	}
}
