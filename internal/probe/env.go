package probe

import (
	"fmt"
	"os"
	"strconv"

	"github.com/Paintersrp/forkprobe/internal/config"
)

const (
	// EnvGeneration carries the generation index into a forked process.
	EnvGeneration = "FORKPROBE_GENERATION"
	// EnvConfig carries the YAML encoded probe configuration.
	EnvConfig = "FORKPROBE_CONFIG"
	// EnvRootPID carries the pid of generation zero.
	EnvRootPID = "FORKPROBE_ROOT_PID"
)

// IsChild reports whether the current process was forked by a generation and
// should resume as the next generation instead of running its normal
// entrypoint.
func IsChild() bool {
	_, ok := os.LookupEnv(EnvGeneration)
	return ok
}

func handoffEnv(generation, rootPID int, cfg *config.Probe) ([]string, error) {
	data, err := config.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	return []string{
		EnvGeneration + "=" + strconv.Itoa(generation),
		EnvRootPID + "=" + strconv.Itoa(rootPID),
		EnvConfig + "=" + string(data),
	}, nil
}

type inherited struct {
	generation int
	rootPID    int
	cfg        *config.Probe
}

func readHandoff(lookup func(string) (string, bool)) (inherited, error) {
	raw, ok := lookup(EnvGeneration)
	if !ok {
		return inherited{}, fmt.Errorf("%s is not set", EnvGeneration)
	}
	generation, err := strconv.Atoi(raw)
	if err != nil || generation < 0 {
		return inherited{}, fmt.Errorf("%s: invalid generation %q", EnvGeneration, raw)
	}

	var rootPID int
	if raw, ok := lookup(EnvRootPID); ok {
		if rootPID, err = strconv.Atoi(raw); err != nil {
			return inherited{}, fmt.Errorf("%s: invalid pid %q", EnvRootPID, raw)
		}
	}

	data, ok := lookup(EnvConfig)
	if !ok {
		return inherited{}, fmt.Errorf("%s is not set", EnvConfig)
	}
	cfg, err := config.Parse([]byte(data))
	if err != nil {
		return inherited{}, fmt.Errorf("%s: %w", EnvConfig, err)
	}
	if generation >= cfg.Generations {
		return inherited{}, fmt.Errorf("%s: generation %d outside a %d generation probe", EnvGeneration, generation, cfg.Generations)
	}
	return inherited{generation: generation, rootPID: rootPID, cfg: cfg}, nil
}
