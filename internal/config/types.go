package config

import (
	"fmt"
	"strings"
	"time"
)

// Duration wraps time.Duration for YAML unmarshalling.
type Duration struct {
	time.Duration
}

// UnmarshalText parses a textual duration, accepting empty strings.
func (d *Duration) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		d.Duration = 0
		return nil
	}
	dur, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	d.Duration = dur
	return nil
}

// MarshalText renders the duration using time.Duration formatting.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Seconds builds a Duration from a whole number of seconds.
func Seconds(n int) Duration {
	return Duration{Duration: time.Duration(n) * time.Second}
}

// ReapMode selects how the root generation treats exited descendants.
type ReapMode string

const (
	// ReapNone leaves every exited process unreaped. This is the mode that
	// produces zombies.
	ReapNone ReapMode = "none"
	// ReapSubreaper makes the root the child subreaper so orphans are
	// reparented to it rather than to init. Nothing is reaped.
	ReapSubreaper ReapMode = "subreaper"
	// ReapAll behaves like ReapSubreaper and additionally collects the exit
	// status of every child and adopted orphan.
	ReapAll ReapMode = "reap"
)

// ParseReapMode normalises a textual reap mode.
func ParseReapMode(value string) (ReapMode, error) {
	switch mode := ReapMode(strings.ToLower(strings.TrimSpace(value))); mode {
	case "":
		return ReapNone, nil
	case ReapNone, ReapSubreaper, ReapAll:
		return mode, nil
	default:
		return "", fmt.Errorf("unknown reap mode %q (want none, subreaper or reap)", value)
	}
}

// GenerationSpec holds the sleep schedule of one generation.
type GenerationSpec struct {
	SleepBeforeFork Duration `yaml:"sleepBeforeFork"`
	SleepAfterFork  Duration `yaml:"sleepAfterFork"`
	SleepBeforeExit Duration `yaml:"sleepBeforeExit"`
}

// Lifetime is the total time the generation stays alive from its own start.
func (g GenerationSpec) Lifetime() time.Duration {
	return g.SleepBeforeFork.Duration + g.SleepAfterFork.Duration + g.SleepBeforeExit.Duration
}

// Probe mirrors the probe.yaml document structure.
type Probe struct {
	Generations int              `yaml:"generations"`
	Schedule    []GenerationSpec `yaml:"schedule"`
	Reap        ReapMode         `yaml:"reap"`
	MetricsDir  string           `yaml:"metricsDir,omitempty"`
}

// Default returns the classic three generation schedule: the root stays
// alive, the child forks the grandchild after a second and exits five
// seconds later, and the grandchild exits immediately.
func Default() *Probe {
	return &Probe{
		Generations: 3,
		Schedule: []GenerationSpec{
			{SleepBeforeExit: Seconds(999999)},
			{SleepBeforeFork: Seconds(1), SleepBeforeExit: Seconds(5)},
			{},
		},
		Reap: ReapNone,
	}
}

// Clone creates a deep copy of the probe configuration.
func (p *Probe) Clone() *Probe {
	if p == nil {
		return nil
	}
	cp := *p
	if p.Schedule != nil {
		cp.Schedule = append([]GenerationSpec(nil), p.Schedule...)
	}
	return &cp
}

// Generation returns the schedule entry for the generation at index. Indexes
// beyond the schedule resolve to a zero schedule.
func (p *Probe) Generation(index int) GenerationSpec {
	if index < 0 || index >= len(p.Schedule) {
		return GenerationSpec{}
	}
	return p.Schedule[index]
}

// ApplyDefaults fills the generation count and pads the schedule so that it
// holds exactly one entry per generation.
func (p *Probe) ApplyDefaults() error {
	if p.Generations == 0 {
		p.Generations = len(p.Schedule)
	}
	if p.Generations < 0 {
		return fmt.Errorf("%s: must be at least 1", fieldPath("generations"))
	}
	for len(p.Schedule) < p.Generations {
		p.Schedule = append(p.Schedule, GenerationSpec{})
	}
	mode, err := ParseReapMode(string(p.Reap))
	if err != nil {
		return fmt.Errorf("%s: %w", fieldPath("reap"), err)
	}
	p.Reap = mode
	return nil
}

func fieldPath(parts ...string) string {
	return strings.Join(parts, ".")
}

func scheduleField(index int, parts ...string) string {
	entry := fmt.Sprintf("schedule[%d]", index)
	return fieldPath(append([]string{entry}, parts...)...)
}
