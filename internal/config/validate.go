package config

import "fmt"

// Validate enforces schema invariants.
func (p *Probe) Validate() error {
	if p.Generations < 1 {
		return fmt.Errorf("%s: must be at least 1", fieldPath("generations"))
	}
	if len(p.Schedule) != p.Generations {
		return fmt.Errorf("%s: has %d entries for %d generations", fieldPath("schedule"), len(p.Schedule), p.Generations)
	}
	for i, gen := range p.Schedule {
		if gen.SleepBeforeFork.Duration < 0 {
			return fmt.Errorf("%s: must be non-negative", scheduleField(i, "sleepBeforeFork"))
		}
		if gen.SleepAfterFork.Duration < 0 {
			return fmt.Errorf("%s: must be non-negative", scheduleField(i, "sleepAfterFork"))
		}
		if gen.SleepBeforeExit.Duration < 0 {
			return fmt.Errorf("%s: must be non-negative", scheduleField(i, "sleepBeforeExit"))
		}
	}
	if _, err := ParseReapMode(string(p.Reap)); err != nil {
		return fmt.Errorf("%s: %w", fieldPath("reap"), err)
	}
	return nil
}
