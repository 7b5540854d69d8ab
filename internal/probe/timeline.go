package probe

import (
	"time"

	"github.com/Paintersrp/forkprobe/internal/config"
)

// Window is the scheduled life of one generation, as offsets from the start
// of the root. Real processes drift from it under load; sleeps only give a
// soft ordering.
type Window struct {
	Generation int
	Start      time.Duration
	// Fork is when the generation forks its successor. Meaningless when
	// Forks is false.
	Fork  time.Duration
	Forks bool
	Exit  time.Duration
}

// Live reports whether the generation is running at t. A generation is live
// from its start up to, but not including, its exit.
func (w Window) Live(t time.Duration) bool {
	return w.Start <= t && t < w.Exit
}

// Timeline computes every generation's window from the schedule alone.
func Timeline(cfg *config.Probe) []Window {
	windows := make([]Window, 0, cfg.Generations)
	var start time.Duration
	for i := 0; i < cfg.Generations; i++ {
		spec := cfg.Generation(i)
		w := Window{
			Generation: i,
			Start:      start,
			Fork:       start + spec.SleepBeforeFork.Duration,
			Forks:      i < cfg.Generations-1,
			Exit:       start + spec.Lifetime(),
		}
		windows = append(windows, w)
		start = w.Fork
	}
	return windows
}

// LiveAt counts the generations running at t.
func LiveAt(windows []Window, t time.Duration) int {
	n := 0
	for _, w := range windows {
		if w.Live(t) {
			n++
		}
	}
	return n
}

// Interval is a span of the timeline during which a generation is in a
// particular condition.
type Interval struct {
	Generation int
	From       time.Duration
	Until      time.Duration
	// AdoptedByRoot is set on orphan intervals when the root, as child
	// subreaper, takes the orphan over instead of init.
	AdoptedByRoot bool
}

// ZombieIntervals lists, per generation, the span during which it has exited
// but nobody has collected its exit status.
//
// A zombie is held by its parent until the parent exits. With ReapNone it is
// then inherited by init, which reaps it. With ReapSubreaper it is inherited
// by the root, which keeps it until the root exits. With ReapAll the root
// collects its own children at once and adopted zombies as soon as they are
// reparented to it.
func ZombieIntervals(windows []Window, mode config.ReapMode) []Interval {
	if len(windows) == 0 {
		return nil
	}
	root := windows[0]
	var out []Interval
	for i := 1; i < len(windows); i++ {
		child, parent := windows[i], windows[i-1]
		until := parent.Exit
		switch mode {
		case config.ReapSubreaper:
			if root.Exit > until {
				until = root.Exit
			}
		case config.ReapAll:
			if i == 1 {
				continue
			}
		}
		if child.Exit < until {
			out = append(out, Interval{Generation: i, From: child.Exit, Until: until})
		}
	}
	return out
}

// OrphanIntervals lists, per generation, the span during which it is still
// running after its parent has exited. In the subreaper modes the orphan is
// adopted by the root when the root is still alive.
func OrphanIntervals(windows []Window, mode config.ReapMode) []Interval {
	if len(windows) == 0 {
		return nil
	}
	root := windows[0]
	var out []Interval
	for i := 1; i < len(windows); i++ {
		child, parent := windows[i], windows[i-1]
		if parent.Exit < child.Exit {
			out = append(out, Interval{
				Generation:    i,
				From:          parent.Exit,
				Until:         child.Exit,
				AdoptedByRoot: mode != config.ReapNone && i > 1 && root.Exit > parent.Exit,
			})
		}
	}
	return out
}
