package probe

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Paintersrp/forkprobe/internal/config"
	"github.com/Paintersrp/forkprobe/internal/metrics"
)

// State is a step of the per generation lifecycle.
type State int

const (
	StateSpawned State = iota
	StateSleepingBeforeFork
	StateForkedChild
	StateIsChild
	StateSleepingBeforeExit
	StateExited
)

func (s State) String() string {
	switch s {
	case StateSpawned:
		return "spawned"
	case StateSleepingBeforeFork:
		return "sleeping_before_fork"
	case StateForkedChild:
		return "forked_child"
	case StateIsChild:
		return "is_child"
	case StateSleepingBeforeExit:
		return "sleeping_before_exit"
	case StateExited:
		return "exited"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// SleepFunc suspends the caller for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Generation drives one process of the chain through its lifecycle:
// SPAWNED, SLEEPING_BEFORE_FORK, FORKED_CHILD or IS_CHILD,
// SLEEPING_BEFORE_EXIT and finally EXITED.
type Generation struct {
	Index     int
	Config    *config.Probe
	Forker    Forker
	Out       io.Writer
	Log       logrus.FieldLogger
	Sleep     SleepFunc
	PID       int
	ParentPID int
	// OnState observes every transition. Optional.
	OnState func(State)

	state State
	child *ProcessHandle
}

// State returns the current lifecycle state.
func (g *Generation) State() State {
	return g.state
}

// Child returns the handle of the generation forked by g, if any.
func (g *Generation) Child() (ProcessHandle, bool) {
	if g.child == nil {
		return ProcessHandle{}, false
	}
	return *g.child, true
}

// Handle describes this generation.
func (g *Generation) Handle() ProcessHandle {
	return ProcessHandle{PID: g.PID, Generation: g.Index, ParentPID: g.ParentPID}
}

// Last reports whether the generation is the end of the chain.
func (g *Generation) Last() bool {
	return g.Index >= g.Config.Generations-1
}

// Run executes the lifecycle. It never waits for or reaps the forked child
// unless the root runs with a reaping mode. A fork failure is returned
// immediately, leaving the rest of the schedule unexecuted.
func (g *Generation) Run(ctx context.Context) error {
	g.setDefaults()
	spec := g.Config.Generation(g.Index)
	log := g.Log.WithFields(logrus.Fields{"generation": g.Index, "role": Role(g.Index), "pid": g.PID})

	g.enter(StateSpawned)
	metrics.SetGeneration(g.Index, Role(g.Index), g.PID, g.ParentPID)

	if g.Index == 0 {
		if err := g.prepareRoot(ctx, log); err != nil {
			return err
		}
		g.announce(Role(0), g.PID)
	}

	g.enter(StateSleepingBeforeFork)
	if err := g.sleep(ctx, "before_fork", spec.SleepBeforeFork.Duration); err != nil {
		return g.exit(log, err)
	}

	if g.Last() {
		g.enter(StateIsChild)
	} else {
		next := g.Index + 1
		res, err := g.Forker.Fork(ctx, next, g.Config)
		if err != nil {
			metrics.RecordForkFailure(g.Index)
			log.WithError(err).Error("fork failed")
			return g.exit(log, err)
		}
		if res.Kind != ForkParent {
			return g.exit(log, fmt.Errorf("fork of generation %d returned %s result in parent", next, res.Kind))
		}
		metrics.RecordFork(g.Index)
		g.child = &ProcessHandle{PID: res.ChildPID, Generation: next, ParentPID: g.PID}
		g.enter(StateForkedChild)
		g.announce(Role(next), res.ChildPID)
		log.WithField("child_pid", res.ChildPID).Debug("forked next generation")
	}

	if err := g.sleep(ctx, "after_fork", spec.SleepAfterFork.Duration); err != nil {
		return g.exit(log, err)
	}

	g.enter(StateSleepingBeforeExit)
	if err := g.sleep(ctx, "before_exit", spec.SleepBeforeExit.Duration); err != nil {
		return g.exit(log, err)
	}

	if g.Index > 0 && g.child != nil {
		fmt.Fprintf(g.Out, "%s exits and %s becomes zombie\n", Role(g.Index), lowerRole(g.child.Generation))
	}
	return g.exit(log, nil)
}

func (g *Generation) setDefaults() {
	if g.Config == nil {
		g.Config = config.Default()
	}
	if g.Out == nil {
		g.Out = os.Stdout
	}
	if g.Log == nil {
		g.Log = logrus.StandardLogger()
	}
	if g.Sleep == nil {
		g.Sleep = sleepContext
	}
	if g.PID == 0 {
		g.PID = os.Getpid()
	}
	if g.ParentPID == 0 {
		g.ParentPID = os.Getppid()
	}
	if g.Forker == nil {
		g.Forker = &ExecForker{RootPID: g.PID}
	}
}

func (g *Generation) prepareRoot(ctx context.Context, log logrus.FieldLogger) error {
	switch g.Config.Reap {
	case config.ReapSubreaper, config.ReapAll:
		if err := becomeSubreaper(); err != nil {
			return fmt.Errorf("become child subreaper: %w", err)
		}
		log.Debug("registered as child subreaper")
	}
	if g.Config.Reap == config.ReapAll {
		go reapChildren(ctx, log)
	}
	return nil
}

func (g *Generation) announce(role string, pid int) {
	fmt.Fprintf(g.Out, "%s pid=%d\n", role, pid)
}

func (g *Generation) enter(state State) {
	g.state = state
	metrics.RecordState(g.Index, state.String())
	if g.OnState != nil {
		g.OnState(state)
	}
}

func (g *Generation) sleep(ctx context.Context, phase string, d time.Duration) error {
	started := time.Now()
	err := g.Sleep(ctx, d)
	metrics.ObserveSleep(g.Index, phase, time.Since(started))
	return err
}

func (g *Generation) exit(log logrus.FieldLogger, err error) error {
	g.enter(StateExited)
	if werr := metrics.WriteTextfile(g.Config.MetricsDir, g.Index); werr != nil {
		log.WithError(werr).Warn("write metrics textfile")
	}
	log.Debug("generation exiting")
	return err
}

func lowerRole(generation int) string {
	role := Role(generation)
	return strings.ToLower(role[:1]) + role[1:]
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
