package probe

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/Paintersrp/forkprobe/internal/config"
)

// Option customises how Start and Resume spawn generations.
type Option func(*options)

type options struct {
	path   string
	args   []string
	env    []string
	stdout io.Writer
	stderr io.Writer
	log    logrus.FieldLogger
}

// WithExecutable sets the binary and arguments re-executed for every fork.
// The binary must route processes for which IsChild reports true to Resume.
func WithExecutable(path string, args ...string) Option {
	return func(o *options) {
		o.path = path
		o.args = append([]string{}, args...)
	}
}

// WithEnv adds environment entries to every forked generation.
func WithEnv(env ...string) Option {
	return func(o *options) {
		o.env = append(o.env, env...)
	}
}

// WithOutput sets the streams inherited by forked generations. Pid
// announcements are written to stdout.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(o *options) {
		o.stdout = stdout
		o.stderr = stderr
	}
}

// WithLogger sets the logger used by in-process generations.
func WithLogger(log logrus.FieldLogger) Option {
	return func(o *options) {
		o.log = log
	}
}

func buildOptions(opts []Option) options {
	o := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.stdout == nil {
		o.stdout = os.Stdout
	}
	if o.stderr == nil {
		o.stderr = os.Stderr
	}
	if o.log == nil {
		o.log = logrus.StandardLogger()
	}
	return o
}

func (o options) forker(rootPID int, newGroup bool) *ExecForker {
	return &ExecForker{
		Path:            o.path,
		Args:            o.args,
		Env:             o.env,
		RootPID:         rootPID,
		Stdout:          o.stdout,
		Stderr:          o.stderr,
		NewProcessGroup: newGroup,
	}
}

// Start forks the root generation as a separate process in its own process
// group and returns its handle. The root is not waited on; callers that need
// its exit status must collect it themselves.
func Start(ctx context.Context, cfg *config.Probe, opts ...Option) (ProcessHandle, error) {
	if err := cfg.Validate(); err != nil {
		return ProcessHandle{}, fmt.Errorf("invalid probe config: %w", err)
	}
	o := buildOptions(opts)

	// Generation zero runs the same code path as every other generation, so
	// it is handed over with index 0 and started by Resume in the new process.
	res, err := o.forker(0, true).Fork(ctx, 0, cfg)
	if err != nil {
		return ProcessHandle{}, err
	}
	return ProcessHandle{PID: res.ChildPID, Generation: 0, ParentPID: os.Getpid()}, nil
}

// Run executes the root generation in the calling process. It returns once
// the root's schedule has elapsed, without having reaped any descendant.
func Run(ctx context.Context, cfg *config.Probe, opts ...Option) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid probe config: %w", err)
	}
	o := buildOptions(opts)
	pid := os.Getpid()
	gen := &Generation{
		Index:  0,
		Config: cfg,
		Forker: o.forker(pid, false),
		Out:    o.stdout,
		Log:    o.log,
	}
	return gen.Run(ctx)
}

// Resume runs the generation described by the environment of a forked
// process. It is the child side of a fork.
func Resume(ctx context.Context, opts ...Option) error {
	h, err := readHandoff(os.LookupEnv)
	if err != nil {
		return fmt.Errorf("resume generation: %w", err)
	}
	o := buildOptions(opts)
	pid := os.Getpid()
	rootPID := h.rootPID
	if h.generation == 0 {
		rootPID = pid
	}
	gen := &Generation{
		Index:  h.generation,
		Config: h.cfg,
		Forker: o.forker(rootPID, false),
		Out:    o.stdout,
		Log:    o.log,
	}
	return gen.Run(ctx)
}
