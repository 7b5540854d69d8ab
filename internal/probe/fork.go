package probe

import (
	"context"
	"io"
	"os"
	"os/exec"

	"github.com/Paintersrp/forkprobe/internal/config"
)

// ForkKind tags which side of a fork the caller is on.
type ForkKind int

const (
	// ForkParent is returned to the generation that performed the fork.
	ForkParent ForkKind = iota
	// ForkChild marks the newly created generation.
	ForkChild
)

func (k ForkKind) String() string {
	if k == ForkChild {
		return "child"
	}
	return "parent"
}

// ForkResult is the outcome of a fork: Parent(ChildPID) or Child.
type ForkResult struct {
	Kind     ForkKind
	ChildPID int
}

// Forker creates the process for the next generation.
type Forker interface {
	Fork(ctx context.Context, generation int, cfg *config.Probe) (ForkResult, error)
}

// ExecForker forks by re-executing a binary with the generation handed over
// through the environment. The started process is never waited on.
type ExecForker struct {
	// Path of the executable. Defaults to the running executable.
	Path string
	// Args passed after the program name. Defaults to the current arguments.
	Args []string
	// Env is appended to the inherited environment.
	Env []string
	// RootPID is recorded in the child's environment.
	RootPID int
	// Stdout and Stderr default to the current process streams.
	Stdout io.Writer
	Stderr io.Writer
	// NewProcessGroup places the child in its own process group.
	NewProcessGroup bool
}

func (f *ExecForker) Fork(ctx context.Context, generation int, cfg *config.Probe) (ForkResult, error) {
	if err := ctx.Err(); err != nil {
		return ForkResult{}, err
	}

	path := f.Path
	if path == "" {
		exe, err := os.Executable()
		if err != nil {
			return ForkResult{}, &ForkFailure{Generation: generation, Err: err}
		}
		path = exe
	}
	args := f.Args
	if args == nil && len(os.Args) > 1 {
		args = os.Args[1:]
	}

	handoff, err := handoffEnv(generation, f.RootPID, cfg)
	if err != nil {
		return ForkResult{}, &ForkFailure{Generation: generation, Err: err}
	}

	// The generation must outlive ctx, so exec.CommandContext is not used.
	cmd := exec.Command(path, args...)
	env := append(os.Environ(), f.Env...)
	cmd.Env = append(env, handoff...)
	cmd.Stdout = f.Stdout
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	cmd.Stderr = f.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}
	configureSysProcAttr(cmd, f.NewProcessGroup)

	if err := cmd.Start(); err != nil {
		return ForkResult{}, &ForkFailure{Generation: generation, Err: err}
	}
	return ForkResult{Kind: ForkParent, ChildPID: cmd.Process.Pid}, nil
}
