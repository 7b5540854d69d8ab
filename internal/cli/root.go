package cli

import (
	stdcontext "context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Paintersrp/forkprobe/internal/config"
	"github.com/Paintersrp/forkprobe/internal/metrics"
	"github.com/Paintersrp/forkprobe/internal/probe"
)

func NewRootCmd() *cobra.Command {
	root, _ := newRootCommand()
	return root
}

func newRootCommand() (*cobra.Command, *context) {
	var probeFile string
	logging := logConfigFromEnv()

	root := &cobra.Command{
		Use:   "forkprobe",
		Short: "Spawn process generations that leave zombies and orphans behind",
	}

	root.PersistentFlags().
		StringVarP(&probeFile, "file", "f", os.Getenv("FORKPROBE_FILE"), "Path to probe definition (defaults to the built-in three generation schedule)")
	root.PersistentFlags().StringVar(&logging.Level, "log-level", logging.Level, "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&logging.Format, "log-format", logging.Format, "Log format (auto, text, json)")

	ctx := &context{probeFile: &probeFile, logging: &logging}
	root.AddCommand(newRunCmd(ctx))
	root.AddCommand(newPlanCmd(ctx))
	root.AddCommand(newInspectCmd())
	root.AddCommand(newConfigCmd(ctx))

	root.SilenceUsage = true
	root.SilenceErrors = true

	return root, ctx
}

// Execute runs the CLI entrypoint.
func Execute() {
	ctx, stop := signal.NotifyContext(stdcontext.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics.EmitBuildInfo()
	root := NewRootCmd()
	root.SetContext(ctx)

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// ExecuteGeneration resumes a forked generation and returns its exit code.
// Flags are not parsed: everything a generation needs arrives through the
// environment.
func ExecuteGeneration() int {
	ctx, stop := signal.NotifyContext(stdcontext.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics.EmitBuildInfo()
	logging := logConfigFromEnv()
	log, err := newLogger(logging, os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	err = probe.Resume(ctx, probe.WithLogger(log), probe.WithEnv(logging.env()...))
	return generationExitCode(log.WithField("pid", os.Getpid()), err)
}

// generationExitCode maps the outcome of a generation to its exit status.
// A generation interrupted by SIGINT or SIGTERM ends its schedule early but
// did not fail.
func generationExitCode(log logrus.FieldLogger, err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, stdcontext.Canceled):
		log.Info("generation interrupted")
		return 0
	default:
		log.WithError(err).Error("generation failed")
		return 1
	}
}

type context struct {
	probeFile *string
	logging   *logConfig
}

func (c *context) loadProbe() (*config.Probe, error) {
	if c.probeFile == nil || *c.probeFile == "" {
		return config.Default(), nil
	}
	return config.Load(*c.probeFile)
}

func (c *context) logger(cmd *cobra.Command) (*logrus.Logger, error) {
	return newLogger(*c.logging, cmd.ErrOrStderr())
}
