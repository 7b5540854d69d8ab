package cli

import (
	stdcontext "context"
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Paintersrp/forkprobe/internal/config"
	"github.com/Paintersrp/forkprobe/internal/probe"
)

type runOverrides struct {
	generations int
	reap        string
	metricsDir  string
}

func (o runOverrides) apply(cfg *config.Probe) error {
	if o.generations > 0 {
		cfg.Generations = o.generations
		if len(cfg.Schedule) > o.generations {
			cfg.Schedule = cfg.Schedule[:o.generations]
		}
	}
	if o.reap != "" {
		mode, err := config.ParseReapMode(o.reap)
		if err != nil {
			return err
		}
		cfg.Reap = mode
	}
	if o.metricsDir != "" {
		cfg.MetricsDir = o.metricsDir
	}
	if err := cfg.ApplyDefaults(); err != nil {
		return err
	}
	return cfg.Validate()
}

func newRunCmd(ctx *context) *cobra.Command {
	var (
		overrides runOverrides
		detach    bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the probe with this process as the root generation",
		Long: `Run the probe with this process as the root generation.

Every generation prints "<Role> pid=<pid>" on stdout and exits on schedule
without reaping its child, so an exited child stays a zombie until its parent
exits. With --detach the root is forked into its own process group and the
command returns immediately.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.loadProbe()
			if err != nil {
				return err
			}
			if err := overrides.apply(cfg); err != nil {
				return err
			}
			log, err := ctx.logger(cmd)
			if err != nil {
				return err
			}

			opts := []probe.Option{
				probe.WithEnv(ctx.logging.env()...),
				probe.WithLogger(log),
				// Generations outlive this command with --detach, so they must
				// write to the real streams rather than a buffered writer.
				probe.WithOutput(os.Stdout, os.Stderr),
			}

			if detach {
				root, err := probe.Start(cmd.Context(), cfg, opts...)
				if err != nil {
					return err
				}
				log.WithFields(logrus.Fields{
					"pid":         root.PID,
					"generations": cfg.Generations,
				}).Info("probe started")
				return nil
			}

			if err := probe.Run(cmd.Context(), cfg, opts...); err != nil {
				if errors.Is(err, stdcontext.Canceled) {
					log.Info("probe interrupted")
					return nil
				}
				if probe.IsForkFailure(err) {
					return fmt.Errorf("probe stopped growing: %w", err)
				}
				return err
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&overrides.generations, "generations", "n", 0, "Number of generations, overriding the probe file")
	cmd.Flags().StringVar(&overrides.reap, "reap", "", "Reap mode: none, subreaper or reap")
	cmd.Flags().StringVar(&overrides.metricsDir, "metrics-dir", os.Getenv("FORKPROBE_METRICS_DIR"), "Directory for per generation Prometheus textfiles")
	cmd.Flags().BoolVar(&detach, "detach", false, "Fork the root generation and return")
	return cmd
}
