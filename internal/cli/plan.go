package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	units "github.com/docker/go-units"
	"github.com/spf13/cobra"

	"github.com/Paintersrp/forkprobe/internal/probe"
)

func newPlanCmd(ctx *context) *cobra.Command {
	var (
		overrides runOverrides
		at        []time.Duration
	)

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show when each generation forks and exits without running anything",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.loadProbe()
			if err != nil {
				return err
			}
			if err := overrides.apply(cfg); err != nil {
				return err
			}
			windows := probe.Timeline(cfg)

			out := cmd.OutOrStdout()
			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "GEN\tROLE\tSTART\tFORK\tEXIT\tLIFETIME")
			for _, win := range windows {
				fork := "-"
				if win.Forks {
					fork = win.Fork.String()
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
					win.Generation, probe.Role(win.Generation), win.Start, fork, win.Exit, formatLifetime(win.Exit-win.Start))
			}
			if err := w.Flush(); err != nil {
				return err
			}

			for _, iv := range probe.ZombieIntervals(windows, cfg.Reap) {
				fmt.Fprintf(out, "zombie: %s from %s until %s\n", probe.Role(iv.Generation), iv.From, iv.Until)
			}
			for _, iv := range probe.OrphanIntervals(windows, cfg.Reap) {
				adopter := "init"
				if iv.AdoptedByRoot {
					adopter = probe.Role(0)
				}
				fmt.Fprintf(out, "orphan: %s from %s until %s (adopted by %s)\n", probe.Role(iv.Generation), iv.From, iv.Until, adopter)
			}
			for _, t := range at {
				fmt.Fprintf(out, "live at %s: %d\n", t, probe.LiveAt(windows, t))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&overrides.generations, "generations", "n", 0, "Number of generations, overriding the probe file")
	cmd.Flags().StringVar(&overrides.reap, "reap", "", "Reap mode to plan for: none, subreaper or reap")
	cmd.Flags().DurationSliceVar(&at, "at", nil, "Report the number of live generations at these offsets")
	return cmd
}

func formatLifetime(d time.Duration) string {
	if d <= 0 {
		return "immediate"
	}
	return units.HumanDuration(d)
}
