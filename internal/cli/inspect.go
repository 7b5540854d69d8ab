package cli

import (
	"errors"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Paintersrp/forkprobe/internal/proctable"
)

func newInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect PID...",
		Short: "Show process-table state and parent of the given pids",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pids := make([]int, 0, len(args))
			for _, arg := range args {
				pid, err := strconv.Atoi(arg)
				if err != nil || pid <= 0 {
					return fmt.Errorf("invalid pid %q", arg)
				}
				pids = append(pids, pid)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "PID\tPPID\tPGID\tSTATE\tCOMM")
			for _, pid := range pids {
				entry, err := proctable.Lookup(pid)
				switch {
				case errors.Is(err, proctable.ErrNotFound):
					fmt.Fprintf(w, "%d\t-\t-\tgone\t-\n", pid)
					continue
				case err != nil:
					return err
				}
				state := entry.State.String()
				if entry.Zombie() {
					state += " (zombie)"
				}
				fmt.Fprintf(w, "%d\t%d\t%d\t%s\t%s\n", entry.PID, entry.PPID, entry.PGID, state, entry.Comm)
			}
			return w.Flush()
		},
	}
	return cmd
}
