package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/fascia-warehouse/internal/adapters/eventsource"
)

// NewSimulateCommand replays a command file through a fresh simulation
func NewSimulateCommand() *cobra.Command {
	var (
		fresh bool
		rate  float64
	)

	cmd := &cobra.Command{
		Use:   "simulate <commands-file|->",
		Short: "Run a command file through the warehouse",
		Long: `Run every command in a file (or stdin with "-") through a new
simulation, then write the final stock report.

Completed orders are appended to the completion log; use --fresh to start
from an empty log.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("rate") {
				cfg.Replay.EventsPerSecond = rate
			}

			source := args[0]
			var in io.Reader = cmd.InOrStdin()
			if source != "-" {
				f, err := os.Open(source)
				if err != nil {
					return fmt.Errorf("failed to open command file: %w", err)
				}
				defer f.Close()
				in = f
			}

			ctx := cmd.Context()
			rt, err := newRuntime(ctx, cfg, runOptions{mode: "simulate", source: source, fresh: fresh})
			if err != nil {
				return err
			}

			replayer := eventsource.NewReplayer(rt.sim, cfg.Replay.EventsPerSecond, cfg.Replay.Burst)
			stats, runErr := replayer.Run(rt.context(ctx), in)
			if err := rt.finish(ctx, runErr); err != nil && runErr == nil {
				runErr = err
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "Run %s: %d applied, %d rejected, %d malformed\n",
				rt.runID, stats.Applied, stats.Rejected, stats.Malformed)
			return runErr
		},
	}

	cmd.Flags().BoolVar(&fresh, "fresh", false, "Clear the completion log before the run")
	cmd.Flags().Float64Var(&rate, "rate", 0, "Events per second (0 = as fast as possible)")

	return cmd
}
