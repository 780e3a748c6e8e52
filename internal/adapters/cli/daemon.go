package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/fascia-warehouse/internal/adapters/grpc"
	"github.com/andrescamacho/fascia-warehouse/internal/infrastructure/pidfile"
)

// NewDaemonCommand keeps one simulation alive behind a unix socket
func NewDaemonCommand() *cobra.Command {
	var fresh bool

	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Run the warehouse as a long-lived daemon",
		Long: `Start a simulation that receives commands one at a time over a
Unix socket (see "warehouse send"). The final stock report is written when
the daemon receives SIGINT or SIGTERM.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if socketPath != "" {
				cfg.Daemon.SocketPath = socketPath
			}

			pid := pidfile.New(cfg.Daemon.PIDFile)
			if err := pid.Acquire(); err != nil {
				return err
			}
			defer pid.Release()

			ctx := cmd.Context()
			rt, err := newRuntime(ctx, cfg, runOptions{mode: "daemon", fresh: fresh})
			if err != nil {
				return err
			}

			server, err := grpc.NewDaemonServer(rt.sim, rt.logger, cfg.Daemon.SocketPath)
			if err != nil {
				rt.close()
				return err
			}

			serveErr := server.Start()

			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Daemon.ShutdownTimeout)
			defer cancel()
			if err := rt.finish(shutdownCtx, serveErr); err != nil && serveErr == nil {
				serveErr = err
			}
			if serveErr != nil {
				return fmt.Errorf("daemon stopped: %w", serveErr)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&fresh, "fresh", false, "Clear the completion log on startup")

	return cmd
}
