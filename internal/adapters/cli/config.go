package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// NewConfigCommand shows the effective configuration
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration",
	}

	var format string
	show := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration after defaults and env overrides",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.Database.Password != "" {
				cfg.Database.Password = "********"
			}
			return render(cmd.OutOrStdout(), format, cfg, func(out io.Writer) {
				w := cfg.Warehouse
				fmt.Fprintf(out, "Traversal table:   %s\n", w.TraversalTable)
				fmt.Fprintf(out, "Translation table: %s\n", w.TranslationTable)
				fmt.Fprintf(out, "Initial stock:     %s\n", w.InitialStock)
				fmt.Fprintf(out, "Completion log:    %s\n", w.CompletionLog)
				fmt.Fprintf(out, "Final stock:       %s\n", w.FinalStock)
				fmt.Fprintf(out, "Batch size:        %d\n", w.BatchSize)
				fmt.Fprintf(out, "Stock policy:      default %d, threshold %d, replenish %d\n",
					w.DefaultStock, w.LowStockThreshold, w.ReplenishAmount)
				fmt.Fprintf(out, "Database:          %s (enabled=%t)\n", cfg.Database.Type, cfg.Database.Enabled)
				fmt.Fprintf(out, "Metrics:           %s:%d%s (enabled=%t)\n",
					cfg.Metrics.Host, cfg.Metrics.Port, cfg.Metrics.Path, cfg.Metrics.Enabled)
				fmt.Fprintf(out, "Notifications:     %s (enabled=%t)\n", cfg.Notifications.Exchange, cfg.Notifications.Enabled)
				fmt.Fprintf(out, "Daemon socket:     %s\n", cfg.Daemon.SocketPath)
			})
		},
	}
	show.Flags().StringVar(&format, "format", formatYAML, "Output format: table, json, yaml")
	cmd.AddCommand(show)

	return cmd
}
