package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/fascia-warehouse/internal/adapters/grpc"
	"github.com/andrescamacho/fascia-warehouse/internal/adapters/tables"
	"github.com/andrescamacho/fascia-warehouse/internal/domain/inventory"
)

// NewInventoryCommand reports stock per slot
func NewInventoryCommand() *cobra.Command {
	var (
		format   string
		fromLive bool
		final    bool
		lowOnly  bool
	)

	cmd := &cobra.Command{
		Use:   "inventory",
		Short: "Show stock per slot",
		Long: `Show the stock of every slot in traversal order.

By default the initial stock table is applied to the layout. --final reads
the last final stock report instead and --live asks the running daemon.

Examples:
  warehouse inventory
  warehouse inventory --final --low
  warehouse inventory --live --format yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			var report grpc.StockReport
			if fromLive {
				report, err = liveStock(cmd.Context())
			} else {
				source := cfg.Warehouse.InitialStock
				if final {
					source = cfg.Warehouse.FinalStock
				}
				report, err = offlineStock(cfg.Warehouse.TraversalTable, source, cfg.Warehouse.Policy())
			}
			if err != nil {
				return err
			}

			if lowOnly {
				threshold := cfg.Warehouse.LowStockThreshold
				kept := report.Levels[:0]
				for _, l := range report.Levels {
					if l.Amount <= threshold {
						kept = append(kept, l)
					}
				}
				report.Levels = kept
			}

			return render(cmd.OutOrStdout(), format, report, func(out io.Writer) {
				fmt.Fprintf(out, "%-16s %-10s %s\n", "LOCATION", "SKU", "AMOUNT")
				for _, l := range report.Levels {
					fmt.Fprintf(out, "%-16s %-10s %d\n", l.Slot, l.Item, l.Amount)
				}
			})
		},
	}

	cmd.Flags().StringVar(&format, "format", formatTable, "Output format: table, json, yaml")
	cmd.Flags().BoolVar(&fromLive, "live", false, "Ask the running daemon")
	cmd.Flags().BoolVar(&final, "final", false, "Read the final stock report of the last run")
	cmd.Flags().BoolVar(&lowOnly, "low", false, "Only slots at or below the replenish threshold")

	return cmd
}

func offlineStock(traversal, stockFile string, policy inventory.Policy) (grpc.StockReport, error) {
	layout, err := tables.LoadLayout(traversal)
	if err != nil {
		return grpc.StockReport{}, err
	}
	levels, err := tables.LoadInitialStock(stockFile)
	if err != nil {
		return grpc.StockReport{}, err
	}

	ledger := inventory.NewLedger(layout, policy, nil)
	if err := ledger.Restore(levels); err != nil {
		return grpc.StockReport{}, err
	}

	current := ledger.Levels()
	report := grpc.StockReport{Levels: make([]grpc.StockLine, len(current))}
	for i, l := range current {
		report.Levels[i] = grpc.StockLine{Slot: l.Slot, Item: l.Item, Amount: l.Amount}
	}
	return report, nil
}

func liveStock(ctx context.Context) (grpc.StockReport, error) {
	client, err := grpc.NewDaemonClient(daemonSocket())
	if err != nil {
		return grpc.StockReport{}, fmt.Errorf("failed to connect to daemon: %w", err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return client.Stock(ctx)
}
