package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/fascia-warehouse/internal/adapters/persistence"
	"github.com/andrescamacho/fascia-warehouse/internal/adapters/tables"
	"github.com/andrescamacho/fascia-warehouse/internal/infrastructure/database"
)

// NewCompletionsCommand lists loaded orders
func NewCompletionsCommand() *cobra.Command {
	var (
		runID  string
		format string
	)

	cmd := &cobra.Command{
		Use:   "completions",
		Short: "List loaded orders",
		Long: `List the orders in the completion log, or the orders archived for
one run with --run (requires database.enabled).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			if runID == "" {
				lines, err := tables.NewCompletionLog(cfg.Warehouse.CompletionLog).Lines()
				if err != nil {
					return err
				}
				return render(cmd.OutOrStdout(), format, lines, func(out io.Writer) {
					if len(lines) == 0 {
						fmt.Fprintln(out, "No completed orders")
					}
					for _, line := range lines {
						fmt.Fprintln(out, line)
					}
				})
			}

			db, err := openArchive(cfg)
			if err != nil {
				return err
			}
			defer database.Close(db)

			records, err := persistence.NewGormCompletionRepository(db, runID, nil).FindByRun(cmd.Context(), runID)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), format, records, func(out io.Writer) {
				fmt.Fprintf(out, "%-10s %-8s %-10s %s\n", "REQUEST", "ORDER", "COLOUR", "MODEL")
				for _, r := range records {
					fmt.Fprintf(out, "#%-9d #%-7d %-10s %s\n", r.RequestID, r.OrderID, r.Colour, r.Model)
				}
			})
		},
	}

	cmd.Flags().StringVar(&runID, "run", "", "Show the archive of one run")
	cmd.Flags().StringVar(&format, "format", formatTable, "Output format: table, json, yaml")

	return cmd
}
