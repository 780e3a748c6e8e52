package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/andrescamacho/fascia-warehouse/internal/adapters/persistence"
	"github.com/andrescamacho/fascia-warehouse/internal/infrastructure/config"
	"github.com/andrescamacho/fascia-warehouse/internal/infrastructure/database"
)

// NewRunsCommand inspects archived runs
func NewRunsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect archived runs (requires database.enabled)",
	}

	cmd.AddCommand(newRunsListCommand())
	cmd.AddCommand(newRunsLogsCommand())
	cmd.AddCommand(newRunsJournalCommand())

	return cmd
}

func newRunsListCommand() *cobra.Command {
	var (
		limit  int
		format string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := openArchive(cfg)
			if err != nil {
				return err
			}
			defer database.Close(db)

			runs, err := persistence.NewGormRunRepository(db, nil).List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), format, runs, func(out io.Writer) {
				if len(runs) == 0 {
					fmt.Fprintln(out, "No runs found")
					return
				}
				fmt.Fprintf(out, "%-32s %-10s %-9s %-9s %s\n", "RUN ID", "STATUS", "APPLIED", "REJECTED", "STARTED")
				for _, r := range runs {
					fmt.Fprintf(out, "%-32s %-10s %-9d %-9d %s\n", r.ID, r.Status, r.EventsApplied, r.EventsRejected, r.StartedAt)
				}
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs")
	cmd.Flags().StringVar(&format, "format", formatTable, "Output format: table, json, yaml")

	return cmd
}

func newRunsLogsCommand() *cobra.Command {
	var (
		limit int
		level string
	)

	cmd := &cobra.Command{
		Use:   "logs <run-id>",
		Short: "Show persisted log lines of a run (requires logging.persist)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := openArchive(cfg)
			if err != nil {
				return err
			}
			defer database.Close(db)

			var levelFilter *string
			if level != "" {
				levelFilter = &level
			}
			entries, err := persistence.NewGormRunLogRepository(db, nil).GetLogs(cmd.Context(), args[0], limit, levelFilter)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, e := range entries {
				fmt.Fprintf(out, "[%s] %s: %s\n", e.Timestamp.Format(time.RFC3339), e.Level, e.Message)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of lines (0 = all)")
	cmd.Flags().StringVar(&level, "level", "", "Filter by level (DEBUG, INFO, WARNING, ERROR)")

	return cmd
}

func newRunsJournalCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "journal <run-id>",
		Short: "Show every event of a run and whether it was accepted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := openArchive(cfg)
			if err != nil {
				return err
			}
			defer database.Close(db)

			entries, err := persistence.NewGormEventJournalRepository(db, args[0], nil).FindByRun(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), format, entries, func(out io.Writer) {
				for _, e := range entries {
					mark := "✓"
					if !e.Accepted {
						mark = "✗"
					}
					fmt.Fprintf(out, "%5d %s %s", e.Sequence, mark, e.Command)
					if e.Error != "" {
						fmt.Fprintf(out, "  (%s)", e.Error)
					}
					fmt.Fprintln(out)
				}
			})
		},
	}

	cmd.Flags().StringVar(&format, "format", formatTable, "Output format: table, json, yaml")

	return cmd
}

func openArchive(cfg *config.Config) (*gorm.DB, error) {
	if !cfg.Database.Enabled {
		return nil, fmt.Errorf("run archive is disabled: set database.enabled (WH_DATABASE_ENABLED=true)")
	}
	return database.Open(&cfg.Database)
}
