package cli

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/fascia-warehouse/internal/adapters/grpc"
)

// NewStatusCommand shows the daemon's queues and workers
func NewStatusCommand() *cobra.Command {
	var (
		format string
		logs   int
		level  string
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show queues and workers of the running daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := grpc.NewDaemonClient(daemonSocket())
			if err != nil {
				return fmt.Errorf("failed to connect to daemon: %w", err)
			}
			defer client.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()

			if logs > 0 {
				report, err := client.Logs(ctx, logs, level)
				if err != nil {
					return err
				}
				return render(cmd.OutOrStdout(), format, report, func(out io.Writer) {
					for _, e := range report.Entries {
						fmt.Fprintf(out, "[%s] %s: %s\n", e.Timestamp.Format(time.RFC3339), e.Level, e.Message)
					}
				})
			}

			status, err := client.Status(ctx)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), format, status, func(out io.Writer) {
				printStatus(out, status)
			})
		},
	}

	cmd.Flags().StringVar(&format, "format", formatTable, "Output format: table, json, yaml")
	cmd.Flags().IntVar(&logs, "logs", 0, "Show the last N log entries instead")
	cmd.Flags().StringVar(&level, "level", "", "Filter --logs by level (INFO, WARNING, ERROR)")

	return cmd
}

func printStatus(out io.Writer, s grpc.StatusReport) {
	fmt.Fprintln(out, "Queues")
	fmt.Fprintln(out, "──────")
	fmt.Fprintf(out, "  %-12s %s\n", "Picking:", joinInts(s.Picking))
	fmt.Fprintf(out, "  %-12s %s\n", "Sequencing:", joinInts(s.Sequencing))
	fmt.Fprintf(out, "  %-12s %s\n", "Loading:", joinInts(s.Loading))
	fmt.Fprintf(out, "  %-12s %s (ready: %t)\n", "Load order:", joinInts(s.LoadOrder), s.ReadyToLoad)
	fmt.Fprintf(out, "  %-12s %s\n", "Replenish:", strings.Join(s.Replenish, " | "))
	fmt.Fprintf(out, "  %-12s %d (next order #%d)\n", "Pending:", s.PendingOrders, s.NextOrderID)

	roles := make([]string, 0, len(s.Idle))
	for role := range s.Idle {
		roles = append(roles, role)
	}
	sort.Strings(roles)
	for _, role := range roles {
		fmt.Fprintf(out, "  Idle %-7s %s\n", role+":", strings.Join(s.Idle[role], ", "))
	}

	fmt.Fprintln(out, "\nWorkers")
	fmt.Fprintln(out, "───────")
	fmt.Fprintf(out, "  %-15s %-12s %-10s %s\n", "ID", "ROLE", "STATUS", "TASK")
	for _, w := range s.Workers {
		task := "-"
		switch {
		case w.Location != "":
			task = "location " + w.Location
		case w.RequestID > 0:
			task = fmt.Sprintf("PickingRequest #%d", w.RequestID)
		}
		fmt.Fprintf(out, "  %-15s %-12s %-10s %s\n", w.ID, w.Role, w.Status, task)
	}

	fmt.Fprintf(out, "\nEvents: %d applied, %d rejected\n", s.EventsApplied, s.EventsRejected)
}

func joinInts(ids []int) string {
	if len(ids) == 0 {
		return "-"
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprint(id)
	}
	return strings.Join(parts, ", ")
}
