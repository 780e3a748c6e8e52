package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/fascia-warehouse/internal/adapters/grpc"
)

// NewSendCommand sends commands to a running daemon
func NewSendCommand() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "send [command words...]",
		Short: "Send commands to the running daemon",
		Long: `Send one command given as arguments, or every line of --file
("-" for stdin), to the running daemon.

Examples:
  warehouse send Order SE White
  warehouse send Picker Alice ready
  warehouse send --file events.txt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" && len(args) == 0 {
				return fmt.Errorf("provide a command or --file")
			}

			client, err := grpc.NewDaemonClient(daemonSocket())
			if err != nil {
				return fmt.Errorf("failed to connect to daemon: %w", err)
			}
			defer client.Close()

			if file == "" {
				return sendLine(cmd.Context(), cmd.OutOrStdout(), client, strings.Join(args, " "))
			}

			var in io.Reader = cmd.InOrStdin()
			if file != "-" {
				f, err := os.Open(file)
				if err != nil {
					return fmt.Errorf("failed to open command file: %w", err)
				}
				defer f.Close()
				in = f
			}

			scanner := bufio.NewScanner(in)
			rejected := 0
			for scanner.Scan() {
				line := strings.TrimRight(scanner.Text(), "\r")
				if strings.TrimSpace(line) == "" {
					continue
				}
				if err := sendLine(cmd.Context(), cmd.OutOrStdout(), client, line); err != nil {
					if _, ok := err.(*rejectedError); !ok {
						return err
					}
					rejected++
				}
			}
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("failed to read commands: %w", err)
			}
			if rejected > 0 {
				return fmt.Errorf("%d commands rejected", rejected)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Send every line of a command file")

	return cmd
}

type rejectedError struct {
	line   string
	reason string
}

func (e *rejectedError) Error() string {
	return fmt.Sprintf("%s: %s", e.line, e.reason)
}

func sendLine(ctx context.Context, out io.Writer, client *grpc.DaemonClient, line string) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	result, err := client.Apply(ctx, line)
	if err != nil {
		return err
	}
	if !result.Accepted {
		fmt.Fprintf(out, "✗ %s (%s)\n", line, result.Error)
		return &rejectedError{line: line, reason: result.Error}
	}
	fmt.Fprintf(out, "✓ %s\n", line)
	return nil
}
