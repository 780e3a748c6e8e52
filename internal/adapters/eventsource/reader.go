package eventsource

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/andrescamacho/fascia-warehouse/internal/application/simulation"
)

// Command is one non-blank line of a command file
type Command struct {
	Line  int
	Text  string
	Event simulation.Event
	Err   error
}

// Scan reads r line by line and calls fn with each parsed command. Blank
// lines are skipped. Parse failures are delivered through Command.Err;
// Scan only stops on a read error, a context cancellation or an fn error.
func Scan(ctx context.Context, r io.Reader, fn func(Command) error) error {
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		if err := ctx.Err(); err != nil {
			return err
		}

		text := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(text) == "" {
			continue
		}

		ev, err := Parse(text)
		if err := fn(Command{Line: line, Text: text, Event: ev, Err: err}); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read commands: %w", err)
	}
	return nil
}
