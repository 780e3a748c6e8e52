package tables

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/andrescamacho/fascia-warehouse/internal/domain/request"
)

// CompletionLog appends one line per loaded order to a plain text file.
// It satisfies scheduler.CompletionSink.
type CompletionLog struct {
	mu   sync.Mutex
	path string
}

// NewCompletionLog creates a log writing to path
func NewCompletionLog(path string) *CompletionLog {
	return &CompletionLog{path: path}
}

// Clear removes the log so a run starts from an empty file
func (l *CompletionLog) Clear() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.Remove(l.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to clear completion log: %w", err)
	}
	return nil
}

// RecordCompletion appends every order of req
func (l *CompletionLog) RecordCompletion(ctx context.Context, req *request.WorkRequest) error {
	lines := req.CompletionLines()
	if len(lines) == 0 {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open completion log: %w", err)
	}

	if _, err := f.WriteString(strings.Join(lines, "\n") + "\n"); err != nil {
		f.Close()
		return fmt.Errorf("failed to append %s: %w", req, err)
	}
	return f.Close()
}

// Lines returns the logged lines
func (l *CompletionLog) Lines() ([]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	data, err := os.ReadFile(l.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read completion log: %w", err)
	}

	text := strings.TrimRight(string(data), "\n")
	if text == "" {
		return nil, nil
	}
	return strings.Split(text, "\n"), nil
}
