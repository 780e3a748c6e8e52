package logging

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/andrescamacho/fascia-warehouse/internal/domain/shared"
)

// Journal persists log entries of a run
type Journal interface {
	Log(ctx context.Context, runID, level, message string, metadata map[string]interface{}) error
}

// Entry is one log line kept in memory
type Entry struct {
	Timestamp time.Time              `json:"timestamp" yaml:"timestamp"`
	RunID     string                 `json:"run_id" yaml:"run_id"`
	Level     string                 `json:"level" yaml:"level"`
	Message   string                 `json:"message" yaml:"message"`
	Metadata  map[string]interface{} `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

var severity = map[string]int{
	"DEBUG":   0,
	"INFO":    1,
	"WARNING": 2,
	"ERROR":   3,
}

// ParseLevel maps a config level (debug, info, warn, error) to a log level
func ParseLevel(level string) string {
	switch strings.ToLower(level) {
	case "debug":
		return "DEBUG"
	case "warn", "warning":
		return "WARNING"
	case "error":
		return "ERROR"
	}
	return "INFO"
}

// ProcessLogger writes the run log:
//
//	[2026-01-02T08:00:00Z] [run-id] INFO: PickingRequest #1 added to Picking Queue
//
// Entries below the minimum level are dropped. When a journal is attached,
// entries are persisted in order by a single background writer; Close
// drains it.
type ProcessLogger struct {
	mu      sync.Mutex
	outMu   sync.Mutex
	out     io.Writer
	runID   string
	min     int
	json    bool
	clock   shared.Clock
	entries []Entry
	keep    int

	journal Journal
	queue   chan Entry
	done    sync.WaitGroup
	closed  bool
}

// Option configures a ProcessLogger
type Option func(*ProcessLogger)

// WithJSON switches output to one JSON object per line
func WithJSON() Option {
	return func(l *ProcessLogger) { l.json = true }
}

// WithJournal persists every entry through j
func WithJournal(j Journal) Option {
	return func(l *ProcessLogger) { l.journal = j }
}

// WithClock overrides the timestamp source
func WithClock(c shared.Clock) Option {
	return func(l *ProcessLogger) { l.clock = c }
}

// WithHistory keeps the last n entries in memory for Recent
func WithHistory(n int) Option {
	return func(l *ProcessLogger) { l.keep = n }
}

// NewProcessLogger creates a logger for runID writing to out
func NewProcessLogger(out io.Writer, runID, level string, opts ...Option) *ProcessLogger {
	l := &ProcessLogger{
		out:   out,
		runID: runID,
		min:   severity[ParseLevel(level)],
		clock: shared.NewRealClock(),
		keep:  1000,
	}
	for _, opt := range opts {
		opt(l)
	}

	if l.journal != nil {
		l.queue = make(chan Entry, 256)
		l.done.Add(1)
		go l.persist()
	}
	return l
}

// Log implements common.RunLogger
func (l *ProcessLogger) Log(level, message string, metadata map[string]interface{}) {
	if rank, ok := severity[level]; ok && rank < l.min {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	entry := Entry{
		Timestamp: l.clock.Now(),
		RunID:     l.runID,
		Level:     level,
		Message:   message,
		Metadata:  metadata,
	}

	l.entries = append(l.entries, entry)
	if l.keep > 0 && len(l.entries) > l.keep {
		l.entries = l.entries[len(l.entries)-l.keep:]
	}

	l.write(entry)

	if l.queue != nil && !l.closed {
		l.queue <- entry
	}
}

// Recent returns up to limit of the latest entries, optionally of one level
func (l *ProcessLogger) Recent(limit int, level string) []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	filtered := make([]Entry, 0, len(l.entries))
	for _, e := range l.entries {
		if level != "" && e.Level != level {
			continue
		}
		filtered = append(filtered, e)
	}
	if limit > 0 && len(filtered) > limit {
		filtered = filtered[len(filtered)-limit:]
	}
	return filtered
}

// Close stops accepting journal entries and waits for pending writes
func (l *ProcessLogger) Close() {
	l.mu.Lock()
	if l.queue == nil || l.closed {
		l.mu.Unlock()
		return
	}
	l.closed = true
	close(l.queue)
	l.mu.Unlock()

	l.done.Wait()
}

func (l *ProcessLogger) write(e Entry) {
	l.outMu.Lock()
	defer l.outMu.Unlock()

	if l.json {
		data, err := json.Marshal(e)
		if err == nil {
			fmt.Fprintln(l.out, string(data))
			return
		}
	}
	fmt.Fprintf(l.out, "[%s] [%s] %s: %s\n", e.Timestamp.Format(time.RFC3339), e.RunID, e.Level, e.Message)
}

func (l *ProcessLogger) persist() {
	defer l.done.Done()
	for e := range l.queue {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := l.journal.Log(ctx, e.RunID, e.Level, e.Message, e.Metadata)
		cancel()
		if err != nil {
			l.write(Entry{
				Timestamp: l.clock.Now(),
				RunID:     l.runID,
				Level:     "ERROR",
				Message:   fmt.Sprintf("Failed to persist log to DB: %v", err),
			})
		}
	}
}
