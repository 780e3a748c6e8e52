package helpers

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

// TraversalCSV is a small floor: one aisle walked rack by rack. Items
// 1..8 are the fascias of the four variants in TranslationCSV.
const TraversalCSV = `A,1,1,0,2
A,1,1,1,1
A,1,2,0,4
A,1,2,1,3
A,1,3,0,6
A,1,3,1,5
A,1,4,0,8
A,1,4,1,7
`

// TranslationCSV maps each (colour, model) pair to its front and rear fascia
const TranslationCSV = `Colour,Model,Front,Rear
White,S,1,2
White,SE,3,4
Red,S,5,6
Red,SE,7,8
`

// InitialStockCSV starts item 7 one pick above the replenish threshold
const InitialStockCSV = `A,1,4,1,6
`

// Tables are the paths of a written fixture set
type Tables struct {
	Dir          string
	Traversal    string
	Translation  string
	InitialStock string
	Completions  string
	FinalStock   string
}

// WriteTables writes the fixture tables into a fresh temp dir
func WriteTables(t *testing.T) Tables {
	t.Helper()
	tables, err := WriteTablesTo(t.TempDir())
	if err != nil {
		t.Fatalf("failed to write fixture tables: %v", err)
	}
	return tables
}

// WriteTablesTo writes the fixture tables into dir. Completion and final
// stock paths are named but not created.
func WriteTablesTo(dir string) (Tables, error) {
	tables := Tables{
		Dir:          dir,
		Traversal:    filepath.Join(dir, "traversal_table.csv"),
		Translation:  filepath.Join(dir, "translation.csv"),
		InitialStock: filepath.Join(dir, "initial.csv"),
		Completions:  filepath.Join(dir, "orders.csv"),
		FinalStock:   filepath.Join(dir, "final.csv"),
	}

	files := map[string]string{
		tables.Traversal:    TraversalCSV,
		tables.Translation:  TranslationCSV,
		tables.InitialStock: InitialStockCSV,
	}
	for path, content := range files {
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return Tables{}, err
		}
	}
	return tables, nil
}

// WriteFile writes content to path or fails the test
func WriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

// LogEntry is one captured log line
type LogEntry struct {
	Level    string
	Message  string
	Metadata map[string]interface{}
}

// CaptureLogger records log lines for assertions
type CaptureLogger struct {
	mu      sync.Mutex
	entries []LogEntry
}

func (l *CaptureLogger) Log(level, message string, metadata map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, LogEntry{Level: level, Message: message, Metadata: metadata})
}

// Entries returns a copy of every captured line
func (l *CaptureLogger) Entries() []LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]LogEntry(nil), l.entries...)
}

// Contains reports whether a line at level contains fragment
func (l *CaptureLogger) Contains(level, fragment string) bool {
	for _, e := range l.Entries() {
		if e.Level == level && strings.Contains(e.Message, fragment) {
			return true
		}
	}
	return false
}

// Reset drops every captured line
func (l *CaptureLogger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
}
