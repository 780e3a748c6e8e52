package utils

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9]+`)

// GenerateRunID creates a short, human-readable run ID.
// Format: {mode}-{sourceStem}-{8charHexUUID}
//
// Example:
//   - Input: mode="simulate", source="/data/events.txt"
//   - Output: "simulate-events-a3f8e2b1"
//
// An empty source is left out: "daemon-a3f8e2b1".
func GenerateRunID(mode, source string) string {
	parts := []string{mode}
	if stem := sourceStem(source); stem != "" {
		parts = append(parts, stem)
	}
	return strings.Join(append(parts, generateShortUUID()), "-")
}

// sourceStem reduces a command file path to its base name without extension
//   - "/data/events.txt" -> "events"
//   - "day 2.cmd" -> "day-2"
//   - "-" -> "" (stdin)
func sourceStem(source string) string {
	if source == "" || source == "-" {
		return ""
	}
	base := filepath.Base(source)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return strings.Trim(unsafeChars.ReplaceAllString(base, "-"), "-")
}

// generateShortUUID creates an 8-character hex string from a UUID.
func generateShortUUID() string {
	id := uuid.New()
	return strings.ReplaceAll(id.String(), "-", "")[:8]
}
