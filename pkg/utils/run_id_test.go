package utils

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateRunID(t *testing.T) {
	tests := []struct {
		mode    string
		source  string
		pattern string
	}{
		{"simulate", "/data/events.txt", `^simulate-events-[0-9a-f]{8}$`},
		{"simulate", "day 2.cmd", `^simulate-day-2-[0-9a-f]{8}$`},
		{"simulate", "-", `^simulate-[0-9a-f]{8}$`},
		{"daemon", "", `^daemon-[0-9a-f]{8}$`},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			id := GenerateRunID(tt.mode, tt.source)
			assert.Regexp(t, regexp.MustCompile(tt.pattern), id)
		})
	}
}

func TestGenerateRunID_Unique(t *testing.T) {
	assert.NotEqual(t, GenerateRunID("simulate", "events.txt"), GenerateRunID("simulate", "events.txt"))
}
