package casing_test

import (
	"testing"

	"github.com/tailbits/halbridge/internal/casing"
	"gotest.tools/v3/assert"
)

func TestKebab(t *testing.T) {
	tests := map[string]string{
		"TimeEntries":   "time-entries",
		"timeEntries":   "time-entries",
		"SystemInfo":    "system-info",
		"work_packages": "work-packages",
		"HTTPProxy":     "http-proxy",
		"Invoices":      "invoices",
		"v3Projects":    "v3-projects",
		"":              "",
	}
	for in, want := range tests {
		assert.Equal(t, casing.Kebab(in), want, in)
	}
}

func TestTitle(t *testing.T) {
	tests := map[string]string{
		"time-entries":  "Time Entries",
		"TimeEntries":   "Time Entries",
		"status_id":     "Status Id",
		"spentOn":       "Spent On",
		"  padded  key": "Padded Key",
	}
	for in, want := range tests {
		assert.Equal(t, casing.Title(in), want, in)
	}
}
