package hal_test

import (
	"testing"
	"time"

	"github.com/tailbits/halbridge/hal"
	"gotest.tools/v3/assert"
)

func TestParseDuration(t *testing.T) {
	for in, want := range map[string]time.Duration{
		"PT1H":       time.Hour,
		"PT1H30M":    90 * time.Minute,
		"PT2.5H":     150 * time.Minute,
		"PT0,25H":    15 * time.Minute,
		"P1DT2H":     26 * time.Hour,
		"P1W":        7 * 24 * time.Hour,
		"PT45S":      45 * time.Second,
		"PT0S":       0,
		"-PT1H":      -time.Hour,
		"PT1H0M0.5S": time.Hour + 500*time.Millisecond,
	} {
		got, err := hal.ParseDuration(in)
		assert.NilError(t, err, in)
		assert.Equal(t, got, want, in)
	}

	for _, in := range []string{"", "P", "PT", "1H", "P1Y", "P2M", "PT1D", "P1H", "PTxH", "PT1HT1M"} {
		_, err := hal.ParseDuration(in)
		assert.Assert(t, err != nil, in)
	}
}

func TestFormatDuration(t *testing.T) {
	for d, want := range map[time.Duration]string{
		0:                                   "PT0S",
		90 * time.Minute:                    "PT1H30M",
		26 * time.Hour:                      "PT26H",
		time.Minute + 1500*time.Millisecond: "PT1M1.5S",
		-2 * time.Hour:                      "-PT2H",
		hal.Hours(1.75):                     "PT1H45M",
	} {
		assert.Equal(t, hal.FormatDuration(d), want)
	}
}
