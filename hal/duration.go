package hal

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ParseDuration reads an ISO 8601 duration such as PT1H30M or P1DT2.5H. Days
// and weeks are calendar-free (24h and 7d); years and months are rejected
// because their length is not fixed.
func ParseDuration(s string) (time.Duration, error) {
	orig := s
	neg := false
	if strings.HasPrefix(s, "-") {
		neg, s = true, s[1:]
	}
	if !strings.HasPrefix(s, "P") || len(s) < 2 {
		return 0, fmt.Errorf("hal.ParseDuration: %q is not an ISO 8601 duration", orig)
	}
	s = s[1:]

	var total float64
	inTime := false
	for s != "" {
		if s[0] == 'T' {
			if inTime {
				return 0, fmt.Errorf("hal.ParseDuration: %q repeats the time designator", orig)
			}
			inTime = true
			s = s[1:]
			if s == "" {
				return 0, fmt.Errorf("hal.ParseDuration: %q has an empty time part", orig)
			}
			continue
		}

		i := strings.IndexAny(s, "YMWDHS")
		if i <= 0 {
			return 0, fmt.Errorf("hal.ParseDuration: %q is malformed", orig)
		}
		n, err := strconv.ParseFloat(strings.Replace(s[:i], ",", ".", 1), 64)
		if err != nil {
			return 0, fmt.Errorf("hal.ParseDuration: %q: %w", orig, err)
		}

		var unit time.Duration
		switch designator := s[i]; {
		case designator == 'W' && !inTime:
			unit = 7 * 24 * time.Hour
		case designator == 'D' && !inTime:
			unit = 24 * time.Hour
		case designator == 'H' && inTime:
			unit = time.Hour
		case designator == 'M' && inTime:
			unit = time.Minute
		case designator == 'S' && inTime:
			unit = time.Second
		default:
			return 0, fmt.Errorf("hal.ParseDuration: %q: unsupported designator %c", orig, designator)
		}

		total += n * float64(unit)
		s = s[i+1:]
	}

	d := time.Duration(math.Round(total))
	if neg {
		d = -d
	}
	return d, nil
}

// FormatDuration writes d as an ISO 8601 time duration (PT1H30M). Seconds are
// only written when present.
func FormatDuration(d time.Duration) string {
	if d == 0 {
		return "PT0S"
	}

	var b strings.Builder
	if d < 0 {
		b.WriteByte('-')
		d = -d
	}
	b.WriteString("PT")

	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute

	if h > 0 {
		fmt.Fprintf(&b, "%dH", h)
	}
	if m > 0 {
		fmt.Fprintf(&b, "%dM", m)
	}
	if d > 0 {
		b.WriteString(strconv.FormatFloat(d.Seconds(), 'f', -1, 64))
		b.WriteByte('S')
	}
	return b.String()
}

// Hours converts fractional hours to a duration rounded to the second.
func Hours(h float64) time.Duration {
	return time.Duration(math.Round(h*3600)) * time.Second
}
