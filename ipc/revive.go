package ipc

import (
	"slices"
	"time"
)

// DateFields lists the payload keys whose string values are dates. It is the
// only record of which fields are date-typed: a date-bearing DTO field missing
// here arrives as a plain string.
var DateFields = []string{
	"spentOn",
	"createdAt",
	"updatedAt",
	"modifiedAt",
	"startDate",
	"endDate",
	"dueDate",
	"date",
	"from",
	"to",
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02",
}

// Revive walks a decoded JSON value and replaces the strings held under
// DateFields keys by time.Time values, in place. Strings that do not parse as
// a date are kept. Other keys are never touched.
func Revive(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, val := range t {
			if s, ok := val.(string); ok && slices.Contains(DateFields, k) {
				if d, ok := parseDate(s); ok {
					t[k] = d
				}
				continue
			}
			t[k] = Revive(val)
		}
		return t
	case []any:
		for i := range t {
			t[i] = Revive(t[i])
		}
		return t
	default:
		return v
	}
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return d, true
		}
	}
	return time.Time{}, false
}
