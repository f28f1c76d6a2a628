// Package casing converts service and attribute names between the naming
// styles used for route groups, operation tags and labels.
package casing

import (
	"strings"
	"unicode"
)

// Words splits s at separators (_ - space) and at case changes. A run of
// capitals stays one word unless it is followed by a lowercase letter:
// "HTTPProxy" gives "HTTP", "Proxy".
func Words(s string) []string {
	rs := []rune(s)

	var (
		words []string
		start = -1
	)
	flush := func(end int) {
		if start >= 0 && end > start {
			words = append(words, string(rs[start:end]))
		}
		start = -1
	}

	for i, r := range rs {
		if r == '_' || r == '-' || unicode.IsSpace(r) {
			flush(i)
			continue
		}
		if start < 0 {
			start = i
			continue
		}
		if unicode.IsUpper(r) {
			prevLower := unicode.IsLower(rs[i-1]) || unicode.IsDigit(rs[i-1])
			nextLower := i+1 < len(rs) && unicode.IsLower(rs[i+1])
			if prevLower || (unicode.IsUpper(rs[i-1]) && nextLower) {
				flush(i)
				start = i
			}
		}
	}
	flush(len(rs))

	return words
}

// Kebab joins the lowercased words of s with hyphens: "TimeEntries" gives
// "time-entries".
func Kebab(s string) string {
	words := Words(s)
	for i, w := range words {
		words[i] = strings.ToLower(w)
	}
	return strings.Join(words, "-")
}

// Title capitalizes the words of s and joins them with spaces: "time-entries"
// and "TimeEntries" both give "Time Entries".
func Title(s string) string {
	words := Words(s)
	for i, w := range words {
		rs := []rune(w)
		rs[0] = unicode.ToUpper(rs[0])
		words[i] = string(rs)
	}
	return strings.Join(words, " ")
}
