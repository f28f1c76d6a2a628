package dto

import (
	"cmp"
	"slices"
	"strings"
)

// SortKey orders time entries on one attribute.
type SortKey func(a, b *TimeEntry) int

var (
	BySpentOn SortKey = func(a, b *TimeEntry) int {
		return a.SpentOn.Compare(b.SpentOn.Time)
	}
	ByHours SortKey = func(a, b *TimeEntry) int {
		return cmp.Compare(a.Hours, b.Hours)
	}
	ByProject SortKey = func(a, b *TimeEntry) int {
		return strings.Compare(a.Project.Title, b.Project.Title)
	}
	ByWorkPackage SortKey = func(a, b *TimeEntry) int {
		return strings.Compare(linkTitle(a.WorkPackage), linkTitle(b.WorkPackage))
	}
	ByCreatedAt SortKey = func(a, b *TimeEntry) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	}
)

// Desc reverses a key.
func Desc(k SortKey) SortKey {
	return func(a, b *TimeEntry) int {
		return k(b, a)
	}
}

// SortTimeEntries sorts entries in place by the keys in priority order. The
// sort is stable, so entries equal on every key keep their server order.
func SortTimeEntries(entries []TimeEntry, keys ...SortKey) {
	if len(keys) == 0 {
		keys = []SortKey{BySpentOn}
	}

	slices.SortStableFunc(entries, func(a, b TimeEntry) int {
		for _, k := range keys {
			if c := k(&a, &b); c != 0 {
				return c
			}
		}
		return 0
	})
}

func linkTitle(l *Link) string {
	if l == nil {
		return ""
	}
	return l.Title
}
