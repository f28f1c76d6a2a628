package halbridge

import "fmt"

// DuplicateRouteError is returned when a verb and pattern pair is registered
// twice on the same router.
type DuplicateRouteError struct {
	Verb     Verb
	Pattern  string
	Existing string
}

func (e *DuplicateRouteError) Error() string {
	if e.Existing != "" && e.Existing != e.Pattern {
		return fmt.Sprintf("duplicate route %s %s (already registered as %s)", e.Verb, e.Pattern, e.Existing)
	}
	return fmt.Sprintf("duplicate route %s %s", e.Verb, e.Pattern)
}
