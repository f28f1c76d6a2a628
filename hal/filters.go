package hal

import (
	"encoding/json"
	"net/url"
	"strings"
)

// Filter is one entry of the server's filters query parameter.
type Filter struct {
	Name     string
	Operator string
	Values   []string
}

// Filters serializes to the server's JSON filter syntax:
// [{"name": {"operator": "=", "values": ["1"]}}].
type Filters []Filter

func (f Filters) String() string {
	out := make([]map[string]any, 0, len(f))
	for _, flt := range f {
		values := flt.Values
		if values == nil {
			values = []string{}
		}
		out = append(out, map[string]any{
			flt.Name: map[string]any{"operator": flt.Operator, "values": values},
		})
	}

	b, _ := json.Marshal(out)
	return string(b)
}

// WithQuery appends q to href.
func WithQuery(href string, q url.Values) string {
	if len(q) == 0 {
		return href
	}
	sep := "?"
	if strings.Contains(href, "?") {
		sep = "&"
	}
	return href + sep + q.Encode()
}
