package halbridge

import (
	"encoding/json"
	"fmt"
	"maps"
	"net/http"
	"net/url"
	"strings"
)

// Verb is the request method of a routed request.
type Verb string

const (
	VerbGet    Verb = http.MethodGet
	VerbPost   Verb = http.MethodPost
	VerbPut    Verb = http.MethodPut
	VerbDelete Verb = http.MethodDelete
	VerbPatch  Verb = http.MethodPatch
)

// Valid reports whether v is one of the supported verbs.
func (v Verb) Valid() bool {
	switch v {
	case VerbGet, VerbPost, VerbPut, VerbDelete, VerbPatch:
		return true
	default:
		return false
	}
}

// ParseVerb accepts verbs in any letter case.
func ParseVerb(s string) (Verb, bool) {
	v := Verb(strings.ToUpper(strings.TrimSpace(s)))
	return v, v.Valid()
}

// Request is one routed request. It is consumed by exactly one handler.
type Request struct {
	ID     string            `json:"id,omitempty"`
	Verb   Verb              `json:"verb"`
	Path   string            `json:"path"`
	Query  url.Values        `json:"query,omitempty"`
	Data   json.RawMessage   `json:"data,omitempty"`
	Params map[string]string `json:"-"`
}

// NewRequest marshals data as the request payload.
func NewRequest(verb Verb, path string, data any) (*Request, error) {
	req := &Request{Verb: verb, Path: path}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("halbridge.NewRequest: %w", err)
		}
		req.Data = raw
	}

	return req, nil
}

// Param returns the named path parameter.
func (r *Request) Param(name string) string {
	return r.Params[name]
}

// clone copies r deep enough that routing never writes through to the
// caller's Query or Params.
func (r *Request) clone() *Request {
	cp := *r
	if r.Query != nil {
		cp.Query = make(url.Values, len(r.Query))
		for k, vs := range r.Query {
			cp.Query[k] = append([]string(nil), vs...)
		}
	}
	cp.Params = maps.Clone(r.Params)
	return &cp
}

// splitQuery moves a query string embedded in Path into Query.
func (r *Request) splitQuery() error {
	i := strings.IndexByte(r.Path, '?')
	if i < 0 {
		return nil
	}

	q, err := url.ParseQuery(r.Path[i+1:])
	if err != nil {
		return fmt.Errorf("invalid query string: %w", err)
	}
	r.Path = r.Path[:i]

	if r.Query == nil {
		r.Query = url.Values{}
	}
	for k, vs := range q {
		for _, v := range vs {
			r.Query.Add(k, v)
		}
	}

	return nil
}
