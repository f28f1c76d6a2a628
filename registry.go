package halbridge

import (
	"sort"

	"github.com/tailbits/halbridge/model"
)

// Operations lists the documented routes in registration order.
func (r *Router) Operations() []Operation {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ops := make([]Operation, 0, len(r.routes))
	for _, rt := range r.routes {
		if rt.op.Skipped {
			continue
		}
		ops = append(ops, rt.op)
	}
	return ops
}

// GetOperation finds the route registered for verb and pattern. Parameter
// names are ignored, so /projects/{id} finds /projects/:id.
func (r *Router) GetOperation(verb Verb, path string) (Operation, bool) {
	p, err := parsePattern(path)
	if err != nil {
		return Operation{}, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, rt := range r.routes {
		if rt.verb == verb && rt.pattern.key() == p.key() {
			return rt.op, true
		}
	}
	return Operation{}, false
}

func (r *Router) HasOperation(verb Verb, path string) bool {
	_, ok := r.GetOperation(verb, path)
	return ok
}

// TaggedOps returns the operations carrying all of tags.
func (r *Router) TaggedOps(tags ...string) []Operation {
	var ops []Operation
	for _, op := range r.Operations() {
		if op.HasTags(tags...) {
			ops = append(ops, op)
		}
	}
	return ops
}

// Endpoints lists "VERB pattern" for every route, documented or not.
func (r *Router) Endpoints() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.routes))
	for _, rt := range r.routes {
		out = append(out, string(rt.verb)+" "+rt.pattern.raw)
	}
	return out
}

// Models lists the registered schemas ordered by name.
func (r *Router) Models() []model.WithSchema {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.WithSchema, 0, len(r.models))
	for _, m := range r.models {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}
