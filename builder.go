package halbridge

import (
	"errors"
	"strings"

	m "github.com/tailbits/halbridge/model"
)

// Builder collects the metadata of a typed route before it is registered.
type Builder interface {
	ResourceID() string
	OpID() string
	Path(p string) Builder
	WithGroup(group string) Builder
	WithOpID(segments ...string) Builder
	WithDesc(d string) Builder
	WithTags(tags ...string) Builder
	WithSummary(s string) Builder
	SkipIf(skip bool) Builder
	Register(r *Router)
}

// RouteBuilderBase holds what every typed builder records. Its setters
// return the concrete builder embedding it so calls chain across both.
type RouteBuilderBase struct {
	self    Builder
	verb    Verb
	path    string
	op      Operation
	skipped bool
}

// Path sets the route pattern. Parameters are written /users/:id or /users/{id}.
func (rb *RouteBuilderBase) Path(p string) Builder {
	rb.path = p
	return rb.self
}

func (rb *RouteBuilderBase) WithGroup(group string) Builder {
	rb.op.Group = group
	return rb.self
}

// WithOpID joins segments with underscores into the operation id:
// ("time-entries", "get") gives "time-entries_get".
func (rb *RouteBuilderBase) WithOpID(segments ...string) Builder {
	rb.op.OperationID = strings.Join(segments, "_")
	return rb.self
}

func (rb *RouteBuilderBase) OpID() string {
	return rb.op.OperationID
}

func (rb *RouteBuilderBase) WithDesc(d string) Builder {
	rb.op.Description = d
	return rb.self
}

func (rb *RouteBuilderBase) WithTags(tags ...string) Builder {
	rb.op.Tags = tags
	return rb.self
}

func (rb *RouteBuilderBase) WithSummary(s string) Builder {
	rb.op.Summary = s
	return rb.self
}

// SkipIf keeps the route out of the route surface document when skip is true.
func (rb *RouteBuilderBase) SkipIf(skip bool) Builder {
	rb.skipped = skip
	return rb.self
}

// register adds the route. Incomplete or duplicate routes panic: they are
// programming errors that must surface at startup.
func (rb *RouteBuilderBase) register(r *Router, h HandlerFunc, input, output m.Entity, query any) {
	switch {
	case rb.op.OperationID == "":
		panic(errors.New("operationID is required"))
	case rb.verb == "":
		panic(errors.New("verb is required"))
	case rb.path == "":
		panic(errors.New("path is required"))
	}

	r.RegisterModel(output)
	if input != nil {
		r.RegisterModel(input)
	}

	opts := []Option{
		WithOperationID(rb.op.OperationID),
		WithGroup(rb.op.Group),
		WithDescription(rb.op.Description),
		WithSummary(rb.op.Summary),
		WithTags(rb.op.Tags...),
		WithModels(input, output, query),
	}
	if rb.skipped {
		opts = append(opts, Undocumented())
	}

	r.MustRegister(rb.verb, rb.path, h, opts...)
}

// RouteBuilderWithBody builds a route whose payload decodes into I.
type RouteBuilderWithBody[I m.Entity, O m.Entity, Q any] struct {
	RouteBuilderBase
	handler HandlerWithBody[I, O, Q]
}

func newBuilderWithBody[I m.Entity, O m.Entity, Q any](verb Verb, h HandlerWithBody[I, O, Q]) *RouteBuilderWithBody[I, O, Q] {
	rb := &RouteBuilderWithBody[I, O, Q]{handler: h}
	rb.verb = verb
	rb.self = rb
	return rb
}

// ResourceID names the resource the route returns.
func (rb *RouteBuilderWithBody[I, O, Q]) ResourceID() string {
	return m.Unwrap(m.New[O]()).Name()
}

func (rb *RouteBuilderWithBody[I, O, Q]) Register(r *Router) {
	if rb.handler == nil {
		panic("handler is required")
	}
	rb.register(r, newHandlerWithBody(r, rb.handler), m.New[I](), m.New[O](), m.New[Q]())
}

// RouteBuilderNoBody builds a route without payload.
type RouteBuilderNoBody[O m.Entity, Q any] struct {
	RouteBuilderBase
	handler HandlerNoBody[O, Q]
}

func newBuilderNoBody[O m.Entity, Q any](verb Verb, h HandlerNoBody[O, Q]) *RouteBuilderNoBody[O, Q] {
	rb := &RouteBuilderNoBody[O, Q]{handler: h}
	rb.verb = verb
	rb.self = rb
	return rb
}

func (rb *RouteBuilderNoBody[O, Q]) ResourceID() string {
	return m.Unwrap(m.New[O]()).Name()
}

func (rb *RouteBuilderNoBody[O, Q]) Register(r *Router) {
	if rb.handler == nil {
		panic("handler is required")
	}
	rb.register(r, newHandler(rb.handler), nil, m.New[O](), m.New[Q]())
}
