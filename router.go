// Package halbridge routes verb/path requests coming from the presentation
// process to the data services of the host process.
package halbridge

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"runtime/debug"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/tailbits/halbridge/events"
	"github.com/tailbits/halbridge/model"
)

// DefaultDispatchTimeout bounds how long a handler may run.
const DefaultDispatchTimeout = 30 * time.Second

// HandlerFunc answers one routed request. A returned error, a panic, or a nil
// response are all converted into an Error response by the router.
type HandlerFunc func(ctx context.Context, req *Request) (*Response, error)

type route struct {
	verb    Verb
	pattern pattern
	handler HandlerFunc
	op      Operation
}

// Router is a dispatch table of (verb, pattern) routes. Routes are matched in
// registration order and the first match wins, so a literal pattern registered
// after a parameterized one that also matches it is never reached.
type Router struct {
	mu      sync.RWMutex
	routes  []*route
	models  map[string]model.WithSchema
	log     logrus.FieldLogger
	metrics *metrics
	events  events.Publisher
	timeout time.Duration
}

type RouterOption func(*Router)

func WithLogger(l logrus.FieldLogger) RouterOption {
	return func(r *Router) {
		r.log = l
	}
}

// WithDispatchTimeout overrides DefaultDispatchTimeout. Zero disables the deadline.
func WithDispatchTimeout(d time.Duration) RouterOption {
	return func(r *Router) {
		r.timeout = d
	}
}

// WithEvents publishes a dispatch notification for every request.
func WithEvents(p events.Publisher) RouterOption {
	return func(r *Router) {
		r.events = p
	}
}

// WithMetrics registers the dispatch collectors with reg.
func WithMetrics(reg prometheus.Registerer) RouterOption {
	return func(r *Router) {
		r.metrics = newMetrics(reg)
	}
}

func NewRouter(opts ...RouterOption) *Router {
	r := &Router{
		models:  make(map[string]model.WithSchema),
		log:     logrus.StandardLogger(),
		events:  events.Discard{},
		timeout: DefaultDispatchTimeout,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Register adds a route. Registering the same verb and pattern twice fails
// with *DuplicateRouteError; parameter names do not make patterns distinct.
func (r *Router) Register(verb Verb, path string, h HandlerFunc, opts ...Option) error {
	if !verb.Valid() {
		return fmt.Errorf("halbridge.Register: unsupported verb %q", verb)
	}
	if h == nil {
		return fmt.Errorf("halbridge.Register: %s %s: handler is required", verb, path)
	}

	p, err := parsePattern(path)
	if err != nil {
		return fmt.Errorf("halbridge.Register: %w", err)
	}

	op := Operation{Method: string(verb), Path: path}
	for _, opt := range opts {
		opt(&op)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.routes {
		if existing.verb == verb && existing.pattern.key() == p.key() {
			return &DuplicateRouteError{Verb: verb, Pattern: path, Existing: existing.pattern.raw}
		}
	}

	r.routes = append(r.routes, &route{verb: verb, pattern: p, handler: h, op: op})

	return nil
}

// MustRegister is Register for startup code: it panics on error.
func (r *Router) MustRegister(verb Verb, path string, h HandlerFunc, opts ...Option) {
	if err := r.Register(verb, path, h, opts...); err != nil {
		panic(err)
	}
}

// Dispatch resolves and invokes the handler for req. It always returns a
// response: NotFound when no route matches, Error when the handler fails.
// The handler sees a copy of req; the caller's request is left untouched.
func (r *Router) Dispatch(ctx context.Context, req *Request) *Response {
	if req == nil {
		return Fail(errors.New("nil request"))
	}
	req = req.clone()

	start := time.Now()
	if err := req.splitQuery(); err != nil {
		resp := Fail(err)
		r.observe(nil, req, resp, time.Since(start))
		return resp
	}

	rt, params := r.match(req.Verb, req.Path)
	if rt == nil {
		resp := NotFoundf("no route for %s %s", req.Verb, req.Path)
		r.observe(nil, req, resp, time.Since(start))
		return resp
	}

	if len(params) > 0 {
		if req.Params == nil {
			req.Params = make(map[string]string, len(params))
		}
		for k, v := range params {
			req.Params[k] = v
		}
	}

	resp := r.invoke(ctx, rt, req)
	r.observe(rt, req, resp, time.Since(start))

	return resp
}

func (r *Router) match(verb Verb, path string) (*route, map[string]string) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, rt := range r.routes {
		if rt.verb != verb {
			continue
		}
		if params, ok := rt.pattern.match(path); ok {
			return rt, params
		}
	}

	return nil, nil
}

func (r *Router) invoke(ctx context.Context, rt *route, req *Request) *Response {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	done := make(chan *Response, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				r.log.WithFields(logrus.Fields{
					"route": rt.pattern.raw,
					"stack": string(debug.Stack()),
				}).Error("handler panicked")
				done <- Fail(fmt.Errorf("handler panic: %v", p))
			}
		}()

		resp, err := rt.handler(ctx, req)
		switch {
		case err != nil:
			done <- Fail(err)
		case resp == nil:
			done <- Fail(errors.New("handler returned no response"))
		default:
			done <- resp
		}
	}()

	select {
	case resp := <-done:
		return resp
	case <-ctx.Done():
		return Fail(fmt.Errorf("%s %s: %w", req.Verb, req.Path, ctx.Err()))
	}
}

func (r *Router) observe(rt *route, req *Request, resp *Response, elapsed time.Duration) {
	routeName := "unmatched"
	if rt != nil {
		routeName = rt.pattern.raw
	}

	fields := logrus.Fields{
		"id":       req.ID,
		"verb":     req.Verb,
		"path":     req.Path,
		"route":    routeName,
		"status":   resp.Status,
		"duration": elapsed,
	}
	switch resp.Status {
	case StatusError:
		r.log.WithFields(fields).WithField("error", resp.Error).Warn("dispatch failed")
	default:
		r.log.WithFields(fields).Debug("dispatched")
	}

	r.metrics.observe(routeName, req.Verb, resp.Status, elapsed)
	r.events.Publish(events.Status{Kind: events.KindDispatch, Path: req.Path, Message: string(resp.Status)})
}

// RegisterModel makes schemas available for $ref resolution and documentation.
func (r *Router) RegisterModel(models ...model.WithSchema) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, m := range models {
		if m == nil || model.IsNil(m) {
			continue
		}
		if v := reflect.ValueOf(m); v.Kind() == reflect.Ptr && v.IsNil() {
			continue
		}
		r.models[m.Name()] = m
	}
}

// GetModel looks up a registered schema by name.
func (r *Router) GetModel(name string) (model.WithSchema, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.models[name]
	return m, ok
}
