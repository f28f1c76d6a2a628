// Package openapi renders the route surface of a router as an OpenAPI 3.1
// document, with the registered DTO schemas as components.
package openapi

import (
	"github.com/sirupsen/logrus"
	"github.com/tailbits/halbridge"
)

// Info is the document's info section.
type Info struct {
	Title       string
	Version     string
	Description string
	ServerURL   string
}

var DefaultInfo = Info{
	Title:       "halbridge",
	Version:     "1.0.0",
	Description: "Routes served by the halbridge host process.",
	ServerURL:   "ipc://halbridge",
}

type config struct {
	lint        bool
	info        Info
	log         logrus.FieldLogger
	filterFn    func(Record) bool
	tagsFn      func(halbridge.Operation) []string
	allTags     []string
	transformFn func(*Record)
}

type Option func(*config)

// SkipLint leaves out the vacuum lint of the generated document.
func SkipLint() Option {
	return func(c *config) {
		c.lint = false
	}
}

func WithInfo(info Info) Option {
	return func(c *config) {
		c.info = info
	}
}

// WithLogger receives the diff of conflicting definitions.
func WithLogger(l logrus.FieldLogger) Option {
	return func(c *config) {
		c.log = l
	}
}

func Filter(fn func(Record) bool) Option {
	return func(c *config) {
		c.filterFn = fn
	}
}

// Tags adds tags computed per operation. all lists tags to declare even when
// no operation carries them.
func Tags(fn func(halbridge.Operation) []string, all []string) Option {
	return func(c *config) {
		c.tagsFn = fn
		c.allTags = all
	}
}

func Transform(fn func(*Record)) Option {
	return func(c *config) {
		c.transformFn = fn
	}
}

// New documents every operation of r.
func New(r *halbridge.Router, opts ...Option) ([]byte, error) {
	cfg := config{
		lint:        true,
		info:        DefaultInfo,
		log:         logrus.StandardLogger(),
		filterFn:    func(Record) bool { return true },
		tagsFn:      func(halbridge.Operation) []string { return nil },
		transformFn: func(*Record) {},
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	var records []Record
	for _, op := range r.Operations() {
		record := toRecord(op, cfg.tagsFn)
		cfg.transformFn(&record)

		if cfg.filterFn(record) {
			records = append(records, record)
		}
	}

	g := newGenerator(cfg)
	for _, m := range r.Models() {
		if err := g.addModel(halbridge.NewModel(m)); err != nil {
			return nil, err
		}
	}

	return g.document(records)
}
