package halbridge

import (
	"slices"

	"github.com/tailbits/halbridge/model"
)

// Operation is the documented surface of one route. Method and Path are set
// by the router on registration.
type Operation struct {
	OperationID string       `json:"operationID,omitempty"`
	Group       string       `json:"group,omitempty"`
	Input       model.Entity `json:"input,omitempty"`
	Output      model.Entity `json:"output,omitempty"`
	Method      string       `json:"method,omitempty"`
	Path        string       `json:"path,omitempty"`
	QueryParams any          `json:"queryParams,omitempty"`
	Description string       `json:"description,omitempty"`
	Summary     string       `json:"summary,omitempty"`
	Tags        []string     `json:"tags,omitempty"`
	Skipped     bool         `json:"-"`
}

// String is "VERB pattern".
func (op Operation) String() string {
	return op.Method + " " + op.Path
}

// HasTags reports whether op carries every one of tags.
func (op Operation) HasTags(tags ...string) bool {
	for _, t := range tags {
		if !slices.Contains(op.Tags, t) {
			return false
		}
	}
	return true
}

type Option func(*Operation)

func WithOperationID(opID string) Option {
	return func(op *Operation) { op.OperationID = opID }
}

func WithGroup(group string) Option {
	return func(op *Operation) { op.Group = group }
}

func WithDescription(desc string) Option {
	return func(op *Operation) { op.Description = desc }
}

func WithSummary(summary string) Option {
	return func(op *Operation) { op.Summary = summary }
}

// WithTags replaces the tags, dropping empty ones.
func WithTags(tags ...string) Option {
	return func(op *Operation) {
		op.Tags = slices.DeleteFunc(slices.Clone(tags), func(t string) bool { return t == "" })
	}
}

// WithModels records the input, output and query types of a typed route.
func WithModels(input, output model.Entity, query any) Option {
	return func(op *Operation) {
		op.Input, op.Output, op.QueryParams = input, output, query
	}
}

// Undocumented keeps the route out of the route surface document.
func Undocumented() Option {
	return func(op *Operation) { op.Skipped = true }
}
