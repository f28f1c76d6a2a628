package openapi

import (
	"net/http"

	"github.com/tailbits/halbridge"
	"github.com/tailbits/halbridge/model"
)

// Record is one documented operation.
type Record struct {
	Input         *halbridge.Model
	Output        halbridge.Model
	ID            string
	Method        string
	Path          string
	Description   string
	Summary       string
	SuccessStatus int
	Tags          []string
	QueryParams   any
}

func (r *Record) AddInputModel(m model.WithSchema) {
	if m != nil && !model.IsNil(m) {
		inp := halbridge.NewModel(m)
		r.Input = &inp
	}
}

func (r *Record) AddOutputModel(m model.WithSchema) {
	if m == nil {
		return
	}
	r.Output = halbridge.NewModel(m)
}

func toRecord(op halbridge.Operation, tagsFn func(halbridge.Operation) []string) Record {
	record := Record{
		ID:            op.OperationID,
		Method:        op.Method,
		Path:          halbridge.BracePath(op.Path),
		Description:   op.Description,
		Summary:       op.Summary,
		Tags:          append(tagsFn(op), op.Tags...),
		SuccessStatus: http.StatusOK,
		QueryParams:   op.QueryParams,
	}

	if op.Input != nil {
		record.AddInputModel(op.Input)
	}
	if op.Output != nil {
		record.AddOutputModel(op.Output)
	}

	return record
}
