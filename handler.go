package halbridge

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/tailbits/halbridge/model"
)

// HandlerNoBody handles a typed route without payload.
type HandlerNoBody[O model.Entity, Q any] func(ctx context.Context, req *Request, query Q) (O, error)

// HandlerWithBody handles a typed route whose payload decodes into I.
type HandlerWithBody[I model.Entity, O model.Entity, Q any] func(ctx context.Context, req *Request, input I, query Q) (O, error)

var errNoOutput = errors.New("handler returned no data")

func newHandler[O model.Entity, Q any](h HandlerNoBody[O, Q]) HandlerFunc {
	return func(ctx context.Context, req *Request) (*Response, error) {
		q, err := DecodeQueryParams[Q](req.Query)
		if err != nil {
			return nil, fmt.Errorf("DecodeQueryParams: %w", err)
		}

		out, err := h(ctx, req, q)
		if err != nil {
			return nil, err
		}

		return respond(out)
	}
}

func newHandlerWithBody[I model.Entity, O model.Entity, Q any](r *Router, h HandlerWithBody[I, O, Q]) HandlerFunc {
	return func(ctx context.Context, req *Request) (*Response, error) {
		q, err := DecodeQueryParams[Q](req.Query)
		if err != nil {
			return nil, fmt.Errorf("DecodeQueryParams: %w", err)
		}

		in, err := DecodeRequest[I](r, req)
		if err != nil {
			return nil, err
		}

		out, err := h(ctx, req, in, q)
		if err != nil {
			return nil, err
		}

		return respond(out)
	}
}

func respond[O model.Entity](out O) (*Response, error) {
	v := reflect.ValueOf(out)
	if !v.IsValid() || (v.Kind() == reflect.Ptr && v.IsNil()) {
		return nil, errNoOutput
	}
	return OK(out), nil
}
