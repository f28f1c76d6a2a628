package halbridge

import (
	"errors"
	"fmt"

	"github.com/tailbits/halbridge/model"
)

// Status is the closed set of response outcomes.
type Status string

const (
	StatusOK       Status = "Ok"
	StatusError    Status = "Error"
	StatusNotFound Status = "NotFound"
)

// Response is the uniform envelope returned for every dispatched request.
// Ok responses carry Data; Error and NotFound responses carry Error.
type Response struct {
	Status Status `json:"status"`
	Data   any    `json:"data,omitempty"`
	Error  string `json:"error,omitempty"`
}

// OK wraps data. A nil payload becomes the empty object.
func OK(data any) *Response {
	if data == nil {
		data = model.Nil{}
	}
	return &Response{Status: StatusOK, Data: data}
}

// Fail converts err into an Error response.
func Fail(err error) *Response {
	if err == nil {
		err = errors.New("unknown error")
	}
	return &Response{Status: StatusError, Error: err.Error()}
}

// NotFoundf builds a NotFound response.
func NotFoundf(format string, args ...any) *Response {
	return &Response{Status: StatusNotFound, Error: fmt.Sprintf(format, args...)}
}

// Ok reports whether the response succeeded.
func (r *Response) Ok() bool {
	return r != nil && r.Status == StatusOK
}
