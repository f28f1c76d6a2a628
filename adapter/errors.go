package adapter

import (
	"errors"
	"fmt"
)

// ErrMissing marks a required attribute or link that the resource lacks.
var ErrMissing = errors.New("required attribute is missing")

// MalformedResourceError reports a resource that does not have the shape its
// adapter requires.
type MalformedResourceError struct {
	URI       string
	Attribute string
	Err       error
}

func (e *MalformedResourceError) Error() string {
	uri := e.URI
	if uri == "" {
		uri = "<embedded>"
	}
	return fmt.Sprintf("malformed resource %s: %s: %v", uri, e.Attribute, e.Err)
}

func (e *MalformedResourceError) Unwrap() error {
	return e.Err
}

// IsMalformed reports whether err is or wraps a MalformedResourceError.
func IsMalformed(err error) bool {
	var me *MalformedResourceError
	return errors.As(err, &me)
}
