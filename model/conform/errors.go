package conform

import (
	"fmt"
	"reflect"
)

// TypeError reports a field whose Go kind cannot hold the schema type.
type TypeError struct {
	Path     string
	Expected string
	Got      reflect.Kind
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("%s: got %s where the schema declares %s", e.Path, e.Got, e.Expected)
}

// NullableError reports a pointer or map field the schema does not allow to
// be null.
type NullableError struct {
	Path string
}

func (e *NullableError) Error() string {
	return fmt.Sprintf("%s: must be nullable or omitempty", e.Path)
}

// MissingPropertyError reports a tagged field the schema does not declare.
type MissingPropertyError struct {
	Path     string
	Property string
}

func (e *MissingPropertyError) Error() string {
	return fmt.Sprintf("%s: schema is missing property %s", e.Path, e.Property)
}

// ExtraPropertyError reports a schema property no field carries.
type ExtraPropertyError struct {
	Path     string
	Property string
}

func (e *ExtraPropertyError) Error() string {
	return fmt.Sprintf("%s: schema has property %s but the struct has no such field", e.Path, e.Property)
}
