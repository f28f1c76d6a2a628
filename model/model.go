// Package model defines the contracts shared by all data-transfer objects.
package model

import (
	"fmt"
	"reflect"
)

// DerivedType is implemented by wrappers (lists, envelopes) that are described
// by another entity's schema.
type DerivedType interface {
	Unwrap() WithSchema
}

// New returns a usable zero value of T. Pointer types are allocated, and
// entities are primed with their example document so that schema-driven
// tooling always sees a populated value.
func New[T any]() T {
	var t T
	if typ := reflect.TypeOf(t); typ != nil && typ.Kind() == reflect.Ptr {
		newT := reflect.New(typ.Elem()).Interface()
		result, ok := newT.(T)
		if !ok {
			panic(fmt.Sprintf("model.New: expected %T, got %T", t, newT))
		}
		t = result
	}
	if e, ok := any(t).(Entity); ok {
		if err := e.Unmarshal(e.Example()); err != nil {
			panic(fmt.Errorf("model.New: example for %s: %w", e.Name(), err))
		}
	}

	return t
}

// Unwrap follows DerivedType links until it reaches the underlying schema.
func Unwrap(current WithSchema) WithSchema {
	for {
		unwrapper, ok := current.(DerivedType)
		if !ok {
			return current
		}
		current = unwrapper.Unwrap()
	}
}
