package model

import (
	"encoding/json"
)

// Serializable values cross the process boundary as JSON.
type Serializable interface {
	Marshal() (json.RawMessage, error)
	Unmarshal(data json.RawMessage) error
}

// WithSchema describes the JSON shape of a DTO with an example document. The
// name keys the schema registry and the components of the route surface
// document.
type WithSchema interface {
	Name() string
	Schema() []byte
	Example() []byte
}

// Entity is a data-transfer object: a named, schema-described, serializable
// value with no references back to the resource it was built from.
type Entity interface {
	WithSchema
	Serializable
}
