package model

import (
	"encoding/json"
)

// Nil is the empty object. It is the output of routes that have nothing to
// return and the query type of routes that take no query parameters.
type Nil struct{}

var _ Entity = (*Nil)(nil)

func (n Nil) Schema() []byte {
	return []byte(`{
		"type": "object",
		"properties": {},
		"additionalProperties": false,
		"required": []
	}`)
}

func (n Nil) Example() []byte {
	return []byte(`{}`)
}

func (n Nil) Name() string {
	return "NilEntity"
}

func (n Nil) Marshal() (json.RawMessage, error) {
	return []byte("{}"), nil
}

func (n Nil) Unmarshal(data json.RawMessage) error {
	return nil
}

// IsNil reports whether e is the empty entity.
func IsNil(e WithSchema) bool {
	switch e.(type) {
	case Nil, *Nil:
		return true
	default:
		return false
	}
}
