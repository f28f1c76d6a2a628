package dto

import (
	"encoding/json"

	"github.com/tailbits/halbridge/model"
)

var _ model.Entity = (*SchemaAttribute)(nil)

// Attribute locations. Link-valued attributes are written under _links.
const (
	LocationProperty = ""
	LocationLinks    = "_links"
)

// SchemaAttribute describes one declared attribute of a resource schema.
type SchemaAttribute struct {
	Key               string `json:"key"`
	Label             string `json:"name"`
	Type              string `json:"type"`
	Required          bool   `json:"required"`
	HasDefault        bool   `json:"hasDefault"`
	Writable          bool   `json:"writable"`
	MinLength         *int   `json:"minLength,omitempty"`
	MaxLength         *int   `json:"maxLength,omitempty"`
	RegularExpression string `json:"regularExpression,omitempty"`
	Location          string `json:"location,omitempty"`
}

func (a *SchemaAttribute) Name() string {
	return "SchemaAttribute"
}

func (a *SchemaAttribute) Schema() []byte {
	return []byte(`{
		"type": "object",
		"properties": {
			"key": {"type": "string"},
			"name": {"type": "string"},
			"type": {"type": "string"},
			"required": {"type": "boolean"},
			"hasDefault": {"type": "boolean"},
			"writable": {"type": "boolean"},
			"minLength": {"type": "integer"},
			"maxLength": {"type": "integer"},
			"regularExpression": {"type": "string"},
			"location": {"type": "string"}
		},
		"required": ["key", "type", "required", "hasDefault", "writable"]
	}`)
}

func (a *SchemaAttribute) Example() []byte {
	return []byte(`{
		"key": "hours",
		"name": "Hours",
		"type": "Duration",
		"required": true,
		"hasDefault": false,
		"writable": true
	}`)
}

func (a *SchemaAttribute) Marshal() (json.RawMessage, error) {
	return json.Marshal(a)
}

func (a *SchemaAttribute) Unmarshal(data json.RawMessage) error {
	return json.Unmarshal(data, a)
}

var _ model.Entity = (*Schema)(nil)

// Schema is the shape of a future resource: its attributes in declared order.
type Schema struct {
	Attributes []SchemaAttribute `json:"attributes"`
}

func (s *Schema) Name() string {
	return "Schema"
}

func (s *Schema) Schema() []byte {
	return []byte(`{
		"type": "object",
		"properties": {
			"attributes": {"type": "array", "items": {"$ref": "#/definitions/SchemaAttribute"}}
		},
		"required": ["attributes"]
	}`)
}

func (s *Schema) Example() []byte {
	return []byte(`{
		"attributes": [
			{"key": "spentOn", "name": "Date", "type": "Date", "required": true, "hasDefault": false, "writable": true},
			{"key": "project", "name": "Project", "type": "Project", "required": true, "hasDefault": false, "writable": true, "location": "_links"}
		]
	}`)
}

func (s *Schema) Marshal() (json.RawMessage, error) {
	return json.Marshal(s)
}

func (s *Schema) Unmarshal(data json.RawMessage) error {
	return json.Unmarshal(data, s)
}

// Attribute finds an attribute by key.
func (s *Schema) Attribute(key string) (SchemaAttribute, bool) {
	for _, a := range s.Attributes {
		if a.Key == key {
			return a, true
		}
	}
	return SchemaAttribute{}, false
}
