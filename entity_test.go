package halbridge_test

import (
	"encoding/json"

	"github.com/tailbits/halbridge/model"
)

var _ model.Entity = (*Widget)(nil)

type Widget struct {
	ID    int    `json:"id"`
	Label string `json:"label"`
	Owner *Owner `json:"owner,omitempty"`
}

func (w *Widget) Name() string { return "Widget" }

func (w *Widget) Schema() []byte {
	return []byte(`{
		"type": "object",
		"properties": {
			"id": {"type": "integer"},
			"label": {"type": "string", "minLength": 1},
			"owner": {"$ref": "#/definitions/Owner"}
		},
		"required": ["id", "label"]
	}`)
}

func (w *Widget) Example() []byte {
	return []byte(`{"id": 1, "label": "gear"}`)
}

func (w *Widget) Marshal() (json.RawMessage, error) { return json.Marshal(w) }

func (w *Widget) Unmarshal(data json.RawMessage) error { return json.Unmarshal(data, w) }

var _ model.Entity = (*Owner)(nil)

type Owner struct {
	Login string `json:"login"`
}

func (o *Owner) Name() string { return "Owner" }

func (o *Owner) Schema() []byte {
	return []byte(`{
		"type": "object",
		"properties": {
			"login": {"type": "string", "pattern": "^[a-z]+$"}
		},
		"required": ["login"]
	}`)
}

func (o *Owner) Example() []byte { return []byte(`{"login": "admin"}`) }

func (o *Owner) Marshal() (json.RawMessage, error) { return json.Marshal(o) }

func (o *Owner) Unmarshal(data json.RawMessage) error { return json.Unmarshal(data, o) }
