package dto

import (
	"encoding/json"

	"github.com/tailbits/halbridge/model"
)

var _ model.Entity = (*Link)(nil)

// Link is the flattened form of a resource reference: enough to display the
// target and to address it in a later request.
type Link struct {
	ID    string `json:"id,omitempty"`
	Href  string `json:"href"`
	Title string `json:"title,omitempty"`
}

func (l *Link) Name() string {
	return "Link"
}

func (l *Link) Schema() []byte {
	return []byte(`{
		"type": "object",
		"properties": {
			"id": {"type": "string"},
			"href": {"type": "string"},
			"title": {"type": "string"}
		},
		"required": ["href"]
	}`)
}

func (l *Link) Example() []byte {
	return []byte(`{
		"id": "12",
		"href": "/api/v3/projects/12",
		"title": "Website relaunch"
	}`)
}

func (l *Link) Marshal() (json.RawMessage, error) {
	return json.Marshal(l)
}

func (l *Link) Unmarshal(data json.RawMessage) error {
	return json.Unmarshal(data, l)
}
