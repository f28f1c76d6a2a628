package dto

import (
	"encoding/json"
	"time"

	"github.com/tailbits/halbridge/model"
)

var _ model.Entity = (*Project)(nil)

type Project struct {
	ID          int       `json:"id"`
	Identifier  string    `json:"identifier"`
	DisplayName string    `json:"name"`
	Active      bool      `json:"active"`
	Public      bool      `json:"public"`
	Description string    `json:"description,omitempty"`
	Status      string    `json:"status,omitempty"`
	Parent      *Link     `json:"parent,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (p *Project) Name() string {
	return "Project"
}

func (p *Project) Schema() []byte {
	return []byte(`{
		"type": "object",
		"properties": {
			"id": {"type": "integer"},
			"identifier": {"type": "string"},
			"name": {"type": "string"},
			"active": {"type": "boolean"},
			"public": {"type": "boolean"},
			"description": {"type": "string"},
			"status": {"type": "string"},
			"parent": {"$ref": "#/definitions/Link"},
			"createdAt": {"type": "string", "format": "date-time"},
			"updatedAt": {"type": "string", "format": "date-time"}
		},
		"required": ["id", "identifier", "name"]
	}`)
}

func (p *Project) Example() []byte {
	return []byte(`{
		"id": 12,
		"identifier": "website-relaunch",
		"name": "Website relaunch",
		"active": true,
		"public": false,
		"description": "New marketing site.",
		"status": "on_track",
		"createdAt": "2024-02-01T08:00:00Z",
		"updatedAt": "2024-04-11T13:45:00Z"
	}`)
}

func (p *Project) Marshal() (json.RawMessage, error) {
	return json.Marshal(p)
}

func (p *Project) Unmarshal(data json.RawMessage) error {
	return json.Unmarshal(data, p)
}

var (
	_ model.Entity = (*ProjectList)(nil)

	projectListSchema  = listSchema("Project")
	projectListExample = listExample((&Project{}).Example())
)

type ProjectList struct {
	Page
	Elements []Project `json:"elements"`
}

func (l *ProjectList) Name() string     { return "ProjectList" }
func (l *ProjectList) Schema() []byte   { return projectListSchema }
func (l *ProjectList) Example() []byte  { return projectListExample }
func (l *ProjectList) Append(p Project) { l.Elements = append(l.Elements, p) }

func (l *ProjectList) Marshal() (json.RawMessage, error) {
	return json.Marshal(l)
}

func (l *ProjectList) Unmarshal(data json.RawMessage) error {
	return json.Unmarshal(data, l)
}
