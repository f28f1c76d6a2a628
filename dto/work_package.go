package dto

import (
	"encoding/json"
	"time"

	"github.com/tailbits/halbridge/model"
)

var _ model.Entity = (*WorkPackage)(nil)

type WorkPackage struct {
	ID             int       `json:"id"`
	Subject        string    `json:"subject"`
	Description    string    `json:"description,omitempty"`
	StartDate      Date      `json:"startDate"`
	DueDate        Date      `json:"dueDate"`
	EstimatedHours *float64  `json:"estimatedHours,omitempty"`
	SpentHours     *float64  `json:"spentHours,omitempty"`
	PercentageDone int       `json:"percentageDone"`
	LockVersion    int       `json:"lockVersion"`
	Project        Link      `json:"project"`
	Type           *Link     `json:"type,omitempty"`
	Status         *Link     `json:"status,omitempty"`
	Assignee       *Link     `json:"assignee,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func (w *WorkPackage) Name() string {
	return "WorkPackage"
}

func (w *WorkPackage) Schema() []byte {
	return []byte(`{
		"type": "object",
		"properties": {
			"id": {"type": "integer"},
			"subject": {"type": "string"},
			"description": {"type": "string"},
			"startDate": {"type": ["string", "null"], "format": "date"},
			"dueDate": {"type": ["string", "null"], "format": "date"},
			"estimatedHours": {"type": "number"},
			"spentHours": {"type": "number"},
			"percentageDone": {"type": "integer", "minimum": 0, "maximum": 100},
			"lockVersion": {"type": "integer"},
			"project": {"$ref": "#/definitions/Link"},
			"type": {"$ref": "#/definitions/Link"},
			"status": {"$ref": "#/definitions/Link"},
			"assignee": {"$ref": "#/definitions/Link"},
			"createdAt": {"type": "string", "format": "date-time"},
			"updatedAt": {"type": "string", "format": "date-time"}
		},
		"required": ["id", "subject", "project"]
	}`)
}

func (w *WorkPackage) Example() []byte {
	return []byte(`{
		"id": 1528,
		"subject": "Draft landing page copy",
		"startDate": "2024-03-04",
		"dueDate": "2024-03-15",
		"estimatedHours": 16,
		"spentHours": 6.5,
		"percentageDone": 40,
		"lockVersion": 3,
		"project": {"id": "12", "href": "/api/v3/projects/12", "title": "Website relaunch"},
		"type": {"id": "1", "href": "/api/v3/types/1", "title": "Task"},
		"status": {"id": "7", "href": "/api/v3/statuses/7", "title": "In progress"},
		"createdAt": "2024-02-27T10:00:00Z",
		"updatedAt": "2024-03-06T17:20:00Z"
	}`)
}

func (w *WorkPackage) Marshal() (json.RawMessage, error) {
	return json.Marshal(w)
}

func (w *WorkPackage) Unmarshal(data json.RawMessage) error {
	return json.Unmarshal(data, w)
}

var (
	_ model.Entity = (*WorkPackageList)(nil)

	workPackageListSchema  = listSchema("WorkPackage")
	workPackageListExample = listExample((&WorkPackage{}).Example())
)

type WorkPackageList struct {
	Page
	Elements []WorkPackage `json:"elements"`
}

func (l *WorkPackageList) Name() string         { return "WorkPackageList" }
func (l *WorkPackageList) Schema() []byte       { return workPackageListSchema }
func (l *WorkPackageList) Example() []byte      { return workPackageListExample }
func (l *WorkPackageList) Append(w WorkPackage) { l.Elements = append(l.Elements, w) }

func (l *WorkPackageList) Marshal() (json.RawMessage, error) {
	return json.Marshal(l)
}

func (l *WorkPackageList) Unmarshal(data json.RawMessage) error {
	return json.Unmarshal(data, l)
}
