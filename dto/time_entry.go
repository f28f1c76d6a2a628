package dto

import (
	"encoding/json"
	"time"

	"github.com/tailbits/halbridge/model"
)

var _ model.Entity = (*Activity)(nil)

// Activity is a time entry activity such as "Development" or "Management".
type Activity struct {
	ID          int    `json:"id"`
	DisplayName string `json:"name"`
	Position    int    `json:"position"`
	Default     bool   `json:"default"`
}

func (a *Activity) Name() string {
	return "Activity"
}

func (a *Activity) Schema() []byte {
	return []byte(`{
		"type": "object",
		"properties": {
			"id": {"type": "integer"},
			"name": {"type": "string"},
			"position": {"type": "integer"},
			"default": {"type": "boolean"}
		},
		"required": ["id", "name"]
	}`)
}

func (a *Activity) Example() []byte {
	return []byte(`{"id": 3, "name": "Development", "position": 3, "default": false}`)
}

func (a *Activity) Marshal() (json.RawMessage, error) {
	return json.Marshal(a)
}

func (a *Activity) Unmarshal(data json.RawMessage) error {
	return json.Unmarshal(data, a)
}

var _ model.Entity = (*TimeEntry)(nil)

type TimeEntry struct {
	ID          int       `json:"id"`
	Comment     string    `json:"comment,omitempty"`
	SpentOn     Date      `json:"spentOn"`
	Hours       float64   `json:"hours"`
	Ongoing     bool      `json:"ongoing"`
	Project     Link      `json:"project"`
	WorkPackage *Link     `json:"workPackage,omitempty"`
	User        Link      `json:"user"`
	Activity    *Activity `json:"activity,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (e *TimeEntry) Name() string {
	return "TimeEntry"
}

func (e *TimeEntry) Schema() []byte {
	return []byte(`{
		"type": "object",
		"properties": {
			"id": {"type": "integer"},
			"comment": {"type": "string"},
			"spentOn": {"type": "string", "format": "date"},
			"hours": {"type": "number", "minimum": 0},
			"ongoing": {"type": "boolean"},
			"project": {"$ref": "#/definitions/Link"},
			"workPackage": {"$ref": "#/definitions/Link"},
			"user": {"$ref": "#/definitions/Link"},
			"activity": {"$ref": "#/definitions/Activity"},
			"createdAt": {"type": "string", "format": "date-time"},
			"updatedAt": {"type": "string", "format": "date-time"}
		},
		"required": ["id", "spentOn", "hours", "project", "user"]
	}`)
}

func (e *TimeEntry) Example() []byte {
	return []byte(`{
		"id": 842,
		"comment": "Wireframes review",
		"spentOn": "2024-03-05",
		"hours": 1.5,
		"ongoing": false,
		"project": {"id": "12", "href": "/api/v3/projects/12", "title": "Website relaunch"},
		"workPackage": {"id": "1528", "href": "/api/v3/work_packages/1528", "title": "Draft landing page copy"},
		"user": {"id": "5", "href": "/api/v3/users/5", "title": "Ada Lovelace"},
		"activity": {"id": 3, "name": "Development", "position": 3, "default": false},
		"createdAt": "2024-03-05T16:02:00Z",
		"updatedAt": "2024-03-05T16:02:00Z"
	}`)
}

func (e *TimeEntry) Marshal() (json.RawMessage, error) {
	return json.Marshal(e)
}

func (e *TimeEntry) Unmarshal(data json.RawMessage) error {
	return json.Unmarshal(data, e)
}

var (
	_ model.Entity = (*TimeEntryList)(nil)

	timeEntryListSchema  = listSchema("TimeEntry")
	timeEntryListExample = listExample((&TimeEntry{}).Example())
)

type TimeEntryList struct {
	Page
	Elements []TimeEntry `json:"elements"`
}

func (l *TimeEntryList) Name() string       { return "TimeEntryList" }
func (l *TimeEntryList) Schema() []byte     { return timeEntryListSchema }
func (l *TimeEntryList) Example() []byte    { return timeEntryListExample }
func (l *TimeEntryList) Append(e TimeEntry) { l.Elements = append(l.Elements, e) }

// TotalHours sums the hours of the listed entries.
func (l *TimeEntryList) TotalHours() float64 {
	var total float64
	for _, e := range l.Elements {
		total += e.Hours
	}
	return total
}

func (l *TimeEntryList) Marshal() (json.RawMessage, error) {
	return json.Marshal(l)
}

func (l *TimeEntryList) Unmarshal(data json.RawMessage) error {
	return json.Unmarshal(data, l)
}

var _ model.Entity = (*TimeEntryInput)(nil)

// TimeEntryInput is the payload for creating or updating a time entry. On
// update, zero fields are left unchanged.
type TimeEntryInput struct {
	Project     string  `json:"project,omitempty"`
	WorkPackage string  `json:"workPackage,omitempty"`
	Activity    string  `json:"activity,omitempty"`
	SpentOn     Date    `json:"spentOn"`
	Hours       float64 `json:"hours,omitempty"`
	Comment     *string `json:"comment,omitempty"`
}

func (i *TimeEntryInput) Name() string {
	return "TimeEntryInput"
}

func (i *TimeEntryInput) Schema() []byte {
	return []byte(`{
		"type": "object",
		"properties": {
			"project": {"type": "string", "pattern": "^[0-9]+$"},
			"workPackage": {"type": "string", "pattern": "^[0-9]+$"},
			"activity": {"type": "string", "pattern": "^[0-9]+$"},
			"spentOn": {"type": ["string", "null"], "pattern": "^[0-9]{4}-[0-9]{2}-[0-9]{2}"},
			"hours": {"type": "number", "minimum": 0, "maximum": 24},
			"comment": {"type": "string", "maxLength": 1000}
		},
		"additionalProperties": false
	}`)
}

func (i *TimeEntryInput) Example() []byte {
	return []byte(`{
		"project": "12",
		"workPackage": "1528",
		"activity": "3",
		"spentOn": "2024-03-05",
		"hours": 1.5,
		"comment": "Wireframes review"
	}`)
}

func (i *TimeEntryInput) Marshal() (json.RawMessage, error) {
	return json.Marshal(i)
}

func (i *TimeEntryInput) Unmarshal(data json.RawMessage) error {
	return json.Unmarshal(data, i)
}
