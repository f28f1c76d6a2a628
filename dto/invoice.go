package dto

import (
	"encoding/json"

	"github.com/tailbits/halbridge/model"
)

var _ model.Entity = (*InvoiceRequest)(nil)

// InvoiceRequest selects the time entries of one project in an inclusive date
// range and prices them at a flat hourly rate.
type InvoiceRequest struct {
	Project    string  `json:"project"`
	From       Date    `json:"from"`
	To         Date    `json:"to"`
	HourlyRate float64 `json:"hourlyRate"`
	Currency   string  `json:"currency,omitempty"`
}

func (r *InvoiceRequest) Name() string {
	return "InvoiceRequest"
}

func (r *InvoiceRequest) Schema() []byte {
	return []byte(`{
		"type": "object",
		"properties": {
			"project": {"type": "string", "minLength": 1},
			"from": {"type": "string", "pattern": "^[0-9]{4}-[0-9]{2}-[0-9]{2}"},
			"to": {"type": "string", "pattern": "^[0-9]{4}-[0-9]{2}-[0-9]{2}"},
			"hourlyRate": {"type": "number", "minimum": 0},
			"currency": {"type": "string", "pattern": "^[A-Z]{3}$"}
		},
		"required": ["project", "from", "to", "hourlyRate"],
		"additionalProperties": false
	}`)
}

func (r *InvoiceRequest) Example() []byte {
	return []byte(`{
		"project": "12",
		"from": "2024-03-01",
		"to": "2024-03-31",
		"hourlyRate": 95,
		"currency": "EUR"
	}`)
}

func (r *InvoiceRequest) Marshal() (json.RawMessage, error) {
	return json.Marshal(r)
}

func (r *InvoiceRequest) Unmarshal(data json.RawMessage) error {
	return json.Unmarshal(data, r)
}

var _ model.Entity = (*InvoiceLine)(nil)

type InvoiceLine struct {
	Date        Date    `json:"date"`
	WorkPackage *Link   `json:"workPackage,omitempty"`
	Activity    string  `json:"activity,omitempty"`
	User        string  `json:"user,omitempty"`
	Comment     string  `json:"comment,omitempty"`
	Hours       float64 `json:"hours"`
	Amount      float64 `json:"amount"`
}

func (l *InvoiceLine) Name() string {
	return "InvoiceLine"
}

func (l *InvoiceLine) Schema() []byte {
	return []byte(`{
		"type": "object",
		"properties": {
			"date": {"type": "string", "format": "date"},
			"workPackage": {"$ref": "#/definitions/Link"},
			"activity": {"type": "string"},
			"user": {"type": "string"},
			"comment": {"type": "string"},
			"hours": {"type": "number"},
			"amount": {"type": "number"}
		},
		"required": ["date", "hours", "amount"]
	}`)
}

func (l *InvoiceLine) Example() []byte {
	return []byte(`{
		"date": "2024-03-05",
		"workPackage": {"id": "1528", "href": "/api/v3/work_packages/1528", "title": "Draft landing page copy"},
		"activity": "Development",
		"user": "Ada Lovelace",
		"comment": "Wireframes review",
		"hours": 1.5,
		"amount": 142.5
	}`)
}

func (l *InvoiceLine) Marshal() (json.RawMessage, error) {
	return json.Marshal(l)
}

func (l *InvoiceLine) Unmarshal(data json.RawMessage) error {
	return json.Unmarshal(data, l)
}

var _ model.Entity = (*Invoice)(nil)

// Invoice lists billable lines ordered by work package, then date.
type Invoice struct {
	Project     Link          `json:"project"`
	From        Date          `json:"from"`
	To          Date          `json:"to"`
	Currency    string        `json:"currency,omitempty"`
	HourlyRate  float64       `json:"hourlyRate"`
	Lines       []InvoiceLine `json:"lines"`
	TotalHours  float64       `json:"totalHours"`
	TotalAmount float64       `json:"totalAmount"`
}

func (i *Invoice) Name() string {
	return "Invoice"
}

func (i *Invoice) Schema() []byte {
	return []byte(`{
		"type": "object",
		"properties": {
			"project": {"$ref": "#/definitions/Link"},
			"from": {"type": "string", "format": "date"},
			"to": {"type": "string", "format": "date"},
			"currency": {"type": "string"},
			"hourlyRate": {"type": "number"},
			"lines": {"type": "array", "items": {"$ref": "#/definitions/InvoiceLine"}},
			"totalHours": {"type": "number"},
			"totalAmount": {"type": "number"}
		},
		"required": ["project", "from", "to", "lines", "totalHours", "totalAmount"]
	}`)
}

func (i *Invoice) Example() []byte {
	return []byte(`{
		"project": {"id": "12", "href": "/api/v3/projects/12", "title": "Website relaunch"},
		"from": "2024-03-01",
		"to": "2024-03-31",
		"currency": "EUR",
		"hourlyRate": 95,
		"lines": [],
		"totalHours": 0,
		"totalAmount": 0
	}`)
}

func (i *Invoice) Marshal() (json.RawMessage, error) {
	return json.Marshal(i)
}

func (i *Invoice) Unmarshal(data json.RawMessage) error {
	return json.Unmarshal(data, i)
}
