package dto

import (
	"encoding/json"
	"time"

	"github.com/tailbits/halbridge/model"
)

var _ model.Entity = (*User)(nil)

type User struct {
	ID          int       `json:"id"`
	DisplayName string    `json:"name"`
	Login       string    `json:"login,omitempty"`
	FirstName   string    `json:"firstName,omitempty"`
	LastName    string    `json:"lastName,omitempty"`
	Email       string    `json:"email,omitempty"`
	Avatar      string    `json:"avatar,omitempty"`
	Admin       bool      `json:"admin"`
	Status      string    `json:"status,omitempty"`
	Language    string    `json:"language,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (u *User) Name() string {
	return "User"
}

func (u *User) Schema() []byte {
	return []byte(`{
		"type": "object",
		"properties": {
			"id": {"type": "integer"},
			"name": {"type": "string"},
			"login": {"type": "string"},
			"firstName": {"type": "string"},
			"lastName": {"type": "string"},
			"email": {"type": "string"},
			"avatar": {"type": "string"},
			"admin": {"type": "boolean"},
			"status": {"type": "string"},
			"language": {"type": "string"},
			"createdAt": {"type": "string", "format": "date-time"},
			"updatedAt": {"type": "string", "format": "date-time"}
		},
		"required": ["id", "name"]
	}`)
}

func (u *User) Example() []byte {
	return []byte(`{
		"id": 5,
		"name": "Ada Lovelace",
		"login": "ada",
		"firstName": "Ada",
		"lastName": "Lovelace",
		"email": "ada@example.com",
		"admin": false,
		"status": "active",
		"language": "en",
		"createdAt": "2024-01-08T09:12:44Z",
		"updatedAt": "2024-05-02T16:01:10Z"
	}`)
}

func (u *User) Marshal() (json.RawMessage, error) {
	return json.Marshal(u)
}

func (u *User) Unmarshal(data json.RawMessage) error {
	return json.Unmarshal(data, u)
}
