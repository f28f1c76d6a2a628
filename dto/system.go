package dto

import (
	"encoding/json"

	"github.com/tailbits/halbridge/model"
)

var _ model.Entity = (*SystemInfo)(nil)

// SystemInfo combines the API root with the instance configuration.
type SystemInfo struct {
	InstanceName       string   `json:"instanceName"`
	CoreVersion        string   `json:"coreVersion,omitempty"`
	User               *Link    `json:"user,omitempty"`
	HostName           string   `json:"hostName,omitempty"`
	PerPageOptions     []int    `json:"perPageOptions,omitempty"`
	DurationFormat     string   `json:"durationFormat,omitempty"`
	ActiveFeatureFlags []string `json:"activeFeatureFlags,omitempty"`
}

func (s *SystemInfo) Name() string {
	return "SystemInfo"
}

func (s *SystemInfo) Schema() []byte {
	return []byte(`{
		"type": "object",
		"properties": {
			"instanceName": {"type": "string"},
			"coreVersion": {"type": "string"},
			"user": {"$ref": "#/definitions/Link"},
			"hostName": {"type": "string"},
			"perPageOptions": {"type": "array", "items": {"type": "integer"}},
			"durationFormat": {"type": "string"},
			"activeFeatureFlags": {"type": "array", "items": {"type": "string"}}
		},
		"required": ["instanceName"]
	}`)
}

func (s *SystemInfo) Example() []byte {
	return []byte(`{
		"instanceName": "OpenProject",
		"coreVersion": "14.6.1",
		"user": {"id": "5", "href": "/api/v3/users/5", "title": "Ada Lovelace"},
		"hostName": "projects.example.com",
		"perPageOptions": [20, 100],
		"durationFormat": "hours_only"
	}`)
}

func (s *SystemInfo) Marshal() (json.RawMessage, error) {
	return json.Marshal(s)
}

func (s *SystemInfo) Unmarshal(data json.RawMessage) error {
	return json.Unmarshal(data, s)
}
