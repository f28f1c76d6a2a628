package ipc_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/tailbits/halbridge"
	"github.com/tailbits/halbridge/dto"
	"github.com/tailbits/halbridge/ipc"
	"gotest.tools/v3/assert"
)

func transport(t *testing.T, resp *halbridge.Response) *ipc.ResponseEnvelope {
	t.Helper()
	raw, err := json.Marshal(ipc.NewResponseEnvelope("req-1", resp))
	assert.NilError(t, err)

	env, err := ipc.DecodeResponse(raw)
	assert.NilError(t, err)
	assert.Equal(t, env.ID, "req-1")
	return env
}

func TestRevive_EveryDateField(t *testing.T) {
	at := time.Date(2024, time.March, 5, 14, 30, 15, 0, time.UTC)

	payload := map[string]any{}
	for _, key := range ipc.DateFields {
		payload[key] = at.Format(time.RFC3339)
	}

	data := transport(t, halbridge.OK(payload)).Data.(map[string]any)
	for _, key := range ipc.DateFields {
		got, ok := data[key].(time.Time)
		assert.Assert(t, ok, "%s was not revived: %#v", key, data[key])
		assert.Assert(t, got.Equal(at), "%s: %s", key, got)
	}
}

func TestRevive_DTO(t *testing.T) {
	entry := &dto.TimeEntry{
		ID:        842,
		Comment:   "2024-03-05",
		SpentOn:   dto.NewDate(2024, time.March, 5),
		Hours:     1.5,
		Project:   dto.Link{ID: "12", Href: "/api/v3/projects/12", Title: "Website relaunch"},
		User:      dto.Link{ID: "5", Href: "/api/v3/users/5"},
		CreatedAt: time.Date(2024, time.March, 5, 16, 2, 0, 0, time.UTC),
		UpdatedAt: time.Date(2024, time.March, 6, 9, 0, 0, 0, time.FixedZone("CET", 3600)),
	}

	env := transport(t, halbridge.OK(entry))
	assert.Assert(t, env.Ok())

	data := env.Data.(map[string]any)
	assert.Assert(t, data["spentOn"].(time.Time).Equal(entry.SpentOn.Time))
	assert.Assert(t, data["createdAt"].(time.Time).Equal(entry.CreatedAt))
	assert.Assert(t, data["updatedAt"].(time.Time).Equal(entry.UpdatedAt))
	assert.Equal(t, data["comment"], "2024-03-05", "comment is not a date field")
	assert.Equal(t, data["hours"], 1.5)
}

func TestRevive(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want any
	}{
		{
			name: "unlisted keys keep date-like strings",
			in:   `{"spent_on": "2024-03-05", "title": "2024-03-05T10:00:00Z"}`,
			want: map[string]any{"spent_on": "2024-03-05", "title": "2024-03-05T10:00:00Z"},
		},
		{
			name: "unparsable values are kept",
			in:   `{"to": "soon", "from": 20240305}`,
			want: map[string]any{"to": "soon", "from": float64(20240305)},
		},
		{
			name: "nested lists",
			in:   `{"elements": [{"dueDate": "2024-04-01"}, {"dueDate": null}]}`,
			want: map[string]any{"elements": []any{
				map[string]any{"dueDate": time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC)},
				map[string]any{"dueDate": nil},
			}},
		},
		{
			name: "scalars",
			in:   `"2024-03-05"`,
			want: "2024-03-05",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v any
			assert.NilError(t, json.Unmarshal([]byte(tt.in), &v))
			assert.DeepEqual(t, ipc.Revive(v), tt.want)
		})
	}
}

func TestRequestEnvelope(t *testing.T) {
	env := &ipc.RequestEnvelope{Verb: "patch", Path: "/time-entries/1", Data: json.RawMessage(`{"hours":2}`)}
	req := env.Request()

	assert.Equal(t, req.Verb, halbridge.VerbPatch)
	assert.Equal(t, req.ID, env.ID)
	_, err := uuid.Parse(req.ID)
	assert.NilError(t, err)
	assert.Equal(t, string(req.Data), `{"hours":2}`)

	kept := (&ipc.RequestEnvelope{ID: "abc", Verb: "FETCH", Path: "/x"}).Request()
	assert.Equal(t, kept.ID, "abc")
	assert.Equal(t, kept.Verb, halbridge.Verb("FETCH"))
}

func TestNewResponseEnvelope(t *testing.T) {
	env := transport(t, halbridge.NotFoundf("no route for GET /x"))
	assert.Equal(t, env.Status, halbridge.StatusNotFound)
	assert.Equal(t, env.Error, "no route for GET /x")
	assert.Assert(t, env.Data == nil)

	env = transport(t, halbridge.OK(func() {}))
	assert.Equal(t, env.Status, halbridge.StatusError)
	assert.Assert(t, env.Error != "")
}
