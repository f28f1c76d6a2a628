package dto_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/tailbits/halbridge"
	"github.com/tailbits/halbridge/dto"
	"github.com/tailbits/halbridge/model"
	"github.com/tailbits/halbridge/model/conform"
	"gotest.tools/v3/assert"
	"gotest.tools/v3/assert/cmp"
)

func TestModels_ExamplesDecode(t *testing.T) {
	names := map[string]bool{}
	for _, m := range dto.Models() {
		m := m
		t.Run(m.Name(), func(t *testing.T) {
			assert.Assert(t, !names[m.Name()], "duplicate model name %s", m.Name())
			names[m.Name()] = true

			var schema map[string]any
			assert.NilError(t, json.Unmarshal(m.Schema(), &schema))

			ent, ok := m.(model.Entity)
			assert.Assert(t, ok)
			assert.NilError(t, ent.Unmarshal(ent.Example()))
		})
	}
}

func TestModels_MatchSchemas(t *testing.T) {
	r := halbridge.NewRouter()
	r.RegisterModel(dto.Models()...)

	assert.NilError(t, conform.CheckAll(r, dto.Models()...))
}

func TestListSchemas(t *testing.T) {
	var sch struct {
		Properties map[string]json.RawMessage `json:"properties"`
		Required   []string                   `json:"required"`
	}
	assert.NilError(t, json.Unmarshal((&dto.TimeEntryList{}).Schema(), &sch))

	assert.DeepEqual(t, sch.Required, []string{"total", "count", "elements"})
	assert.Assert(t, cmp.Contains(string(sch.Properties["elements"]), "#/definitions/TimeEntry"))

	list := &dto.TimeEntryList{}
	assert.NilError(t, list.Unmarshal(list.Example()))
	assert.Equal(t, list.Total, 1)
	assert.Equal(t, len(list.Elements), 1)
	assert.Equal(t, list.Elements[0].Hours, 1.5)
}

func TestDate(t *testing.T) {
	t.Run("marshals as calendar date", func(t *testing.T) {
		raw, err := json.Marshal(struct {
			D dto.Date `json:"d"`
			Z dto.Date `json:"z"`
		}{D: dto.NewDate(2024, time.March, 5)})
		assert.NilError(t, err)
		assert.Equal(t, string(raw), `{"d":"2024-03-05","z":null}`)
	})

	t.Run("accepts timestamps", func(t *testing.T) {
		var d dto.Date
		assert.NilError(t, json.Unmarshal([]byte(`"2024-03-05T22:10:00Z"`), &d))
		assert.Equal(t, d.String(), "2024-03-05")

		assert.NilError(t, json.Unmarshal([]byte(`""`), &d))
		assert.Assert(t, d.IsZero())
	})

	t.Run("rejects garbage", func(t *testing.T) {
		var d dto.Date
		assert.Assert(t, json.Unmarshal([]byte(`"tuesday"`), &d) != nil)
	})
}

func TestSortTimeEntries(t *testing.T) {
	entries := []dto.TimeEntry{
		{ID: 1, SpentOn: dto.NewDate(2024, 3, 2), Hours: 1},
		{ID: 2, SpentOn: dto.NewDate(2024, 3, 1), Hours: 3},
		{ID: 3, SpentOn: dto.NewDate(2024, 3, 2), Hours: 2},
		{ID: 4, SpentOn: dto.NewDate(2024, 3, 1), Hours: 3},
	}

	dto.SortTimeEntries(entries)
	assert.DeepEqual(t, ids(entries), []int{2, 4, 1, 3})

	dto.SortTimeEntries(entries, dto.Desc(dto.ByHours), dto.BySpentOn)
	assert.DeepEqual(t, ids(entries), []int{2, 4, 3, 1})
}

func ids(entries []dto.TimeEntry) []int {
	out := make([]int, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.ID)
	}
	return out
}

func TestPayloadSchema(t *testing.T) {
	minLen, maxLen := 1, 10
	schema := &dto.Schema{Attributes: []dto.SchemaAttribute{
		{Key: "id", Type: "Integer", Required: true},
		{Key: "spentOn", Label: "Date", Type: "Date", Required: true, Writable: true},
		{Key: "hours", Type: "Duration", Required: true, Writable: true},
		{Key: "comment", Type: "Formattable", Writable: true, MaxLength: &maxLen},
		{Key: "ongoing", Type: "Boolean", Required: true, HasDefault: true, Writable: true},
		{Key: "code", Type: "String", Writable: true, MinLength: &minLen, RegularExpression: "^[A-Z]+$"},
		{Key: "project", Type: "Project", Required: true, Writable: true, Location: dto.LocationLinks},
		{Key: "workPackage", Type: "WorkPackage", Writable: true, Location: dto.LocationLinks},
	}}

	doc, err := schema.PayloadSchemaJSON(false)
	assert.NilError(t, err)

	valid := map[string]any{
		"spentOn": "2024-03-05",
		"hours":   "PT1H30M",
		"comment": map[string]any{"raw": "short"},
		"_links": map[string]any{
			"project": map[string]any{"href": "/api/v3/projects/12"},
		},
	}
	assert.NilError(t, model.ValidateValue(doc, valid))

	for name, payload := range map[string]map[string]any{
		"missing required": {"hours": "PT1H", "_links": valid["_links"]},
		"bad date":         {"spentOn": "05.03.2024", "hours": "PT1H", "_links": valid["_links"]},
		"comment too long": {"spentOn": "2024-03-05", "hours": "PT1H", "comment": map[string]any{"raw": "far too long text"}, "_links": valid["_links"]},
		"bad code":         {"spentOn": "2024-03-05", "hours": "PT1H", "code": "abc", "_links": valid["_links"]},
		"missing link":     {"spentOn": "2024-03-05", "hours": "PT1H", "_links": map[string]any{}},
	} {
		err := model.ValidateValue(doc, payload)
		assert.Assert(t, model.IsValidationError(err), name)
	}

	partial, err := schema.PayloadSchemaJSON(true)
	assert.NilError(t, err)
	assert.NilError(t, model.ValidateValue(partial, map[string]any{"hours": "PT2H"}))
	assert.Assert(t, model.IsValidationError(model.ValidateValue(partial, map[string]any{"hours": 2})))
}
