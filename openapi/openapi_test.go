package openapi_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/tailbits/halbridge"
	"github.com/tailbits/halbridge/hal/haltest"
	"github.com/tailbits/halbridge/model"
	"github.com/tailbits/halbridge/openapi"
	"github.com/tailbits/halbridge/service"
	"gotest.tools/v3/assert"
	"gotest.tools/v3/assert/cmp"
)

type document struct {
	OpenAPI string `json:"openapi"`
	Info    struct {
		Title string `json:"title"`
	} `json:"info"`
	Tags []struct {
		Name string `json:"name"`
	} `json:"tags"`
	Paths      map[string]map[string]operation `json:"paths"`
	Components struct {
		Schemas map[string]json.RawMessage `json:"schemas"`
	} `json:"components"`
}

type operation struct {
	OperationID string   `json:"operationId"`
	Summary     string   `json:"summary"`
	Tags        []string `json:"tags"`
	Parameters  []struct {
		Name     string         `json:"name"`
		In       string         `json:"in"`
		Required bool           `json:"required"`
		Schema   map[string]any `json:"schema"`
	} `json:"parameters"`
	RequestBody json.RawMessage `json:"requestBody"`
}

func generate(t *testing.T, r *halbridge.Router, opts ...openapi.Option) document {
	t.Helper()

	log, _ := test.NewNullLogger()
	raw, err := openapi.New(r, append([]openapi.Option{openapi.SkipLint(), openapi.WithLogger(log)}, opts...)...)
	assert.NilError(t, err)

	var doc document
	assert.NilError(t, json.Unmarshal(raw, &doc))
	return doc
}

func servicesRouter() *halbridge.Router {
	log, _ := test.NewNullLogger()
	r := halbridge.NewRouter(halbridge.WithLogger(log))
	service.Register(r, service.All(service.Deps{Fetcher: haltest.New(nil), Log: log})...)
	return r
}

func TestNew_Services(t *testing.T) {
	doc := generate(t, servicesRouter())

	assert.Equal(t, doc.OpenAPI, "3.1.0")
	assert.Equal(t, doc.Info.Title, openapi.DefaultInfo.Title)

	entry := doc.Paths["/time-entries/{id}"]
	assert.Equal(t, len(entry), 3)
	assert.Equal(t, entry["get"].OperationID, "time-entries_get")
	assert.DeepEqual(t, entry["get"].Tags, []string{"Time Entries"})
	assert.Equal(t, entry["get"].Parameters[0].Name, "id")
	assert.Equal(t, entry["get"].Parameters[0].In, "path")
	assert.Assert(t, entry["get"].Parameters[0].Required)
	assert.Assert(t, len(entry["patch"].RequestBody) > 0)

	assert.Assert(t, doc.Paths["/time-entries/schema"]["get"].OperationID != "")
	assert.Assert(t, doc.Paths["/users/me"]["get"].OperationID == "users_me")

	params := map[string]map[string]any{}
	for _, p := range doc.Paths["/time-entries"]["get"].Parameters {
		assert.Equal(t, p.In, "query")
		assert.Assert(t, !p.Required)
		params[p.Name] = p.Schema
	}
	assert.Equal(t, params["pageSize"]["type"], "integer")
	assert.Equal(t, params["from"]["format"], "date-time")
	assert.Equal(t, params["sort"]["type"], "array")

	for _, name := range []string{"TimeEntry", "TimeEntryList", "TimeEntryInput", "Link", "Activity", "Invoice", "InvoiceLine", "SystemInfo"} {
		_, ok := doc.Components.Schemas[name]
		assert.Assert(t, ok, "missing component %s", name)
	}
	assert.Assert(t, cmp.Contains(string(doc.Components.Schemas["TimeEntry"]), "#/components/schemas/Link"))

	var tags []string
	for _, tag := range doc.Tags {
		tags = append(tags, tag.Name)
	}
	assert.Assert(t, cmp.Contains(tags, "Time Entries"))
	assert.Assert(t, cmp.Contains(tags, "Invoices"))
}

func TestNew_Filter(t *testing.T) {
	doc := generate(t, servicesRouter(),
		openapi.Filter(func(r openapi.Record) bool {
			return len(r.Tags) > 0 && r.Tags[0] == "Users"
		}),
	)

	assert.Equal(t, len(doc.Paths), 2)
	_, ok := doc.Paths["/users/{id}"]
	assert.Assert(t, ok)
}

func TestNew_Transform(t *testing.T) {
	doc := generate(t, servicesRouter(),
		openapi.Transform(func(r *openapi.Record) {
			r.Summary = "[" + r.ID + "]"
		}),
		openapi.Tags(func(op halbridge.Operation) []string { return []string{"ipc"} }, []string{"internal"}),
	)

	get := doc.Paths["/system-info"]["get"]
	assert.Equal(t, get.Summary, "[system-info_get]")
	assert.DeepEqual(t, get.Tags, []string{"ipc", "System Info"})

	var tags []string
	for _, tag := range doc.Tags {
		tags = append(tags, tag.Name)
	}
	assert.Assert(t, cmp.Contains(tags, "internal"))
}

func TestNew_Undocumented(t *testing.T) {
	r := halbridge.NewRouter()
	halbridge.HandleGet(getWidget).Path("/hidden").WithOpID("hidden").SkipIf(true).Register(r)
	halbridge.HandleGet(getWidget).Path("/widgets/:id").WithOpID("widgets", "get").Register(r)

	doc := generate(t, r)
	assert.Equal(t, len(doc.Paths), 1)
	assert.Equal(t, doc.Paths["/widgets/{id}"]["get"].OperationID, "widgets_get")
}

func TestNew_ConflictingDefinitions(t *testing.T) {
	t.Run("same name, different schema", func(t *testing.T) {
		r := halbridge.NewRouter()
		halbridge.HandleGet(getWidget).Path("/widgets").WithOpID("widgets").Register(r)
		halbridge.HandleGet(getOtherWidget).Path("/other-widgets").WithOpID("other-widgets").Register(r)

		log, hook := test.NewNullLogger()
		_, err := openapi.New(r, openapi.SkipLint(), openapi.WithLogger(log))
		assert.ErrorContains(t, err, "definition with name [Widget] already exists")
		assert.Assert(t, hook.LastEntry() != nil)
		assert.Assert(t, cmp.Contains(hook.LastEntry().Message, "conflicting definitions"))
	})

	t.Run("names differing in case", func(t *testing.T) {
		r := halbridge.NewRouter()
		halbridge.HandleGet(getWidget).Path("/widgets").WithOpID("widgets").Register(r)
		halbridge.HandleGet(getLowerWidget).Path("/lower-widgets").WithOpID("lower-widgets").Register(r)

		_, err := openapi.New(r, openapi.SkipLint())
		assert.ErrorContains(t, err, "conflicting definitions")
	})
}

/* -------------------------------------------------------------------------- */

type widget struct {
	ID string `json:"id"`
}

func (w *widget) Name() string { return "Widget" }
func (w *widget) Schema() []byte {
	return []byte(`{"type": "object", "properties": {"id": {"type": "string"}}}`)
}
func (w *widget) Example() []byte                      { return []byte(`{"id": "w1"}`) }
func (w *widget) Marshal() (json.RawMessage, error)    { return json.Marshal(w) }
func (w *widget) Unmarshal(data json.RawMessage) error { return json.Unmarshal(data, w) }

type otherWidget struct{ widget }

func (w *otherWidget) Schema() []byte {
	return []byte(`{"type": "object", "properties": {"id": {"type": "string"}}, "required": ["id"]}`)
}

type lowerWidget struct{ widget }

func (w *lowerWidget) Name() string { return "widget" }

func getWidget(ctx context.Context, req *halbridge.Request, _ model.Nil) (*widget, error) {
	return &widget{ID: req.Param("id")}, nil
}

func getOtherWidget(ctx context.Context, req *halbridge.Request, _ model.Nil) (*otherWidget, error) {
	return &otherWidget{}, nil
}

func getLowerWidget(ctx context.Context, req *halbridge.Request, _ model.Nil) (*lowerWidget, error) {
	return &lowerWidget{}, nil
}
