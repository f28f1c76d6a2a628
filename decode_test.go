package halbridge_test

import (
	"net/url"
	"testing"
	"time"

	"github.com/tailbits/halbridge"
	"github.com/tailbits/halbridge/model"
	"gotest.tools/v3/assert"
	"gotest.tools/v3/assert/cmp"
)

type timeEntryQuery struct {
	Offset   int        `json:"offset" default:"1"`
	PageSize int        `json:"pageSize" default:"100"`
	User     string     `json:"user"`
	Billable *bool      `json:"billable"`
	From     time.Time  `json:"from"`
	To       *time.Time `json:"to"`
	Projects []string   `json:"projects"`
	Ratio    float64    `json:"ratio"`
}

func TestDecodeQueryParams(t *testing.T) {
	t.Run("applies defaults", func(t *testing.T) {
		q, err := halbridge.DecodeQueryParams[timeEntryQuery](url.Values{})
		assert.NilError(t, err)
		assert.Equal(t, q.Offset, 1)
		assert.Equal(t, q.PageSize, 100)
		assert.Assert(t, q.Billable == nil)
		assert.Assert(t, q.From.IsZero())
	})

	t.Run("decodes every supported kind", func(t *testing.T) {
		vals, err := url.ParseQuery("offset=3&user=me&billable=true&from=2024-03-01&to=2024-03-31T18:00:00Z&projects=a,b&projects=c&ratio=0.5")
		assert.NilError(t, err)

		q, err := halbridge.DecodeQueryParams[timeEntryQuery](vals)
		assert.NilError(t, err)
		assert.Equal(t, q.Offset, 3)
		assert.Equal(t, q.PageSize, 100)
		assert.Equal(t, q.User, "me")
		assert.Equal(t, *q.Billable, true)
		assert.Assert(t, q.From.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))
		assert.Assert(t, q.To.Equal(time.Date(2024, 3, 31, 18, 0, 0, 0, time.UTC)))
		assert.DeepEqual(t, q.Projects, []string{"a", "b", "c"})
		assert.Equal(t, q.Ratio, 0.5)
	})

	t.Run("unix timestamps", func(t *testing.T) {
		q, err := halbridge.DecodeQueryParams[timeEntryQuery](url.Values{"from": {"1709251200"}})
		assert.NilError(t, err)
		assert.Assert(t, q.From.Equal(time.Unix(1709251200, 0)))

		q, err = halbridge.DecodeQueryParams[timeEntryQuery](url.Values{"from": {"1709251200000"}})
		assert.NilError(t, err)
		assert.Assert(t, q.From.Equal(time.Unix(1709251200, 0)))
	})

	t.Run("rejects malformed values", func(t *testing.T) {
		for _, vals := range []url.Values{
			{"offset": {"one"}},
			{"billable": {"maybe"}},
			{"from": {"yesterday"}},
			{"ratio": {"half"}},
		} {
			_, err := halbridge.DecodeQueryParams[timeEntryQuery](vals)
			assert.Assert(t, err != nil, "%v", vals)
		}
	})

	t.Run("non struct queries are ignored", func(t *testing.T) {
		_, err := halbridge.DecodeQueryParams[model.Nil](url.Values{"x": {"1"}})
		assert.NilError(t, err)
	})
}

func TestDecodeRequest(t *testing.T) {
	r := quietRouter()
	r.RegisterModel(&Widget{}, &Owner{})

	req := &halbridge.Request{Data: []byte(`{"id": 2, "label": "nut"}`)}
	w, err := halbridge.DecodeRequest[*Widget](r, req)
	assert.NilError(t, err)
	assert.DeepEqual(t, w, &Widget{ID: 2, Label: "nut"})

	req = &halbridge.Request{Data: []byte(`{"id": "two"}`)}
	_, err = halbridge.DecodeRequest[*Widget](r, req)
	assert.Assert(t, model.IsValidationError(err))
	assert.Assert(t, cmp.Contains(err.Error(), "Attribute 'label' is missing"))

	_, err = halbridge.DecodeRequest[*Widget](r, &halbridge.Request{})
	assert.ErrorIs(t, err, model.ErrBodyEmpty)

	n, err := halbridge.DecodeRequest[model.Nil](r, &halbridge.Request{})
	assert.NilError(t, err)
	assert.Equal(t, n, model.Nil{})
}

func TestDereferenceSchema(t *testing.T) {
	r := quietRouter()

	_, err := r.DereferenceSchema((&Widget{}).Schema())
	assert.ErrorContains(t, err, "model Owner not found")

	r.RegisterModel(&Owner{})
	out, err := r.DereferenceSchema((&Widget{}).Schema())
	assert.NilError(t, err)
	assert.Assert(t, cmp.Contains(string(out), `"definitions":{"Owner"`))
}
