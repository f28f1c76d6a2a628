package halbridge

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/swaggest/jsonschema-go"
	"github.com/tailbits/halbridge/model"
)

const (
	definitionsRef = "#/definitions/"
	componentsRef  = "#/components/schemas/"
)

var _ jsonschema.Exposer = (*Model)(nil)

// Model presents a DTO to schema reflection. Its schema is the DTO's own
// hand-written one with the example attached and every reference pointed at
// the components section of the route surface document.
type Model struct {
	jsonschema.Struct
	model.WithSchema
}

func NewModel(ent model.WithSchema) Model {
	return Model{
		Struct:     jsonschema.Struct{DefName: ent.Name()},
		WithSchema: ent,
	}
}

func (m Model) IsNil() bool {
	return m.WithSchema == nil || model.IsNil(m.WithSchema)
}

func (m Model) JSONSchema() (jsonschema.Schema, error) {
	var sch jsonschema.Schema

	raw := m.Schema()
	if raw == nil {
		return sch, nil
	}
	if err := json.Unmarshal(raw, &sch); err != nil {
		return sch, fmt.Errorf("halbridge.Model: schema of %s: %w", m.Name(), err)
	}

	if ex := m.Example(); len(ex) > 0 {
		var v any
		if err := json.Unmarshal(ex, &v); err != nil {
			return sch, fmt.Errorf("halbridge.Model: example of %s: %w", m.Name(), err)
		}
		sch.WithExamples(v)
	}

	walkRefs(&sch, func(ref *string) {
		*ref = componentsRef + refName(*ref)
	})

	return sch, nil
}

// refName is the model name a local reference points at.
func refName(ref string) string {
	if name, ok := strings.CutPrefix(ref, definitionsRef); ok {
		return name
	}
	return strings.TrimPrefix(ref, componentsRef)
}

// walkRefs calls f with every $ref of root, including those inside its
// definitions. f may rewrite the reference in place.
func walkRefs(root *jsonschema.Schema, f func(ref *string)) {
	if root == nil {
		return
	}

	pending := []*jsonschema.Schema{root}
	for _, def := range root.Definitions {
		if def.TypeObject != nil {
			pending = append(pending, def.TypeObject)
		}
	}

	for len(pending) > 0 {
		sch := pending[len(pending)-1]
		pending = pending[:len(pending)-1]

		if sch.Ref != nil {
			f(sch.Ref)
		}
		pending = append(pending, subschemas(sch)...)
	}
}

// subschemas lists the schemas nested directly in sch, definitions excepted.
func subschemas(sch *jsonschema.Schema) []*jsonschema.Schema {
	var out []*jsonschema.Schema
	add := func(sb *jsonschema.SchemaOrBool) {
		if sb != nil && sb.TypeObject != nil {
			out = append(out, sb.TypeObject)
		}
	}

	add(sch.AdditionalItems)
	add(sch.Contains)
	add(sch.AdditionalProperties)
	add(sch.Not)
	if sch.Items != nil {
		add(sch.Items.SchemaOrBool)
		for i := range sch.Items.SchemaArray {
			add(&sch.Items.SchemaArray[i])
		}
	}
	for _, prop := range sch.Properties {
		add(&prop)
	}
	for _, group := range [][]jsonschema.SchemaOrBool{sch.AllOf, sch.AnyOf, sch.OneOf} {
		for i := range group {
			add(&group[i])
		}
	}

	return out
}
