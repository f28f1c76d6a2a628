package dto

import (
	"encoding/json"

	"github.com/swaggest/jsonschema-go"
)

// PayloadSchema derives the JSON Schema of a write payload from the writable
// attributes. Link attributes are expected under _links as {"href": ...};
// attributes that are required and have no server default are required.
func (s *Schema) PayloadSchema() jsonschema.Schema {
	var root jsonschema.Schema
	root.WithType(jsonschema.Object.Type())

	var links jsonschema.Schema
	links.WithType(jsonschema.Object.Type())

	var required, requiredLinks []string
	for _, a := range s.Attributes {
		if !a.Writable {
			continue
		}

		prop := attributeSchema(a)
		mandatory := a.Required && !a.HasDefault

		if a.Location == LocationLinks {
			links.WithPropertiesItem(a.Key, prop.ToSchemaOrBool())
			if mandatory {
				requiredLinks = append(requiredLinks, a.Key)
			}
			continue
		}

		root.WithPropertiesItem(a.Key, prop.ToSchemaOrBool())
		if mandatory {
			required = append(required, a.Key)
		}
	}

	if len(links.Properties) > 0 {
		if len(requiredLinks) > 0 {
			links.WithRequired(requiredLinks...)
			required = append(required, LocationLinks)
		}
		root.WithPropertiesItem(LocationLinks, links.ToSchemaOrBool())
	}
	if len(required) > 0 {
		root.WithRequired(required...)
	}

	return root
}

// PartialPayloadSchema is PayloadSchema with nothing required, for updates
// that only send changed attributes.
func (s *Schema) PartialPayloadSchema() jsonschema.Schema {
	partial := Schema{Attributes: make([]SchemaAttribute, len(s.Attributes))}
	for i, a := range s.Attributes {
		a.Required = false
		partial.Attributes[i] = a
	}
	return partial.PayloadSchema()
}

// PayloadSchemaJSON encodes PayloadSchema, or PartialPayloadSchema when
// partial is set, for validation.
func (s *Schema) PayloadSchemaJSON(partial bool) ([]byte, error) {
	if partial {
		return json.Marshal(s.PartialPayloadSchema())
	}
	return json.Marshal(s.PayloadSchema())
}

func attributeSchema(a SchemaAttribute) jsonschema.Schema {
	var sch jsonschema.Schema
	if a.Label != "" {
		sch.WithTitle(a.Label)
	}

	if a.Location == LocationLinks {
		var href jsonschema.Schema
		href.WithType(jsonschema.String.Type())
		href.WithMinLength(1)

		sch.WithType(jsonschema.Object.Type())
		sch.WithPropertiesItem("href", href.ToSchemaOrBool())
		sch.WithRequired("href")
		return sch
	}

	switch a.Type {
	case "Integer":
		sch.WithType(jsonschema.Integer.Type())
	case "Float":
		sch.WithType(jsonschema.Number.Type())
	case "Boolean":
		sch.WithType(jsonschema.Boolean.Type())
	case "Date":
		sch.WithType(jsonschema.String.Type())
		sch.WithPattern(`^\d{4}-\d{2}-\d{2}$`)
	case "DateTime":
		sch.WithType(jsonschema.String.Type())
		sch.WithFormat("date-time")
	case "Duration":
		sch.WithType(jsonschema.String.Type())
		sch.WithPattern(`^P`)
	case "Formattable":
		var raw jsonschema.Schema
		raw.WithType(jsonschema.String.Type())
		constrainString(&raw, a)

		sch.WithType(jsonschema.Object.Type())
		sch.WithPropertiesItem("raw", raw.ToSchemaOrBool())
	default:
		sch.WithType(jsonschema.String.Type())
		constrainString(&sch, a)
	}

	return sch
}

func constrainString(sch *jsonschema.Schema, a SchemaAttribute) {
	if a.MinLength != nil {
		sch.WithMinLength(int64(*a.MinLength))
	}
	if a.MaxLength != nil {
		sch.WithMaxLength(int64(*a.MaxLength))
	}
	if a.RegularExpression != "" {
		sch.WithPattern(a.RegularExpression)
	}
}
