// Package conform checks that a model's Go type and its declared JSON schema
// describe the same shape, so drift between the two is caught before a
// payload is ever validated.
package conform

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/swaggest/jsonschema-go"
	"github.com/tailbits/halbridge/model"
)

const definitionsPrefix = "#/definitions/"

// Dereferencer inlines the definitions a schema refers to.
type Dereferencer interface {
	DereferenceSchema(schema []byte) ([]byte, error)
}

// Skipper is implemented by values whose shape is left to the schema.
type Skipper interface {
	SkipConformance() bool
}

var (
	marshalerType = reflect.TypeOf((*json.Marshaler)(nil)).Elem()
	skipperType   = reflect.TypeOf((*Skipper)(nil)).Elem()
	entityType    = reflect.TypeOf((*model.WithSchema)(nil)).Elem()
	rawType       = reflect.TypeOf(json.RawMessage{})
)

type checker struct {
	root *jsonschema.Schema
}

// Check compares the type of m with its dereferenced schema.
func Check(d Dereferencer, m model.WithSchema) error {
	raw, err := d.DereferenceSchema(m.Schema())
	if err != nil {
		return fmt.Errorf("%s: %w", m.Name(), err)
	}

	var sch jsonschema.Schema
	if err := sch.UnmarshalJSON(raw); err != nil {
		return fmt.Errorf("%s: %w", m.Name(), err)
	}

	c := checker{root: &sch}
	return c.walk(&sch, reflect.ValueOf(m), true, m.Name())
}

// CheckAll checks every model and joins the failures.
func CheckAll(d Dereferencer, models ...model.WithSchema) error {
	var errs []error
	for _, m := range models {
		if err := Check(d, m); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (c *checker) walk(sch *jsonschema.Schema, val reflect.Value, exempt bool, path string) error {
	if sch == nil || skipped(val) {
		return nil
	}

	sch, nullableRef, err := c.resolve(sch)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	typ, nullable, err := schemaType(sch)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	nullable = nullable || nullableRef

	isEntity := val.Type().Implements(entityType)

	switch val.Kind() {
	case reflect.Ptr:
		if !exempt && !isEntity && !nullable {
			return &NullableError{Path: path}
		}
		val = reflect.New(val.Type().Elem()).Elem()
	case reflect.Map:
		if !exempt && !isEntity && !nullable {
			return &NullableError{Path: path}
		}
	}

	// Types with their own wire form, and untyped values, are not inspected.
	if val.Type() == rawType || val.Kind() == reflect.Interface || marshals(val.Type()) {
		return nil
	}

	switch typ {
	case "boolean":
		if val.Kind() != reflect.Bool {
			return &TypeError{Path: path, Expected: typ, Got: val.Kind()}
		}
	case "integer":
		if !isInteger(val.Kind()) {
			return &TypeError{Path: path, Expected: typ, Got: val.Kind()}
		}
	case "number":
		if !isInteger(val.Kind()) && val.Kind() != reflect.Float32 && val.Kind() != reflect.Float64 {
			return &TypeError{Path: path, Expected: typ, Got: val.Kind()}
		}
	case "string":
		if val.Kind() != reflect.String && !isBytes(val.Type()) {
			return &TypeError{Path: path, Expected: typ, Got: val.Kind()}
		}
	case "object":
		return c.object(sch, val, path)
	case "array":
		if val.Kind() != reflect.Slice && val.Kind() != reflect.Array {
			return &TypeError{Path: path, Expected: typ, Got: val.Kind()}
		}
		if sch.Items != nil && sch.Items.SchemaOrBool != nil {
			elem := reflect.New(val.Type().Elem()).Elem()
			return c.walk(sch.Items.SchemaOrBool.TypeObject, elem, false, path+"[]")
		}
	default:
		return fmt.Errorf("%s: unknown type %s", path, typ)
	}

	return nil
}

func (c *checker) object(sch *jsonschema.Schema, val reflect.Value, path string) error {
	switch val.Kind() {
	case reflect.Struct:
		if sch.AdditionalProperties != nil && sch.AdditionalProperties.TypeBoolean != nil && *sch.AdditionalProperties.TypeBoolean {
			return fmt.Errorf("%s: struct schemas must not allow additional properties", path)
		}

		fields := jsonFields(val)
		for name, f := range fields {
			prop, ok := sch.Properties[name]
			if !ok {
				if name == "id" {
					continue
				}
				return &MissingPropertyError{Path: path, Property: name}
			}
			if err := c.walk(prop.TypeObject, f.value, f.omitempty, path+"."+name); err != nil {
				return err
			}
		}
		for name := range sch.Properties {
			if _, ok := fields[name]; !ok {
				return &ExtraPropertyError{Path: path, Property: name}
			}
		}
	case reflect.Map:
		if sch.AdditionalProperties != nil && sch.AdditionalProperties.TypeBoolean != nil && !*sch.AdditionalProperties.TypeBoolean {
			return fmt.Errorf("%s: schema enumerates its keys, decode it into a struct", path)
		}
		elem := reflect.New(val.Type().Elem()).Elem()
		if sch.AdditionalProperties != nil && sch.AdditionalProperties.TypeObject != nil {
			if err := c.walk(sch.AdditionalProperties.TypeObject, elem, false, path+"[key]"); err != nil {
				return err
			}
		}
		for name, prop := range sch.Properties {
			if err := c.walk(prop.TypeObject, elem, false, path+"."+name); err != nil {
				return err
			}
		}
	default:
		return &TypeError{Path: path, Expected: "object", Got: val.Kind()}
	}
	return nil
}

// resolve follows a definition reference, or a oneOf of null and a reference.
func (c *checker) resolve(sch *jsonschema.Schema) (*jsonschema.Schema, bool, error) {
	if sch.Ref != nil {
		key, ok := strings.CutPrefix(*sch.Ref, definitionsPrefix)
		if !ok {
			return nil, false, fmt.Errorf("reference %s must start with %s", *sch.Ref, definitionsPrefix)
		}
		def, ok := c.root.Definitions[key]
		if !ok || def.TypeObject == nil {
			return nil, false, fmt.Errorf("could not find reference %s", *sch.Ref)
		}
		return def.TypeObject, false, nil
	}

	nullable := false
	inner := sch
	for _, s := range sch.OneOf {
		if s.TypeObject == nil {
			continue
		}
		switch {
		case s.TypeObject.Type != nil && s.TypeObject.Type.SimpleTypes != nil && *s.TypeObject.Type.SimpleTypes == jsonschema.Null:
			nullable = true
		case s.TypeObject.Ref != nil:
			resolved, _, err := c.resolve(s.TypeObject)
			if err != nil {
				return nil, false, err
			}
			inner = resolved
		}
	}

	return inner, nullable, nil
}

// schemaType returns the single non-null type of sch.
func schemaType(sch *jsonschema.Schema) (string, bool, error) {
	if sch.Type == nil {
		return "", false, fmt.Errorf("schema is missing a type")
	}
	if sch.Type.SimpleTypes != nil {
		return string(*sch.Type.SimpleTypes), false, nil
	}

	nullable := false
	var types []string
	for _, t := range sch.Type.SliceOfSimpleTypeValues {
		if t == jsonschema.Null {
			nullable = true
			continue
		}
		types = append(types, string(t))
	}
	if len(types) != 1 {
		return "", false, fmt.Errorf("expected exactly one non-null type, got %v", types)
	}

	return types[0], nullable, nil
}

type field struct {
	value     reflect.Value
	omitempty bool
}

// jsonFields maps the JSON names of val's fields to their values, promoting
// the fields of untagged embedded structs.
func jsonFields(val reflect.Value) map[string]field {
	fields := map[string]field{}
	for i := 0; i < val.NumField(); i++ {
		sf := val.Type().Field(i)
		tag, tagged := sf.Tag.Lookup("json")

		if sf.Anonymous && !tagged && sf.Type.Kind() == reflect.Struct {
			for name, f := range jsonFields(val.Field(i)) {
				fields[name] = f
			}
			continue
		}
		if !sf.IsExported() || tag == "-" {
			continue
		}

		name, opts, _ := strings.Cut(tag, ",")
		if name == "" {
			name = sf.Name
		}
		fields[name] = field{
			value:     val.Field(i),
			omitempty: strings.Contains(","+opts+",", ",omitempty,"),
		}
	}
	return fields
}

func skipped(val reflect.Value) bool {
	t := val.Type()
	if !t.Implements(skipperType) && !reflect.PointerTo(t).Implements(skipperType) {
		return false
	}
	s, ok := reflect.New(t).Elem().Interface().(Skipper)
	if !ok {
		s, ok = reflect.New(t).Interface().(Skipper)
	}
	return ok && s.SkipConformance()
}

func marshals(t reflect.Type) bool {
	return t.Implements(marshalerType) || reflect.PointerTo(t).Implements(marshalerType)
}

func isBytes(t reflect.Type) bool {
	return (t.Kind() == reflect.Slice || t.Kind() == reflect.Array) && t.Elem().Kind() == reflect.Uint8
}

func isInteger(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}
