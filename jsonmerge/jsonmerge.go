// Package jsonmerge composes JSON object schemas and example documents. DTO
// list types use it to combine the shared paging envelope with their element
// schema.
package jsonmerge

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// object is a JSON object that remembers key insertion order, so merged
// schemas list their properties in the order they were declared.
type object struct {
	keys   []string
	values map[string]any
}

func newObject() *object {
	return &object{values: make(map[string]any)}
}

func (o *object) set(key string, value any) {
	if _, exists := o.values[key]; !exists {
		o.keys = append(o.keys, key)
	}
	o.values[key] = value
}

func (o *object) get(key string) (any, bool) {
	v, ok := o.values[key]
	return v, ok
}

func (o *object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		val, err := json.Marshal(o.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// decode parses data keeping the key order of every nested object.
func decode(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	v, err := decodeValue(dec)
	if err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, fmt.Errorf("trailing data after JSON value")
	}
	return v, nil
}

func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			obj := newObject()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("object key %v is not a string", keyTok)
				}
				val, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				obj.set(key, val)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return obj, nil
		case '[':
			arr := []any{}
			for dec.More() {
				val, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				arr = append(arr, val)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return arr, nil
		default:
			return nil, fmt.Errorf("unexpected delimiter %v", t)
		}
	default:
		return tok, nil
	}
}

func decodeObject(data []byte) (*object, error) {
	v, err := decode(data)
	if err != nil {
		return nil, err
	}
	obj, ok := v.(*object)
	if !ok {
		return nil, fmt.Errorf("expected a JSON object, got %T", v)
	}
	return obj, nil
}

type Merger interface {
	MergeSchemas(schemas ...[]byte) ([]byte, error)
	MergeExamples(examples ...[]byte) ([]byte, error)
}

type Options struct {
	SchemasMergeStrategy SchemaMergeStrategy
}

// SchemaMergeStrategy decides what happens when two schemas declare the same
// property.
type SchemaMergeStrategy int

const (
	OverwriteDuplicates SchemaMergeStrategy = iota
	ErrorOnDuplicates
	KeepExisting
)

func New() Merger {
	return NewWithOptions(Options{
		SchemasMergeStrategy: OverwriteDuplicates,
	})
}

func NewWithOptions(opts Options) Merger {
	return &merger{opts: opts}
}

type merger struct {
	opts Options
}

// MergeSchemas combines object schemas into one object schema. Properties and
// definitions keep their declaration order; required lists are unioned.
func (m *merger) MergeSchemas(schemas ...[]byte) ([]byte, error) {
	if len(schemas) == 0 {
		return []byte("{}"), nil
	}

	result := newObject()
	result.set("type", "object")

	properties := newObject()
	result.set("properties", properties)
	definitions := newObject()

	var required []string
	seen := make(map[string]bool)

	for _, schema := range schemas {
		current, err := decodeObject(schema)
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal schema: %w", err)
		}

		if props, ok := current.get("properties"); ok {
			if err := m.mergeProperties(properties, props); err != nil {
				return nil, err
			}
		}
		if defs, ok := current.get("definitions"); ok {
			if err := m.mergeProperties(definitions, defs); err != nil {
				return nil, err
			}
		}
		if req, ok := current.get("required"); ok {
			list, _ := req.([]any)
			for _, r := range list {
				if s, ok := r.(string); ok && !seen[s] {
					seen[s] = true
					required = append(required, s)
				}
			}
		}
		if ap, ok := current.get("additionalProperties"); ok {
			result.set("additionalProperties", ap)
		}
	}

	if len(required) > 0 {
		result.set("required", required)
	}
	if len(definitions.keys) > 0 {
		result.set("definitions", definitions)
	}

	return json.MarshalIndent(result, "", "  ")
}

// MergeExamples overlays example documents; later keys replace earlier ones.
func (m *merger) MergeExamples(examples ...[]byte) ([]byte, error) {
	if len(examples) == 0 {
		return []byte("{}"), nil
	}

	result := newObject()
	for _, example := range examples {
		current, err := decodeObject(example)
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal example: %w", err)
		}

		for _, k := range current.keys {
			result.set(k, current.values[k])
		}
	}

	return json.MarshalIndent(result, "", "  ")
}

func (m *merger) mergeProperties(into *object, from any) error {
	props, ok := from.(*object)
	if !ok {
		return fmt.Errorf("expected an object of properties, got %T", from)
	}

	for _, k := range props.keys {
		if _, exists := into.get(k); exists {
			switch m.opts.SchemasMergeStrategy {
			case ErrorOnDuplicates:
				return fmt.Errorf("duplicate property found: %s", k)
			case KeepExisting:
				continue
			}
		}
		into.set(k, props.values[k])
	}
	return nil
}

// MustMerge merges schemas with the default strategy and panics on error. It
// is meant for schemas declared as package-level literals.
func MustMerge(schemas ...[]byte) []byte {
	out, err := New().MergeSchemas(schemas...)
	if err != nil {
		panic(err)
	}
	return out
}

// MustMergeExamples is MustMerge for example documents.
func MustMergeExamples(examples ...[]byte) []byte {
	out, err := New().MergeExamples(examples...)
	if err != nil {
		panic(err)
	}
	return out
}
