package openapi

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/swaggest/jsonschema-go"
	"github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi31"
	"github.com/tailbits/halbridge"
)

// operationContext pairs the openapi-go context of one operation with the
// generator that collects its definitions.
type operationContext struct {
	openapi.OperationContext
	op  *openapi31.Operation
	gen *generator
}

func (c *operationContext) commit() error {
	return c.gen.reflector.AddOperation(c.OperationContext)
}

func (c *operationContext) from(record Record) error {
	if !record.Output.IsNil() {
		if err := c.addResponse(record.Output, openapi.WithHTTPStatus(record.SuccessStatus)); err != nil {
			return err
		}
	}

	if record.Input != nil && !record.Input.IsNil() {
		if err := c.addRequest(*record.Input); err != nil {
			return err
		}
	}

	var params []openapi31.ParameterOrReference
	forEachPathParam(record.Method, record.Path, func(name string) {
		params = append(params, pathParam(name))
	})
	forEachQueryParam(record.QueryParams, func(name string, schema jsonschema.Schema, desc string) {
		params = append(params, queryParam(name, schema, desc))
	})
	if c.op != nil && len(params) > 0 {
		c.op.WithParameters(params...)
	}

	c.SetID(record.ID)
	c.SetTags(record.Tags...)
	for _, tag := range record.Tags {
		c.gen.tags[tag] = true
	}
	if record.Description != "" {
		c.SetDescription(record.Description)
	}
	if record.Summary != "" {
		c.SetSummary(record.Summary)
	}

	return nil
}

func (c *operationContext) addRequest(m halbridge.Model, options ...openapi.ContentOption) error {
	if err := c.gen.addModel(m); err != nil {
		return fmt.Errorf("openapi: definition for %s: %w", m.Name(), err)
	}
	c.AddReqStructure(m, options...)
	return nil
}

func (c *operationContext) addResponse(m halbridge.Model, options ...openapi.ContentOption) error {
	if err := c.gen.addModel(m); err != nil {
		return fmt.Errorf("openapi: definition for %s: %w", m.Name(), err)
	}
	c.AddRespStructure(m, options...)
	return nil
}

func newOperationContext(oc openapi.OperationContext, g *generator) *operationContext {
	c := &operationContext{OperationContext: oc, gen: g}
	if exp, ok := oc.(openapi31.OperationExposer); ok {
		c.op = exp.Operation()
	}
	return c
}

/* -------------------------------------------------------------------------- */

func forEachPathParam(method string, path string, f func(string)) {
	_, _, params, _ := openapi.SanitizeMethodPath(method, path)
	for _, p := range params {
		f(p)
	}
}

func pathParam(name string) openapi31.ParameterOrReference {
	req := true
	s, err := jsonschema.String.ToSchemaOrBool().ToSimpleMap()
	if err != nil {
		return openapi31.ParameterOrReference{}
	}

	return openapi31.ParameterOrReference{
		Parameter: &openapi31.Parameter{
			Name:     name,
			In:       openapi31.ParameterInPath,
			Required: &req,
			Schema:   s,
		},
	}
}

var timeType = reflect.TypeOf(time.Time{})

// forEachQueryParam walks the json-tagged fields of a query struct. Fields of
// unsupported kinds are skipped.
func forEachQueryParam(queryParams any, f func(name string, schema jsonschema.Schema, desc string)) {
	if queryParams == nil {
		return
	}

	t := reflect.TypeOf(queryParams)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return
	}

	descriptions := QueryParamDescriptions(t)
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		name := strings.Split(field.Tag.Get("json"), ",")[0]
		if name == "" || name == "-" {
			continue
		}

		schema, ok := fieldSchema(field.Type)
		if !ok {
			continue
		}
		if def := field.Tag.Get("default"); def != "" {
			schema.WithDefault(def)
		}

		desc := field.Tag.Get("doc")
		if desc == "" {
			desc = descriptions[field.Name]
		}
		f(name, schema, desc)
	}
}

func fieldSchema(t reflect.Type) (jsonschema.Schema, bool) {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	var s jsonschema.Schema
	switch {
	case t == timeType:
		s.WithType(jsonschema.String.Type())
		s.WithFormat("date-time")
	case t.Kind() == reflect.String:
		s.WithType(jsonschema.String.Type())
	case t.Kind() >= reflect.Int && t.Kind() <= reflect.Uint64:
		s.WithType(jsonschema.Integer.Type())
	case t.Kind() == reflect.Float32 || t.Kind() == reflect.Float64:
		s.WithType(jsonschema.Number.Type())
	case t.Kind() == reflect.Bool:
		s.WithType(jsonschema.Boolean.Type())
	case t.Kind() == reflect.Slice:
		items, ok := fieldSchema(t.Elem())
		if !ok {
			return s, false
		}
		itemSchema := items.ToSchemaOrBool()
		s.WithType(jsonschema.Array.Type())
		s.WithItems(jsonschema.Items{SchemaOrBool: &itemSchema})
	default:
		return s, false
	}
	return s, true
}

func queryParam(name string, schema jsonschema.Schema, desc string) openapi31.ParameterOrReference {
	req := false
	s, err := schema.ToSchemaOrBool().ToSimpleMap()
	if err != nil {
		return openapi31.ParameterOrReference{}
	}

	param := &openapi31.Parameter{
		Name:     name,
		In:       openapi31.ParameterInQuery,
		Required: &req,
		Schema:   s,
	}
	if desc != "" {
		param.WithDescription(desc)
	}
	return openapi31.ParameterOrReference{Parameter: param}
}
