package halbridge

import (
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/tailbits/halbridge/model"
)

// DecodeRequest validates the request payload against the schema of T and
// decodes it.
func DecodeRequest[T model.Entity](r *Router, req *Request) (ent T, err error) {
	ent = model.New[T]()
	if model.IsNil(ent) {
		return ent, nil
	}

	schema, err := r.DereferenceSchema(ent.Schema())
	if err != nil {
		return ent, fmt.Errorf("DereferenceSchema ent[%s]: %w", ent.Name(), err)
	}

	if err := model.Validate(schema, req.Data); err != nil {
		return ent, fmt.Errorf("model.Validate: %w", err)
	}

	// model.New primes entities with their example; start from a clean value.
	ent = zero[T]()
	if err := ent.Unmarshal(req.Data); err != nil {
		return ent, fmt.Errorf("unable to unmarshal the data: %w", err)
	}

	return ent, nil
}

func zero[T any]() T {
	var t T
	if typ := reflect.TypeOf(t); typ != nil && typ.Kind() == reflect.Ptr {
		if v, ok := reflect.New(typ.Elem()).Interface().(T); ok {
			return v
		}
	}
	return t
}

var timeType = reflect.TypeOf(time.Time{})

// DecodeQueryParams fills a struct from query values. Fields are matched by
// their json tag; a `default` tag supplies the value of absent parameters.
// Supported kinds are strings, integers, floats, booleans, time.Time (RFC3339,
// date-only, or unix seconds/milliseconds), string slices and pointers to these.
func DecodeQueryParams[Q any](values url.Values) (Q, error) {
	var q Q

	rv := reflect.ValueOf(&q).Elem()
	if rv.Kind() != reflect.Struct {
		return q, nil
	}
	rt := rv.Type()

	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}
		name := strings.Split(field.Tag.Get("json"), ",")[0]
		if name == "" || name == "-" {
			continue
		}

		raw, present := values[name]
		if !present || len(raw) == 0 {
			def, ok := field.Tag.Lookup("default")
			if !ok {
				continue
			}
			raw = []string{def}
		}

		if err := setField(rv.Field(i), raw); err != nil {
			return *new(Q), fmt.Errorf("query param %q: %w", name, err)
		}
	}

	return q, nil
}

func setField(f reflect.Value, raw []string) error {
	if f.Kind() == reflect.Ptr {
		elem := reflect.New(f.Type().Elem())
		if err := setField(elem.Elem(), raw); err != nil {
			return err
		}
		f.Set(elem)
		return nil
	}

	if f.Type() == timeType {
		t, err := parseTime(raw[0])
		if err != nil {
			return err
		}
		f.Set(reflect.ValueOf(t))
		return nil
	}

	s := raw[0]
	switch f.Kind() {
	case reflect.String:
		f.SetString(s)
	case reflect.Bool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return err
		}
		f.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(s, 10, f.Type().Bits())
		if err != nil {
			return err
		}
		f.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(s, 10, f.Type().Bits())
		if err != nil {
			return err
		}
		f.SetUint(n)
	case reflect.Float32, reflect.Float64:
		n, err := strconv.ParseFloat(s, f.Type().Bits())
		if err != nil {
			return err
		}
		f.SetFloat(n)
	case reflect.Slice:
		if f.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice type %s", f.Type())
		}
		var parts []string
		for _, r := range raw {
			parts = append(parts, strings.Split(r, ",")...)
		}
		f.Set(reflect.ValueOf(parts).Convert(f.Type()))
	default:
		return fmt.Errorf("unsupported type %s", f.Type())
	}

	return nil
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

func parseTime(s string) (time.Time, error) {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		if n > 1e11 {
			return time.UnixMilli(n).UTC(), nil
		}
		return time.Unix(n, 0).UTC(), nil
	}

	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("cannot parse %q as a time", s)
}
