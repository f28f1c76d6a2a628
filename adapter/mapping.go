// Package adapter converts HAL resources into DTOs. Every resource kind has a
// fixed mapping table; adapters read exactly the attributes and links the
// table names and never walk the link graph beyond it.
package adapter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tailbits/halbridge/dto"
	"github.com/tailbits/halbridge/hal"
	"github.com/tidwall/gjson"
)

type extractFunc[D any] func(ctx context.Context, res *hal.Resource, dst *D) (present bool, err error)

// Rule maps one attribute or link of a resource onto a DTO field.
type Rule[D any] struct {
	attribute string
	required  bool
	extract   extractFunc[D]
}

// Required marks the attribute as mandatory: a resource without it fails
// adaptation with ErrMissing.
func (r Rule[D]) Required() Rule[D] {
	r.required = true
	return r
}

func (r Rule[D]) Attribute() string { return r.attribute }

func (r Rule[D]) IsRequired() bool { return r.required }

// Mapping is the declarative table of rules for one resource kind, applied in
// order.
type Mapping[D any] []Rule[D]

// Apply runs every rule against res. Absent optional attributes leave the
// DTO field untouched.
func (m Mapping[D]) Apply(ctx context.Context, res *hal.Resource, dst *D) error {
	for _, rule := range m {
		present, err := rule.extract(ctx, res, dst)
		if err != nil {
			var rfe *hal.RemoteFetchError
			if errors.As(err, &rfe) {
				return fmt.Errorf("adapter: %s of %s: %w", rule.attribute, res.Href(), err)
			}
			return &MalformedResourceError{URI: res.Href(), Attribute: rule.attribute, Err: err}
		}
		if !present && rule.required {
			return &MalformedResourceError{URI: res.Href(), Attribute: rule.attribute, Err: ErrMissing}
		}
	}
	return nil
}

func property[D any, V any](attr string, conv func(gjson.Result) (V, error), set func(*D, V)) Rule[D] {
	return Rule[D]{
		attribute: attr,
		extract: func(_ context.Context, res *hal.Resource, dst *D) (bool, error) {
			raw, ok := res.Get(attr)
			if !ok {
				return false, nil
			}
			v, err := conv(raw)
			if err != nil {
				return true, err
			}
			set(dst, v)
			return true, nil
		},
	}
}

func String[D any](attr string, set func(*D, string)) Rule[D] {
	return property(attr, func(v gjson.Result) (string, error) {
		if v.Type != gjson.String {
			return "", typeError("string", v)
		}
		return v.String(), nil
	}, set)
}

func Int[D any](attr string, set func(*D, int)) Rule[D] {
	return property(attr, func(v gjson.Result) (int, error) {
		if v.Type != gjson.Number || v.Num != float64(int64(v.Num)) {
			return 0, typeError("integer", v)
		}
		return int(v.Int()), nil
	}, set)
}

func Float[D any](attr string, set func(*D, float64)) Rule[D] {
	return property(attr, func(v gjson.Result) (float64, error) {
		if v.Type != gjson.Number {
			return 0, typeError("number", v)
		}
		return v.Float(), nil
	}, set)
}

func Bool[D any](attr string, set func(*D, bool)) Rule[D] {
	return property(attr, func(v gjson.Result) (bool, error) {
		if v.Type != gjson.True && v.Type != gjson.False {
			return false, typeError("boolean", v)
		}
		return v.Bool(), nil
	}, set)
}

// Date reads a calendar date (2006-01-02).
func Date[D any](attr string, set func(*D, dto.Date)) Rule[D] {
	return property(attr, func(v gjson.Result) (dto.Date, error) {
		if v.Type != gjson.String {
			return dto.Date{}, typeError("date", v)
		}
		return dto.ParseDate(v.String())
	}, set)
}

// DateTime reads an RFC 3339 timestamp.
func DateTime[D any](attr string, set func(*D, time.Time)) Rule[D] {
	return property(attr, func(v gjson.Result) (time.Time, error) {
		if v.Type != gjson.String {
			return time.Time{}, typeError("date-time", v)
		}
		return time.Parse(time.RFC3339Nano, v.String())
	}, set)
}

// Duration reads an ISO 8601 duration such as PT1H30M.
func Duration[D any](attr string, set func(*D, time.Duration)) Rule[D] {
	return property(attr, func(v gjson.Result) (time.Duration, error) {
		if v.Type != gjson.String {
			return 0, typeError("duration", v)
		}
		return hal.ParseDuration(v.String())
	}, set)
}

// Formattable reads the raw text of a formattable attribute ({"raw": ...}).
// Plain strings are accepted too.
func Formattable[D any](attr string, set func(*D, string)) Rule[D] {
	return property(attr, func(v gjson.Result) (string, error) {
		switch {
		case v.Type == gjson.String:
			return v.String(), nil
		case v.IsObject():
			return v.Get("raw").String(), nil
		default:
			return "", typeError("formattable", v)
		}
	}, set)
}

// Link reads _links[rel] as a DTO link. A null href counts as absent.
func Link[D any](rel string, set func(*D, dto.Link)) Rule[D] {
	return Rule[D]{
		attribute: "_links." + rel,
		extract: func(_ context.Context, res *hal.Resource, dst *D) (bool, error) {
			l, ok := res.Link(rel)
			if !ok {
				return false, nil
			}
			set(dst, ToLink(l))
			return true, nil
		},
	}
}

// LinkID reads the identifier at the end of _links[rel].href.
func LinkID[D any](rel string, set func(*D, string)) Rule[D] {
	return Rule[D]{
		attribute: "_links." + rel,
		extract: func(_ context.Context, res *hal.Resource, dst *D) (bool, error) {
			l, ok := res.Link(rel)
			if !ok || l.ID() == "" {
				return false, nil
			}
			set(dst, l.ID())
			return true, nil
		},
	}
}

// Embed resolves the resource linked under rel, embedded or fetched, and
// adapts it with sub. A missing link is absent, not an error.
func Embed[D any, S any](rel string, sub EntityAdapter[S], set func(*D, *S)) Rule[D] {
	return Rule[D]{
		attribute: rel,
		extract: func(ctx context.Context, res *hal.Resource, dst *D) (bool, error) {
			linked, err := res.Follow(ctx, rel)
			if err != nil {
				return true, err
			}
			if linked == nil {
				return false, nil
			}
			v, err := sub.ResourceToDTO(ctx, linked)
			if err != nil {
				return true, err
			}
			set(dst, v)
			return true, nil
		},
	}
}

// ToLink flattens a HAL link.
func ToLink(l hal.Link) dto.Link {
	return dto.Link{ID: l.ID(), Href: l.Href, Title: l.Title}
}

func typeError(want string, got gjson.Result) error {
	return fmt.Errorf("expected %s, got %s %s", want, got.Type, got.Raw)
}
