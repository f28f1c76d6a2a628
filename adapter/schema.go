package adapter

import (
	"github.com/tailbits/halbridge/dto"
	"github.com/tailbits/halbridge/hal"
	"github.com/tidwall/gjson"
)

// AdaptSchema describes every declared attribute of s, in declared order.
// Attributes with "location": "_links" are link-valued.
func AdaptSchema(s *hal.Schema) (*dto.Schema, error) {
	out := &dto.Schema{Attributes: []dto.SchemaAttribute{}}

	for _, attr := range s.Attributes() {
		def := attr.Def
		typ := def.Get("type")
		if typ.Type != gjson.String {
			return nil, &MalformedResourceError{URI: s.Href(), Attribute: attr.Key + ".type", Err: typeError("string", typ)}
		}

		a := dto.SchemaAttribute{
			Key:        attr.Key,
			Label:      def.Get("name").String(),
			Type:       typ.String(),
			Required:   def.Get("required").Bool(),
			HasDefault: def.Get("hasDefault").Bool(),
			Writable:   def.Get("writable").Bool(),
			Location:   def.Get("location").String(),
		}
		if v := def.Get("minLength"); v.Type == gjson.Number {
			n := int(v.Int())
			a.MinLength = &n
		}
		if v := def.Get("maxLength"); v.Type == gjson.Number {
			n := int(v.Int())
			a.MaxLength = &n
		}
		if v := def.Get("regularExpression"); v.Type == gjson.String {
			a.RegularExpression = v.String()
		}

		out.Attributes = append(out.Attributes, a)
	}

	return out, nil
}
