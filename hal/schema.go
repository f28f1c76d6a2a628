package hal

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// Schema describes the attributes of a resource kind.
type Schema struct {
	*Resource
}

// Attribute is one declared schema attribute.
type Attribute struct {
	Key string
	Def gjson.Result
}

// AsSchema checks the resource's type and wraps it.
func AsSchema(r *Resource) (*Schema, error) {
	if r == nil {
		return nil, fmt.Errorf("hal.AsSchema: nil resource")
	}
	if t := r.Type(); t != TypeSchema {
		return nil, fmt.Errorf("hal.AsSchema: %s has _type %q", r.Href(), t)
	}
	return &Schema{Resource: r}, nil
}

// Attributes lists the declared attributes in document order. Reserved keys
// (those starting with an underscore) are skipped.
func (s *Schema) Attributes() []Attribute {
	var attrs []Attribute
	s.doc.ForEach(func(k, v gjson.Result) bool {
		key := k.String()
		if strings.HasPrefix(key, "_") || !v.IsObject() || !v.Get("type").Exists() {
			return true
		}
		attrs = append(attrs, Attribute{Key: key, Def: v})
		return true
	})

	return attrs
}
