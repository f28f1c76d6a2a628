package hal

import (
	"fmt"

	"github.com/tidwall/gjson"
)

const (
	TypeCollection = "Collection"
	TypeSchema     = "Schema"
	TypeError      = "Error"
)

// Collection is a paged list of element resources.
type Collection struct {
	*Resource
}

// AsCollection checks the resource's type and wraps it.
func AsCollection(r *Resource) (*Collection, error) {
	if r == nil {
		return nil, fmt.Errorf("hal.AsCollection: nil resource")
	}
	if t := r.Type(); t != TypeCollection {
		return nil, fmt.Errorf("hal.AsCollection: %s has _type %q", r.Href(), t)
	}
	return &Collection{Resource: r}, nil
}

func (c *Collection) Total() int    { return int(c.doc.Get("total").Int()) }
func (c *Collection) Count() int    { return int(c.doc.Get("count").Int()) }
func (c *Collection) PageSize() int { return int(c.doc.Get("pageSize").Int()) }
func (c *Collection) Offset() int   { return int(c.doc.Get("offset").Int()) }

// Elements returns the embedded elements in the order the server sent them.
func (c *Collection) Elements() []*Resource {
	elems := c.doc.Get("_embedded.elements")
	if !elems.IsArray() {
		return nil
	}

	out := make([]*Resource, 0, len(elems.Array()))
	elems.ForEach(func(_, v gjson.Result) bool {
		out = append(out, &Resource{doc: v, fetcher: c.fetcher})
		return true
	})

	return out
}
