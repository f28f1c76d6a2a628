// Package hal models the remote server's HAL+JSON resources. Resources are
// read-only views over a fetched document; linked resources are resolved on
// demand through a Fetcher.
package hal

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"
)

// APIRoot is the path prefix of the remote API.
const APIRoot = "/api/v3"

// APIPath joins segments below APIRoot. Each segment is path-escaped, so a
// segment never contributes a slash or a dot-segment to the result.
func APIPath(segments ...string) string {
	escaped := make([]string, len(segments))
	for i, seg := range segments {
		escaped[i] = url.PathEscape(seg)
	}
	return APIRoot + "/" + strings.Join(escaped, "/")
}

// Link is one entry of a resource's _links object.
type Link struct {
	Href      string `json:"href"`
	Title     string `json:"title,omitempty"`
	Method    string `json:"method,omitempty"`
	Templated bool   `json:"templated,omitempty"`
}

// ID returns the last path segment of the link target, which is the
// identifier for the server's canonical resource URLs.
func (l Link) ID() string {
	href := strings.TrimRight(l.Href, "/")
	if i := strings.IndexAny(href, "?#"); i >= 0 {
		href = href[:i]
	}
	if i := strings.LastIndex(href, "/"); i >= 0 {
		return href[i+1:]
	}
	return href
}

// Resource is a single HAL node.
type Resource struct {
	doc     gjson.Result
	fetcher Fetcher
}

// Parse reads a HAL document. The fetcher is used to resolve links that are
// not embedded; it may be nil for fully embedded documents.
func Parse(data []byte, fetcher Fetcher) (*Resource, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("hal.Parse: invalid JSON document")
	}
	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return nil, fmt.Errorf("hal.Parse: expected an object, got %s", doc.Type)
	}

	return &Resource{doc: doc, fetcher: fetcher}, nil
}

// Get fetches href through f and parses the result.
func Get(ctx context.Context, f Fetcher, href string) (*Resource, error) {
	data, err := f.Fetch(ctx, href)
	if err != nil {
		return nil, err
	}

	r, err := Parse(data, f)
	if err != nil {
		return nil, &RemoteFetchError{Href: href, Message: "malformed response", Err: err}
	}

	return r, nil
}

// Href is the self link of the resource.
func (r *Resource) Href() string {
	return r.doc.Get("_links.self.href").String()
}

// Type is the resource's declared _type.
func (r *Resource) Type() string {
	return r.doc.Get("_type").String()
}

// Get returns the property at path. Absent and null properties report false.
func (r *Resource) Get(path string) (gjson.Result, bool) {
	v := r.doc.Get(path)
	if !v.Exists() || v.Type == gjson.Null {
		return v, false
	}
	return v, true
}

// Link returns the named link. Links with a null href are treated as absent.
func (r *Resource) Link(rel string) (Link, bool) {
	v := r.doc.Get("_links." + rel)
	if !v.IsObject() {
		return Link{}, false
	}
	href := v.Get("href")
	if href.Type != gjson.String || href.String() == "" {
		return Link{}, false
	}

	return Link{
		Href:      href.String(),
		Title:     v.Get("title").String(),
		Method:    v.Get("method").String(),
		Templated: v.Get("templated").Bool(),
	}, true
}

// Links returns the entries of a link array such as customActions.
func (r *Resource) Links(rel string) []Link {
	v := r.doc.Get("_links." + rel)
	if !v.IsArray() {
		if l, ok := r.Link(rel); ok {
			return []Link{l}
		}
		return nil
	}

	var links []Link
	v.ForEach(func(_, item gjson.Result) bool {
		if href := item.Get("href").String(); href != "" {
			links = append(links, Link{Href: href, Title: item.Get("title").String()})
		}
		return true
	})

	return links
}

// Embedded returns the resource embedded under rel.
func (r *Resource) Embedded(rel string) (*Resource, bool) {
	v := r.doc.Get("_embedded." + rel)
	if !v.IsObject() {
		return nil, false
	}
	return &Resource{doc: v, fetcher: r.fetcher}, true
}

// Follow resolves the resource linked under rel. Embedded copies win over a
// fetch. An absent link resolves to (nil, nil).
func (r *Resource) Follow(ctx context.Context, rel string) (*Resource, error) {
	if e, ok := r.Embedded(rel); ok {
		return e, nil
	}

	l, ok := r.Link(rel)
	if !ok {
		return nil, nil
	}
	if r.fetcher == nil {
		return nil, fmt.Errorf("hal.Follow: link %q of %s is not embedded and no fetcher is set", rel, r.Href())
	}

	return Get(ctx, r.fetcher, l.Href)
}

// Raw is the underlying JSON document.
func (r *Resource) Raw() []byte {
	return []byte(r.doc.Raw)
}
