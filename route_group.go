package halbridge

import (
	"strings"

	"github.com/tailbits/halbridge/internal/casing"
)

// RouteGroup collects the routes of one data service. Every operation
// registered through it is grouped under the kebab-cased names of the group
// and its parents, and tagged with the group's title.
type RouteGroup struct {
	name   string
	router *Router
	parent *RouteGroup
}

func (r *Router) NewRouteGroup(name string) *RouteGroup {
	return &RouteGroup{name: name, router: r}
}

// NewRouteGroup nests a group below g.
func (g *RouteGroup) NewRouteGroup(name string) *RouteGroup {
	return &RouteGroup{name: name, router: g.router, parent: g}
}

func (g *RouteGroup) Name() string {
	return g.name
}

// FullPath is the slash-separated chain of kebab-cased names, outermost first.
func (g *RouteGroup) FullPath() string {
	var segments []string
	for cur := g; cur != nil; cur = cur.parent {
		if seg := casing.Kebab(cur.name); seg != "" {
			segments = append([]string{seg}, segments...)
		}
	}
	return strings.Join(segments, "/")
}

// Tag is the display title of the group, empty for an unnamed group.
func (g *RouteGroup) Tag() string {
	return casing.Title(g.name)
}

func (g *RouteGroup) Register(builder Builder) {
	builder.WithGroup(g.FullPath())
	if tag := g.Tag(); tag != "" {
		builder.WithTags(tag)
	}
	builder.Register(g.router)
}
