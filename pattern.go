package halbridge

import (
	"fmt"
	"net/url"
	"strings"
)

type segment struct {
	literal string
	param   string
}

// pattern is a parsed route path. Segments are either literals or named
// parameters written as :name or {name}.
type pattern struct {
	raw  string
	segs []segment
}

func parsePattern(raw string) (pattern, error) {
	if !strings.HasPrefix(raw, "/") {
		return pattern{}, fmt.Errorf("pattern %q must start with /", raw)
	}

	p := pattern{raw: raw}
	seen := make(map[string]bool)
	for _, s := range splitPath(raw) {
		if s == "" {
			return pattern{}, fmt.Errorf("pattern %q has an empty segment", raw)
		}

		name := ""
		switch {
		case strings.HasPrefix(s, ":"):
			name = s[1:]
		case strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}"):
			name = s[1 : len(s)-1]
		default:
			p.segs = append(p.segs, segment{literal: s})
			continue
		}

		if name == "" {
			return pattern{}, fmt.Errorf("pattern %q has an unnamed parameter", raw)
		}
		if seen[name] {
			return pattern{}, fmt.Errorf("pattern %q repeats parameter %q", raw, name)
		}
		seen[name] = true
		p.segs = append(p.segs, segment{param: name})
	}

	return p, nil
}

// key identifies the pattern independent of parameter names.
func (p pattern) key() string {
	var b strings.Builder
	for _, s := range p.segs {
		b.WriteByte('/')
		if s.param != "" {
			b.WriteByte(':')
			continue
		}
		b.WriteString(s.literal)
	}
	if b.Len() == 0 {
		return "/"
	}
	return b.String()
}

func (p pattern) match(path string) (map[string]string, bool) {
	parts := splitPath(path)
	if len(parts) != len(p.segs) {
		return nil, false
	}

	var params map[string]string
	for i, s := range p.segs {
		part := parts[i]
		if s.param == "" {
			if part != s.literal {
				return nil, false
			}
			continue
		}

		if part == "" {
			return nil, false
		}
		if v, err := url.PathUnescape(part); err == nil {
			part = v
		}
		if params == nil {
			params = make(map[string]string, len(p.segs))
		}
		params[s.param] = part
	}

	return params, true
}

// splitPath drops the leading and trailing slash and splits on the rest.
func splitPath(path string) []string {
	path = strings.TrimPrefix(path, "/")
	path = strings.TrimSuffix(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

// BracePath rewrites :name parameters of a route pattern as {name}.
func BracePath(raw string) string {
	parts := strings.Split(raw, "/")
	for i, s := range parts {
		if strings.HasPrefix(s, ":") && len(s) > 1 {
			parts[i] = "{" + s[1:] + "}"
		}
	}
	return strings.Join(parts, "/")
}
