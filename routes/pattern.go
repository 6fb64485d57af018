package routes

import (
	"fmt"
	"strings"
)

// Pattern is a compiled path template. Compilation happens once per table at
// startup; per-request classification only evaluates the compiled form.
//
// A pattern with no ':' or '*' is an exact-string match. Otherwise it is a
// segment template where each ":name" matches exactly one non-"/" path
// segment and "*" greedily matches any remainder, crossing "/" boundaries.
type Pattern struct {
	raw      string
	literal  bool
	segments []segment
}

type segment struct {
	literal  string
	param    string
	wildcard bool
}

// CompilePattern parses a path template into its matchable form.
func CompilePattern(raw string) (*Pattern, error) {
	normalized := NormalizePath(raw)

	if !strings.ContainsAny(normalized, ":*") {
		return &Pattern{raw: normalized, literal: true}, nil
	}

	parts := strings.Split(strings.TrimPrefix(normalized, "/"), "/")
	segments := make([]segment, 0, len(parts))
	for _, part := range parts {
		switch {
		case part == "*":
			segments = append(segments, segment{wildcard: true})
		case strings.HasPrefix(part, ":"):
			name := part[1:]
			if name == "" {
				return nil, fmt.Errorf("pattern %q: empty parameter name", raw)
			}
			segments = append(segments, segment{param: name})
		case strings.ContainsAny(part, ":*"):
			return nil, fmt.Errorf("pattern %q: ':' and '*' must form a whole segment", raw)
		default:
			segments = append(segments, segment{literal: part})
		}
	}

	return &Pattern{raw: normalized, segments: segments}, nil
}

func (p *Pattern) String() string {
	return p.raw
}

// Match tests the pattern against a normalized path and captures ":name"
// parameters. The params map is nil unless the pattern declares parameters.
func (p *Pattern) Match(path string) (map[string]string, bool) {
	if p.literal {
		if path == p.raw {
			return nil, true
		}
		return nil, false
	}

	var parts []string
	if path != "/" {
		parts = strings.Split(strings.TrimPrefix(path, "/"), "/")
	}

	var params map[string]string
	if !matchSegments(p.segments, parts, &params) {
		return nil, false
	}
	return params, true
}

// matchSegments walks pattern segments against path segments. Wildcards
// consume the longest remainder that still lets the rest of the pattern
// match, so a trailing "*" swallows everything and a mid-pattern "*" still
// honors the literal tail.
func matchSegments(segs []segment, parts []string, params *map[string]string) bool {
	if len(segs) == 0 {
		return len(parts) == 0
	}

	seg := segs[0]
	if seg.wildcard {
		for consumed := len(parts); consumed >= 0; consumed-- {
			if matchSegments(segs[1:], parts[consumed:], params) {
				return true
			}
		}
		return false
	}

	if len(parts) == 0 {
		return false
	}

	switch {
	case seg.param != "":
		if parts[0] == "" {
			return false
		}
		if !matchSegments(segs[1:], parts[1:], params) {
			return false
		}
		if *params == nil {
			*params = make(map[string]string)
		}
		(*params)[seg.param] = parts[0]
		return true
	default:
		if parts[0] != seg.literal {
			return false
		}
		return matchSegments(segs[1:], parts[1:], params)
	}
}

// NormalizePath ensures a leading "/" and strips a single trailing slash
// (except for the root path itself).
func NormalizePath(path string) string {
	if path == "" {
		return "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 && strings.HasSuffix(path, "/") {
		path = path[:len(path)-1]
	}
	return path
}
