package ember

import (
	"fmt"
	"strings"
)

// paramSentinel is substituted for every ":name" segment of a pattern when
// computing its structural key for conflict detection (see §4.4's
// "Structural key").
const paramSentinel = "\x00"

// Route is a single registered endpoint: a method, a normalized path
// pattern, a handler, and the before/after hooks merged in at registration
// time from the route's group (if any) and the route itself.
//
// A Route is immutable once registered; the registry never mutates one in
// place.
type Route struct {
	Method  string
	Pattern string
	Handler Handler

	// Before and After are already merged: group hooks followed by the
	// route's own hooks for Before, and the route's own hooks followed by
	// group hooks for After (see §8's hook ordering law).
	Before []Hook
	After  []Hook

	// RawBody, when set, tells the pipeline driver to skip body decoding
	// for this route and hand the raw body bytes straight through.
	RawBody bool

	// compiled is nil for an exact (non-parameterized) route.
	compiled *compiledPattern
}

// RouteOption configures a Route's optional fields at registration time.
// This is the only way the fluent Server/Group registration methods can
// reach Route.After and Route.RawBody, since Go allows at most one
// variadic parameter per signature and Before/After/RawBody all need a
// place alongside the handler.
type RouteOption func(*Route)

// Before appends hooks to run after any group before-hooks and ahead of
// the handler (§4.6 step 4, §8's hook ordering law).
func Before(hooks ...Hook) RouteOption {
	return func(r *Route) {
		r.Before = append(r.Before, hooks...)
	}
}

// After appends hooks to run once the handler has returned, ahead of any
// group after-hooks (§4.6 step 6, §8's hook ordering law).
func After(hooks ...Hook) RouteOption {
	return func(r *Route) {
		r.After = append(r.After, hooks...)
	}
}

// RawBody marks the route to receive the request body undecoded, skipping
// the content-type-dispatched body decoder (§4.3, §9).
func RawBody() RouteOption {
	return func(r *Route) {
		r.RawBody = true
	}
}

// compiledPattern is the registration-time compiled form of a parameterized
// route pattern (§3's "Compiled route pattern").
type compiledPattern struct {
	paramNames   []string
	segments     []patternSegment
	structuralKey string
}

type patternSegment struct {
	isParam bool
	literal string // only meaningful when !isParam
}

// normalizePath implements §4.4's "Path normalization": prefix with "/" if
// missing, collapse runs of "/" to a single "/", and strip a trailing "/"
// unless the path is the root.
func normalizePath(path string) string {
	if path == "" {
		return "/"
	}

	if path[0] != '/' {
		path = "/" + path
	}

	var b strings.Builder
	b.Grow(len(path))

	prevSlash := false
	for i := 0; i < len(path); i++ {
		c := path[i]
		if c == '/' {
			if prevSlash {
				continue
			}
			prevSlash = true
		} else {
			prevSlash = false
		}
		b.WriteByte(c)
	}

	out := b.String()
	if len(out) > 1 && out[len(out)-1] == '/' {
		out = out[:len(out)-1]
	}

	if out == "" {
		return "/"
	}

	return out
}

// splitSegments splits a normalized path into its non-empty "/"-delimited
// segments. The root path "/" yields no segments.
func splitSegments(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

// compilePattern validates and compiles a registered pattern, returning the
// ordered parameter names, the per-segment matcher plan, and the structural
// key used for conflict detection. It returns an error if two segments in
// the same pattern bind the same parameter name (§4.4).
func compilePattern(pattern string) (*compiledPattern, error) {
	segs := splitSegments(pattern)

	cp := &compiledPattern{
		segments: make([]patternSegment, len(segs)),
	}

	seen := map[string]bool{}
	var dupes []string
	structural := make([]string, len(segs))

	for i, s := range segs {
		if strings.HasPrefix(s, ":") {
			name := s[1:]
			if seen[name] {
				dupes = append(dupes, name)
			}
			seen[name] = true
			cp.paramNames = append(cp.paramNames, name)
			cp.segments[i] = patternSegment{isParam: true}
			structural[i] = paramSentinel
		} else {
			cp.segments[i] = patternSegment{literal: s}
			structural[i] = s
		}
	}

	if len(dupes) > 0 {
		return nil, fmt.Errorf(
			"ember: duplicate parameter names in pattern %q: %s",
			pattern, strings.Join(dupes, ", "),
		)
	}

	cp.structuralKey = "/" + strings.Join(structural, "/")

	return cp, nil
}

// isParameterized reports whether pattern contains at least one ":name"
// segment.
func isParameterized(pattern string) bool {
	for _, s := range splitSegments(pattern) {
		if strings.HasPrefix(s, ":") {
			return true
		}
	}
	return false
}

// structuralKeyOf computes the structural key of pattern without fully
// compiling it; used by the registry to detect conflicts against patterns
// it is about to compile anyway, and by tests.
func structuralKeyOf(pattern string) string {
	segs := splitSegments(pattern)
	parts := make([]string, len(segs))
	for i, s := range segs {
		if strings.HasPrefix(s, ":") {
			parts[i] = paramSentinel
		} else {
			parts[i] = s
		}
	}
	return "/" + strings.Join(parts, "/")
}

// match attempts to match a normalized request path against the compiled
// pattern, returning the captured parameter values in paramNames order on
// success. An empty segment never matches a parameter segment (so
// "/users//posts" does not match "/users/:id/posts").
func (cp *compiledPattern) match(path string) (map[string]string, bool) {
	segs := splitSegments(path)
	if len(segs) != len(cp.segments) {
		return nil, false
	}

	params := make(map[string]string, len(cp.paramNames))
	pi := 0
	for i, seg := range cp.segments {
		if seg.isParam {
			if segs[i] == "" {
				return nil, false
			}
			params[cp.paramNames[pi]] = segs[i]
			pi++
		} else if segs[i] != seg.literal {
			return nil, false
		}
	}

	return params, true
}
