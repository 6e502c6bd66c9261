package ember

import "fmt"

// RouteRegistry stores the exact and parameterized routes for every HTTP
// method and matches incoming requests against them (§3, §4.4).
//
// A RouteRegistry is populated during setup and is read-only once serving
// begins; it is not safe for concurrent registration and lookup.
type RouteRegistry struct {
	exact map[string]map[string]*Route   // method -> normalized path -> route
	param map[string][]*Route            // method -> ordered parameterized routes
	keys  map[string]map[string]*Route   // method -> structural key -> route (conflict detection)
}

// newRouteRegistry returns an empty RouteRegistry.
func newRouteRegistry() *RouteRegistry {
	return &RouteRegistry{
		exact: map[string]map[string]*Route{},
		param: map[string][]*Route{},
		keys:  map[string]map[string]*Route{},
	}
}

// Register adds route to the registry, enforcing the invariants of §3 and
// §4.4: no two routes under the same method share an exact path, no two
// parameterized routes under the same method share a structural key, and
// parameter names within a single pattern are unique.
//
// A GET registration also registers the same handler and hooks under HEAD
// for the same pattern, unless HEAD has already been registered explicitly
// for that pattern (§4.4, and the Open Question decision in DESIGN.md).
func (rr *RouteRegistry) Register(route *Route) error {
	pattern := normalizePath(route.Pattern)
	route.Pattern = pattern

	if err := rr.register(route); err != nil {
		return err
	}

	if route.Method == MethodGET {
		if _, exists := rr.lookupExactOrKey(MethodHEAD, pattern); !exists {
			headRoute := &Route{
				Method:   MethodHEAD,
				Pattern:  pattern,
				Handler:  route.Handler,
				Before:   route.Before,
				After:    route.After,
				RawBody:  route.RawBody,
				compiled: route.compiled,
			}
			// The HEAD mirror cannot conflict here, since absence was
			// just confirmed; register's error is still returned
			// defensively rather than ignored.
			if err := rr.register(headRoute); err != nil {
				return err
			}
		}
	}

	return nil
}

// lookupExactOrKey reports whether method+pattern is already registered,
// either as an exact route or as a parameterized route sharing pattern's
// structural key.
func (rr *RouteRegistry) lookupExactOrKey(method, pattern string) (*Route, bool) {
	if m, ok := rr.exact[method]; ok {
		if r, ok := m[pattern]; ok {
			return r, true
		}
	}
	if isParameterized(pattern) {
		key := structuralKeyOf(pattern)
		if m, ok := rr.keys[method]; ok {
			if r, ok := m[key]; ok {
				return r, true
			}
		}
	}
	return nil, false
}

func (rr *RouteRegistry) register(route *Route) error {
	pattern := route.Pattern
	method := route.Method

	if isParameterized(pattern) {
		cp, err := compilePattern(pattern)
		if err != nil {
			return err
		}
		route.compiled = cp

		if rr.keys[method] == nil {
			rr.keys[method] = map[string]*Route{}
		}
		if existing, ok := rr.keys[method][cp.structuralKey]; ok {
			return fmt.Errorf(
				"ember: Route %s already exists for method %s (conflicts with %s)",
				pattern, method, existing.Pattern,
			)
		}

		rr.keys[method][cp.structuralKey] = route
		rr.param[method] = append(rr.param[method], route)

		return nil
	}

	if rr.exact[method] == nil {
		rr.exact[method] = map[string]*Route{}
	}
	if _, ok := rr.exact[method][pattern]; ok {
		return fmt.Errorf(
			"ember: Route %s already exists for method %s", pattern, method,
		)
	}

	rr.exact[method][pattern] = route

	return nil
}

// Match looks up the route matching method and requestPath, normalizing
// requestPath first. It returns the matched route and the extracted
// parameter values (empty for an exact route), or ok=false if nothing
// matches (§4.4 "Lookup").
func (rr *RouteRegistry) Match(method, requestPath string) (route *Route, params map[string]string, ok bool) {
	path := normalizePath(requestPath)

	if m, exists := rr.exact[method]; exists {
		if r, exists := m[path]; exists {
			return r, map[string]string{}, true
		}
	}

	for _, r := range rr.param[method] {
		if params, matched := r.compiled.match(path); matched {
			return r, params, true
		}
	}

	return nil, nil, false
}
