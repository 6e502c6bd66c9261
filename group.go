package ember

// Group is a path-prefixed set of routes that share before/after hooks
// (§4.6 step 4: "the group before-hooks followed by the route's own
// before-hooks, already merged at registration time"). A Group's hooks
// are merged into each route's Before/After slices at registration
// time, not re-evaluated per request.
type Group struct {
	prefix string
	before []Hook
	after  []Hook
	server *Server
}

// Use appends before-hooks to the group, applied to every route
// registered through it (or a sub-group of it) from this point on.
func (g *Group) Use(hooks ...Hook) *Group {
	g.before = append(g.before, hooks...)
	return g
}

// UseAfter appends after-hooks to the group.
func (g *Group) UseAfter(hooks ...Hook) *Group {
	g.after = append(g.after, hooks...)
	return g
}

// Group creates a nested sub-group, inheriting this group's prefix and
// hooks.
func (g *Group) Group(prefix string) *Group {
	before := append([]Hook{}, g.before...)
	after := append([]Hook{}, g.after...)
	return &Group{prefix: g.prefix + prefix, before: before, after: after, server: g.server}
}

// add builds a route from opts (Before, After, RawBody), then merges
// this group's hooks around it: group before-hooks ahead of the route's
// own, and the route's own after-hooks ahead of the group's (§4.6 step
// 4, §8's hook ordering law).
func (g *Group) add(method, path string, handler Handler, opts ...RouteOption) error {
	route := &Route{Method: method, Pattern: g.prefix + path, Handler: handler}
	for _, opt := range opts {
		opt(route)
	}
	route.Before = append(append([]Hook{}, g.before...), route.Before...)
	route.After = append(append([]Hook{}, route.After...), g.after...)
	return g.server.registerRoute(route)
}

// GET registers a GET route under the group's prefix. opts may include
// Before, After, and RawBody to reach Route's optional fields.
func (g *Group) GET(path string, handler Handler, opts ...RouteOption) error {
	return g.add(MethodGET, path, handler, opts...)
}

// POST registers a POST route under the group's prefix.
func (g *Group) POST(path string, handler Handler, opts ...RouteOption) error {
	return g.add(MethodPOST, path, handler, opts...)
}

// PUT registers a PUT route under the group's prefix.
func (g *Group) PUT(path string, handler Handler, opts ...RouteOption) error {
	return g.add(MethodPUT, path, handler, opts...)
}

// PATCH registers a PATCH route under the group's prefix.
func (g *Group) PATCH(path string, handler Handler, opts ...RouteOption) error {
	return g.add(MethodPATCH, path, handler, opts...)
}

// DELETE registers a DELETE route under the group's prefix.
func (g *Group) DELETE(path string, handler Handler, opts ...RouteOption) error {
	return g.add(MethodDELETE, path, handler, opts...)
}

// OPTIONS registers an OPTIONS route under the group's prefix.
func (g *Group) OPTIONS(path string, handler Handler, opts ...RouteOption) error {
	return g.add(MethodOPTIONS, path, handler, opts...)
}

// HEAD registers an explicit HEAD route under the group's prefix.
func (g *Group) HEAD(path string, handler Handler, opts ...RouteOption) error {
	return g.add(MethodHEAD, path, handler, opts...)
}
