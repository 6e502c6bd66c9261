package ember

// Handler serves a single matched request. A non-nil returned value becomes
// the response body (§4.6 step 8), replacing any body already written
// directly via the Response on ctx. Handler may return (nil, nil) to mean
// "no value returned", mirroring the undefined-vs-value distinction §9
// describes for the source framework's dynamically-typed handlers.
type Handler func(ctx *Context) (interface{}, error)

// Hook runs before or after a Handler. It returns no body value (hooks
// act by mutating ctx); a non-nil error aborts the remaining pipeline
// steps and is routed to the error handler (§4.6).
type Hook func(ctx *Context) error

// ErrorHandler produces the response body for a request that failed
// anywhere in pipeline steps 2-7 (§4.6).
type ErrorHandler func(err error, ctx *Context) (interface{}, error)

// NotFoundHandler produces the response body when no route matches.
type NotFoundHandler func(ctx *Context) (interface{}, error)

// HookFilter decides whether a global hook applies to a given route
// pattern (§4.5): included if routesToInclude is empty or contains the
// pattern, AND the pattern is not in routesToExclude.
type HookFilter struct {
	RoutesToInclude []string
	RoutesToExclude []string
}

// appliesTo reports whether the filter f lets a global hook run for
// pattern.
func (f HookFilter) appliesTo(pattern string) bool {
	included := len(f.RoutesToInclude) == 0
	for _, p := range f.RoutesToInclude {
		if p == pattern {
			included = true
			break
		}
	}

	if !included {
		return false
	}

	for _, p := range f.RoutesToExclude {
		if p == pattern {
			return false
		}
	}

	return true
}

// hookEntry pairs a global hook with its filter.
type hookEntry struct {
	hook   Hook
	filter HookFilter
}

// HookStore holds the global before/after hook chains plus the single
// onError and onNotFound handlers (§3, §4.5). Zero value is not usable;
// construct with newHookStore.
type HookStore struct {
	beforeAll []hookEntry
	afterAll  []hookEntry

	onError    ErrorHandler
	onNotFound NotFoundHandler
}

// newHookStore returns a HookStore with the default onError/onNotFound
// handlers from §7.
func newHookStore() *HookStore {
	return &HookStore{
		onError:    defaultErrorHandler,
		onNotFound: defaultNotFoundHandler,
	}
}

// BeforeAll registers a global before-hook with the given filter, in
// insertion order.
func (hs *HookStore) BeforeAll(h Hook, filter HookFilter) {
	hs.beforeAll = append(hs.beforeAll, hookEntry{hook: h, filter: filter})
}

// AfterAll registers a global after-hook with the given filter, in
// insertion order.
func (hs *HookStore) AfterAll(h Hook, filter HookFilter) {
	hs.afterAll = append(hs.afterAll, hookEntry{hook: h, filter: filter})
}

// OnError overrides the error handler.
func (hs *HookStore) OnError(h ErrorHandler) {
	hs.onError = h
}

// OnNotFound overrides the not-found handler.
func (hs *HookStore) OnNotFound(h NotFoundHandler) {
	hs.onNotFound = h
}

// beforeAllFor returns the global before-hooks that apply to pattern, in
// registration order.
func (hs *HookStore) beforeAllFor(pattern string) []Hook {
	return filterHooks(hs.beforeAll, pattern)
}

// afterAllFor returns the global after-hooks that apply to pattern, in
// registration order.
func (hs *HookStore) afterAllFor(pattern string) []Hook {
	return filterHooks(hs.afterAll, pattern)
}

func filterHooks(entries []hookEntry, pattern string) []Hook {
	var out []Hook
	for _, e := range entries {
		if e.filter.appliesTo(pattern) {
			out = append(out, e.hook)
		}
	}
	return out
}

// defaultErrorHandler is the default onError handler (§6, §7): status 500,
// body {"success": false, "message": "Internal Server Error"}.
func defaultErrorHandler(err error, ctx *Context) (interface{}, error) {
	ctx.Response.SetStatusCode(500)
	return JSONMap{"success": false, "message": "Internal Server Error"}, nil
}

// defaultNotFoundHandler is the default onNotFound handler (§6): status
// 404, body {"success": false, "message": "404 Not Found"}.
func defaultNotFoundHandler(ctx *Context) (interface{}, error) {
	ctx.Response.SetStatusCode(404)
	return JSONMap{"success": false, "message": "404 Not Found"}, nil
}

// JSONMap is a convenience alias for a JSON object value used throughout
// default bodies and handler return values.
type JSONMap = map[string]interface{}
