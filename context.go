package ember

// Context bundles one request's Request and Response views and is
// threaded unchanged through every hook and the handler (§9 "Mutable
// Context via shared reference"). It must not be shared across
// connections; the pipeline driver owns exactly one Context per request.
type Context struct {
	Request  *Request
	Response *Response

	// Values holds request-scoped state hooks stash for later hooks or
	// the handler to read (e.g. an authenticated user, a trace id).
	Values map[string]interface{}

	route *Route
}

// newContext builds a Context for one request from its parsed Request
// and a fresh Response.
func newContext(req *Request) *Context {
	return &Context{
		Request:  req,
		Response: newResponse(req.Protocol),
		Values:   map[string]interface{}{},
	}
}

// Set stashes a request-scoped value under key.
func (c *Context) Set(key string, value interface{}) {
	c.Values[key] = value
}

// Get retrieves a request-scoped value previously stashed with Set.
func (c *Context) Get(key string) (interface{}, bool) {
	v, ok := c.Values[key]
	return v, ok
}

// Param is an alias for Request.Param.
func (c *Context) Param(name string) string {
	return c.Request.Param(name)
}

// QueryParam is an alias for Request.QueryParam.
func (c *Context) QueryParam(name string) string {
	return c.Request.QueryParam(name)
}

// JSON sets the response Content-Type to application/json and the body
// to v, returning (v, nil) so handlers can `return ctx.JSON(...)` in the
// teacher's single-expression handler style.
func (c *Context) JSON(v interface{}) (interface{}, error) {
	c.Response.AddHeaders(map[string]string{"Content-Type": "application/json"})
	return v, nil
}

// Status sets the response status code and returns the Context so
// handlers can chain `return ctx.Status(201).JSON(...)`.
func (c *Context) Status(code int) *Context {
	c.Response.SetStatusCode(code)
	return c
}
