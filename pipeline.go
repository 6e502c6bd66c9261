package ember

import (
	"strconv"
	"time"
)

// dateHeaderLayout renders the Date header per RFC 7231 / §4.6 step 9:
// "ddd, DD MMM YYYY HH:mm:ss GMT".
const dateHeaderLayout = "Mon, 02 Jan 2006 15:04:05 GMT"

// pipeline drives one request through the CORS gate, route match, hook
// ordering, handler, and finalize steps of §4.6, against a server's
// read-mostly registry, hook store, CORS config, and logger.
type pipeline struct {
	registry *RouteRegistry
	hooks    *HookStore
	cors     CORSConfig
	logger   *Logger
}

// run executes the full §4.6 sequence for one parsed request, returning
// the finalized wire bytes.
//
// A CORS-gate error (the wildcard+credentials misconfiguration) is a
// fatal configuration error, not a step-(2)-(7) request failure: §4.6
// scopes the catch-and-onError policy to steps (2)-(7), and §7 requires
// this misconfiguration be raised distinctly so it is caught in testing
// rather than served as an indistinguishable 500. It panics instead of
// going through p.fail.
func (p *pipeline) run(ctx *Context) string {
	handled, err := corsGate(ctx, p.cors)
	if err != nil {
		panic(err)
	}
	if handled {
		return p.finalize(ctx)
	}

	route, params, ok := p.registry.Match(ctx.Request.Method, ctx.Request.Path)
	if !ok {
		body, err := p.hooks.onNotFound(ctx)
		if err != nil {
			p.fail(ctx, err)
			return p.finalize(ctx)
		}
		ctx.Response.SetBody(body)
		return p.finalize(ctx)
	}

	ctx.Request.Params = params
	ctx.route = route

	if err := p.runRoute(ctx, route); err != nil {
		p.fail(ctx, err)
		return p.finalize(ctx)
	}

	if ctx.Request.Method == MethodHEAD {
		ctx.Response.SetBody(nil)
	}

	return p.finalize(ctx)
}

// runRoute executes steps 3 through 7 of §4.6: global before hooks,
// route-level before hooks, the handler, route-level after hooks, and
// global after hooks, in that exact order.
func (p *pipeline) runRoute(ctx *Context, route *Route) error {
	for _, hook := range p.hooks.beforeAllFor(route.Pattern) {
		if err := hook(ctx); err != nil {
			return err
		}
	}

	for _, hook := range route.Before {
		if err := hook(ctx); err != nil {
			return err
		}
	}

	body, err := route.Handler(ctx)
	if err != nil {
		return err
	}
	if body != nil {
		ctx.Response.SetBody(body)
	}

	for _, hook := range route.After {
		if err := hook(ctx); err != nil {
			return err
		}
	}

	for _, hook := range p.hooks.afterAllFor(route.Pattern) {
		if err := hook(ctx); err != nil {
			return err
		}
	}

	return nil
}

// fail implements §4.6's error handling and §7's propagation policy for
// steps (2)-(7) (route match, hooks, handler): log the cause, invoke
// onError, assign its return value as the body, re-run the CORS
// header-setting step, and fall back to the hardcoded 500 body if
// onError itself fails. The CORS-gate error is not routed here; see run.
func (p *pipeline) fail(ctx *Context, cause error) {
	if p.logger != nil {
		reqID, _ := ctx.Get("requestID")
		p.logger.Errorf("request failed [%v] %s: %s", reqID, ctx.Request.Path, cause.Error())
	}

	body, err := p.hooks.onError(cause, ctx)
	if err != nil {
		ctx.Response.SetStatusCode(500)
		ctx.Response.SetBody(JSONMap{
			"success": false,
			"message": "Internal Server Error",
		})
		return
	}

	ctx.Response.SetBody(body)

	// Re-run the CORS header-setting step so error responses still
	// carry CORS headers, ignoring any "handled" short-circuit this
	// second pass would otherwise trigger.
	corsGate(ctx, p.cors)
}

// finalize implements §4.6 step 9: serialize status/headers/body,
// compute Content-Length, and set Date if not already set.
func (p *pipeline) finalize(ctx *Context) string {
	resp := ctx.Response

	if resp.Err() != nil {
		resp.header = map[string]string{}
		for name, value := range defaultSecurityHeaders {
			resp.header[name] = value
		}
		resp.StatusCode = 500
		resp.StatusText = "Internal Server Error"
		resp.body = JSONMap{"success": false, "message": "Internal Server Error"}
		resp.bodySet = true
		resp.err = nil
	}

	if _, has := resp.header["Date"]; !has {
		resp.header["Date"] = time.Now().UTC().Format(dateHeaderLayout)
	}

	serialized, err := resp.serialize()
	if err != nil {
		resp.header["Content-Type"] = "application/json"
		resp.StatusCode = 500
		resp.StatusText = "Internal Server Error"
		resp.body = JSONMap{"success": false, "message": "Internal Server Error"}
		serialized, _ = resp.serialize()
	}

	contentLength := bodyByteLength(serialized)
	resp.header["Content-Length"] = strconv.Itoa(contentLength)

	serialized, _ = resp.serialize()
	return serialized
}
