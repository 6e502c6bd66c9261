package ember

import "strings"

// Request is the read-only view of an incoming HTTP request handed to
// hooks and handlers (§4.2). It is assembled by the pipeline driver from
// the wire parser, header parser, and body decoder before the registry
// lookup runs.
type Request struct {
	Method      string
	Path        string
	Protocol    string
	headers     map[string]string
	Query       map[string]string
	Params      map[string]string
	RawBody     string
	Body        interface{}
	Multipart   *MultipartForm
	RemoteAddr  string
	ContentType string
	Boundary    string
}

// Header returns the named header's value, matched case-insensitively,
// or "" if absent.
func (r *Request) Header(name string) string {
	if r.headers == nil {
		return ""
	}
	return r.headers[strings.ToLower(name)]
}

// Headers returns the request's headers, keyed by lower-cased name.
func (r *Request) Headers() map[string]string {
	return r.headers
}

// QueryParam returns the named query-string value, or "" if absent.
func (r *Request) QueryParam(name string) string {
	return r.Query[name]
}

// Param returns the named route parameter's value, or "" if absent.
func (r *Request) Param(name string) string {
	return r.Params[name]
}

// ClientIP resolves the request's originating client address per §4.8,
// honoring proxyHops against the X-Forwarded-For header, falling back
// to RemoteAddr when that resolution yields "" (no header, or the hop
// position is out of range). With proxyHops zero and the header present,
// the raw header value is returned.
func (r *Request) ClientIP(proxyHops int) string {
	xff := r.Header("X-Forwarded-For")
	if ip := resolveClientIP(xff, proxyHops); ip != "" {
		return ip
	}
	return r.RemoteAddr
}

// resolveClientIP implements §4.8 exactly: with proxyHops <= 0, return
// the raw header (or "" if absent); otherwise split on ',', trim each
// element, and return the one at zero-based index length-proxyHops (the
// proxyHops-th element counting from the right), or "" if out of range.
func resolveClientIP(xForwardedFor string, proxyHops int) string {
	if proxyHops <= 0 {
		return xForwardedFor
	}

	if xForwardedFor == "" {
		return ""
	}

	parts := strings.Split(xForwardedFor, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}

	idx := len(parts) - proxyHops
	if idx < 0 || idx >= len(parts) {
		return ""
	}

	return parts[idx]
}

// parseQuery parses a URL query string into a flat map, decoding keys
// and values with the same fallback-on-malformed-escape rule as form
// decoding (§4.3).
func parseQuery(rawQuery string) map[string]string {
	out := map[string]string{}
	if rawQuery == "" {
		return out
	}

	for _, pair := range strings.Split(rawQuery, "&") {
		if pair == "" {
			continue
		}

		var key, value string
		if i := strings.IndexByte(pair, '='); i >= 0 {
			key, value = pair[:i], pair[i+1:]
		} else {
			key = pair
		}

		out[formDecode(key)] = formDecode(value)
	}

	return out
}

// splitPathAndQuery splits a request-line path into its path and raw
// query-string components on the first '?'.
func splitPathAndQuery(requestPath string) (path, rawQuery string) {
	if i := strings.IndexByte(requestPath, '?'); i >= 0 {
		return requestPath[:i], requestPath[i+1:]
	}
	return requestPath, ""
}

// parseContentType splits a Content-Type header value into its main
// type and a "boundary" parameter, if any (§4.3's multipart dispatch).
func parseContentType(header string) (mainType, boundary string) {
	parts := strings.Split(header, ";")
	mainType = strings.TrimSpace(parts[0])

	for _, p := range parts[1:] {
		p = strings.TrimSpace(p)
		if strings.HasPrefix(p, "boundary=") {
			boundary = strings.Trim(strings.TrimPrefix(p, "boundary="), "\"")
		}
	}

	return mainType, boundary
}
