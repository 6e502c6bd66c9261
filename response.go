package ember

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/net/http/httpguts"
)

// contentEncoding is the wire encoding chosen for a response body at
// serialization time (§4.9 "Encoding selection").
type contentEncoding int

const (
	encodingUTF8 contentEncoding = iota
	encodingBase64
	encodingBinary
)

// defaultSecurityHeaders are applied to every response unless already
// set (§3, §6).
var defaultSecurityHeaders = map[string]string{
	"X-Content-Type-Options": "nosniff",
	"X-Frame-Options":        "DENY",
	"X-XSS-Protection":       "1; mode=block",
	"Referrer-Policy":        "strict-origin-when-cross-origin",
}

// Response is the mutable response-under-construction passed to hooks
// and handlers (§4.9). It accumulates status, headers, and body, and is
// serialized to wire bytes by the pipeline driver's finalize step.
type Response struct {
	Protocol   string
	StatusCode int
	StatusText string
	header     map[string]string
	body       interface{}
	bodySet    bool
	rawBytes   []byte
	isBytes    bool
	serialized string
	err        error
}

// newResponse returns a Response pre-populated with the default status,
// security headers, and protocol.
func newResponse(protocol string) *Response {
	r := &Response{
		Protocol:   protocol,
		StatusCode: 200,
		StatusText: "OK",
		header:     map[string]string{},
	}
	for name, value := range defaultSecurityHeaders {
		r.header[name] = value
	}
	return r
}

// SetStatusCode updates both the numeric status and its textual message
// via the fixed status-code table (§4.9). An unrecognized code is a
// fatal error for the current request, recorded on the Response and
// surfaced by the pipeline driver's finalize step.
func (r *Response) SetStatusCode(code int) {
	text, ok := statusTextFor(code)
	if !ok {
		r.err = errUnknownStatusCode(code)
		return
	}
	r.StatusCode = code
	r.StatusText = text
}

// Err returns the first fatal error recorded against this Response, if
// any (an unknown status code or a CRLF-injection header violation).
func (r *Response) Err() error {
	return r.err
}

// AddHeaders merges name/value pairs into the response headers,
// overwriting any existing value, after validating each value against
// the CRLF-injection rule (§4.9, §7). A validation failure is recorded
// on the Response rather than returned, matching SetStatusCode.
func (r *Response) AddHeaders(headers map[string]string) {
	for name, value := range headers {
		if err := validateHeaderValue(value); err != nil {
			r.err = err
			return
		}
		r.header[name] = value
	}
}

// RemoveHeaders deletes the named headers if present.
func (r *Response) RemoveHeaders(names ...string) {
	for _, name := range names {
		delete(r.header, name)
	}
}

// SetHeadersIfNotSet adds name/value pairs only for names not already
// present in the response headers.
func (r *Response) SetHeadersIfNotSet(headers map[string]string) {
	for name, value := range headers {
		if _, exists := r.header[name]; exists {
			continue
		}
		if err := validateHeaderValue(value); err != nil {
			r.err = err
			return
		}
		r.header[name] = value
	}
}

// HeaderValue returns a previously set response header's value, or ""
// if absent.
func (r *Response) HeaderValue(name string) string {
	return r.header[name]
}

// Headers returns the response's current header set.
func (r *Response) Headers() map[string]string {
	return r.header
}

// crlfPatterns are the fatal patterns §7 names explicitly, beyond the
// bare presence of '\r' or '\n'.
var crlfPatterns = []string{
	"\r\nSet-Cookie",
	"\nLocation",
	"\r\n\r\n",
}

// validateHeaderValue implements the CRLF-injection guard (§4.9, §7): a
// first pass through httpguts' RFC 7230 field-value structural check,
// then any bare \r or \n, the named injection patterns, or a value
// starting with "HTTP/" as if it were a smuggled status line, is
// rejected.
func validateHeaderValue(value string) error {
	if !httpguts.ValidHeaderFieldValue(value) {
		return &securityError{message: "CRLF injection attempt in header value"}
	}
	if strings.ContainsAny(value, "\r\n") {
		return &securityError{message: "CRLF injection attempt in header value"}
	}
	for _, pattern := range crlfPatterns {
		if strings.Contains(value, pattern) {
			return &securityError{message: "CRLF injection attempt in header value"}
		}
	}
	if strings.HasPrefix(value, "HTTP/") {
		return &securityError{message: "CRLF injection attempt in header value"}
	}
	return nil
}

// SetBody stores v as the response body and, if no Content-Type is
// already set, infers one per §4.9.
func (r *Response) SetBody(v interface{}) {
	r.body = v
	r.bodySet = true
	r.isBytes = false

	if _, has := r.header["Content-Type"]; has {
		return
	}

	r.header["Content-Type"] = inferResponseContentType(v)
}

// SetBodyBytes stores raw bytes as the response body, inferring
// Content-Type from the binary-content sniffer when not already set
// (§4.9).
func (r *Response) SetBodyBytes(b []byte) {
	r.rawBytes = b
	r.isBytes = true
	r.bodySet = true

	if _, has := r.header["Content-Type"]; has {
		return
	}

	if isBinaryContent(b) {
		r.header["Content-Type"] = "application/octet-stream"
	} else {
		r.header["Content-Type"] = "text/plain"
	}
}

// Body returns the response body as currently set (nil if unset).
func (r *Response) Body() interface{} {
	return r.body
}

// inferResponseContentType implements §4.9's content-type inference
// table for setBody.
func inferResponseContentType(v interface{}) string {
	if v == nil {
		return "text/plain"
	}

	switch val := v.(type) {
	case string:
		trimmed := strings.TrimSpace(val)
		if looksLikeJSON(trimmed) && isValidJSON(trimmed) {
			return "application/json"
		}
		if strings.Contains(trimmed, "=") && strings.Contains(trimmed, "&") {
			return "application/x-www-form-urlencoded"
		}
		if strings.Contains(trimmed, "boundary=") {
			return "multipart/form-data"
		}
		return "text/plain"
	case []byte:
		if isBinaryContent(val) {
			return "application/octet-stream"
		}
		return "text/plain"
	case map[string]interface{}, []interface{}, JSONMap:
		return "application/json"
	case bool, int, int64, float64:
		return "text/plain"
	default:
		return "application/json"
	}
}

// base64ContentPrefixes and base64ExactContentTypes list the content
// types encoded base64 on the wire (§4.9's encoding-selection table).
var base64ContentPrefixes = []string{
	"image/", "video/", "audio/", "application/zip", "application/x-",
}

var base64ExactContentTypes = map[string]bool{
	"application/pdf":          true,
	"application/octet-stream": true,
}

var utf8ContentPrefixes = []string{"text/"}

var utf8ExactContentTypes = map[string]bool{
	"application/json":       true,
	"application/xml":        true,
	"application/javascript": true,
}

// chooseEncoding implements §4.9's encoding-selection table, falling
// back to body-shape inference when contentType is unknown.
func chooseEncoding(contentType string, isBytes bool, raw []byte) contentEncoding {
	for _, prefix := range base64ContentPrefixes {
		if strings.HasPrefix(contentType, prefix) {
			return encodingBase64
		}
	}
	if base64ExactContentTypes[contentType] {
		return encodingBase64
	}

	for _, prefix := range utf8ContentPrefixes {
		if strings.HasPrefix(contentType, prefix) {
			return encodingUTF8
		}
	}
	if utf8ExactContentTypes[contentType] {
		return encodingUTF8
	}

	if contentType == "" {
		if isBytes {
			if isBinaryContent(raw) {
				return encodingBase64
			}
			return encodingUTF8
		}
		return encodingUTF8
	}

	return encodingBinary
}

// serializeBody renders the response body to its wire-ready string form
// per the chosen encoding (§4.9 "Serialization").
func serializeBody(r *Response) (string, error) {
	contentType := r.header["Content-Type"]

	if r.isBytes {
		switch chooseEncoding(contentType, true, r.rawBytes) {
		case encodingBase64:
			return base64.StdEncoding.EncodeToString(r.rawBytes), nil
		default:
			return string(r.rawBytes), nil
		}
	}

	if !r.bodySet || r.body == nil {
		return "", nil
	}

	switch v := r.body.(type) {
	case string:
		return v, nil
	case []byte:
		switch chooseEncoding(contentType, true, v) {
		case encodingBase64:
			return base64.StdEncoding.EncodeToString(v), nil
		default:
			return string(v), nil
		}
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return "", err
		}
		return string(encoded), nil
	}
}

// serialize builds the complete wire response per §4.9: status line,
// header lines, blank line, body, each separated by LF. Header order is
// sorted by name for determinism; the spec does not assign a header
// order any meaning.
func (r *Response) serialize() (string, error) {
	bodyStr, err := serializeBody(r)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer

	protocol := r.Protocol
	if protocol == "" {
		protocol = "HTTP/1.1"
	}

	fmt.Fprintf(&buf, "%s %d %s\n", protocol, r.StatusCode, r.StatusText)

	names := make([]string, 0, len(r.header))
	for name := range r.header {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		fmt.Fprintf(&buf, "%s: %s\n", name, r.header[name])
	}

	buf.WriteString("\n")
	buf.WriteString(bodyStr)

	r.serialized = buf.String()
	return r.serialized, nil
}

// bodyByteLength returns the byte length of the serialized body portion
// (after the blank line), for Content-Length (§4.6 step 9, §4.9).
func bodyByteLength(serialized string) int {
	idx := strings.Index(serialized, "\n\n")
	if idx < 0 {
		return 0
	}
	return len(serialized) - (idx + 2)
}
