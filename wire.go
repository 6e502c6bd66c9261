package ember

import "strings"

// rawRequest is the result of splitting the raw bytes of one HTTP/1.1
// request message into its three framing parts (§4.1).
type rawRequest struct {
	Method      string
	Path        string
	Protocol    string
	HeaderBlock string
	Body        string
}

// parseWire splits raw request bytes into the request line, header block,
// and raw body per §4.1. It never fails: a malformed request line
// degrades to the safe defaults (method=GET, path=/, protocol=HTTP/1.1)
// rather than rejecting the connection outright, so that framing failures
// surface later via the handler pipeline instead of at the socket layer.
func parseWire(raw string) rawRequest {
	if raw == "" {
		return rawRequest{Method: MethodGET, Path: "/", Protocol: "HTTP/1.1"}
	}

	requestLine, rest := splitFirstCRLF(raw)

	headerBlock, body := splitHeaderBlock(rest)

	method, path, protocol := parseRequestLine(requestLine)

	return rawRequest{
		Method:      method,
		Path:        path,
		Protocol:    protocol,
		HeaderBlock: headerBlock,
		Body:        body,
	}
}

// splitFirstCRLF splits s at the first CRLF, returning the text before it
// and the remainder after it. A bare LF is also accepted as the fallback
// delimiter so the parser tolerates clients that only send LF, per §6's
// note that the server is "tolerant of CRLF on input" without mandating
// it strictly.
func splitFirstCRLF(s string) (before, after string) {
	if i := strings.Index(s, "\r\n"); i >= 0 {
		return s[:i], s[i+2:]
	}
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i], s[i+1:]
	}
	return s, ""
}

// splitHeaderBlock splits the remainder of a request (everything after the
// request line) at the first blank line into the header block and the raw
// body. The raw body may be empty. Accepts "\r\n\r\n", "\n\n", and the
// mixed "\r\n\n" as the separator.
func splitHeaderBlock(rest string) (headerBlock, body string) {
	for _, sep := range []string{"\r\n\r\n", "\n\n"} {
		if i := strings.Index(rest, sep); i >= 0 {
			return rest[:i], rest[i+len(sep):]
		}
	}
	return rest, ""
}

// parseRequestLine splits a request line on single spaces into at most
// three tokens (method, request-target, protocol). If any token is
// missing or the method is unrecognized, it falls back to the defaults
// (§4.1).
func parseRequestLine(line string) (method, path, protocol string) {
	line = strings.TrimRight(line, "\r")
	parts := strings.SplitN(line, " ", 3)

	if len(parts) != 3 {
		return MethodGET, "/", "HTTP/1.1"
	}

	m := strings.ToUpper(parts[0])
	if !recognizedMethods[m] {
		return MethodGET, "/", "HTTP/1.1"
	}

	target := parts[1]
	if target == "" {
		target = "/"
	}

	proto := parts[2]
	if proto == "" {
		proto = "HTTP/1.1"
	}

	return m, target, proto
}
