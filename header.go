package ember

import (
	"fmt"
	"strings"

	"golang.org/x/net/http/httpguts"
)

// Header parser limits (§4.2, DoS protection).
const (
	maxHeaderLines      = 100
	maxHeaderNameBytes  = 200
	maxHeaderValueBytes = 8192
)

// LimitError reports that a configured or hard-coded DoS-prevention bound
// was exceeded while parsing a request (§7). Bound and Value are included
// so onError implementations can render a useful, specific message.
type LimitError struct {
	// What names the limit that was violated, e.g. "header line count".
	What string
	// Bound is the configured or hard-coded limit.
	Bound int
	// Value is the measured value that violated Bound, when applicable.
	Value int
}

func (e *LimitError) Error() string {
	if e.Value != 0 {
		return fmt.Sprintf(
			"ember: %s exceeds limit of %d (got %d)", e.What, e.Bound, e.Value,
		)
	}
	return fmt.Sprintf("ember: %s exceeds limit of %d", e.What, e.Bound)
}

// parseHeaders runs the four stages described in §4.2 — pre-parse
// validation, structural parsing, per-value sanitization, and security
// policy (the byte limits) — over a raw header block, returning a
// lowercased-name -> value mapping. Last value wins on duplicate names.
func parseHeaders(block string) (map[string]string, error) {
	block = normalizeLineEndings(block)

	lines := splitNonEmptyLines(block)

	if len(lines) > maxHeaderLines {
		return nil, &LimitError{What: "header line count", Bound: maxHeaderLines, Value: len(lines)}
	}

	headers := make(map[string]string, len(lines))

	for _, line := range lines {
		name, value, ok := splitHeaderLine(line)
		if !ok {
			// Malformed line: skip it per §4.2 rather than failing the
			// whole request.
			continue
		}

		if len(name) > maxHeaderNameBytes {
			return nil, &LimitError{What: "header name length", Bound: maxHeaderNameBytes, Value: len(name)}
		}
		if len(value) > maxHeaderValueBytes {
			return nil, &LimitError{What: "header value length", Bound: maxHeaderValueBytes, Value: len(value)}
		}

		if !httpguts.ValidHeaderFieldName(name) || !isToken(name) {
			return nil, fmt.Errorf("ember: invalid header name: %q", name)
		}

		value = sanitizeHeaderValue(value)

		headers[strings.ToLower(name)] = value
	}

	return headers, nil
}

// normalizeLineEndings normalizes CR, LF, and CRLF line endings to a
// single LF, per §4.2.
func normalizeLineEndings(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return s
}

// splitNonEmptyLines splits s on LF and drops empty lines.
func splitNonEmptyLines(s string) []string {
	raw := strings.Split(s, "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		if l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

// splitHeaderLine splits one header line at the first ':', trims
// surrounding whitespace from both parts, and reports whether the name is
// non-empty.
func splitHeaderLine(line string) (name, value string, ok bool) {
	i := strings.IndexByte(line, ':')
	if i < 0 {
		return "", "", false
	}

	name = strings.TrimSpace(line[:i])
	value = strings.TrimSpace(line[i+1:])

	if name == "" {
		return "", "", false
	}

	return name, value, true
}

// isToken reports whether s matches the RFC 7230 `token` production: one
// or more of "A-Z a-z 0-9 ! # $ % & ' * + - . ^ _ ` | ~". httpguts already
// enforces this (and more strictly rejects some control bytes); isToken is
// kept as the spec-literal character class so the exact rule is visible
// and independently testable.
func isToken(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isTokenByte(s[i]) {
			return false
		}
	}
	return true
}

func isTokenByte(b byte) bool {
	switch {
	case b >= 'A' && b <= 'Z', b >= 'a' && b <= 'z', b >= '0' && b <= '9':
		return true
	}
	switch b {
	case '!', '#', '$', '%', '&', '\'', '*', '+', '-', '.', '^', '_', '`', '|', '~':
		return true
	}
	return false
}

// sanitizeHeaderValue strips control characters 0x00-0x08, 0x0A-0x1F, and
// 0x7F from value, preserving the horizontal tab (0x09), per §4.2.
func sanitizeHeaderValue(value string) string {
	var b strings.Builder
	b.Grow(len(value))
	for i := 0; i < len(value); i++ {
		c := value[i]
		if c == 0x09 {
			b.WriteByte(c)
			continue
		}
		if c <= 0x08 || (c >= 0x0A && c <= 0x1F) || c == 0x7F {
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}
