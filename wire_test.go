package ember

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseWireBasicRequest(t *testing.T) {
	raw := "GET /users/123/posts/456 HTTP/1.1\r\nHost: h\r\n\r\n"
	parsed := parseWire(raw)

	assert.Equal(t, MethodGET, parsed.Method)
	assert.Equal(t, "/users/123/posts/456", parsed.Path)
	assert.Equal(t, "HTTP/1.1", parsed.Protocol)
	assert.Contains(t, parsed.HeaderBlock, "Host: h")
	assert.Empty(t, parsed.Body)
}

func TestParseWireWithBody(t *testing.T) {
	raw := "POST /x HTTP/1.1\r\nContent-Type: application/json\r\n\r\n{\"a\":1}"
	parsed := parseWire(raw)

	assert.Equal(t, MethodPOST, parsed.Method)
	assert.Equal(t, "{\"a\":1}", parsed.Body)
}

func TestParseWireEmptyInputDefaults(t *testing.T) {
	parsed := parseWire("")
	assert.Equal(t, MethodGET, parsed.Method)
	assert.Equal(t, "/", parsed.Path)
	assert.Equal(t, "HTTP/1.1", parsed.Protocol)
}

func TestParseWireMalformedRequestLineDefaults(t *testing.T) {
	parsed := parseWire("not a request line\r\n\r\n")
	assert.Equal(t, MethodGET, parsed.Method)
	assert.Equal(t, "/", parsed.Path)
}

func TestParseWireUnrecognizedMethodDefaults(t *testing.T) {
	parsed := parseWire("FROB /x HTTP/1.1\r\n\r\n")
	assert.Equal(t, MethodGET, parsed.Method)
	assert.Equal(t, "/", parsed.Path)
}

func TestParseWireToleratesLFOnly(t *testing.T) {
	raw := "GET /x HTTP/1.1\nHost: h\n\nbody"
	parsed := parseWire(raw)
	assert.Equal(t, "/x", parsed.Path)
	assert.Equal(t, "body", parsed.Body)
}
