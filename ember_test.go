package ember

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEndToEndParameterExtraction(t *testing.T) {
	s := newTestServer(t)
	err := s.GET("/users/:userId/posts/:postId", func(ctx *Context) (interface{}, error) {
		return ctx.JSON(JSONMap{"userId": ctx.Param("userId"), "postId": ctx.Param("postId")})
	})
	assert.NoError(t, err)

	raw := "GET /users/123/posts/456 HTTP/1.1\r\nHost: localhost\r\n\r\n"
	out := s.handleRaw(raw, "127.0.0.1:1234")

	assert.True(t, strings.HasPrefix(out, "HTTP/1.1 200 OK"))
	assert.Contains(t, out, `"postId":"456"`)
	assert.Contains(t, out, `"userId":"123"`)
}

func TestEndToEndHeadAutoDerivation(t *testing.T) {
	s := newTestServer(t)
	err := s.GET("/status", func(ctx *Context) (interface{}, error) {
		return ctx.JSON(JSONMap{"ok": true})
	})
	assert.NoError(t, err)

	raw := "HEAD /status HTTP/1.1\r\nHost: localhost\r\n\r\n"
	out := s.handleRaw(raw, "127.0.0.1:1234")

	assert.True(t, strings.HasPrefix(out, "HTTP/1.1 200 OK"))
	assert.Contains(t, out, "Content-Type: application/json")
	assert.True(t, strings.HasSuffix(out, "\n\n"))
}

func TestEndToEndRawBodySkipsDecoding(t *testing.T) {
	s := newTestServer(t)
	err := s.GET("/echo", func(ctx *Context) (interface{}, error) {
		return ctx.JSON(JSONMap{"body": ctx.Request.Body})
	}, RawBody())
	assert.NoError(t, err)

	raw := "GET /echo HTTP/1.1\r\nHost: localhost\r\nContent-Type: application/json\r\n\r\nnot-json"
	out := s.handleRaw(raw, "127.0.0.1:1234")

	assert.True(t, strings.HasPrefix(out, "HTTP/1.1 200 OK"))
	assert.Contains(t, out, `"body":"not-json"`)
}

func TestEndToEndNotFound(t *testing.T) {
	s := newTestServer(t)

	raw := "GET /nowhere HTTP/1.1\r\nHost: localhost\r\n\r\n"
	out := s.handleRaw(raw, "127.0.0.1:1234")

	assert.True(t, strings.HasPrefix(out, "HTTP/1.1 404 Not Found"))
	assert.Contains(t, out, `{"message":"404 Not Found","success":false}`)
}

func TestEndToEndErrorPath(t *testing.T) {
	s := newTestServer(t)
	err := s.GET("/explode", func(ctx *Context) (interface{}, error) {
		return nil, assert.AnError
	})
	assert.NoError(t, err)

	raw := "GET /explode HTTP/1.1\r\nHost: localhost\r\n\r\n"
	out := s.handleRaw(raw, "127.0.0.1:1234")

	assert.True(t, strings.HasPrefix(out, "HTTP/1.1 500 Internal Server Error"))
	assert.Contains(t, out, `{"message":"Internal Server Error","success":false}`)
}

func TestEndToEndCORSPreflightRejection(t *testing.T) {
	s := newTestServer(t)
	s.Config.CORS = corsFile{Enabled: true, OriginList: []string{"https://allowed.com"}}

	err := s.GET("/widgets", func(ctx *Context) (interface{}, error) { return ctx.JSON(JSONMap{}) })
	assert.NoError(t, err)

	raw := "OPTIONS /widgets HTTP/1.1\r\nHost: localhost\r\nOrigin: https://evil.com\r\n\r\n"
	out := s.handleRaw(raw, "127.0.0.1:1234")

	assert.True(t, strings.HasPrefix(out, "HTTP/1.1 403 Forbidden"))
	assert.Contains(t, out, `"error":"CORS: Origin not allowed"`)
	assert.Contains(t, out, `"origin":"https://evil.com"`)
	assert.NotContains(t, out, "Access-Control-Allow-Origin")
}

func TestEndToEndRouteConflict(t *testing.T) {
	s := newTestServer(t)
	assert.NoError(t, s.GET("/dup", func(ctx *Context) (interface{}, error) { return nil, nil }))

	err := s.GET("/dup", func(ctx *Context) (interface{}, error) { return nil, nil })
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "already exists for method GET")
}

func TestEndToEndJSONDoSRejection(t *testing.T) {
	s := newTestServer(t)
	s.Config.BodyParser.JSON.MaxStringLength = 4

	err := s.POST("/submit", func(ctx *Context) (interface{}, error) {
		return ctx.JSON(JSONMap{"body": ctx.Request.Body})
	})
	assert.NoError(t, err)

	body := `{"note":"this string is far too long"}`
	raw := "POST /submit HTTP/1.1\r\nHost: localhost\r\nContent-Type: application/json\r\nContent-Length: " +
		strconv.Itoa(len(body)) + "\r\n\r\n" + body

	out := s.handleRaw(raw, "127.0.0.1:1234")
	assert.True(t, strings.HasPrefix(out, "HTTP/1.1 500 Internal Server Error"))
	assert.Contains(t, out, `{"message":"Internal Server Error","success":false}`)
}
