package ember

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	s, err := New(DefaultConfig())
	assert.NoError(t, err)
	return s
}

func TestGroupPrefixesRoutes(t *testing.T) {
	s := newTestServer(t)
	api := s.Group("/api")

	err := api.GET("/users", func(ctx *Context) (interface{}, error) { return JSONMap{}, nil })
	assert.NoError(t, err)

	route, _, ok := s.registry.Match(MethodGET, "/api/users")
	assert.True(t, ok)
	assert.Equal(t, "/api/users", route.Pattern)
}

func TestGroupMergesHooksInOrder(t *testing.T) {
	var order []string
	s := newTestServer(t)

	api := s.Group("/api").Use(func(ctx *Context) error { order = append(order, "group-before"); return nil })
	api.UseAfter(func(ctx *Context) error { order = append(order, "group-after"); return nil })

	err := api.GET("/ping", func(ctx *Context) (interface{}, error) {
		order = append(order, "handler")
		return JSONMap{}, nil
	},
		Before(func(ctx *Context) error { order = append(order, "route-before"); return nil }),
		After(func(ctx *Context) error { order = append(order, "route-after"); return nil }),
	)
	assert.NoError(t, err)

	route, _, ok := s.registry.Match(MethodGET, "/api/ping")
	assert.True(t, ok)

	ctx := newTestContext(MethodGET, "/api/ping", nil)
	p := &pipeline{registry: s.registry, hooks: s.hooks, cors: CORSConfig{}, logger: newLogger(LogLevelOff)}
	assert.NoError(t, p.runRoute(ctx, route))

	assert.Equal(t, []string{"group-before", "route-before", "handler", "route-after", "group-after"}, order)
}

func TestGroupNestedInheritsPrefixAndHooks(t *testing.T) {
	s := newTestServer(t)
	var seen []string

	api := s.Group("/api").Use(func(ctx *Context) error { seen = append(seen, "api-before"); return nil })
	v1 := api.Group("/v1")

	err := v1.GET("/status", func(ctx *Context) (interface{}, error) {
		seen = append(seen, "handler")
		return JSONMap{}, nil
	})
	assert.NoError(t, err)

	route, _, ok := s.registry.Match(MethodGET, "/api/v1/status")
	assert.True(t, ok)

	ctx := newTestContext(MethodGET, "/api/v1/status", nil)
	p := &pipeline{registry: s.registry, hooks: s.hooks, cors: CORSConfig{}, logger: newLogger(LogLevelOff)}
	assert.NoError(t, p.runRoute(ctx, route))

	assert.Equal(t, []string{"api-before", "handler"}, seen)
}
