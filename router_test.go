package ember

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func noopHandler(ctx *Context) (interface{}, error) { return nil, nil }

func TestRegistryExactMatch(t *testing.T) {
	rr := newRouteRegistry()
	assert.NoError(t, rr.Register(&Route{Method: MethodGET, Pattern: "/health", Handler: noopHandler}))

	route, params, ok := rr.Match(MethodGET, "/health")
	assert.True(t, ok)
	assert.Equal(t, "/health", route.Pattern)
	assert.Empty(t, params)
}

func TestRegistryParamMatch(t *testing.T) {
	rr := newRouteRegistry()
	assert.NoError(t, rr.Register(&Route{
		Method: MethodGET, Pattern: "/users/:userId/posts/:postId", Handler: noopHandler,
	}))

	route, params, ok := rr.Match(MethodGET, "/users/123/posts/456")
	assert.True(t, ok)
	assert.Equal(t, "/users/:userId/posts/:postId", route.Pattern)
	assert.Equal(t, map[string]string{"userId": "123", "postId": "456"}, params)
}

func TestRegistryNoMatch(t *testing.T) {
	rr := newRouteRegistry()
	_, _, ok := rr.Match(MethodGET, "/missing")
	assert.False(t, ok)
}

func TestRegistryDuplicateExactPathFails(t *testing.T) {
	rr := newRouteRegistry()
	assert.NoError(t, rr.Register(&Route{Method: MethodGET, Pattern: "/users", Handler: noopHandler}))

	err := rr.Register(&Route{Method: MethodGET, Pattern: "/users", Handler: noopHandler})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "already exists for method GET")
}

func TestRegistryDuplicateStructuralKeyFails(t *testing.T) {
	rr := newRouteRegistry()
	assert.NoError(t, rr.Register(&Route{Method: MethodGET, Pattern: "/users/:id", Handler: noopHandler}))

	err := rr.Register(&Route{Method: MethodGET, Pattern: "/users/:userId", Handler: noopHandler})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "already exists for method GET")
}

func TestRegistryAutoDerivesHEADFromGET(t *testing.T) {
	rr := newRouteRegistry()
	assert.NoError(t, rr.Register(&Route{Method: MethodGET, Pattern: "/api/data", Handler: noopHandler}))

	route, _, ok := rr.Match(MethodHEAD, "/api/data")
	assert.True(t, ok)
	assert.Equal(t, MethodHEAD, route.Method)
}

func TestRegistryExplicitHEADBeforeGETIsHonored(t *testing.T) {
	rr := newRouteRegistry()
	customHandler := func(ctx *Context) (interface{}, error) { return "custom", nil }

	assert.NoError(t, rr.Register(&Route{Method: MethodHEAD, Pattern: "/api/data", Handler: customHandler}))
	assert.NoError(t, rr.Register(&Route{Method: MethodGET, Pattern: "/api/data", Handler: noopHandler}))

	route, _, ok := rr.Match(MethodHEAD, "/api/data")
	assert.True(t, ok)
	body, _ := route.Handler(nil)
	assert.Equal(t, "custom", body)
}

func TestRegistryExplicitHEADAfterGETConflicts(t *testing.T) {
	rr := newRouteRegistry()
	assert.NoError(t, rr.Register(&Route{Method: MethodGET, Pattern: "/api/data", Handler: noopHandler}))

	err := rr.Register(&Route{Method: MethodHEAD, Pattern: "/api/data", Handler: noopHandler})
	assert.Error(t, err)
}
