package ember

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHookFilterAppliesToDefaultsToEverything(t *testing.T) {
	f := HookFilter{}
	assert.True(t, f.appliesTo("/any/path"))
}

func TestHookFilterIncludeList(t *testing.T) {
	f := HookFilter{RoutesToInclude: []string{"/a"}}
	assert.True(t, f.appliesTo("/a"))
	assert.False(t, f.appliesTo("/b"))
}

func TestHookFilterExcludeList(t *testing.T) {
	f := HookFilter{RoutesToExclude: []string{"/a"}}
	assert.False(t, f.appliesTo("/a"))
	assert.True(t, f.appliesTo("/b"))
}

func TestHookStoreBeforeAllFiltering(t *testing.T) {
	hs := newHookStore()
	called := []string{}

	hs.BeforeAll(func(ctx *Context) error { called = append(called, "global-a"); return nil }, HookFilter{})
	hs.BeforeAll(func(ctx *Context) error { called = append(called, "global-b"); return nil }, HookFilter{RoutesToExclude: []string{"/skip"}})

	hooks := hs.beforeAllFor("/skip")
	assert.Len(t, hooks, 1)

	for _, h := range hooks {
		h(nil)
	}
	assert.Equal(t, []string{"global-a"}, called)
}

func TestDefaultErrorHandler(t *testing.T) {
	ctx := newTestContext(MethodGET, "/x", nil)
	body, err := defaultErrorHandler(errors.New("boom"), ctx)
	assert.NoError(t, err)
	assert.Equal(t, 500, ctx.Response.StatusCode)
	assert.Equal(t, JSONMap{"success": false, "message": "Internal Server Error"}, body)
}

func TestDefaultNotFoundHandler(t *testing.T) {
	ctx := newTestContext(MethodGET, "/missing", nil)
	body, err := defaultNotFoundHandler(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 404, ctx.Response.StatusCode)
	assert.Equal(t, JSONMap{"success": false, "message": "404 Not Found"}, body)
}

func TestHookStoreOnErrorOnNotFoundOverride(t *testing.T) {
	hs := newHookStore()
	hs.OnError(func(err error, ctx *Context) (interface{}, error) {
		return JSONMap{"custom": true}, nil
	})
	hs.OnNotFound(func(ctx *Context) (interface{}, error) {
		return JSONMap{"custom404": true}, nil
	})

	ctx := newTestContext(MethodGET, "/x", nil)
	body, err := hs.onError(errors.New("x"), ctx)
	assert.NoError(t, err)
	assert.Equal(t, JSONMap{"custom": true}, body)

	body, err = hs.onNotFound(ctx)
	assert.NoError(t, err)
	assert.Equal(t, JSONMap{"custom404": true}, body)
}
