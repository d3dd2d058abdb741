package resource

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/restmount/restmount/ops"
	"github.com/restmount/restmount/resource/key"
)

// A name declared at both router and store level must invoke only the
// router-level handler; the store must never see the call.
func TestDispatchRouterHandlerWinsOverStore(t *testing.T) {
	store := &opStore{actionNames: []string{"sync"}}

	var handlerCalls int
	r := New(Options{
		Tag:   "user",
		Base:  "/users",
		Store: store,
		Actions: map[string]HandlerFunc{
			"sync": func(c *Ctx) (any, error) {
				handlerCalls++
				assert.Equal(t, "sync", c.Name)
				assert.Equal(t, "7", c.Key.Primary.ID)
				return map[string]any{"synced": true}, nil
			},
		},
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("POST", "/users/7/sync", nil))

	assert.Equal(t, 200, rec.Code)
	assert.Equal(t, 1, handlerCalls)
	assert.Empty(t, store.calls, "store-level handler must never run on a collision")
	assert.Contains(t, rec.Body.String(), `"sync"`)
}

// A name declared only at store level falls through to the store's generic
// dispatch entry with the exact name and the raw payload.
func TestDispatchFallsBackToStoreAction(t *testing.T) {
	store := &opStore{actionNames: []string{"sync"}, result: "ok"}
	r := New(Options{Tag: "user", Base: "/users", Store: store})

	req := httptest.NewRequest("POST", "/users/7/sync", strings.NewReader(`{"force": true}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, 200, rec.Code)
	require.Len(t, store.calls, 1)
	got := store.calls[0]
	assert.Equal(t, "action", got.method)
	assert.Equal(t, "sync", got.name)
	assert.Equal(t, ops.Document{"force": true}, got.payload)
	assert.Equal(t, key.Primary{Tag: "user", ID: "7"}, got.key.Primary)
}

// Facet parameters are the shallow merge of the query string and the path
// variables, with path variables winning on collision.
func TestDispatchFacetMergesParams(t *testing.T) {
	store := &opStore{facetNames: []string{"history"}, result: []string{}}
	r := New(Options{Tag: "user", Base: "/users", Store: store})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/users/7/history?limit=5&userId=hijacked", nil))

	assert.Equal(t, 200, rec.Code)
	require.Len(t, store.calls, 1)
	got := store.calls[0]
	assert.Equal(t, "facet", got.method)
	assert.Equal(t, "5", got.params["limit"])
	// The path variable overrides the query-string value of the same name.
	assert.Equal(t, "7", got.params["userId"])
}

// Collection-scoped operations resolve only the ancestor chain; there is no
// primary key at collection level.
func TestDispatchCollectionOps(t *testing.T) {
	store := &opStore{allFacetNames: []string{"count"}, allActionNames: []string{"purge"}, result: 0}
	r := New(Options{Tag: "user", Base: "/users", Store: store})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/users/count", nil))
	assert.Equal(t, 200, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("POST", "/users/purge", nil))
	assert.Equal(t, 200, rec.Code)

	require.Len(t, store.calls, 2)
	assert.Equal(t, "allFacet", store.calls[0].method)
	assert.Empty(t, store.calls[0].locations)
	assert.Equal(t, "allAction", store.calls[1].method)
	assert.Equal(t, ops.Document{}, store.calls[1].payload, "empty body must arrive as an empty document")
}

// A store with no extension interface at all yields NotConfiguredError; a
// declared class that lacks the requested name yields
// OperationNotConfiguredError. Neither can be reached through the literal
// route table, so the dispatch entry points are exercised directly.
func TestDispatchConfigurationErrors(t *testing.T) {
	bare := New(Options{Tag: "user", Store: &crudStore{}})

	_, err := bare.dispatchAction(context.Background(), &Ctx{Name: "sync"})
	var notConfigured *NotConfiguredError
	require.ErrorAs(t, err, &notConfigured)
	assert.Equal(t, ClassAction, notConfigured.Class)

	_, err = bare.dispatchAllFacet(context.Background(), &Ctx{Name: "count"})
	require.ErrorAs(t, err, &notConfigured)
	assert.Equal(t, ClassAllFacet, notConfigured.Class)

	declared := New(Options{Tag: "user", Store: &opStore{actionNames: []string{"other"}}})

	_, err = declared.dispatchAction(context.Background(), &Ctx{Name: "sync"})
	var opNotConfigured *OperationNotConfiguredError
	require.ErrorAs(t, err, &opNotConfigured)
	assert.Equal(t, ClassAction, opNotConfigured.Class)
	assert.Equal(t, "sync", opNotConfigured.Name)
}

// A router-level handler returning (nil, nil) signals that it wrote its own
// response; the dispatcher must not add a body on top.
func TestDispatchNilResultWritesNothing(t *testing.T) {
	r := New(Options{
		Tag:   "user",
		Base:  "/users",
		Store: &crudStore{},
		Actions: map[string]HandlerFunc{
			"export": func(c *Ctx) (any, error) {
				c.Response.Header().Set("Content-Type", "text/plain")
				c.Response.Write([]byte("streamed"))
				return nil, nil
			},
		},
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("POST", "/users/7/export", nil))

	assert.Equal(t, 200, rec.Code)
	assert.Equal(t, "streamed", rec.Body.String())
	assert.Equal(t, "text/plain", rec.Header().Get("Content-Type"))
}
