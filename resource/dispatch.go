// resource/dispatch.go
// Request-time dispatch for the four extension-operation classes. Each
// variant resolves the identifier, consults the router-level handler table
// first, and falls back to the store's declared operations. The precedence
// is fixed and deterministic: a router handler always wins.
package resource

import (
	"context"
	"net/http"
	"slices"

	"github.com/gorilla/mux"

	"github.com/restmount/restmount/ops"
	"github.com/restmount/restmount/resource/key"
)

// opHandler returns the HTTP handler for one named operation of the given
// class. The operation name is fixed at route-registration time; identifier
// resolution and the router-vs-store lookup happen per request.
func (r *Router) opHandler(class OpClass, name string) http.HandlerFunc {
	switch class {
	case ClassAction:
		return r.itemOpHandler(name, true, r.dispatchAction)
	case ClassFacet:
		return r.itemOpHandler(name, false, r.dispatchFacet)
	case ClassAllAction:
		return r.collectionOpHandler(name, true, r.dispatchAllAction)
	case ClassAllFacet:
		return r.collectionOpHandler(name, false, r.dispatchAllFacet)
	default:
		panic("resource: unknown operation class " + string(class))
	}
}

// itemOpHandler serves item-scoped operations: resolve the composite key,
// gather the payload (actions) or merged parameters (facets), dispatch, and
// write the outcome. Identifier validation runs before anything else; an
// invalid id means no operation is ever invoked.
func (r *Router) itemOpHandler(name string, action bool, dispatch func(context.Context, *Ctx) (any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		vars := mux.Vars(req)

		k, err := r.resolver.Composite(vars[r.resolver.Param()], vars, req.URL.Path)
		if err != nil {
			r.respondError(w, req, name, key.Composite{}, err)
			return
		}

		c := &Ctx{
			Response:  w,
			Request:   req,
			Key:       k,
			Locations: k.Locations,
			Name:      name,
		}
		if action {
			c.Payload, err = readDocument(w, req)
			if err != nil {
				r.badRequestResponse(w, req, err)
				return
			}
		} else {
			c.Params = mergeParams(req.URL.Query(), vars)
		}

		res, err := dispatch(req.Context(), c)
		if err != nil {
			r.respondError(w, req, name, k, err)
			return
		}
		r.writeResult(w, req, name, res)
	}
}

// collectionOpHandler serves collection-scoped operations. Only the
// ancestor chain is resolved; there is no primary key at collection level.
func (r *Router) collectionOpHandler(name string, action bool, dispatch func(context.Context, *Ctx) (any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		vars := mux.Vars(req)

		c := &Ctx{
			Response:  w,
			Request:   req,
			Locations: r.resolver.AncestorChain(vars),
			Name:      name,
		}
		var err error
		if action {
			c.Payload, err = readDocument(w, req)
			if err != nil {
				r.badRequestResponse(w, req, err)
				return
			}
		} else {
			c.Params = mergeParams(req.URL.Query(), vars)
		}

		res, err := dispatch(req.Context(), c)
		if err != nil {
			r.respondError(w, req, name, key.Composite{}, err)
			return
		}
		r.writeResult(w, req, name, res)
	}
}

// writeResult writes a successful operation outcome. A nil result is the
// "handler wrote its own response" marker and produces no body at all.
func (r *Router) writeResult(w http.ResponseWriter, req *http.Request, name string, res any) {
	if res == nil {
		return
	}
	if err := WriteJSON(w, http.StatusOK, Envelope{name: res}, nil); err != nil {
		r.logger.Error(err.Error(), "resource", r.tag, "op", name,
			"request_method", req.Method, "request_url", req.URL.String())
		w.WriteHeader(http.StatusInternalServerError)
	}
}

// dispatchAction resolves a per-item action: router handler first, then the
// store's ActionStore table.
func (r *Router) dispatchAction(ctx context.Context, c *Ctx) (any, error) {
	if h, ok := r.actions[c.Name]; ok {
		return h(c)
	}
	store, ok := r.store.(ops.ActionStore)
	if !ok {
		return nil, &NotConfiguredError{Class: ClassAction}
	}
	if !slices.Contains(store.Actions(), c.Name) {
		return nil, &OperationNotConfiguredError{Class: ClassAction, Name: c.Name}
	}
	return store.Action(ctx, c.Key, c.Name, c.Payload)
}

// dispatchFacet resolves a per-item facet.
func (r *Router) dispatchFacet(ctx context.Context, c *Ctx) (any, error) {
	if h, ok := r.facets[c.Name]; ok {
		return h(c)
	}
	store, ok := r.store.(ops.FacetStore)
	if !ok {
		return nil, &NotConfiguredError{Class: ClassFacet}
	}
	if !slices.Contains(store.Facets(), c.Name) {
		return nil, &OperationNotConfiguredError{Class: ClassFacet, Name: c.Name}
	}
	return store.Facet(ctx, c.Key, c.Name, c.Params)
}

// dispatchAllAction resolves a collection-level action.
func (r *Router) dispatchAllAction(ctx context.Context, c *Ctx) (any, error) {
	if h, ok := r.allActions[c.Name]; ok {
		return h(c)
	}
	store, ok := r.store.(ops.AllActionStore)
	if !ok {
		return nil, &NotConfiguredError{Class: ClassAllAction}
	}
	if !slices.Contains(store.AllActions(), c.Name) {
		return nil, &OperationNotConfiguredError{Class: ClassAllAction, Name: c.Name}
	}
	return store.AllAction(ctx, c.Locations, c.Name, c.Payload)
}

// dispatchAllFacet resolves a collection-level facet.
func (r *Router) dispatchAllFacet(ctx context.Context, c *Ctx) (any, error) {
	if h, ok := r.allFacets[c.Name]; ok {
		return h(c)
	}
	store, ok := r.store.(ops.AllFacetStore)
	if !ok {
		return nil, &NotConfiguredError{Class: ClassAllFacet}
	}
	if !slices.Contains(store.AllFacets(), c.Name) {
		return nil, &OperationNotConfiguredError{Class: ClassAllFacet, Name: c.Name}
	}
	return store.AllFacet(ctx, c.Locations, c.Name, c.Params)
}
