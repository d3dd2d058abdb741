// resource/handlers.go
// The fixed CRUD handlers. Unlike actions and facets these never consult the
// router-level handler tables: they always call the store's generic
// operation directly, after resolving the identifier and, for writes,
// normalizing serialized timestamps in the document.
package resource

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/restmount/restmount/resource/key"
)

// listHandler handles GET on the collection path. The ancestor chain scopes
// the listing; the query string passes through as find parameters.
func (r *Router) listHandler(w http.ResponseWriter, req *http.Request) {
	locations := r.resolver.AncestorChain(mux.Vars(req))

	docs, err := r.store.Find(req.Context(), locations, queryParams(req))
	if err != nil {
		r.respondError(w, req, "list", key.Composite{}, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, Envelope{r.tag + "s": docs}, nil); err != nil {
		r.respondError(w, req, "list", key.Composite{}, err)
	}
}

// createHandler handles POST on the collection path. It decodes the body,
// coerces serialized timestamps into native times, and responds with the
// stored document and a 201.
func (r *Router) createHandler(w http.ResponseWriter, req *http.Request) {
	doc, err := readDocument(w, req)
	if err != nil {
		r.badRequestResponse(w, req, err)
		return
	}

	locations := r.resolver.AncestorChain(mux.Vars(req))

	created, err := r.store.Create(req.Context(), locations, coerceTimestamps(doc))
	if err != nil {
		r.respondError(w, req, "create", key.Composite{}, err)
		return
	}

	if err := WriteJSON(w, http.StatusCreated, Envelope{r.tag: created}, nil); err != nil {
		r.respondError(w, req, "create", key.Composite{}, err)
	}
}

// getHandler handles GET on the item path.
func (r *Router) getHandler(w http.ResponseWriter, req *http.Request) {
	vars := mux.Vars(req)

	k, err := r.resolver.Composite(vars[r.resolver.Param()], vars, req.URL.Path)
	if err != nil {
		r.respondError(w, req, "get", key.Composite{}, err)
		return
	}

	doc, err := r.store.Get(req.Context(), k)
	if err != nil {
		r.respondError(w, req, "get", k, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, Envelope{r.tag: doc}, nil); err != nil {
		r.respondError(w, req, "get", k, err)
	}
}

// updateHandler handles PUT on the item path. The body replaces the stored
// document; timestamps are coerced the same way as on create.
func (r *Router) updateHandler(w http.ResponseWriter, req *http.Request) {
	vars := mux.Vars(req)

	k, err := r.resolver.Composite(vars[r.resolver.Param()], vars, req.URL.Path)
	if err != nil {
		r.respondError(w, req, "update", key.Composite{}, err)
		return
	}

	doc, err := readDocument(w, req)
	if err != nil {
		r.badRequestResponse(w, req, err)
		return
	}

	updated, err := r.store.Update(req.Context(), k, coerceTimestamps(doc))
	if err != nil {
		r.respondError(w, req, "update", k, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, Envelope{r.tag: updated}, nil); err != nil {
		r.respondError(w, req, "update", k, err)
	}
}

// removeHandler handles DELETE on the item path and echoes the removed
// document back to the client.
func (r *Router) removeHandler(w http.ResponseWriter, req *http.Request) {
	vars := mux.Vars(req)

	k, err := r.resolver.Composite(vars[r.resolver.Param()], vars, req.URL.Path)
	if err != nil {
		r.respondError(w, req, "remove", key.Composite{}, err)
		return
	}

	removed, err := r.store.Remove(req.Context(), k)
	if err != nil {
		r.respondError(w, req, "remove", k, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, Envelope{r.tag: removed}, nil); err != nil {
		r.respondError(w, req, "remove", k, err)
	}
}
