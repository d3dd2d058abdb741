// resource/router.go
// Router construction, child mounting, and route-table building.
package resource

import (
	"log/slog"
	"maps"
	"net/http"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/gorilla/mux"

	"github.com/restmount/restmount/ops"
	"github.com/restmount/restmount/resource/key"
)

// HandlerFunc is a router-declared operation handler. Returning a non-nil
// result writes it as a JSON envelope keyed by the operation name. Returning
// (nil, nil) writes nothing: it signals that the handler already produced
// its own response through c.Response (streaming, redirects, and the like).
type HandlerFunc func(c *Ctx) (any, error)

// Ctx carries everything a handler needs for one invocation. Key is zero for
// collection-level operations; Params is set for facet-class calls and
// Payload for action-class calls.
type Ctx struct {
	Response  http.ResponseWriter
	Request   *http.Request
	Key       key.Composite
	Locations []key.Segment
	Name      string
	Params    ops.Params
	Payload   ops.Document
}

// Options configures a Router. Tag and Store are required; the four handler
// maps declare router-level operations that take precedence over identically
// named operations declared by the store.
type Options struct {
	// Tag is the entity kind this router serves, e.g. "user".
	Tag string

	// Base is the URL prefix for a root router, e.g. "/v1/users".
	// Ignored on routers mounted as children.
	Base string

	// Store is the injected operations layer for this entity kind.
	Store ops.Store

	// Logger receives dispatch failures and configuration-collision
	// warnings. Defaults to slog.Default().
	Logger *slog.Logger

	Actions    map[string]HandlerFunc // per-item actions, POST /{id}/{name}
	Facets     map[string]HandlerFunc // per-item facets, GET /{id}/{name}
	AllActions map[string]HandlerFunc // collection actions, POST /{name}
	AllFacets  map[string]HandlerFunc // collection facets, GET /{name}
}

// Binding is one HTTP method + path pattern entry in the built route table,
// exposed for introspection and tests.
type Binding struct {
	Method string
	Path   string
	Class  OpClass
	Name   string
}

type mountPoint struct {
	path   string
	router *Router
}

// Router maps HTTP verbs and hierarchical paths onto the operations of one
// entity kind. It implements http.Handler; the route table is built lazily
// on the first request and is immutable afterwards.
type Router struct {
	tag    string
	base   string
	store  ops.Store
	logger *slog.Logger

	actions    map[string]HandlerFunc
	facets     map[string]HandlerFunc
	allActions map[string]HandlerFunc
	allFacets  map[string]HandlerFunc

	parent   *Router
	children []mountPoint

	// Populated during the build pass.
	resolver *key.Resolver
	bindings []Binding

	// Root-only build state.
	buildOnce sync.Once
	built     atomic.Bool
	mux       *mux.Router
}

// New constructs a Router from opts. It panics on a missing Tag or Store:
// both are programmer errors caught at wiring time, never at request time.
func New(opts Options) *Router {
	if opts.Tag == "" {
		panic("resource: Options.Tag must not be empty")
	}
	if opts.Store == nil {
		panic("resource: Options.Store must not be nil")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Router{
		tag:        opts.Tag,
		base:       opts.Base,
		store:      opts.Store,
		logger:     logger,
		actions:    maps.Clone(opts.Actions),
		facets:     maps.Clone(opts.Facets),
		allActions: maps.Clone(opts.AllActions),
		allFacets:  maps.Clone(opts.AllFacets),
	}
}

// Mount attaches child under this router's identifier segment at the given
// path, e.g. users.Mount("orders", orders) serves the child at
// /users/{userId}/orders. Mounting must happen before the first request;
// once the route table is built, Mount panics.
func (r *Router) Mount(path string, child *Router) {
	path = strings.Trim(path, "/")
	if path == "" {
		panic("resource: mount path must not be empty")
	}
	if child.parent != nil {
		panic("resource: router is already mounted")
	}
	if r.root().built.Load() {
		panic("resource: cannot mount after the route table is built")
	}
	child.parent = r
	r.children = append(r.children, mountPoint{path: path, router: child})
}

// ServeHTTP builds the route table on first use and delegates to it.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	root := r.root()
	root.buildOnce.Do(root.buildTree)
	root.mux.ServeHTTP(w, req)
}

// Bindings returns this router's slice of the built route table, triggering
// the build if it has not happened yet.
func (r *Router) Bindings() []Binding {
	root := r.root()
	root.buildOnce.Do(root.buildTree)
	return slices.Clone(r.bindings)
}

// root walks the parent chain to the top of the mount tree. Parents are
// assigned once in Mount, so the walk cannot cycle.
func (r *Router) root() *Router {
	top := r
	for top.parent != nil {
		top = top.parent
	}
	return top
}

// buildTree builds the whole route tree, rooted at this router's Base.
func (r *Router) buildTree() {
	m := mux.NewRouter().StrictSlash(true)

	prefix := "/" + strings.Trim(r.base, "/")
	if prefix == "/" {
		prefix = ""
	}

	r.build(m, prefix, nil)
	r.mux = m
	r.built.Store(true)
}

// build registers this router's routes under prefix and recurses into
// mounted children. Registration order matters: mux matches routes in the
// order they were added, so literal operation segments must be registered
// before the {tagId} parameter routes they would otherwise shadow.
func (r *Router) build(m *mux.Router, prefix string, parentResolver *key.Resolver) {
	r.resolver = key.NewResolver(r.tag, parentResolver)
	idPath := prefix + "/{" + r.resolver.Param() + "}"

	// Collection-level extension operations sit at the same path depth as
	// the item CRUD routes, so they go first.
	r.registerOps(m, ClassAllFacet, http.MethodGet, prefix, r.allFacets, storeAllFacetNames(r.store))
	r.registerOps(m, ClassAllAction, http.MethodPost, prefix, r.allActions, storeAllActionNames(r.store))

	// Per-item extension operations.
	r.registerOps(m, ClassFacet, http.MethodGet, idPath, r.facets, storeFacetNames(r.store))
	r.registerOps(m, ClassAction, http.MethodPost, idPath, r.actions, storeActionNames(r.store))

	// Child resource subtrees extend the identifier chain.
	for _, mp := range r.children {
		mp.router.build(m, idPath+"/"+mp.path, r.resolver)
	}

	// Fixed CRUD bindings. These are never subject to router/store
	// precedence.
	collection := prefix
	if collection == "" {
		collection = "/"
	}
	r.bind(m, http.MethodGet, collection, ClassCRUD, "list", r.listHandler)
	r.bind(m, http.MethodPost, collection, ClassCRUD, "create", r.createHandler)
	r.bind(m, http.MethodGet, idPath, ClassCRUD, "get", r.getHandler)
	r.bind(m, http.MethodPut, idPath, ClassCRUD, "update", r.updateHandler)
	r.bind(m, http.MethodDelete, idPath, ClassCRUD, "remove", r.removeHandler)
}

// registerOps registers one operation class in two passes: every
// router-declared name first, then every store-declared name that the router
// did not already take. A name present in both produces a collision warning
// and exactly one route; dispatch already prefers the router handler, so the
// warning is observability only.
func (r *Router) registerOps(m *mux.Router, class OpClass, method, prefix string, table map[string]HandlerFunc, storeNames []string) {
	taken := make(map[string]bool, len(table))

	for _, name := range slices.Sorted(maps.Keys(table)) {
		r.bind(m, method, prefix+"/"+name, class, name, r.opHandler(class, name))
		taken[name] = true
	}

	for _, name := range slices.Sorted(slices.Values(storeNames)) {
		if taken[name] {
			r.logger.Warn("operation name declared by both router and store; router handler wins",
				"resource", r.tag, "class", string(class), "name", name)
			continue
		}
		r.bind(m, method, prefix+"/"+name, class, name, r.opHandler(class, name))
	}
}

// bind adds one route to the mux and records it in the binding table.
func (r *Router) bind(m *mux.Router, method, path string, class OpClass, name string, h http.HandlerFunc) {
	m.HandleFunc(path, h).Methods(method)
	r.bindings = append(r.bindings, Binding{Method: method, Path: path, Class: class, Name: name})
}

// Store-declared name lookups. A store that does not implement the
// extension interface declares no operations of that class.

func storeActionNames(s ops.Store) []string {
	if as, ok := s.(ops.ActionStore); ok {
		return as.Actions()
	}
	return nil
}

func storeFacetNames(s ops.Store) []string {
	if fs, ok := s.(ops.FacetStore); ok {
		return fs.Facets()
	}
	return nil
}

func storeAllActionNames(s ops.Store) []string {
	if as, ok := s.(ops.AllActionStore); ok {
		return as.AllActions()
	}
	return nil
}

func storeAllFacetNames(s ops.Store) []string {
	if fs, ok := s.(ops.AllFacetStore); ok {
		return fs.AllFacets()
	}
	return nil
}
