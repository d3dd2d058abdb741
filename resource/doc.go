/*
Package resource turns a declared entity hierarchy into a tree of HTTP route
handlers backed by an injected operations layer.

A [Router] is configured with an entity tag, an [ops.Store], and optional
named handlers for four operation classes: per-item actions and facets, and
collection-level ("all") actions and facets. Child routers mount under the
parent's identifier segment, so a user → order → item hierarchy yields routes
of the shape:

	GET    /users                      list users
	POST   /users                      create a user
	GET    /users/{userId}             get one user
	PUT    /users/{userId}             update a user
	DELETE /users/{userId}             remove a user
	POST   /users/{userId}/{action}    per-item action
	GET    /users/{userId}/{facet}     per-item facet
	GET    /users/{userId}/orders/...  child resource, recursively

Extension operations obey a fixed precedence: a name declared on the router
always wins over the same name declared by the store, and a collision between
the two is logged as a warning at route-construction time. CRUD operations
bypass precedence entirely and always call the store directly.

The route table is built lazily on the first request and is immutable
afterwards; Mount panics once the table exists.
*/
package resource
