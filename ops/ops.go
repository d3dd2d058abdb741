// Package ops defines the contract between a resource router and the
// operations layer that actually stores and manipulates entities.
//
// The router never implements these interfaces itself; an implementation is
// injected per resource at construction time. Store covers the five generic
// CRUD operations. The four optional extension interfaces let a store declare
// named operations of its own: per-item actions and facets, and
// collection-level ("all") actions and facets. A store that does not
// implement one of the extension interfaces declares no operations of that
// class at all, which the router reports differently from a declared class
// that merely lacks a specific name.
package ops

import (
	"context"
	"errors"

	"github.com/restmount/restmount/resource/key"
)

// ErrNotFound is returned by a store when the addressed entity does not
// exist. Stores must use it (or wrap it) so the router can distinguish
// "absent" from genuine failures.
var ErrNotFound = errors.New("record not found")

// Document is a schemaless entity payload as decoded from JSON.
type Document map[string]any

// Params carries flat string parameters for find and facet operations.
type Params map[string]string

// Store is the generic CRUD surface of an operations layer for one entity
// kind. Collection-scoped operations receive the ancestor chain locating the
// collection; item-scoped operations receive the full composite key.
type Store interface {
	// Find lists the entities in the collection addressed by locations,
	// filtered by params.
	Find(ctx context.Context, locations []key.Segment, params Params) ([]Document, error)

	// Create stores doc as a new entity in the addressed collection and
	// returns the stored document, including server-assigned fields.
	Create(ctx context.Context, locations []key.Segment, doc Document) (Document, error)

	// Get returns the entity addressed by k, or ErrNotFound.
	Get(ctx context.Context, k key.Composite) (Document, error)

	// Update replaces the entity addressed by k with doc and returns the
	// stored result, or ErrNotFound.
	Update(ctx context.Context, k key.Composite, doc Document) (Document, error)

	// Remove deletes the entity addressed by k and returns the removed
	// document, or ErrNotFound.
	Remove(ctx context.Context, k key.Composite) (Document, error)
}

// ActionStore is implemented by stores that declare named per-item actions.
type ActionStore interface {
	// Actions returns the declared action names.
	Actions() []string

	// Action runs the named action against the entity addressed by k with
	// the raw request payload.
	Action(ctx context.Context, k key.Composite, name string, payload Document) (any, error)
}

// FacetStore is implemented by stores that declare named per-item facets.
type FacetStore interface {
	Facets() []string
	Facet(ctx context.Context, k key.Composite, name string, params Params) (any, error)
}

// AllActionStore is implemented by stores that declare collection-level
// actions.
type AllActionStore interface {
	AllActions() []string
	AllAction(ctx context.Context, locations []key.Segment, name string, payload Document) (any, error)
}

// AllFacetStore is implemented by stores that declare collection-level
// facets.
type AllFacetStore interface {
	AllFacets() []string
	AllFacet(ctx context.Context, locations []key.Segment, name string, params Params) (any, error)
}
