// Package key resolves raw URL path identifiers into structured entity keys.
//
// Every resource router owns a Resolver. A root resolver has no parent and
// produces plain primary keys; a resolver for a contained resource holds a
// reference to its parent's resolver and produces composite keys whose
// location chain is assembled recursively: each level only knows how to
// describe itself, and the full ancestor chain falls out of the recursion.
package key

import "fmt"

// Segment is one ancestor in a containment chain: the ancestor's entity tag
// paired with its raw identifier value.
type Segment struct {
	Tag string `json:"tag"`
	ID  string `json:"id"`
}

// Primary identifies a single entity of one kind, without ancestry.
type Primary struct {
	Tag string `json:"tag"`
	ID  string `json:"id"`
}

// Composite is a primary key plus the ordered ancestor chain that locates the
// entity within its containment hierarchy. Locations run from the immediate
// parent to the root; a top-level entity has an empty chain.
type Composite struct {
	Primary   Primary   `json:"primary"`
	Locations []Segment `json:"locations,omitempty"`
}

// String renders the key for logs and error messages, e.g.
// `order "17" (in user "42")`.
func (c Composite) String() string {
	s := fmt.Sprintf("%s %q", c.Primary.Tag, c.Primary.ID)
	for i, loc := range c.Locations {
		if i == 0 {
			s += fmt.Sprintf(" (in %s %q", loc.Tag, loc.ID)
		} else {
			s += fmt.Sprintf(", %s %q", loc.Tag, loc.ID)
		}
	}
	if len(c.Locations) > 0 {
		s += ")"
	}
	return s
}

// InvalidError reports a path identifier that cannot form a key.
// It carries the offending value and the request path for diagnostics.
type InvalidError struct {
	Tag   string
	Value string
	Path  string
}

func (e *InvalidError) Error() string {
	return fmt.Sprintf("invalid %s identifier %q in path %q", e.Tag, e.Value, e.Path)
}

// Resolver converts raw path-parameter strings into validated keys for one
// entity kind. The tag and the optional parent reference are fixed at
// construction and never reassigned, so resolver chains cannot form cycles.
type Resolver struct {
	tag    string
	parent *Resolver
}

// NewResolver returns a resolver for the given entity tag. Pass nil as parent
// for a root (top-level) resource.
func NewResolver(tag string, parent *Resolver) *Resolver {
	return &Resolver{tag: tag, parent: parent}
}

// Tag returns the entity tag this resolver was constructed with.
func (r *Resolver) Tag() string { return r.tag }

// Param returns the path-variable name that carries this resolver's
// identifier, derived deterministically from the tag ("user" -> "userId").
func (r *Resolver) Param() string { return r.tag + "Id" }

// Primary validates raw and wraps it into a primary key.
//
// An empty value or the literal string "undefined" fails with *InvalidError;
// the latter guards against a common upstream bug where a missing path
// segment serializes to that literal. Callers must answer the client with a
// 400 before any operation runs.
func (r *Resolver) Primary(raw, path string) (Primary, error) {
	if raw == "" || raw == "undefined" {
		return Primary{}, &InvalidError{Tag: r.tag, Value: raw, Path: path}
	}
	return Primary{Tag: r.tag, ID: raw}, nil
}

// Segment wraps raw as a location segment under this resolver's tag. It is
// used when this resolver describes itself as an ancestor for a child
// resolver's composite key; no validation and no parent involvement.
func (r *Resolver) Segment(raw string) Segment {
	return Segment{Tag: r.tag, ID: raw}
}

// AncestorChain assembles the location chain for this resolver from the
// request's path variables, nearest ancestor first and root last.
//
// A resolver with no parent returns nil: "no ancestors" is the valid
// terminal case for a root resource, not an error.
func (r *Resolver) AncestorChain(vars map[string]string) []Segment {
	if r.parent == nil {
		return nil
	}
	seg := r.parent.Segment(vars[r.parent.Param()])
	return append([]Segment{seg}, r.parent.AncestorChain(vars)...)
}

// Composite combines Primary with AncestorChain into a fully qualified key.
func (r *Resolver) Composite(raw string, vars map[string]string, path string) (Composite, error) {
	primary, err := r.Primary(raw, path)
	if err != nil {
		return Composite{}, err
	}
	return Composite{Primary: primary, Locations: r.AncestorChain(vars)}, nil
}
