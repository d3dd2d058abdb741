// resource/store_test.go
// In-memory spy stores shared by the dispatch and router tests. crudStore
// implements only ops.Store, so it stands in for an operations layer that
// declares no extension operations at all; opStore adds all four extension
// interfaces with configurable declared names.
package resource

import (
	"context"

	"github.com/restmount/restmount/ops"
	"github.com/restmount/restmount/resource/key"
)

// call records one store invocation for later assertions.
type call struct {
	method    string
	key       key.Composite
	locations []key.Segment
	name      string
	params    ops.Params
	payload   ops.Document
	doc       ops.Document
}

type crudStore struct {
	calls []call

	doc  ops.Document   // canned response for item ops and create
	docs []ops.Document // canned response for Find
	err  error          // forced error for every operation
}

func (s *crudStore) Find(_ context.Context, locations []key.Segment, params ops.Params) ([]ops.Document, error) {
	s.calls = append(s.calls, call{method: "find", locations: locations, params: params})
	return s.docs, s.err
}

func (s *crudStore) Create(_ context.Context, locations []key.Segment, doc ops.Document) (ops.Document, error) {
	s.calls = append(s.calls, call{method: "create", locations: locations, doc: doc})
	if s.err != nil {
		return nil, s.err
	}
	if s.doc != nil {
		return s.doc, nil
	}
	return doc, nil
}

func (s *crudStore) Get(_ context.Context, k key.Composite) (ops.Document, error) {
	s.calls = append(s.calls, call{method: "get", key: k})
	return s.doc, s.err
}

func (s *crudStore) Update(_ context.Context, k key.Composite, doc ops.Document) (ops.Document, error) {
	s.calls = append(s.calls, call{method: "update", key: k, doc: doc})
	if s.err != nil {
		return nil, s.err
	}
	if s.doc != nil {
		return s.doc, nil
	}
	return doc, nil
}

func (s *crudStore) Remove(_ context.Context, k key.Composite) (ops.Document, error) {
	s.calls = append(s.calls, call{method: "remove", key: k})
	return s.doc, s.err
}

// opStore layers the four extension interfaces over crudStore.
type opStore struct {
	crudStore

	actionNames    []string
	facetNames     []string
	allActionNames []string
	allFacetNames  []string

	result any // canned extension-operation result
}

func (s *opStore) Actions() []string { return s.actionNames }

func (s *opStore) Action(_ context.Context, k key.Composite, name string, payload ops.Document) (any, error) {
	s.calls = append(s.calls, call{method: "action", key: k, name: name, payload: payload})
	return s.result, s.err
}

func (s *opStore) Facets() []string { return s.facetNames }

func (s *opStore) Facet(_ context.Context, k key.Composite, name string, params ops.Params) (any, error) {
	s.calls = append(s.calls, call{method: "facet", key: k, name: name, params: params})
	return s.result, s.err
}

func (s *opStore) AllActions() []string { return s.allActionNames }

func (s *opStore) AllAction(_ context.Context, locations []key.Segment, name string, payload ops.Document) (any, error) {
	s.calls = append(s.calls, call{method: "allAction", locations: locations, name: name, payload: payload})
	return s.result, s.err
}

func (s *opStore) AllFacets() []string { return s.allFacetNames }

func (s *opStore) AllFacet(_ context.Context, locations []key.Segment, name string, params ops.Params) (any, error) {
	s.calls = append(s.calls, call{method: "allFacet", locations: locations, name: name, params: params})
	return s.result, s.err
}
