package data

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/restmount/restmount/resource/key"
)

func TestEncodeAncestry(t *testing.T) {
	assert.Equal(t, "", encodeAncestry(nil))

	chain := []key.Segment{
		{Tag: "order", ID: "17"},
		{Tag: "user", ID: "42"},
	}
	// Nearest ancestor first, matching the resolver chain order.
	assert.Equal(t, "order:17/user:42", encodeAncestry(chain))
}

func TestRenderDocumentOverlaysServerFields(t *testing.T) {
	created := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)
	updated := created.Add(time.Hour)

	doc, err := renderDocument("abc", []byte(`{"name": "ada", "id": "client-supplied"}`), created, updated)
	require.NoError(t, err)

	// Server-managed fields always win over client-supplied ones.
	assert.Equal(t, "abc", doc["id"])
	assert.Equal(t, created, doc["created_at"])
	assert.Equal(t, updated, doc["updated_at"])
	assert.Equal(t, "ada", doc["name"])
}

func TestRenderDocumentRejectsMalformedPayload(t *testing.T) {
	_, err := renderDocument("abc", []byte(`{broken`), time.Time{}, time.Time{})
	assert.Error(t, err)
}

func TestCollectionDeclaredOperations(t *testing.T) {
	c := NewCollection(nil, "user")

	assert.Equal(t, []string{"touch"}, c.Actions())
	assert.Equal(t, []string{"exists"}, c.Facets())
	assert.Equal(t, []string{"purge"}, c.AllActions())
	assert.Equal(t, []string{"count"}, c.AllFacets())
}
