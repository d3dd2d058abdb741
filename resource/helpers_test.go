package resource

import (
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/restmount/restmount/ops"
)

func TestMergeParamsPathOverridesQuery(t *testing.T) {
	query := url.Values{"a": {"1"}, "b": {"2"}}
	vars := map[string]string{"b": "3", "c": "4"}

	merged := mergeParams(query, vars)

	assert.Equal(t, ops.Params{"a": "1", "b": "3", "c": "4"}, merged)
}

func TestMergeParamsKeepsFirstQueryValue(t *testing.T) {
	query := url.Values{"a": {"first", "second"}}

	merged := mergeParams(query, nil)

	assert.Equal(t, ops.Params{"a": "first"}, merged)
}

func TestReadDocument(t *testing.T) {
	t.Run("empty body is an empty document", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/", nil)
		doc, err := readDocument(httptest.NewRecorder(), req)
		require.NoError(t, err)
		assert.Equal(t, ops.Document{}, doc)
	})

	t.Run("single object decodes", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/", strings.NewReader(`{"a": 1}`))
		doc, err := readDocument(httptest.NewRecorder(), req)
		require.NoError(t, err)
		assert.Equal(t, float64(1), doc["a"])
	})

	t.Run("trailing data rejected", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/", strings.NewReader(`{"a": 1} true`))
		_, err := readDocument(httptest.NewRecorder(), req)
		assert.Error(t, err)
	})

	t.Run("json null is an empty document", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/", strings.NewReader(`null`))
		doc, err := readDocument(httptest.NewRecorder(), req)
		require.NoError(t, err)
		assert.NotNil(t, doc)
	})
}
