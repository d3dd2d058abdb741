package resource

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/restmount/restmount/ops"
)

func TestCoerceTimestamps(t *testing.T) {
	doc := ops.Document{
		"created":  "2026-08-25T14:03:00Z",
		"offset":   "2026-08-25T14:03:00.250+02:00",
		"name":     "ada",
		"note":     nil,
		"count":    float64(3),
		"flag":     true,
		"bareDate": "2026-08-25",
		"almost":   "2026-08-25T14:03:00", // no zone, not a full timestamp
		"nested": map[string]any{
			"seen": "2026-08-25T14:03:00Z",
			"tags": []any{"a", "2026-08-25T14:03:00Z", nil},
		},
	}

	coerceTimestamps(doc)

	ts, ok := doc["created"].(time.Time)
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 8, 25, 14, 3, 0, 0, time.UTC), ts.UTC())

	withOffset, ok := doc["offset"].(time.Time)
	require.True(t, ok)
	assert.Equal(t, 250*int(time.Millisecond), withOffset.Nanosecond())

	// Non-timestamp values pass through untouched.
	assert.Equal(t, "ada", doc["name"])
	assert.Nil(t, doc["note"])
	assert.Equal(t, float64(3), doc["count"])
	assert.Equal(t, true, doc["flag"])
	assert.Equal(t, "2026-08-25", doc["bareDate"])
	assert.Equal(t, "2026-08-25T14:03:00", doc["almost"])

	// Coercion recurses through nested maps and slices.
	nested := doc["nested"].(map[string]any)
	_, ok = nested["seen"].(time.Time)
	assert.True(t, ok)

	tags := nested["tags"].([]any)
	assert.Equal(t, "a", tags[0])
	_, ok = tags[1].(time.Time)
	assert.True(t, ok)
	assert.Nil(t, tags[2])
}
