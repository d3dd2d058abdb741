// resource/coerce.go
// Timestamp normalization applied to documents before create and update.
package resource

import (
	"regexp"
	"time"

	"github.com/restmount/restmount/ops"
)

// timestampRX matches a full RFC 3339 timestamp, e.g.
// "2026-08-25T14:03:00Z" or "2026-08-25T14:03:00.250+02:00". Bare dates and
// arbitrary strings that merely contain digits do not match.
var timestampRX = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(?:\.\d+)?(?:Z|[+-]\d{2}:\d{2})$`)

// coerceTimestamps walks doc recursively and converts every string value
// that is a serialized RFC 3339 timestamp into a native time.Time. All other
// values, including nulls and absent fields, pass through untouched. The
// document is modified in place and returned for convenience.
func coerceTimestamps(doc ops.Document) ops.Document {
	for k, v := range doc {
		doc[k] = coerceValue(v)
	}
	return doc
}

func coerceValue(v any) any {
	switch t := v.(type) {
	case string:
		if timestampRX.MatchString(t) {
			if ts, err := time.Parse(time.RFC3339, t); err == nil {
				return ts
			}
		}
		return t
	case map[string]any:
		for k, vv := range t {
			t[k] = coerceValue(vv)
		}
		return t
	case []any:
		for i := range t {
			t[i] = coerceValue(t[i])
		}
		return t
	default:
		// Numbers, booleans and nulls are never timestamps.
		return v
	}
}
