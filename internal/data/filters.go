// internal/data/filters.go
package data

import (
	"encoding/json"
	"strconv"

	"github.com/restmount/restmount/ops"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

// Filters holds the pagination parameters extracted from find parameters.
type Filters struct {
	Limit  int
	Offset int
}

// filtersFrom parses limit/offset out of params, falling back to safe
// defaults when a value is absent or malformed.
func filtersFrom(params ops.Params) Filters {
	f := Filters{Limit: defaultLimit}

	if n, err := strconv.Atoi(params["limit"]); err == nil && n > 0 {
		f.Limit = min(n, maxLimit)
	}
	if n, err := strconv.Atoi(params["offset"]); err == nil && n > 0 {
		f.Offset = n
	}
	return f
}

// limit returns the SQL LIMIT value.
func (f Filters) limit() int { return f.Limit }

// offset returns the SQL OFFSET value.
func (f Filters) offset() int { return f.Offset }

// filterJSON turns the remaining find parameters into a jsonb containment
// filter. Pagination keys are reserved and never filter on document fields.
func filterJSON(params ops.Params) ([]byte, error) {
	filter := make(map[string]string, len(params))
	for k, v := range params {
		if k == "limit" || k == "offset" {
			continue
		}
		filter[k] = v
	}
	return json.Marshal(filter)
}
