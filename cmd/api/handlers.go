// cmd/api/handlers.go
// Application-level handlers: the healthcheck endpoint and the router-level
// operations declared on the users resource. The CRUD surface itself is
// served entirely by the resource package; only operations with
// application-specific behavior live here.
package main

import (
	"encoding/csv"
	"fmt"
	"net/http"

	"github.com/restmount/restmount/resource"
)

// healthcheckHandler handles GET /v1/healthcheck and reports the server
// status, environment and version.
func (app *applicationDependencies) healthcheckHandler(w http.ResponseWriter, r *http.Request) {
	data := resource.Envelope{
		"status": "available",
		"system_info": map[string]string{
			"environment": app.config.environment,
			"version":     appVersion,
		},
	}
	if err := resource.WriteJSON(w, http.StatusOK, data, nil); err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// userSummaryHandler answers GET /v1/users/{userId}/summary. It is declared
// at router level, so it takes precedence over any identically named facet
// the store might declare. Returning the map hands the response back to the
// dispatcher, which wraps it in a {"summary": ...} envelope.
func (app *applicationDependencies) userSummaryHandler(c *resource.Ctx) (any, error) {
	doc, err := app.users.Get(c.Request.Context(), c.Key)
	if err != nil {
		// ErrNotFound propagates and the dispatcher turns it into a 404
		// that names the resolved key.
		return nil, err
	}

	return map[string]any{
		"id":         c.Key.Primary.ID,
		"created_at": doc["created_at"],
		"updated_at": doc["updated_at"],
		"fields":     len(doc),
	}, nil
}

// userExportHandler answers POST /v1/users/{userId}/export by streaming the
// user document as CSV. It writes the response itself and returns (nil, nil),
// the marker that tells the dispatcher not to write a body of its own.
func (app *applicationDependencies) userExportHandler(c *resource.Ctx) (any, error) {
	doc, err := app.users.Get(c.Request.Context(), c.Key)
	if err != nil {
		return nil, err
	}

	c.Response.Header().Set("Content-Type", "text/csv")
	c.Response.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", "user-"+c.Key.Primary.ID+".csv"))

	cw := csv.NewWriter(c.Response)
	cw.Write([]string{"field", "value"})
	for field, value := range doc {
		cw.Write([]string{field, fmt.Sprint(value)})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		app.logger.Error(err.Error(), "op", "export", "key", c.Key.String())
	}

	return nil, nil
}

// userSearchHandler answers GET /v1/users/search. It forwards the merged
// facet parameters as a find filter, demonstrating a router-level
// collection facet built on top of the generic store.
func (app *applicationDependencies) userSearchHandler(c *resource.Ctx) (any, error) {
	return app.users.Find(c.Request.Context(), c.Locations, c.Params)
}
