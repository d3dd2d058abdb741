// cmd/api/routes.go
package main

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/restmount/restmount/resource"
)

// routes assembles the resource router hierarchy and returns it wrapped in
// the application middleware.
//
// Middleware chain (outermost → innermost):
//
//	recoverPanic → rateLimit → metrics → mux
//
// The resource tree serves:
//
//	/v1/users                                  user CRUD + count/purge/search
//	/v1/users/{userId}                         user item CRUD + exists/touch,
//	                                           plus the summary facet and the
//	                                           CSV export action
//	/v1/users/{userId}/orders/...              order CRUD and operations
//	/v1/users/{userId}/orders/{orderId}/items/...  item CRUD and operations
func (app *applicationDependencies) routes() http.Handler {
	users := resource.New(resource.Options{
		Tag:    "user",
		Base:   "/v1/users",
		Store:  app.users,
		Logger: app.logger,
		Facets: map[string]resource.HandlerFunc{
			"summary": app.userSummaryHandler,
		},
		Actions: map[string]resource.HandlerFunc{
			"export": app.userExportHandler,
		},
		AllFacets: map[string]resource.HandlerFunc{
			"search": app.userSearchHandler,
		},
	})

	orders := resource.New(resource.Options{
		Tag:    "order",
		Store:  app.orders,
		Logger: app.logger,
	})

	items := resource.New(resource.Options{
		Tag:    "item",
		Store:  app.items,
		Logger: app.logger,
	})

	// Mount bottom-up so every level extends the identifier chain of its
	// parent. Mounting must finish before the first request builds the
	// route table.
	orders.Mount("items", items)
	users.Mount("orders", orders)

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/healthcheck", app.healthcheckHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/v1/users", users)
	mux.Handle("/v1/users/", users)

	return app.recoverPanic(app.rateLimit(app.metrics(mux)))
}
