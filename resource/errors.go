// resource/errors.go
// Error taxonomy for dispatch failures, plus the helpers that translate
// errors into JSON responses. Response shape follows the {"error": ...}
// envelope convention used everywhere else in this module.
package resource

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/restmount/restmount/ops"
	"github.com/restmount/restmount/resource/key"
)

// OpClass identifies one of the four extension-operation classes.
type OpClass string

const (
	ClassAction    OpClass = "action"
	ClassFacet     OpClass = "facet"
	ClassAllAction OpClass = "all-action"
	ClassAllFacet  OpClass = "all-facet"

	// ClassCRUD marks the fixed list/create/get/update/remove bindings in
	// the route table. It never appears in dispatch errors.
	ClassCRUD OpClass = "crud"
)

// NotConfiguredError reports that the store declares no operations of the
// requested class at all. This is a deployment/configuration bug, not a data
// problem, and maps to a 500.
type NotConfiguredError struct {
	Class OpClass
}

func (e *NotConfiguredError) Error() string {
	return fmt.Sprintf("store declares no %s operations", e.Class)
}

// OperationNotConfiguredError reports that the store declares operations of
// this class but not the requested name. Also a configuration bug; maps to
// a 500.
type OperationNotConfiguredError struct {
	Class OpClass
	Name  string
}

func (e *OperationNotConfiguredError) Error() string {
	return fmt.Sprintf("%s %q is not configured", e.Class, e.Name)
}

// errorResponse sends a JSON error envelope with the given status and
// message. It is the low-level building block for every error path below.
func (r *Router) errorResponse(w http.ResponseWriter, req *http.Request, status int, message any) {
	err := WriteJSON(w, status, Envelope{"error": message}, nil)
	if err != nil {
		r.logger.Error(err.Error(), "request_method", req.Method, "request_url", req.URL.String())
		w.WriteHeader(http.StatusInternalServerError)
	}
}

// respondError maps a dispatch or store error onto the HTTP taxonomy:
// invalid identifiers are the client's fault (400), a missing entity is 404
// with the attempted identifier for diagnostics, configuration gaps and
// everything unexpected are the server's fault (500). Nothing may have been
// written to w before this is called.
func (r *Router) respondError(w http.ResponseWriter, req *http.Request, op string, k key.Composite, err error) {
	var invalid *key.InvalidError
	var notConfigured *NotConfiguredError
	var opNotConfigured *OperationNotConfiguredError

	switch {
	case errors.As(err, &invalid):
		r.logger.Warn("invalid identifier", "resource", r.tag, "op", op, "value", invalid.Value, "path", invalid.Path)
		r.errorResponse(w, req, http.StatusBadRequest, err.Error())

	case errors.Is(err, ops.ErrNotFound):
		message := "the requested resource could not be found"
		if k.Primary.ID != "" {
			message = fmt.Sprintf("%s could not be found", k)
		}
		r.logger.Info("not found", "resource", r.tag, "op", op, "key", k.String())
		r.errorResponse(w, req, http.StatusNotFound, message)

	case errors.As(err, &notConfigured), errors.As(err, &opNotConfigured):
		r.logger.Error(err.Error(), "resource", r.tag, "op", op)
		r.errorResponse(w, req, http.StatusInternalServerError, "the operation is not configured on this resource")

	default:
		r.logger.Error(err.Error(), "resource", r.tag, "op", op, "key", k.String(),
			"request_method", req.Method, "request_url", req.URL.String())
		r.errorResponse(w, req, http.StatusInternalServerError,
			"the server encountered a problem and could not process your request")
	}
}

// badRequestResponse sends a 400 with the error message from the caller.
// Used for malformed request bodies, before any operation runs.
func (r *Router) badRequestResponse(w http.ResponseWriter, req *http.Request, err error) {
	r.errorResponse(w, req, http.StatusBadRequest, err.Error())
}
