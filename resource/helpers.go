// resource/helpers.go
// JSON plumbing and parameter helpers shared by the CRUD and dispatch
// handlers.
package resource

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"

	"github.com/restmount/restmount/ops"
)

// Envelope is the top-level JSON wrapper type used for all responses.
// Every response body is a JSON object with at least one named key,
// e.g. {"user": {...}} or {"error": "..."}.
type Envelope map[string]any

// WriteJSON marshals data to indented JSON, applies any custom headers,
// sets Content-Type, writes the status code, and streams the body.
func WriteJSON(w http.ResponseWriter, status int, data Envelope, headers http.Header) error {
	js, err := json.MarshalIndent(data, "", "\t")
	if err != nil {
		return err
	}
	js = append(js, '\n') // Trailing newline makes curl output nicer.

	for k, v := range headers {
		w.Header()[k] = v
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(js)
	return nil
}

// readDocument decodes a single JSON object from the request body into a
// Document. It caps the body at 1 MB and rejects trailing data. An empty
// body is a valid empty document, so actions can be invoked without a
// payload.
func readDocument(w http.ResponseWriter, req *http.Request) (ops.Document, error) {
	req.Body = http.MaxBytesReader(w, req.Body, 1_048_576)

	dec := json.NewDecoder(req.Body)

	var doc ops.Document
	err := dec.Decode(&doc)
	if errors.Is(err, io.EOF) {
		return ops.Document{}, nil
	}
	if err != nil {
		return nil, err
	}

	// Ensure there is no second JSON value in the body.
	err = dec.Decode(&struct{}{})
	if !errors.Is(err, io.EOF) {
		return nil, errors.New("body must only contain a single JSON value")
	}

	if doc == nil {
		doc = ops.Document{}
	}
	return doc, nil
}

// queryParams flattens the URL query string into Params, keeping the first
// value of each key.
func queryParams(req *http.Request) ops.Params {
	return flatten(req.URL.Query())
}

// mergeParams builds the facet parameter set: the shallow merge of query
// parameters and path variables, with path variables overriding the query on
// key collision.
func mergeParams(query url.Values, vars map[string]string) ops.Params {
	params := flatten(query)
	for k, v := range vars {
		params[k] = v
	}
	return params
}

func flatten(values url.Values) ops.Params {
	params := make(ops.Params, len(values))
	for k, vs := range values {
		if len(vs) > 0 {
			params[k] = vs[0]
		}
	}
	return params
}
