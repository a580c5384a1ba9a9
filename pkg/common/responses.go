// Package common holds the request and response helpers shared by every
// service's handlers.
package common

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	pkgerrors "github.com/jameslaisianto/Back-end-web-dev/pkg/errors"
)

// MaxBodyBytes bounds every JSON request body
const MaxBodyBytes = 1 << 20

// RespondJSON sends a JSON response. A nil body writes only the status.
func RespondJSON(w http.ResponseWriter, status int, data interface{}) error {
	if data == nil {
		w.WriteHeader(status)
		return nil
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// DecodeJSONObject parses a request body holding one JSON object. An empty
// body yields an empty map; anything else that is not an object is a
// validation error.
func DecodeJSONObject(r *http.Request) (map[string]interface{}, error) {
	body := map[string]interface{}{}
	if r.Body == nil {
		return body, nil
	}

	decoder := json.NewDecoder(io.LimitReader(r.Body, MaxBodyBytes+1))
	err := decoder.Decode(&body)
	switch {
	case errors.Is(err, io.EOF):
		return map[string]interface{}{}, nil
	case err != nil:
		return nil, pkgerrors.NewValidationError("request body must be a JSON object")
	}
	if decoder.More() {
		return nil, pkgerrors.NewValidationError("request body must hold a single JSON object")
	}
	if body == nil {
		// a literal null
		return map[string]interface{}{}, nil
	}
	return body, nil
}
