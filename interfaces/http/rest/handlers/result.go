// Package handlers adapts the application services to HTTP.
package handlers

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/jameslaisianto/Back-end-web-dev/pkg/common"
	pkgerrors "github.com/jameslaisianto/Back-end-web-dev/pkg/errors"
)

// Result is what a handler produced: a status and an optional JSON body.
type Result struct {
	Status int
	Body   interface{}
}

// OK is a 200 result with body
func OK(body interface{}) Result {
	return Result{Status: http.StatusOK, Body: body}
}

// HandlerFunc handles a request and returns either a result or an error
type HandlerFunc func(r *http.Request) (Result, error)

// Adapter turns HandlerFuncs into http.HandlerFuncs. Errors go through
// the shared error handler, which picks the status from the AppError type.
type Adapter struct {
	errors *pkgerrors.ErrorHandler
	logger *zap.Logger
}

// NewAdapter creates an adapter
func NewAdapter(errorHandler *pkgerrors.ErrorHandler, logger *zap.Logger) *Adapter {
	return &Adapter{errors: errorHandler, logger: logger}
}

// Wrap converts h into an http.HandlerFunc
func (a *Adapter) Wrap(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := h(r)
		if err != nil {
			a.errors.Handle(w, r, err)
			return
		}
		if res.Status == 0 {
			res.Status = http.StatusOK
		}
		if err := common.RespondJSON(w, res.Status, res.Body); err != nil {
			a.logger.Error("Failed to encode response", zap.Error(err))
		}
	}
}

// pathSegments splits the wildcard tail of the route into decoded
// segments. It fails unless there are exactly one of the wanted counts and
// none is empty.
func pathSegments(r *http.Request, counts ...int) ([]string, error) {
	tail := chi.URLParam(r, "*")
	parts := strings.Split(tail, "/")
	if tail == "" {
		parts = nil
	}

	wanted := false
	for _, n := range counts {
		if len(parts) == n {
			wanted = true
			break
		}
	}
	if !wanted {
		return nil, pkgerrors.NewValidationError("wrong number of path segments")
	}

	// chi routes on RawPath when the request had escapes the default
	// encoding would not produce; only then are the parts still escaped.
	escaped := r.URL.RawPath != ""
	for i, p := range parts {
		if escaped {
			decoded, err := url.PathUnescape(p)
			if err != nil {
				return nil, pkgerrors.NewValidationError("malformed path segment")
			}
			p = decoded
		}
		if p == "" {
			return nil, pkgerrors.NewValidationError("path segments cannot be empty")
		}
		parts[i] = p
	}
	return parts, nil
}
