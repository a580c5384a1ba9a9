package handlers

import (
	"net/http"

	"github.com/jameslaisianto/Back-end-web-dev/application/services"
	"github.com/jameslaisianto/Back-end-web-dev/domain/core/entities"
	"github.com/jameslaisianto/Back-end-web-dev/pkg/common"
	pkgerrors "github.com/jameslaisianto/Back-end-web-dev/pkg/errors"
)

// PushHandler serves status fan-out
type PushHandler struct {
	push *services.PushService
}

// NewPushHandler creates a new push handler
func NewPushHandler(push *services.PushService) *PushHandler {
	return &PushHandler{push: push}
}

// PushStatus handles POST /PushStatus/{country}/{name}/{status} with body
// {"Friends": "<encoded list>"}. The answer counts deliveries; individual
// recipient failures never change the status.
func (h *PushHandler) PushStatus(r *http.Request) (Result, error) {
	segs, err := pathSegments(r, 3)
	if err != nil {
		return Result{}, err
	}
	body, err := common.DecodeJSONObject(r)
	if err != nil {
		return Result{}, err
	}
	friends, ok := body[entities.FriendsProperty].(string)
	if !ok {
		return Result{}, pkgerrors.NewValidationError(`body must be {"Friends": "<encoded list>"}`)
	}

	result, err := h.push.PushStatus(r.Context(), segs[0], segs[1], segs[2], friends)
	if err != nil {
		return Result{}, err
	}
	return OK(result), nil
}
