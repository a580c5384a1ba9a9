package handlers

import (
	"net/http"

	"github.com/jameslaisianto/Back-end-web-dev/application/services"
	"github.com/jameslaisianto/Back-end-web-dev/domain/core/valueobjects"
	"github.com/jameslaisianto/Back-end-web-dev/pkg/common"
)

// AuthHandler serves token issuance
type AuthHandler struct {
	auth *services.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(auth *services.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// GetReadToken handles GET /GetReadToken/{user}
func (h *AuthHandler) GetReadToken(r *http.Request) (Result, error) {
	return h.issue(r, valueobjects.ReadOnly)
}

// GetUpdateToken handles GET /GetUpdateToken/{user}
func (h *AuthHandler) GetUpdateToken(r *http.Request) (Result, error) {
	return h.issue(r, valueobjects.ReadUpdate)
}

func (h *AuthHandler) issue(r *http.Request, perms valueobjects.Permission) (Result, error) {
	segs, err := pathSegments(r, 1)
	if err != nil {
		return Result{}, err
	}
	body, err := common.DecodeJSONObject(r)
	if err != nil {
		return Result{}, err
	}

	issued, err := h.auth.IssueToken(r.Context(), segs[0], body, perms)
	if err != nil {
		return Result{}, err
	}
	return OK(issued), nil
}
