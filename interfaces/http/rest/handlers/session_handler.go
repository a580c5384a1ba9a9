package handlers

import (
	"net/http"

	"github.com/jameslaisianto/Back-end-web-dev/application/services"
	"github.com/jameslaisianto/Back-end-web-dev/domain/core/entities"
	"github.com/jameslaisianto/Back-end-web-dev/pkg/common"
)

// SessionHandler serves the user-facing session operations
type SessionHandler struct {
	sessions *services.SessionService
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessions *services.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// SignOnResponse carries the token a sign-on obtained
type SignOnResponse struct {
	Token string `json:"token"`
}

// SignOn handles POST /SignOn/{user}
func (h *SessionHandler) SignOn(r *http.Request) (Result, error) {
	segs, err := pathSegments(r, 1)
	if err != nil {
		return Result{}, err
	}
	body, err := common.DecodeJSONObject(r)
	if err != nil {
		return Result{}, err
	}
	password, err := services.PasswordFromBody(body)
	if err != nil {
		return Result{}, err
	}

	sess, err := h.sessions.SignOn(r.Context(), segs[0], password)
	if err != nil {
		return Result{}, err
	}
	return OK(SignOnResponse{Token: sess.Token}), nil
}

// SignOff handles POST /SignOff/{user}
func (h *SessionHandler) SignOff(r *http.Request) (Result, error) {
	segs, err := pathSegments(r, 1)
	if err != nil {
		return Result{}, err
	}
	if err := h.sessions.SignOff(r.Context(), segs[0]); err != nil {
		return Result{}, err
	}
	return Result{Status: http.StatusOK}, nil
}

// AddFriend handles PUT /AddFriend/{user}/{country}/{name}
func (h *SessionHandler) AddFriend(r *http.Request) (Result, error) {
	segs, err := pathSegments(r, 3)
	if err != nil {
		return Result{}, err
	}
	if err := h.sessions.AddFriend(r.Context(), segs[0], segs[1], segs[2]); err != nil {
		return Result{}, err
	}
	return Result{Status: http.StatusOK}, nil
}

// UnFriend handles PUT /UnFriend/{user}/{country}/{name}
func (h *SessionHandler) UnFriend(r *http.Request) (Result, error) {
	segs, err := pathSegments(r, 3)
	if err != nil {
		return Result{}, err
	}
	if err := h.sessions.RemoveFriend(r.Context(), segs[0], segs[1], segs[2]); err != nil {
		return Result{}, err
	}
	return Result{Status: http.StatusOK}, nil
}

// UpdateStatus handles PUT /UpdateStatus/{user}/{status}
func (h *SessionHandler) UpdateStatus(r *http.Request) (Result, error) {
	segs, err := pathSegments(r, 2)
	if err != nil {
		return Result{}, err
	}
	if err := h.sessions.UpdateStatus(r.Context(), segs[0], segs[1]); err != nil {
		return Result{}, err
	}
	return Result{Status: http.StatusOK}, nil
}

// ReadFriendList handles GET /ReadFriendList/{user}
func (h *SessionHandler) ReadFriendList(r *http.Request) (Result, error) {
	segs, err := pathSegments(r, 1)
	if err != nil {
		return Result{}, err
	}
	friends, err := h.sessions.ReadFriendList(r.Context(), segs[0])
	if err != nil {
		return Result{}, err
	}
	return OK(map[string]string{entities.FriendsProperty: friends}), nil
}
