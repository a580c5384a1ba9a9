// Package captoken mints and verifies capability tokens: signed values that
// grant a fixed permission set on exactly one entity until they expire.
package captoken

import (
	"errors"
	"time"

	"github.com/jameslaisianto/Back-end-web-dev/domain/core/valueobjects"
)

var (
	// ErrInvalid covers malformed tokens, bad signatures and foreign issuers.
	ErrInvalid = errors.New("capability token is invalid")
	// ErrExpired is returned for a well-formed token past its expiry.
	ErrExpired = errors.New("capability token has expired")
	// ErrScopeMismatch is returned when a token names a different entity.
	ErrScopeMismatch = errors.New("capability token does not cover this entity")
	// ErrPermissionDenied is returned when the scope matches but the
	// permission set lacks the requested operation.
	ErrPermissionDenied = errors.New("capability token does not grant this operation")
)

// Token is the verified content of a capability token.
type Token struct {
	ID          string
	Scope       valueobjects.Scope
	Permissions valueobjects.Permission
	IssuedAt    time.Time
	ExpiresAt   time.Time
}

// Authorizes checks the token against a request. Scope is checked first so
// a caller holding a token for another entity learns nothing about this one.
func (t *Token) Authorizes(scope valueobjects.Scope, required valueobjects.Permission) error {
	if !t.Scope.Equals(scope) {
		return ErrScopeMismatch
	}
	if !t.Permissions.Has(required) {
		return ErrPermissionDenied
	}
	return nil
}
