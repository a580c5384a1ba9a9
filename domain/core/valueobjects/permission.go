package valueobjects

import (
	"errors"
	"strings"
)

// Permission is the set of operations a capability token grants on the
// single entity it names.
type Permission uint8

const (
	// PermissionRead allows retrieving the entity.
	PermissionRead Permission = 1 << iota
	// PermissionUpdate allows merging properties into the entity.
	PermissionUpdate
)

const (
	// ReadOnly is the permission set handed out by GetReadToken.
	ReadOnly = PermissionRead
	// ReadUpdate is the permission set handed out by GetUpdateToken.
	ReadUpdate = PermissionRead | PermissionUpdate
)

// Has reports whether every bit of required is granted.
func (p Permission) Has(required Permission) bool {
	return required != 0 && p&required == required
}

// IsZero reports whether no operation is granted
func (p Permission) IsZero() bool {
	return p == 0
}

// String encodes the set in the compact form carried inside tokens ("r", "ru").
func (p Permission) String() string {
	var b strings.Builder
	if p.Has(PermissionRead) {
		b.WriteByte('r')
	}
	if p.Has(PermissionUpdate) {
		b.WriteByte('u')
	}
	return b.String()
}

// ParsePermission decodes the compact form produced by String.
func ParsePermission(s string) (Permission, error) {
	if s == "" {
		return 0, errors.New("permission set cannot be empty")
	}

	var p Permission
	for _, c := range s {
		switch c {
		case 'r':
			p |= PermissionRead
		case 'u':
			p |= PermissionUpdate
		default:
			return 0, errors.New("unknown permission " + string(c))
		}
	}
	return p, nil
}
