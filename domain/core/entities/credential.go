package entities

import (
	"crypto/subtle"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Properties of a credential record in the authentication table.
const (
	PasswordProperty      = "Password"
	DataPartitionProperty = "DataPartition"
	DataRowProperty       = "DataRow"
)

// ErrMalformedCredential is returned when a credential record does not name
// the profile entity it grants access to.
var ErrMalformedCredential = errors.New("credential record is missing DataPartition or DataRow")

// Credential is a user's stored password and the location of their profile.
type Credential struct {
	UserID        string
	Password      string
	DataPartition string
	DataRow       string
}

// CredentialFromEntity reads a credential out of an authentication table row
func CredentialFromEntity(e *Entity) *Credential {
	return &Credential{
		UserID:        e.Row,
		Password:      e.StringProperty(PasswordProperty),
		DataPartition: e.StringProperty(DataPartitionProperty),
		DataRow:       e.StringProperty(DataRowProperty),
	}
}

// Matches compares a candidate password with the stored one. Stored values
// with a bcrypt prefix are compared as hashes, anything else in constant time.
func (c *Credential) Matches(password string) bool {
	if password == "" || c.Password == "" {
		return false
	}
	if isBcryptHash(c.Password) {
		return bcrypt.CompareHashAndPassword([]byte(c.Password), []byte(password)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(c.Password), []byte(password)) == 1
}

// HasProfile reports whether the record names a profile entity
func (c *Credential) HasProfile() bool {
	return c.DataPartition != "" && c.DataRow != ""
}

func isBcryptHash(s string) bool {
	return strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$")
}
