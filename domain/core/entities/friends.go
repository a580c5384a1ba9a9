package entities

import (
	"errors"
	"fmt"
	"strings"
)

// Profile properties maintained by the session and push services.
const (
	FriendsProperty = "Friends"
	StatusProperty  = "Status"
	UpdatesProperty = "Updates"
)

const (
	friendSeparator = "|"
	fieldSeparator  = ";"
)

// Friend identifies another user's profile entity by country (partition)
// and name (row).
type Friend struct {
	Country string `json:"country"`
	Name    string `json:"name"`
}

// NewFriend creates a validated Friend
func NewFriend(country, name string) (Friend, error) {
	f := Friend{Country: country, Name: name}
	if err := f.Validate(); err != nil {
		return Friend{}, err
	}
	return f, nil
}

// Validate rejects empty fields and fields containing list separators
func (f Friend) Validate() error {
	if f.Country == "" || f.Name == "" {
		return errors.New("friend country and name cannot be empty")
	}
	if strings.ContainsAny(f.Country, friendSeparator+fieldSeparator) ||
		strings.ContainsAny(f.Name, friendSeparator+fieldSeparator) {
		return fmt.Errorf("friend country and name cannot contain %q or %q", friendSeparator, fieldSeparator)
	}
	return nil
}

func (f Friend) String() string {
	return f.Country + fieldSeparator + f.Name
}

// FriendList is an ordered list of friends, encoded as
// "country;name|country;name".
type FriendList []Friend

// ParseFriendList decodes the stored form. The empty string is the empty list.
func ParseFriendList(s string) (FriendList, error) {
	if s == "" {
		return FriendList{}, nil
	}

	parts := strings.Split(s, friendSeparator)
	list := make(FriendList, 0, len(parts))
	for _, part := range parts {
		country, name, ok := strings.Cut(part, fieldSeparator)
		if !ok {
			return nil, fmt.Errorf("malformed friend entry %q", part)
		}
		f, err := NewFriend(country, name)
		if err != nil {
			return nil, fmt.Errorf("malformed friend entry %q: %w", part, err)
		}
		list = append(list, f)
	}
	return list, nil
}

// Contains reports membership
func (l FriendList) Contains(f Friend) bool {
	for _, existing := range l {
		if existing == f {
			return true
		}
	}
	return false
}

// Add appends f unless already present. The second result reports whether
// the list changed.
func (l FriendList) Add(f Friend) (FriendList, bool) {
	if l.Contains(f) {
		return l, false
	}
	out := make(FriendList, len(l), len(l)+1)
	copy(out, l)
	return append(out, f), true
}

// Remove drops every occurrence of f. The second result reports whether
// the list changed.
func (l FriendList) Remove(f Friend) (FriendList, bool) {
	out := make(FriendList, 0, len(l))
	for _, existing := range l {
		if existing != f {
			out = append(out, existing)
		}
	}
	return out, len(out) != len(l)
}

// String encodes the list in its stored form
func (l FriendList) String() string {
	parts := make([]string, len(l))
	for i, f := range l {
		parts[i] = f.String()
	}
	return strings.Join(parts, friendSeparator)
}
