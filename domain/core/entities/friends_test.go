package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFriendList(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected FriendList
		wantErr  bool
	}{
		{name: "empty", input: "", expected: FriendList{}},
		{name: "single", input: "USA;Franklin,Aretha", expected: FriendList{{"USA", "Franklin,Aretha"}}},
		{name: "several", input: "USA;Lamar|Canada;Drake", expected: FriendList{{"USA", "Lamar"}, {"Canada", "Drake"}}},
		{name: "missing separator", input: "USA", wantErr: true},
		{name: "empty name", input: "USA;", wantErr: true},
		{name: "trailing bar", input: "USA;Lamar|", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, err := ParseFriendList(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, list)
			assert.Equal(t, tt.input, list.String())
		})
	}
}

func TestFriendList_AddIsIdempotent(t *testing.T) {
	f := Friend{Country: "USA", Name: "Lamar"}

	list, changed := FriendList{}.Add(f)
	assert.True(t, changed)
	assert.Equal(t, "USA;Lamar", list.String())

	again, changed := list.Add(f)
	assert.False(t, changed)
	assert.Equal(t, list, again)
}

func TestFriendList_RemoveNonMember(t *testing.T) {
	list := FriendList{{"USA", "Lamar"}}

	out, changed := list.Remove(Friend{Country: "Canada", Name: "Drake"})
	assert.False(t, changed)
	assert.Equal(t, list, out)

	out, changed = list.Remove(Friend{Country: "USA", Name: "Lamar"})
	assert.True(t, changed)
	assert.Empty(t, out)
	assert.Equal(t, "", out.String())
}

func TestNewFriend_RejectsSeparators(t *testing.T) {
	_, err := NewFriend("USA", "a|b")
	assert.Error(t, err)
	_, err = NewFriend("US;A", "b")
	assert.Error(t, err)
	_, err = NewFriend("", "b")
	assert.Error(t, err)

	f, err := NewFriend("USA", "Lamar,Kendrick")
	require.NoError(t, err)
	assert.Equal(t, "USA;Lamar,Kendrick", f.String())
}
