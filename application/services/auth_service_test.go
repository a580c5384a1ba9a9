package services

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jameslaisianto/Back-end-web-dev/domain/core/entities"
	"github.com/jameslaisianto/Back-end-web-dev/domain/core/valueobjects"
	pkgerrors "github.com/jameslaisianto/Back-end-web-dev/pkg/errors"
)

func TestIssueToken_ValidPasswordReadsOwnProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tok := f.issue(t, "alice", "pw1", valueobjects.ReadUpdate)
	assert.NotEmpty(t, tok.Token)
	assert.Equal(t, "P", tok.Partition)
	assert.Equal(t, "R", tok.Row)
	assert.Equal(t, epoch.Add(24*time.Hour), tok.ExpiresAt)

	props, err := f.resources.AuthenticatedRead(ctx, tok.Token, dataTable, "P", "R")
	require.NoError(t, err)
	assert.Equal(t, "Alice", props["Name"])
	assert.Equal(t, "30", props["Age"])

	_, err = f.resources.AuthenticatedRead(ctx, tok.Token, dataTable, "OtherPartition", "OtherRow")
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestIssueToken_Rejections(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name   string
		user   string
		body   map[string]interface{}
		status int
	}{
		{"wrong password", "alice", passwordBody("wrong"), http.StatusNotFound},
		{"unknown user", "mallory", passwordBody("pw1"), http.StatusNotFound},
		{"empty body cannot match", "alice", map[string]interface{}{}, http.StatusNotFound},
		{"nil body cannot match", "alice", nil, http.StatusNotFound},
		{"empty password", "alice", passwordBody(""), http.StatusBadRequest},
		{"non-string password", "alice", map[string]interface{}{"Password": float64(1)}, http.StatusBadRequest},
		{"wrong property name", "alice", map[string]interface{}{"Pass": "pw1"}, http.StatusBadRequest},
		{"extra property", "alice", map[string]interface{}{"Password": "pw1", "Other": "x"}, http.StatusBadRequest},
		{"missing user", "", passwordBody("pw1"), http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok, err := f.auth.IssueToken(context.Background(), tt.user, tt.body, valueobjects.ReadOnly)
			require.Error(t, err)
			assert.Nil(t, tok)
			assert.Equal(t, tt.status, pkgerrors.StatusOf(err))
		})
	}
}

func TestIssueToken_MalformedCredentialIsInternal(t *testing.T) {
	f := newFixture(t)
	broken := entities.NewEntity("Userid", "carol")
	broken.Merge(map[string]interface{}{entities.PasswordProperty: "pw3"})
	f.store.Seed(authTable, broken)

	_, err := f.auth.IssueToken(context.Background(), "carol", passwordBody("pw3"), valueobjects.ReadOnly)
	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, pkgerrors.StatusOf(err))
}

func TestIssueToken_BcryptPassword(t *testing.T) {
	f := newFixture(t)
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	f.store.Seed(authTable, credentialEntity("dave", string(hash), "US", "Dave"))

	tok, err := f.auth.IssueToken(context.Background(), "dave", passwordBody("s3cret"), valueobjects.ReadOnly)
	require.NoError(t, err)
	assert.Equal(t, "US", tok.Partition)

	_, err = f.auth.IssueToken(context.Background(), "dave", passwordBody(string(hash)), valueobjects.ReadOnly)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestIssueToken_MissingAuthTable(t *testing.T) {
	f := newFixture(t)
	auth, err := f.cache.Lookup(context.Background(), authTable)
	require.NoError(t, err)
	require.NoError(t, auth.DeleteTable(context.Background()))

	_, err = f.auth.IssueToken(context.Background(), "alice", passwordBody("pw1"), valueobjects.ReadOnly)
	assert.True(t, pkgerrors.IsNotFound(err))
}
