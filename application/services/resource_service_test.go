package services

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jameslaisianto/Back-end-web-dev/domain/core/entities"
	"github.com/jameslaisianto/Back-end-web-dev/domain/core/valueobjects"
	"github.com/jameslaisianto/Back-end-web-dev/domain/filter"
	pkgerrors "github.com/jameslaisianto/Back-end-web-dev/pkg/errors"
)

func TestAuthenticatedUpdate_MergesIntoProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tok := f.issue(t, "alice", "pw1", valueobjects.ReadUpdate)

	err := f.resources.AuthenticatedUpdate(ctx, tok.Token, dataTable, "P", "R", map[string]interface{}{"City": "Van"})
	require.NoError(t, err)

	e, err := f.resources.ReadEntity(ctx, dataTable, "P", "R")
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{
		"City": "Van",
		"Age":  float64(30),
		"Name": "Alice",
	}, e.Properties)
}

func TestAuthenticatedUpdate_ReadOnlyTokenIsForbidden(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tok := f.issue(t, "alice", "pw1", valueobjects.ReadOnly)

	err := f.resources.AuthenticatedUpdate(ctx, tok.Token, dataTable, "P", "R", map[string]interface{}{"City": "Van"})
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, pkgerrors.StatusOf(err))

	e, err := f.resources.ReadEntity(ctx, dataTable, "P", "R")
	require.NoError(t, err)
	_, has := e.Get("City")
	assert.False(t, has, "failed update must not write")
}

func TestAuthenticatedUpdate_ScopeMismatchIsNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tok := f.issue(t, "alice", "pw1", valueobjects.ReadUpdate)

	props := map[string]interface{}{"City": "Van"}
	tests := []struct {
		name, table, partition, row string
	}{
		{"other entity", dataTable, "CA", "Bob"},
		{"other row", dataTable, "P", "Other"},
		{"other table", authTable, "P", "R"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.resources.AuthenticatedUpdate(ctx, tok.Token, tt.table, tt.partition, tt.row, props)
			assert.True(t, pkgerrors.IsNotFound(err))
		})
	}

	bob, err := f.resources.ReadEntity(ctx, dataTable, "CA", "Bob")
	require.NoError(t, err)
	assert.Empty(t, bob.Properties)
}

func TestAuthenticatedUpdate_RejectsBadProperties(t *testing.T) {
	f := newFixture(t)
	tok := f.issue(t, "alice", "pw1", valueobjects.ReadUpdate)

	err := f.resources.AuthenticatedUpdate(context.Background(), tok.Token, dataTable, "P", "R",
		map[string]interface{}{entities.PartitionProperty: "Q"})
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestAuthenticatedAccess_Expiry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tok := f.issue(t, "alice", "pw1", valueobjects.ReadUpdate)

	f.clock.Advance(time.Hour)
	_, err := f.resources.AuthenticatedRead(ctx, tok.Token, dataTable, "P", "R")
	require.NoError(t, err)

	f.clock.Advance(24 * time.Hour)
	_, err = f.resources.AuthenticatedRead(ctx, tok.Token, dataTable, "P", "R")
	assert.True(t, pkgerrors.IsNotFound(err))

	err = f.resources.AuthenticatedUpdate(ctx, tok.Token, dataTable, "P", "R", map[string]interface{}{"City": "Van"})
	assert.True(t, pkgerrors.IsForbidden(err))

	err = f.resources.AuthenticatedUpdate(ctx, tok.Token, dataTable, "CA", "Bob", map[string]interface{}{"City": "Van"})
	assert.True(t, pkgerrors.IsNotFound(err), "expired token for another entity")
}

func TestAuthenticatedRead_GarbageTokenIsNotFound(t *testing.T) {
	f := newFixture(t)

	for _, raw := range []string{"", "not-a-token", "a.b.c"} {
		_, err := f.resources.AuthenticatedRead(context.Background(), raw, dataTable, "P", "R")
		assert.True(t, pkgerrors.IsNotFound(err), "token %q", raw)
	}
}

func TestAuthenticatedRead_MissingEntityIsNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tok := f.issue(t, "alice", "pw1", valueobjects.ReadUpdate)

	table, err := f.cache.Lookup(ctx, dataTable)
	require.NoError(t, err)
	require.NoError(t, table.Delete(ctx, "P", "R"))

	_, err = f.resources.AuthenticatedRead(ctx, tok.Token, dataTable, "P", "R")
	assert.True(t, pkgerrors.IsNotFound(err))

	// insert-or-merge recreates the profile
	require.NoError(t, f.resources.AuthenticatedUpdate(ctx, tok.Token, dataTable, "P", "R", map[string]interface{}{"City": "Van"}))
	props, err := f.resources.AuthenticatedRead(ctx, tok.Token, dataTable, "P", "R")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"City": "Van"}, props)
}

func TestAdmin_CreateAndDeleteTable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.resources.CreateTable(ctx, "Extra")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = f.resources.CreateTable(ctx, "Extra")
	require.NoError(t, err)
	assert.False(t, created)

	opensBefore := f.store.Opens()
	require.NoError(t, f.resources.DeleteTable(ctx, "Extra"))

	created, err = f.resources.CreateTable(ctx, "Extra")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, opensBefore+1, f.store.Opens(), "dropped table must be reopened")

	require.NoError(t, f.resources.DeleteTable(ctx, "Extra"))
	assert.True(t, pkgerrors.IsNotFound(f.resources.DeleteTable(ctx, "Extra")))
}

func TestAdmin_UpdateAndDeleteEntity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.resources.UpdateEntity(ctx, dataTable, "US", "Eve", map[string]interface{}{"Age": float64(22)}))
	require.NoError(t, f.resources.UpdateEntity(ctx, dataTable, "US", "Eve", map[string]interface{}{"City": "NYC"}))

	e, err := f.resources.ReadEntity(ctx, dataTable, "US", "Eve")
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"Age": float64(22), "City": "NYC"}, e.Properties)

	require.NoError(t, f.resources.DeleteEntity(ctx, dataTable, "US", "Eve"))
	assert.True(t, pkgerrors.IsNotFound(f.resources.DeleteEntity(ctx, dataTable, "US", "Eve")))
	_, err = f.resources.ReadEntity(ctx, dataTable, "US", "Eve")
	assert.True(t, pkgerrors.IsNotFound(err))

	err = f.resources.UpdateEntity(ctx, "NoSuchTable", "US", "Eve", map[string]interface{}{"Age": float64(1)})
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestAdmin_ReadEntities(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.resources.UpdateEntity(ctx, dataTable, "CA", "Ann", map[string]interface{}{"City": "Van"}))
	require.NoError(t, f.resources.UpdateEntity(ctx, dataTable, "CA", "Bob", map[string]interface{}{"City": "Tor"}))

	all, err := f.resources.ReadEntities(ctx, dataTable, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"CA/Ann", "CA/Bob", "P/R"}, keys(all))

	inCA, err := f.resources.ReadEntities(ctx, dataTable, []filter.Predicate{filter.PartitionEquals("CA")})
	require.NoError(t, err)
	assert.Equal(t, []string{"CA/Ann", "CA/Bob"}, keys(inCA))

	withCity, err := f.resources.ReadEntities(ctx, dataTable, []filter.Predicate{{Property: "City", Expected: filter.Wildcard}})
	require.NoError(t, err)
	assert.Equal(t, []string{"CA/Ann", "CA/Bob"}, keys(withCity))

	van, err := f.resources.ReadEntities(ctx, dataTable, []filter.Predicate{{Property: "City", Expected: "Van"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"CA/Ann"}, keys(van))

	_, err = f.resources.ReadEntities(ctx, "NoSuchTable", nil)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestAdmin_AddAndUpdateProperty(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	n, err := f.resources.UpdateProperty(ctx, dataTable, map[string]interface{}{"Name": "Renamed"})
	require.NoError(t, err)
	assert.Equal(t, 1, n, "only P/R has Name")

	n, err = f.resources.AddProperty(ctx, dataTable, map[string]interface{}{"Verified": true})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	all, err := f.resources.ReadEntities(ctx, dataTable, []filter.Predicate{{Property: "Verified", Expected: "true"}})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	bob, err := f.resources.ReadEntity(ctx, dataTable, "CA", "Bob")
	require.NoError(t, err)
	_, has := bob.Get("Name")
	assert.False(t, has)

	_, err = f.resources.AddProperty(ctx, dataTable, nil)
	assert.True(t, pkgerrors.IsValidation(err))
}

func keys(list []*entities.Entity) []string {
	out := make([]string, len(list))
	for i, e := range list {
		out[i] = e.Partition + "/" + e.Row
	}
	return out
}
