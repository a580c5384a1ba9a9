package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jameslaisianto/Back-end-web-dev/application/ports"
	"github.com/jameslaisianto/Back-end-web-dev/domain/core/entities"
	pkgerrors "github.com/jameslaisianto/Back-end-web-dev/pkg/errors"
)

func updatesOf(t *testing.T, f *fixture, partition, row string) string {
	t.Helper()
	e, err := f.resources.ReadEntity(context.Background(), dataTable, partition, row)
	require.NoError(t, err)
	return e.StringProperty(entities.UpdatesProperty)
}

func TestPushStatus_AppendsToEveryFriend(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.store.Seed(dataTable, entities.NewEntity("US", "Eve"))

	res, err := f.push.PushStatus(ctx, "P", "R", "hello", "CA;Bob|US;Eve")
	require.NoError(t, err)
	assert.Equal(t, &PushResult{Recipients: 2, Delivered: 2}, res)

	_, err = f.push.PushStatus(ctx, "P", "R", "again", "CA;Bob")
	require.NoError(t, err)

	assert.Equal(t, "hello\nagain\n", updatesOf(t, f, "CA", "Bob"))
	assert.Equal(t, "hello\n", updatesOf(t, f, "US", "Eve"))
}

func TestPushStatus_MissingRecipientDoesNotStopOthers(t *testing.T) {
	f := newFixture(t)

	res, err := f.push.PushStatus(context.Background(), "P", "R", "hello", "XX;Ghost|CA;Bob")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Recipients)
	assert.Equal(t, 1, res.Delivered)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, "hello\n", updatesOf(t, f, "CA", "Bob"))

	table, err := f.cache.Lookup(context.Background(), dataTable)
	require.NoError(t, err)
	_, err = table.Retrieve(context.Background(), "XX", "Ghost")
	assert.ErrorIs(t, err, ports.ErrEntityNotFound, "push must not create profiles")
}

// brokenTable fails writes for one recipient
type brokenTable struct {
	ports.Table
	failRow string
}

func (b brokenTable) InsertOrMerge(ctx context.Context, e *entities.Entity) error {
	if e.Row == b.failRow {
		return assert.AnError
	}
	return b.Table.InsertOrMerge(ctx, e)
}

type fixedCache struct{ table ports.Table }

func (c fixedCache) Lookup(context.Context, string) (ports.Table, error) { return c.table, nil }
func (c fixedCache) DeleteEntry(string)                                 {}

func TestPushStatus_FailingRecipientIsCounted(t *testing.T) {
	f := newFixture(t)
	f.store.Seed(dataTable, entities.NewEntity("US", "Eve"))
	table, err := f.cache.Lookup(context.Background(), dataTable)
	require.NoError(t, err)

	svc := NewPushService(fixedCache{brokenTable{Table: table, failRow: "Bob"}}, dataTable, 2, zap.NewNop(), nil)
	res, err := svc.PushStatus(context.Background(), "P", "R", "hello", "CA;Bob|US;Eve")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, 1, res.Delivered)
	assert.Equal(t, "hello\n", updatesOf(t, f, "US", "Eve"))
}

func TestPushStatus_EmptyAndMalformedLists(t *testing.T) {
	f := newFixture(t)

	res, err := f.push.PushStatus(context.Background(), "P", "R", "hello", "")
	require.NoError(t, err)
	assert.Equal(t, 0, res.Recipients)

	_, err = f.push.PushStatus(context.Background(), "P", "R", "hello", "no-separator")
	assert.True(t, pkgerrors.IsValidation(err))
}
