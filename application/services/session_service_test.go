package services

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jameslaisianto/Back-end-web-dev/application/ports"
	"github.com/jameslaisianto/Back-end-web-dev/domain/core/entities"
	pkgerrors "github.com/jameslaisianto/Back-end-web-dev/pkg/errors"
)

type sessionFixture struct {
	*fixture
	sessions  *SessionService
	sessStore *SessionStore
	pushes    *mockPushClient
	published *mockPublisher
}

func newSessionFixture(t *testing.T) *sessionFixture {
	t.Helper()
	f := newFixture(t)

	pushes := new(mockPushClient)
	published := new(mockPublisher)
	published.On("Publish", mock.Anything, mock.Anything).Return(nil)

	store := NewSessionStore(f.clock)
	return &sessionFixture{
		fixture: f,
		sessions: NewSessionService(store, localAuth{f.auth}, localData{f.resources}, pushes, published,
			dataTable, f.clock, zap.NewNop()),
		sessStore: store,
		pushes:    pushes,
		published: published,
	}
}

func (f *sessionFixture) friends(t *testing.T) string {
	t.Helper()
	e, err := f.resources.ReadEntity(context.Background(), dataTable, "P", "R")
	require.NoError(t, err)
	return e.StringProperty(entities.FriendsProperty)
}

func TestSignOnAndSignOff(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	sess, err := f.sessions.SignOn(ctx, "alice", "pw1")
	require.NoError(t, err)
	assert.NotEmpty(t, sess.Token)
	assert.Equal(t, "P", sess.Partition)
	assert.Equal(t, "R", sess.Row)

	require.NoError(t, f.sessions.SignOff(ctx, "alice"))
	assert.True(t, pkgerrors.IsNotFound(f.sessions.SignOff(ctx, "alice")))

	assert.Equal(t, []string{"session.signed_on", "session.signed_off"}, f.published.publishedTypes())
}

func TestSignOn_PropagatesAuthStatus(t *testing.T) {
	f := newSessionFixture(t)

	_, err := f.sessions.SignOn(context.Background(), "alice", "wrong")
	assert.Equal(t, http.StatusNotFound, pkgerrors.StatusOf(err))
	assert.Zero(t, f.sessStore.Len())
}

func TestSignOn_SupersededBySignOff(t *testing.T) {
	f := newSessionFixture(t)

	ticket := f.sessStore.Begin("alice")
	f.sessStore.End("alice")
	err := f.sessStore.Commit(ticket, &Session{UserID: "alice"})
	assert.ErrorIs(t, err, errStaleSignOn)

	_, ok := f.sessStore.Get("alice")
	assert.False(t, ok)

	require.NoError(t, f.sessStore.Commit(f.sessStore.Begin("alice"), &Session{UserID: "alice"}))
	_, ok = f.sessStore.Get("alice")
	assert.True(t, ok)
}

func TestOperationsWithoutSessionAreForbidden(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	assert.True(t, pkgerrors.IsForbidden(f.sessions.AddFriend(ctx, "alice", "CA", "Bob")))
	assert.True(t, pkgerrors.IsForbidden(f.sessions.RemoveFriend(ctx, "alice", "CA", "Bob")))
	assert.True(t, pkgerrors.IsForbidden(f.sessions.UpdateStatus(ctx, "alice", "hi")))
	_, err := f.sessions.ReadFriendList(ctx, "alice")
	assert.True(t, pkgerrors.IsForbidden(err))

	f.pushes.AssertNumberOfCalls(t, "PushStatus", 0)
}

func TestAddFriend_Idempotent(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()
	_, err := f.sessions.SignOn(ctx, "alice", "pw1")
	require.NoError(t, err)

	require.NoError(t, f.sessions.AddFriend(ctx, "alice", "CA", "Bob"))
	assert.Equal(t, "CA;Bob", f.friends(t))

	require.NoError(t, f.sessions.AddFriend(ctx, "alice", "CA", "Bob"))
	assert.Equal(t, "CA;Bob", f.friends(t))

	require.NoError(t, f.sessions.AddFriend(ctx, "alice", "US", "Eve"))
	assert.Equal(t, "CA;Bob|US;Eve", f.friends(t))

	list, err := f.sessions.ReadFriendList(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "CA;Bob|US;Eve", list)

	assert.Equal(t, []string{"session.signed_on", "friends.added", "friends.added"}, f.published.publishedTypes())
}

func TestRemoveFriend_NonMemberIsNoop(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()
	_, err := f.sessions.SignOn(ctx, "alice", "pw1")
	require.NoError(t, err)
	require.NoError(t, f.sessions.AddFriend(ctx, "alice", "CA", "Bob"))

	require.NoError(t, f.sessions.RemoveFriend(ctx, "alice", "US", "Eve"))
	assert.Equal(t, "CA;Bob", f.friends(t))

	require.NoError(t, f.sessions.RemoveFriend(ctx, "alice", "CA", "Bob"))
	assert.Equal(t, "", f.friends(t))
}

func TestAddFriend_InvalidFriend(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()
	_, err := f.sessions.SignOn(ctx, "alice", "pw1")
	require.NoError(t, err)

	assert.True(t, pkgerrors.IsValidation(f.sessions.AddFriend(ctx, "alice", "C|A", "Bob")))
}

func TestSessionExpiresWithToken(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()
	_, err := f.sessions.SignOn(ctx, "alice", "pw1")
	require.NoError(t, err)

	f.clock.Advance(25 * time.Hour)
	assert.True(t, pkgerrors.IsForbidden(f.sessions.AddFriend(ctx, "alice", "CA", "Bob")))
	assert.Zero(t, f.sessStore.Len())
}

func TestUpdateStatus_PushesToFriends(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()
	_, err := f.sessions.SignOn(ctx, "alice", "pw1")
	require.NoError(t, err)
	require.NoError(t, f.sessions.AddFriend(ctx, "alice", "CA", "Bob"))

	f.pushes.On("PushStatus", mock.Anything, "P", "R", "hello", "CA;Bob").Return(nil).Once()

	require.NoError(t, f.sessions.UpdateStatus(ctx, "alice", "hello"))

	e, err := f.resources.ReadEntity(ctx, dataTable, "P", "R")
	require.NoError(t, err)
	assert.Equal(t, "hello", e.StringProperty(entities.StatusProperty))
	f.pushes.AssertExpectations(t)
}

func TestUpdateStatus_PushFailureStillSucceeds(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()
	_, err := f.sessions.SignOn(ctx, "alice", "pw1")
	require.NoError(t, err)
	require.NoError(t, f.sessions.AddFriend(ctx, "alice", "CA", "Bob"))

	f.pushes.On("PushStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(pkgerrors.NewUnavailableError("push")).Once()

	require.NoError(t, f.sessions.UpdateStatus(ctx, "alice", "hello"))
	f.pushes.AssertExpectations(t)
}

func TestUpdateStatus_NoFriendsSkipsPush(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()
	_, err := f.sessions.SignOn(ctx, "alice", "pw1")
	require.NoError(t, err)

	require.NoError(t, f.sessions.UpdateStatus(ctx, "alice", "hello"))
	f.pushes.AssertNumberOfCalls(t, "PushStatus", 0)
}

// failingData rejects every authenticated write as an expired token would
type failingData struct {
	localData
}

func (d failingData) UpdateEntityAuth(ctx context.Context, token, table, partition, row string, props map[string]string) error {
	return pkgerrors.NewStatusError(http.StatusForbidden, "token has expired")
}

func TestAddFriend_WriteRejectionSurfacesAsForbidden(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	store := NewSessionStore(f.clock)
	var data ports.DataClient = failingData{localData{f.resources}}
	svc := NewSessionService(store, localAuth{f.auth}, data, new(mockPushClient), nil, dataTable, f.clock, zap.NewNop())

	_, err := svc.SignOn(ctx, "alice", "pw1")
	require.NoError(t, err)

	err = svc.AddFriend(ctx, "alice", "CA", "Bob")
	assert.True(t, pkgerrors.IsForbidden(err))
}

func TestSignOn_PublishFailureIsNotFatal(t *testing.T) {
	f := newFixture(t)
	published := new(mockPublisher)
	published.On("Publish", mock.Anything, mock.Anything).Return(errors.New("bus down"))

	svc := NewSessionService(NewSessionStore(f.clock), localAuth{f.auth}, localData{f.resources},
		new(mockPushClient), published, dataTable, f.clock, zap.NewNop())

	_, err := svc.SignOn(context.Background(), "alice", "pw1")
	assert.NoError(t, err)
}
