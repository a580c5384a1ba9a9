package services

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jameslaisianto/Back-end-web-dev/application/ports"
	"github.com/jameslaisianto/Back-end-web-dev/domain/core/entities"
	"github.com/jameslaisianto/Back-end-web-dev/domain/core/valueobjects"
	"github.com/jameslaisianto/Back-end-web-dev/domain/events"
	"github.com/jameslaisianto/Back-end-web-dev/infrastructure/persistence/memory"
	"github.com/jameslaisianto/Back-end-web-dev/infrastructure/persistence/tablecache"
	"github.com/jameslaisianto/Back-end-web-dev/pkg/captoken"
	"github.com/jameslaisianto/Back-end-web-dev/pkg/observability"
)

const (
	authTable = "AuthTable"
	dataTable = "DataTable"
)

var epoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	clock     *clockwork.FakeClock
	signer    *captoken.Signer
	store     *memory.Store
	cache     *tablecache.Cache
	auth      *AuthService
	resources *ResourceService
	push      *PushService
}

// newFixture seeds alice/pw1 with profile P/R and bob/pw2 with profile
// CA/Bob, both in DataTable.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	clock := clockwork.NewFakeClockAt(epoch)
	signer, err := captoken.NewSigner("test-secret", "test-issuer", clock)
	require.NoError(t, err)

	store := memory.NewStore(signer)
	store.Seed(authTable,
		credentialEntity("alice", "pw1", "P", "R"),
		credentialEntity("bob", "pw2", "CA", "Bob"),
	)

	profile := entities.NewEntity("P", "R")
	profile.Merge(map[string]interface{}{"Age": float64(30), "Name": "Alice"})
	store.Seed(dataTable, profile, entities.NewEntity("CA", "Bob"))

	logger := zap.NewNop()
	metrics := observability.NewCollector("test")
	cache := tablecache.New(store, logger, metrics)

	creds := NewCredentialStore(cache, CredentialConfig{
		AuthTable:     authTable,
		UserPartition: "Userid",
		DataTable:     dataTable,
		TokenTTL:      24 * time.Hour,
	}, clock)

	return &fixture{
		clock:     clock,
		signer:    signer,
		store:     store,
		cache:     cache,
		auth:      NewAuthService(creds, logger, metrics),
		resources: NewResourceService(cache, signer, logger, metrics),
		push:      NewPushService(cache, dataTable, 4, logger, metrics),
	}
}

func credentialEntity(user, password, partition, row string) *entities.Entity {
	e := entities.NewEntity("Userid", user)
	e.Merge(map[string]interface{}{
		entities.PasswordProperty:      password,
		entities.DataPartitionProperty: partition,
		entities.DataRowProperty:       row,
	})
	return e
}

func passwordBody(pw string) map[string]interface{} {
	return map[string]interface{}{entities.PasswordProperty: pw}
}

func (f *fixture) issue(t *testing.T, user, pw string, perms valueobjects.Permission) *ports.IssuedToken {
	t.Helper()
	tok, err := f.auth.IssueToken(context.Background(), user, passwordBody(pw), perms)
	require.NoError(t, err)
	return tok
}

// localAuth calls the authorization service in process
type localAuth struct{ svc *AuthService }

func (a localAuth) GetUpdateToken(ctx context.Context, userID, password string) (*ports.IssuedToken, error) {
	body := map[string]interface{}{}
	if password != "" {
		body[entities.PasswordProperty] = password
	}
	return a.svc.IssueToken(ctx, userID, body, valueobjects.ReadUpdate)
}

// localData calls the resource service's authenticated paths in process
type localData struct{ svc *ResourceService }

func (d localData) ReadEntityAuth(ctx context.Context, token, table, partition, row string) (map[string]string, error) {
	return d.svc.AuthenticatedRead(ctx, token, table, partition, row)
}

func (d localData) UpdateEntityAuth(ctx context.Context, token, table, partition, row string, props map[string]string) error {
	return d.svc.AuthenticatedUpdate(ctx, token, table, partition, row, entities.StringMap(props))
}

type mockPushClient struct {
	mock.Mock
}

func (m *mockPushClient) PushStatus(ctx context.Context, country, name, status, friends string) error {
	return m.Called(ctx, country, name, status, friends).Error(0)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, event events.DomainEvent) error {
	return m.Called(ctx, event).Error(0)
}

func (m *mockPublisher) PublishBatch(ctx context.Context, list []events.DomainEvent) error {
	return m.Called(ctx, list).Error(0)
}

// publishedTypes returns the event types passed to Publish, in order
func (m *mockPublisher) publishedTypes() []string {
	var types []string
	for _, call := range m.Calls {
		if call.Method == "Publish" {
			types = append(types, call.Arguments.Get(1).(events.DomainEvent).GetEventType())
		}
	}
	return types
}
