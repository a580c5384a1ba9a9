package di

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jameslaisianto/Back-end-web-dev/infrastructure/config"
	"github.com/jameslaisianto/Back-end-web-dev/infrastructure/messaging/eventbridge"
	"github.com/jameslaisianto/Back-end-web-dev/infrastructure/persistence/memory"
)

func memoryConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default(":0")
	cfg.Environment = "test"
	cfg.StoreBackend = "memory"
	require.NoError(t, cfg.Validate())
	return cfg
}

func TestProvideTableStore_SelectsBackend(t *testing.T) {
	cfg := memoryConfig(t)
	signer, err := ProvideSigner(cfg, ProvideClock())
	require.NoError(t, err)

	store, err := ProvideTableStore(cfg, nil, signer, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &memory.Store{}, store)

	cfg.StoreBackend = "cassandra"
	_, err = ProvideTableStore(cfg, nil, signer, zap.NewNop())
	assert.Error(t, err)
}

func TestProvideEventPublisher_NoopWithoutBus(t *testing.T) {
	cfg := memoryConfig(t)
	assert.IsType(t, &eventbridge.NoopPublisher{}, ProvideEventPublisher(cfg, nil, zap.NewNop()))
}

func TestProvideRateLimiter_ZeroDisables(t *testing.T) {
	cfg := memoryConfig(t)
	assert.NotNil(t, ProvideRateLimiter(cfg, ProvideClock()))

	cfg.AuthRateLimit = 0
	assert.Nil(t, ProvideRateLimiter(cfg, ProvideClock()))
}

func TestInitializeServers_MemoryBackend(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")
	cfg := memoryConfig(t)
	ctx := context.Background()

	inits := map[string]func(context.Context, *config.Config, ServiceName) (*Server, error){
		"basic-server": InitializeBasicServer,
		"auth-server":  InitializeAuthServer,
		"user-server":  InitializeUserServer,
		"push-server":  InitializePushServer,
	}
	for name, initialize := range inits {
		t.Run(name, func(t *testing.T) {
			server, err := initialize(ctx, cfg, ServiceName(name))
			require.NoError(t, err)

			rec := httptest.NewRecorder()
			server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
			assert.Equal(t, http.StatusOK, rec.Code)
		})
	}
}
