//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"github.com/google/wire"

	"github.com/jameslaisianto/Back-end-web-dev/infrastructure/config"
)

// CommonSet is shared by every service
var CommonSet = wire.NewSet(
	ProvideLogger,
	ProvideMetrics,
	ProvideClock,
	ProvideRouter,
	wire.Struct(new(Server), "*"),
)

// StoreSet opens the backing store behind the table cache
var StoreSet = wire.NewSet(
	ProvideAWSConfig,
	ProvideDynamoDBClient,
	ProvideSigner,
	ProvideTableStore,
	ProvideTableCache,
)

// PeerSet reaches the other services and the event bus
var PeerSet = wire.NewSet(
	ProvideAWSConfig,
	ProvideEventBridgeClient,
	ProvideEventPublisher,
	ProvideAuthClient,
	ProvideDataClient,
	ProvidePushClient,
)

// InitializeBasicServer wires the resource service
func InitializeBasicServer(ctx context.Context, cfg *config.Config, name ServiceName) (*Server, error) {
	wire.Build(CommonSet, StoreSet, ProvideResourceService, ProvideBasicHandler)
	return nil, nil
}

// InitializeAuthServer wires the authorization service
func InitializeAuthServer(ctx context.Context, cfg *config.Config, name ServiceName) (*Server, error) {
	wire.Build(CommonSet, StoreSet, ProvideCredentialStore, ProvideRateLimiter, ProvideAuthService, ProvideAuthHandler)
	return nil, nil
}

// InitializeUserServer wires the session layer
func InitializeUserServer(ctx context.Context, cfg *config.Config, name ServiceName) (*Server, error) {
	wire.Build(CommonSet, PeerSet, ProvideSessionStore, ProvideSessionService, ProvideRateLimiter, ProvideUserHandler)
	return nil, nil
}

// InitializePushServer wires the fan-out service
func InitializePushServer(ctx context.Context, cfg *config.Config, name ServiceName) (*Server, error) {
	wire.Build(CommonSet, StoreSet, ProvidePushService, ProvidePushHandler)
	return nil, nil
}
