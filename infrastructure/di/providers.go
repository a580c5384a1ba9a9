package di

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/jameslaisianto/Back-end-web-dev/application/ports"
	"github.com/jameslaisianto/Back-end-web-dev/application/services"
	"github.com/jameslaisianto/Back-end-web-dev/infrastructure/config"
	"github.com/jameslaisianto/Back-end-web-dev/infrastructure/messaging/eventbridge"
	"github.com/jameslaisianto/Back-end-web-dev/infrastructure/persistence/dynamodb"
	"github.com/jameslaisianto/Back-end-web-dev/infrastructure/persistence/memory"
	"github.com/jameslaisianto/Back-end-web-dev/infrastructure/persistence/tablecache"
	"github.com/jameslaisianto/Back-end-web-dev/interfaces/http/client"
	"github.com/jameslaisianto/Back-end-web-dev/interfaces/http/rest"
	"github.com/jameslaisianto/Back-end-web-dev/interfaces/http/rest/handlers"
	"github.com/jameslaisianto/Back-end-web-dev/pkg/auth"
	"github.com/jameslaisianto/Back-end-web-dev/pkg/captoken"
	"github.com/jameslaisianto/Back-end-web-dev/pkg/observability"
)

// ServiceName identifies the binary in logs and metric names
type ServiceName string

// Server is everything a binary needs to serve
type Server struct {
	Config  *config.Config
	Logger  *zap.Logger
	Handler http.Handler
}

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config, name ServiceName) (*zap.Logger, error) {
	return observability.NewLogger(cfg.Environment, cfg.LogLevel, string(name))
}

// ProvideMetrics creates the service's Prometheus collector
func ProvideMetrics(name ServiceName) *observability.Collector {
	return observability.NewCollector(strings.ReplaceAll(string(name), "-", "_"))
}

// ProvideClock returns the wall clock
func ProvideClock() clockwork.Clock {
	return clockwork.NewRealClock()
}

// ProvideRouter creates the router shared by every service
func ProvideRouter(cfg *config.Config, logger *zap.Logger, metrics *observability.Collector) *rest.Router {
	return rest.NewRouter(cfg, logger, metrics)
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideDynamoDBClient creates a DynamoDB client, pointed at
// DYNAMODB_ENDPOINT when one is configured (DynamoDB Local).
func ProvideDynamoDBClient(awsCfg aws.Config, cfg *config.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg, func(o *awsdynamodb.Options) {
		if cfg.DynamoDBEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.DynamoDBEndpoint)
		}
	})
}

// ProvideEventBridgeClient creates an EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideSigner creates the capability token signer
func ProvideSigner(cfg *config.Config, clock clockwork.Clock) (*captoken.Signer, error) {
	return captoken.NewSigner(cfg.TokenSecret, cfg.TokenIssuer, clock)
}

// ProvideTableStore selects the backing store
func ProvideTableStore(cfg *config.Config, client *awsdynamodb.Client, signer *captoken.Signer, logger *zap.Logger) (ports.TableStore, error) {
	switch cfg.StoreBackend {
	case "dynamodb":
		return dynamodb.NewTableStore(client, signer, cfg.TableCreateWait, logger), nil
	case "memory":
		logger.Warn("Using the in-memory store; data is lost on exit")
		return memory.NewStore(signer), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

// ProvideTableCache wraps the store in the shared handle cache
func ProvideTableCache(store ports.TableStore, logger *zap.Logger, metrics *observability.Collector) ports.TableCache {
	return tablecache.New(store, logger, metrics)
}

// ProvideCredentialStore creates the credential reader
func ProvideCredentialStore(tables ports.TableCache, cfg *config.Config, clock clockwork.Clock) *services.CredentialStore {
	return services.NewCredentialStore(tables, services.CredentialConfig{
		AuthTable:     config.AuthTableName,
		UserPartition: config.AuthUserPartition,
		DataTable:     config.DataTableName,
		TokenTTL:      cfg.TokenTTL,
	}, clock)
}

// ProvideRateLimiter creates the per-IP password attempt limiter, or nil
// when AUTH_RATE_LIMIT is zero.
func ProvideRateLimiter(cfg *config.Config, clock clockwork.Clock) *auth.IPRateLimiter {
	if cfg.AuthRateLimit == 0 {
		return nil
	}
	return auth.NewIPRateLimiter(cfg.AuthRateLimit, clock)
}

// ProvideAuthService creates the authorization service
func ProvideAuthService(credentials *services.CredentialStore, logger *zap.Logger, metrics *observability.Collector) *services.AuthService {
	return services.NewAuthService(credentials, logger, metrics)
}

// ProvideResourceService creates the resource service
func ProvideResourceService(tables ports.TableCache, signer *captoken.Signer, logger *zap.Logger, metrics *observability.Collector) *services.ResourceService {
	return services.NewResourceService(tables, signer, logger, metrics)
}

// ProvidePushService creates the fan-out service
func ProvidePushService(tables ports.TableCache, cfg *config.Config, logger *zap.Logger, metrics *observability.Collector) *services.PushService {
	return services.NewPushService(tables, config.DataTableName, cfg.PushConcurrency, logger, metrics)
}

func peerOptions(baseURL string, cfg *config.Config) client.Options {
	return client.Options{
		BaseURL: baseURL,
		Timeout: cfg.RequestTimeout,
		Breaker: client.DefaultBreakerConfig(),
	}
}

// ProvideAuthClient creates the authorization service client
func ProvideAuthClient(cfg *config.Config, logger *zap.Logger, metrics *observability.Collector) ports.AuthClient {
	return client.NewAuthClient(peerOptions(cfg.AuthServiceURL, cfg), logger, metrics)
}

// ProvideDataClient creates the resource service client
func ProvideDataClient(cfg *config.Config, logger *zap.Logger, metrics *observability.Collector) ports.DataClient {
	return client.NewDataClient(peerOptions(cfg.DataServiceURL, cfg), logger, metrics)
}

// ProvidePushClient creates the push service client
func ProvidePushClient(cfg *config.Config, logger *zap.Logger, metrics *observability.Collector) ports.PushClient {
	return client.NewPushClient(peerOptions(cfg.PushServiceURL, cfg), logger, metrics)
}

// ProvideEventPublisher publishes session events to EventBridge when
// EVENT_BUS_NAME is set and drops them otherwise.
func ProvideEventPublisher(cfg *config.Config, ebClient *awseventbridge.Client, logger *zap.Logger) ports.EventPublisher {
	if cfg.EventBusName == "" {
		return eventbridge.NewNoopPublisher(logger)
	}
	return eventbridge.NewPublisher(ebClient, cfg.EventBusName, logger)
}

// ProvideSessionStore creates the process-wide session map
func ProvideSessionStore(clock clockwork.Clock) *services.SessionStore {
	return services.NewSessionStore(clock)
}

// ProvideSessionService creates the session layer
func ProvideSessionService(
	sessions *services.SessionStore,
	authClient ports.AuthClient,
	dataClient ports.DataClient,
	pushClient ports.PushClient,
	publisher ports.EventPublisher,
	clock clockwork.Clock,
	logger *zap.Logger,
) *services.SessionService {
	return services.NewSessionService(sessions, authClient, dataClient, pushClient, publisher,
		config.DataTableName, clock, logger)
}

// ProvideBasicHandler routes the resource service
func ProvideBasicHandler(router *rest.Router, resources *services.ResourceService) http.Handler {
	return router.Resource(handlers.NewResourceHandler(resources))
}

// ProvideAuthHandler routes the authorization service
func ProvideAuthHandler(router *rest.Router, authService *services.AuthService, limiter *auth.IPRateLimiter) http.Handler {
	return router.Auth(handlers.NewAuthHandler(authService), limiter)
}

// ProvideUserHandler routes the session layer
func ProvideUserHandler(router *rest.Router, sessions *services.SessionService, limiter *auth.IPRateLimiter) http.Handler {
	return router.Session(handlers.NewSessionHandler(sessions), limiter)
}

// ProvidePushHandler routes the fan-out service
func ProvidePushHandler(router *rest.Router, push *services.PushService) http.Handler {
	return router.Push(handlers.NewPushHandler(push))
}
