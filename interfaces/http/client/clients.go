package client

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/jameslaisianto/Back-end-web-dev/application/ports"
	"github.com/jameslaisianto/Back-end-web-dev/domain/core/entities"
	"github.com/jameslaisianto/Back-end-web-dev/pkg/observability"
)

// AuthClient calls the authorization service
type AuthClient struct {
	peer *peer
}

// NewAuthClient creates an authorization service client
func NewAuthClient(opts Options, logger *zap.Logger, metrics *observability.Collector) *AuthClient {
	return &AuthClient{peer: newPeer("auth", opts, logger, metrics)}
}

// GetUpdateToken exchanges a password for a read+update token
func (c *AuthClient) GetUpdateToken(ctx context.Context, userID, password string) (*ports.IssuedToken, error) {
	body := map[string]string{}
	if password != "" {
		body[entities.PasswordProperty] = password
	}

	var issued ports.IssuedToken
	if err := c.peer.do(ctx, http.MethodGet, []string{"GetUpdateToken", userID}, body, &issued); err != nil {
		return nil, err
	}
	return &issued, nil
}

// DataClient calls the resource service's token-authenticated paths
type DataClient struct {
	peer *peer
}

// NewDataClient creates a resource service client
func NewDataClient(opts Options, logger *zap.Logger, metrics *observability.Collector) *DataClient {
	return &DataClient{peer: newPeer("data", opts, logger, metrics)}
}

// ReadEntityAuth reads one entity with a capability token
func (c *DataClient) ReadEntityAuth(ctx context.Context, token, table, partition, row string) (map[string]string, error) {
	props := map[string]string{}
	err := c.peer.do(ctx, http.MethodGet, []string{"ReadEntityAuth", table, token, partition, row}, nil, &props)
	if err != nil {
		return nil, err
	}
	return props, nil
}

// UpdateEntityAuth merges props into one entity with a capability token
func (c *DataClient) UpdateEntityAuth(ctx context.Context, token, table, partition, row string, props map[string]string) error {
	return c.peer.do(ctx, http.MethodPut, []string{"UpdateEntityAuth", table, token, partition, row}, props, nil)
}

// PushClient calls the status fan-out service
type PushClient struct {
	peer *peer
}

// NewPushClient creates a push service client
func NewPushClient(opts Options, logger *zap.Logger, metrics *observability.Collector) *PushClient {
	return &PushClient{peer: newPeer("push", opts, logger, metrics)}
}

// PushStatus asks the push service to deliver status from (country, name)
// to every friend in the encoded list.
func (c *PushClient) PushStatus(ctx context.Context, country, name, status, friends string) error {
	body := map[string]string{entities.FriendsProperty: friends}
	return c.peer.do(ctx, http.MethodPost, []string{"PushStatus", country, name, status}, body, nil)
}

var (
	_ ports.AuthClient = (*AuthClient)(nil)
	_ ports.DataClient = (*DataClient)(nil)
	_ ports.PushClient = (*PushClient)(nil)
)
