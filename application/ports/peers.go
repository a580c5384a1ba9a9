package ports

import (
	"context"
	"time"
)

// IssuedToken is the authorization service's answer to a token request.
type IssuedToken struct {
	Token     string    `json:"token"`
	Partition string    `json:"partition"`
	Row       string    `json:"row"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AuthClient talks to the authorization service. Errors carry the peer's
// HTTP status so it can be relayed unchanged.
type AuthClient interface {
	GetUpdateToken(ctx context.Context, userID, password string) (*IssuedToken, error)
}

// DataClient talks to the resource service's token-authenticated paths.
type DataClient interface {
	ReadEntityAuth(ctx context.Context, token, table, partition, row string) (map[string]string, error)
	UpdateEntityAuth(ctx context.Context, token, table, partition, row string, props map[string]string) error
}

// PushClient talks to the status fan-out service.
type PushClient interface {
	PushStatus(ctx context.Context, country, name, status, friends string) error
}
