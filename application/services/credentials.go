package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/jameslaisianto/Back-end-web-dev/application/ports"
	"github.com/jameslaisianto/Back-end-web-dev/domain/core/entities"
	"github.com/jameslaisianto/Back-end-web-dev/domain/core/valueobjects"
	pkgerrors "github.com/jameslaisianto/Back-end-web-dev/pkg/errors"
)

// CredentialConfig names the tables the credential store reads and signs for.
type CredentialConfig struct {
	AuthTable     string
	UserPartition string
	DataTable     string
	TokenTTL      time.Duration
}

// CredentialStore reads credential records and mints tokens for the
// profile entities they name.
type CredentialStore struct {
	tables ports.TableCache
	cfg    CredentialConfig
	clock  clockwork.Clock
}

// NewCredentialStore creates a credential store. A nil clock uses real time.
func NewCredentialStore(tables ports.TableCache, cfg CredentialConfig, clock clockwork.Clock) *CredentialStore {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &CredentialStore{
		tables: tables,
		cfg:    cfg,
		clock:  clock,
	}
}

// Credential reads userID's credential record. An absent user or table is
// a not-found error.
func (s *CredentialStore) Credential(ctx context.Context, userID string) (*entities.Credential, error) {
	table, err := s.tables.Lookup(ctx, s.cfg.AuthTable)
	if err != nil {
		return nil, storeError("open credential table", err)
	}

	e, err := table.Retrieve(ctx, s.cfg.UserPartition, userID)
	if err != nil {
		if errors.Is(err, ports.ErrEntityNotFound) || errors.Is(err, ports.ErrTableNotFound) {
			return nil, pkgerrors.NewNotFoundError("user").WithCause(err)
		}
		return nil, storeError("read credential", err)
	}
	return entities.CredentialFromEntity(e), nil
}

// MintToken signs a token for one entity of the data table, valid for the
// configured TTL from now.
func (s *CredentialStore) MintToken(ctx context.Context, partition, row string, perms valueobjects.Permission) (string, time.Time, error) {
	table, err := s.tables.Lookup(ctx, s.cfg.DataTable)
	if err != nil {
		return "", time.Time{}, storeError("open data table", err)
	}

	expiry := s.clock.Now().Add(s.cfg.TokenTTL)
	token, err := table.MintScopedSignature(partition, row, perms, expiry)
	if err != nil {
		return "", time.Time{}, pkgerrors.NewInternalError("failed to sign token").
			WithCause(fmt.Errorf("mint %s token for %s/%s: %w", perms, partition, row, err))
	}
	return token, expiry, nil
}
