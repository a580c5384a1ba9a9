package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/jameslaisianto/Back-end-web-dev/application/ports"
	"github.com/jameslaisianto/Back-end-web-dev/domain/core/entities"
	"github.com/jameslaisianto/Back-end-web-dev/domain/core/valueobjects"
	"github.com/jameslaisianto/Back-end-web-dev/domain/filter"
	"github.com/jameslaisianto/Back-end-web-dev/pkg/captoken"
	pkgerrors "github.com/jameslaisianto/Back-end-web-dev/pkg/errors"
	"github.com/jameslaisianto/Back-end-web-dev/pkg/observability"
)

// TokenVerifier checks a raw capability token and returns its content
type TokenVerifier interface {
	Verify(raw string) (*captoken.Token, error)
}

// ResourceService serves generic table CRUD and the token-authenticated
// entity paths.
type ResourceService struct {
	tables   ports.TableCache
	verifier TokenVerifier
	logger   *zap.Logger
	metrics  *observability.Collector
}

// NewResourceService creates the resource service
func NewResourceService(tables ports.TableCache, verifier TokenVerifier, logger *zap.Logger, metrics *observability.Collector) *ResourceService {
	return &ResourceService{
		tables:   tables,
		verifier: verifier,
		logger:   logger,
		metrics:  metrics,
	}
}

// AuthenticatedRead returns one entity's properties in wire form. Any
// problem with the token looks exactly like an absent entity.
func (s *ResourceService) AuthenticatedRead(ctx context.Context, rawToken, table, partition, row string) (map[string]string, error) {
	scope := valueobjects.Scope{Table: table, Partition: partition, Row: row}
	if err := s.authorize(rawToken, scope, valueobjects.PermissionRead); err != nil {
		return nil, pkgerrors.NewNotFoundError("entity").WithCause(err)
	}

	e, err := s.retrieve(ctx, table, partition, row)
	if err != nil {
		return nil, err
	}
	return e.StringProperties(), nil
}

// AuthenticatedUpdate merges props into one entity. A token for another
// entity is reported as not found. A valid token for this entity without
// update permission, or one that has expired, is forbidden.
func (s *ResourceService) AuthenticatedUpdate(ctx context.Context, rawToken, table, partition, row string, props map[string]interface{}) error {
	if err := entities.ValidateProperties(props); err != nil {
		return pkgerrors.NewValidationError(err.Error())
	}

	scope := valueobjects.Scope{Table: table, Partition: partition, Row: row}
	if err := s.authorize(rawToken, scope, valueobjects.PermissionUpdate); err != nil {
		switch {
		case errors.Is(err, captoken.ErrPermissionDenied):
			return pkgerrors.NewForbiddenError("token does not grant update").WithCause(err)
		case errors.Is(err, captoken.ErrExpired):
			return pkgerrors.NewForbiddenError("token has expired").WithCause(err)
		default:
			return pkgerrors.NewNotFoundError("entity").WithCause(err)
		}
	}

	e := entities.NewEntity(partition, row)
	e.Merge(props)
	return s.merge(ctx, table, e)
}

// authorize verifies the token and checks it against scope. Rejections are
// counted by reason.
func (s *ResourceService) authorize(rawToken string, scope valueobjects.Scope, required valueobjects.Permission) error {
	tok, err := s.verifier.Verify(rawToken)
	if err != nil {
		if !errors.Is(err, captoken.ErrExpired) {
			s.metrics.TokenRejected("invalid")
			return err
		}
		// an expired token for another entity is still a scope mismatch
		if tok != nil && !tok.Scope.Equals(scope) {
			s.metrics.TokenRejected("scope")
			return fmt.Errorf("%w: %v", captoken.ErrScopeMismatch, err)
		}
		s.metrics.TokenRejected("expired")
		return err
	}

	if err := tok.Authorizes(scope, required); err != nil {
		if errors.Is(err, captoken.ErrScopeMismatch) {
			s.metrics.TokenRejected("scope")
		} else {
			s.metrics.TokenRejected("permission")
		}
		s.logger.Debug("Token rejected",
			zap.String("token_id", tok.ID),
			zap.Stringer("token_scope", tok.Scope),
			zap.Stringer("requested_scope", scope),
			zap.Error(err),
		)
		return err
	}
	return nil
}

// CreateTable creates a table and reports whether it was newly created
func (s *ResourceService) CreateTable(ctx context.Context, name string) (bool, error) {
	table, err := s.tables.Lookup(ctx, name)
	if err != nil {
		return false, storeError("open table", err)
	}

	created, err := table.CreateIfNotExists(context.WithoutCancel(ctx))
	if err != nil {
		return false, storeError("create table", err)
	}
	return created, nil
}

// DeleteTable drops a table and forgets its cached handle
func (s *ResourceService) DeleteTable(ctx context.Context, name string) error {
	table, err := s.tables.Lookup(ctx, name)
	if err != nil {
		return storeError("open table", err)
	}

	exists, err := table.Exists(ctx)
	if err != nil {
		return storeError("describe table", err)
	}
	if !exists {
		return pkgerrors.NewNotFoundError("table")
	}

	if err := table.DeleteTable(context.WithoutCancel(ctx)); err != nil {
		return storeError("delete table", err)
	}
	s.tables.DeleteEntry(name)

	s.logger.Info("Table deleted", zap.String("table", name))
	return nil
}

// ReadEntity returns one entity
func (s *ResourceService) ReadEntity(ctx context.Context, table, partition, row string) (*entities.Entity, error) {
	return s.retrieve(ctx, table, partition, row)
}

// ReadEntities returns the entities of a table matching every predicate,
// ordered by (partition, row).
func (s *ResourceService) ReadEntities(ctx context.Context, name string, preds []filter.Predicate) ([]*entities.Entity, error) {
	table, err := s.existingTable(ctx, name)
	if err != nil {
		return nil, err
	}

	list, err := filter.Scan(ctx, table, preds)
	if err != nil {
		return nil, storeError("scan", err)
	}
	return list, nil
}

// UpdateEntity inserts an entity or merges props into it
func (s *ResourceService) UpdateEntity(ctx context.Context, table, partition, row string, props map[string]interface{}) error {
	if err := entities.ValidateProperties(props); err != nil {
		return pkgerrors.NewValidationError(err.Error())
	}

	e := entities.NewEntity(partition, row)
	e.Merge(props)
	return s.merge(ctx, table, e)
}

// DeleteEntity removes one entity
func (s *ResourceService) DeleteEntity(ctx context.Context, name, partition, row string) error {
	table, err := s.tables.Lookup(ctx, name)
	if err != nil {
		return storeError("open table", err)
	}
	if err := table.Delete(context.WithoutCancel(ctx), partition, row); err != nil {
		return storeError("delete entity", err)
	}
	return nil
}

// AddProperty sets every property in props on every entity of the table.
// It returns the number of entities written.
func (s *ResourceService) AddProperty(ctx context.Context, name string, props map[string]interface{}) (int, error) {
	return s.setOnAll(ctx, name, props, false)
}

// UpdateProperty overwrites each property in props on the entities that
// already have it. It returns the number of entities written.
func (s *ResourceService) UpdateProperty(ctx context.Context, name string, props map[string]interface{}) (int, error) {
	return s.setOnAll(ctx, name, props, true)
}

func (s *ResourceService) setOnAll(ctx context.Context, name string, props map[string]interface{}, onlyExisting bool) (int, error) {
	if len(props) == 0 {
		return 0, pkgerrors.NewValidationError("at least one property is required")
	}
	if err := entities.ValidateProperties(props); err != nil {
		return 0, pkgerrors.NewValidationError(err.Error())
	}

	table, err := s.existingTable(ctx, name)
	if err != nil {
		return 0, err
	}

	all, err := filter.Scan(ctx, table, nil)
	if err != nil {
		return 0, storeError("scan", err)
	}

	writeCtx := context.WithoutCancel(ctx)
	written := 0
	for _, e := range all {
		update := entities.NewEntity(e.Partition, e.Row)
		for prop, v := range props {
			if _, has := e.Get(prop); onlyExisting && !has {
				continue
			}
			update.Properties[prop] = v
		}
		if len(update.Properties) == 0 {
			continue
		}
		if err := table.InsertOrMerge(writeCtx, update); err != nil {
			return written, storeError("update entity", err)
		}
		written++
	}

	s.logger.Info("Properties set across table",
		zap.String("table", name),
		zap.Int("entities", written),
		zap.Bool("only_existing", onlyExisting),
	)
	return written, nil
}

func (s *ResourceService) retrieve(ctx context.Context, name, partition, row string) (*entities.Entity, error) {
	table, err := s.tables.Lookup(ctx, name)
	if err != nil {
		return nil, storeError("open table", err)
	}
	e, err := table.Retrieve(ctx, partition, row)
	if err != nil {
		return nil, storeError("read entity", err)
	}
	return e, nil
}

// merge writes e with a single insert-or-merge. The write is detached from
// the caller so a disconnect cannot cut it short.
func (s *ResourceService) merge(ctx context.Context, name string, e *entities.Entity) error {
	table, err := s.tables.Lookup(ctx, name)
	if err != nil {
		return storeError("open table", err)
	}
	if err := table.InsertOrMerge(context.WithoutCancel(ctx), e); err != nil {
		return storeError("update entity", err)
	}
	return nil
}

func (s *ResourceService) existingTable(ctx context.Context, name string) (ports.Table, error) {
	table, err := s.tables.Lookup(ctx, name)
	if err != nil {
		return nil, storeError("open table", err)
	}
	exists, err := table.Exists(ctx)
	if err != nil {
		return nil, storeError("describe table", err)
	}
	if !exists {
		return nil, pkgerrors.NewNotFoundError("table")
	}
	return table, nil
}
