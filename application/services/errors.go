package services

import (
	"context"
	"errors"

	"github.com/jameslaisianto/Back-end-web-dev/application/ports"
	pkgerrors "github.com/jameslaisianto/Back-end-web-dev/pkg/errors"
)

// storeError maps a backing store failure onto the application error taxonomy.
func storeError(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case pkgerrors.GetAppError(err) != nil:
		return err
	case errors.Is(err, ports.ErrTableNotFound):
		return pkgerrors.NewNotFoundError("table").WithCause(err)
	case errors.Is(err, ports.ErrEntityNotFound):
		return pkgerrors.NewNotFoundError("entity").WithCause(err)
	case errors.Is(err, context.DeadlineExceeded):
		return pkgerrors.NewTimeoutError(op).WithCause(err)
	default:
		return pkgerrors.NewDatabaseError(op, err)
	}
}
