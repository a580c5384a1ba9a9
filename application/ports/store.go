package ports

import (
	"context"
	"errors"
	"time"

	"github.com/jameslaisianto/Back-end-web-dev/domain/core/entities"
	"github.com/jameslaisianto/Back-end-web-dev/domain/core/valueobjects"
)

// Sentinel errors every store implementation returns so callers can map
// them without knowing the backend.
var (
	ErrTableNotFound  = errors.New("table not found")
	ErrEntityNotFound = errors.New("entity not found")
)

// Table is a handle on one named table of the backing store.
// Handles are cheap to use and safe for concurrent use; opening one may not be.
type Table interface {
	// Name returns the table name
	Name() string

	// CreateIfNotExists creates the table and reports whether it was created
	CreateIfNotExists(ctx context.Context) (bool, error)

	// Exists reports whether the table is present
	Exists(ctx context.Context) (bool, error)

	// Retrieve reads one entity; ErrEntityNotFound or ErrTableNotFound when absent
	Retrieve(ctx context.Context, partition, row string) (*entities.Entity, error)

	// InsertOrMerge creates the entity or merges its properties into the existing one
	InsertOrMerge(ctx context.Context, entity *entities.Entity) error

	// Delete removes one entity; ErrEntityNotFound when absent
	Delete(ctx context.Context, partition, row string) error

	// DeleteTable drops the table; ErrTableNotFound when absent
	DeleteTable(ctx context.Context) error

	// Scan visits every entity until visit returns false
	Scan(ctx context.Context, visit func(*entities.Entity) bool) error

	// MintScopedSignature returns a token granting perms on one entity of this table
	MintScopedSignature(partition, row string, perms valueobjects.Permission, expiry time.Time) (string, error)
}

// TableStore opens table handles. Opening is the expensive step the
// table cache exists to amortize.
type TableStore interface {
	Open(ctx context.Context, name string) (Table, error)
}

// TableCache hands out shared table handles
type TableCache interface {
	Lookup(ctx context.Context, name string) (Table, error)
	DeleteEntry(name string)
}

// ScopedSigner mints capability tokens for the store
type ScopedSigner interface {
	Mint(scope valueobjects.Scope, perms valueobjects.Permission, expiry time.Time) (string, error)
}
