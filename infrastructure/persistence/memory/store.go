// Package memory is an in-process table store for tests and local runs.
package memory

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jameslaisianto/Back-end-web-dev/application/ports"
	"github.com/jameslaisianto/Back-end-web-dev/domain/core/entities"
	"github.com/jameslaisianto/Back-end-web-dev/domain/core/valueobjects"
)

var errNoSigner = errors.New("store has no token signer configured")

type entityKey struct {
	partition string
	row       string
}

// Store keeps every table in memory behind a single RWMutex.
type Store struct {
	mu     sync.RWMutex
	tables map[string]map[entityKey]*entities.Entity
	signer ports.ScopedSigner
	opens  atomic.Int64

	// OpenDelay simulates an expensive open. Tests use it to widen races.
	OpenDelay time.Duration
}

// NewStore creates an empty store. signer may be nil when no component
// mints tokens.
func NewStore(signer ports.ScopedSigner) *Store {
	return &Store{
		tables: make(map[string]map[entityKey]*entities.Entity),
		signer: signer,
	}
}

// Open returns a handle for name whether or not the table exists yet.
func (s *Store) Open(ctx context.Context, name string) (ports.Table, error) {
	s.opens.Add(1)
	if s.OpenDelay > 0 {
		select {
		case <-time.After(s.OpenDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return &Table{name: name, store: s}, nil
}

// Opens reports how many times Open was called
func (s *Store) Opens() int64 {
	return s.opens.Load()
}

// Seed inserts or merges entities into a table, creating it if needed.
func (s *Store) Seed(table string, list ...*entities.Entity) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, ok := s.tables[table]
	if !ok {
		rows = make(map[entityKey]*entities.Entity)
		s.tables[table] = rows
	}
	for _, e := range list {
		mergeInto(rows, e)
	}
}

func mergeInto(rows map[entityKey]*entities.Entity, e *entities.Entity) {
	k := entityKey{partition: e.Partition, row: e.Row}
	existing, ok := rows[k]
	if !ok {
		rows[k] = e.Clone()
		return
	}
	existing.Merge(e.Properties)
}

// Table is a handle on one in-memory table
type Table struct {
	name  string
	store *Store
}

func (t *Table) Name() string { return t.name }

func (t *Table) CreateIfNotExists(ctx context.Context) (bool, error) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()

	if _, ok := t.store.tables[t.name]; ok {
		return false, nil
	}
	t.store.tables[t.name] = make(map[entityKey]*entities.Entity)
	return true, nil
}

func (t *Table) Exists(ctx context.Context) (bool, error) {
	t.store.mu.RLock()
	defer t.store.mu.RUnlock()

	_, ok := t.store.tables[t.name]
	return ok, nil
}

func (t *Table) Retrieve(ctx context.Context, partition, row string) (*entities.Entity, error) {
	t.store.mu.RLock()
	defer t.store.mu.RUnlock()

	rows, ok := t.store.tables[t.name]
	if !ok {
		return nil, ports.ErrTableNotFound
	}
	e, ok := rows[entityKey{partition: partition, row: row}]
	if !ok {
		return nil, ports.ErrEntityNotFound
	}
	return e.Clone(), nil
}

func (t *Table) InsertOrMerge(ctx context.Context, e *entities.Entity) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	t.store.mu.Lock()
	defer t.store.mu.Unlock()

	rows, ok := t.store.tables[t.name]
	if !ok {
		return ports.ErrTableNotFound
	}
	mergeInto(rows, e)
	return nil
}

func (t *Table) Delete(ctx context.Context, partition, row string) error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()

	rows, ok := t.store.tables[t.name]
	if !ok {
		return ports.ErrTableNotFound
	}
	k := entityKey{partition: partition, row: row}
	if _, ok := rows[k]; !ok {
		return ports.ErrEntityNotFound
	}
	delete(rows, k)
	return nil
}

func (t *Table) DeleteTable(ctx context.Context) error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()

	if _, ok := t.store.tables[t.name]; !ok {
		return ports.ErrTableNotFound
	}
	delete(t.store.tables, t.name)
	return nil
}

// Scan visits a snapshot so visit may call back into the store.
func (t *Table) Scan(ctx context.Context, visit func(*entities.Entity) bool) error {
	t.store.mu.RLock()
	rows, ok := t.store.tables[t.name]
	if !ok {
		t.store.mu.RUnlock()
		return ports.ErrTableNotFound
	}
	snapshot := make([]*entities.Entity, 0, len(rows))
	for _, e := range rows {
		snapshot = append(snapshot, e.Clone())
	}
	t.store.mu.RUnlock()

	for _, e := range snapshot {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !visit(e) {
			return nil
		}
	}
	return nil
}

func (t *Table) MintScopedSignature(partition, row string, perms valueobjects.Permission, expiry time.Time) (string, error) {
	if t.store.signer == nil {
		return "", errNoSigner
	}
	return t.store.signer.Mint(valueobjects.Scope{Table: t.name, Partition: partition, Row: row}, perms, expiry)
}
