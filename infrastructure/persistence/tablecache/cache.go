// Package tablecache shares table handles between concurrent requests.
package tablecache

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/jameslaisianto/Back-end-web-dev/application/ports"
	"github.com/jameslaisianto/Back-end-web-dev/pkg/observability"
)

// Cache maps table names to open handles. Hits take the read lock only;
// a miss opens the table at most once per name no matter how many callers
// arrive together. Entries are never evicted.
type Cache struct {
	store   ports.TableStore
	logger  *zap.Logger
	metrics *observability.Collector

	mu     sync.RWMutex
	tables map[string]ports.Table
	opens  singleflight.Group
}

// New creates an empty cache over store
func New(store ports.TableStore, logger *zap.Logger, metrics *observability.Collector) *Cache {
	return &Cache{
		store:   store,
		logger:  logger,
		metrics: metrics,
		tables:  make(map[string]ports.Table),
	}
}

// Lookup returns the shared handle for name, opening it on first use.
func (c *Cache) Lookup(ctx context.Context, name string) (ports.Table, error) {
	if t, ok := c.cached(name); ok {
		c.metrics.CacheHit()
		return t, nil
	}
	c.metrics.CacheMiss()

	v, err, _ := c.opens.Do(name, func() (interface{}, error) {
		// Another caller may have finished opening between our miss and
		// this call.
		if t, ok := c.cached(name); ok {
			return t, nil
		}

		// The open is shared by every waiter, so one caller's cancellation
		// must not fail the rest.
		t, err := c.store.Open(context.WithoutCancel(ctx), name)
		if err != nil {
			return nil, err
		}
		c.metrics.CacheOpen()

		c.mu.Lock()
		c.tables[name] = t
		c.mu.Unlock()

		c.logger.Debug("Opened table handle", zap.String("table", name))
		return t, nil
	})
	if err != nil {
		return nil, fmt.Errorf("open table %q: %w", name, err)
	}
	return v.(ports.Table), nil
}

// DeleteEntry drops the handle so the next Lookup reopens the table.
func (c *Cache) DeleteEntry(name string) {
	c.mu.Lock()
	delete(c.tables, name)
	c.mu.Unlock()
	c.opens.Forget(name)
}

// Len reports the number of cached handles
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.tables)
}

func (c *Cache) cached(name string) (ports.Table, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.tables[name]
	return t, ok
}
