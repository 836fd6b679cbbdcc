package services

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/singleflight"

	"fusiondash/internal/dataprocessing"
	"fusiondash/internal/infrastructure"
)

// TableLoader reads a spreadsheet into a Table.
type TableLoader interface {
	Load(ctx context.Context, path string) (*dataprocessing.Table, error)
}

// CacheStats is a snapshot of the cache counters.
type CacheStats struct {
	Entries       int    `json:"entries"`
	Hits          uint64 `json:"hits"`
	Misses        uint64 `json:"misses"`
	Loads         uint64 `json:"loads"`
	Invalidations uint64 `json:"invalidations"`
}

// TableCache keeps one loaded Table per file path until it is invalidated.
// Concurrent misses on the same path share a single load, and a table is
// only visible once it is fully built.
type TableCache struct {
	loader  TableLoader
	metrics *infrastructure.BusinessMetrics
	logger  *slog.Logger

	mu     sync.RWMutex
	tables map[string]*dataprocessing.Table
	// gens is bumped on invalidation so a load that started earlier does not
	// publish a stale table.
	gens  map[string]uint64
	epoch uint64
	group singleflight.Group

	hits          atomic.Uint64
	misses        atomic.Uint64
	loads         atomic.Uint64
	invalidations atomic.Uint64
}

// NewTableCache creates an empty cache. Nil metrics or logger fall back to no-ops and slog.Default.
func NewTableCache(loader TableLoader, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *TableCache {
	if metrics == nil {
		metrics = infrastructure.NewNoopBusinessMetrics()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TableCache{
		loader:  loader,
		metrics: metrics,
		logger:  logger.With(slog.String("component", "table_cache")),
		tables:  make(map[string]*dataprocessing.Table),
		gens:    make(map[string]uint64),
	}
}

// CacheKey is the cleaned absolute form of path used to key the cache.
func CacheKey(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return abs
}

// GetOrLoad returns the cached table for path, loading it on a miss.
func (c *TableCache) GetOrLoad(ctx context.Context, path string) (*dataprocessing.Table, error) {
	key := CacheKey(path)
	attrs := metric.WithAttributes(attribute.String("path", filepath.Base(key)))

	if t, ok := c.lookup(key); ok {
		c.hits.Add(1)
		c.metrics.CacheHits.Add(ctx, 1, attrs)
		return t, nil
	}
	c.misses.Add(1)
	c.metrics.CacheMisses.Add(ctx, 1, attrs)

	v, err, shared := c.group.Do(key, func() (interface{}, error) {
		if t, ok := c.lookup(key); ok {
			return t, nil
		}
		return c.load(ctx, key)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		c.logger.DebugContext(ctx, "Shared in-flight table load", slog.String("path", key))
	}
	return v.(*dataprocessing.Table), nil
}

func (c *TableCache) lookup(key string) (*dataprocessing.Table, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.tables[key]
	return t, ok
}

func (c *TableCache) load(ctx context.Context, key string) (*dataprocessing.Table, error) {
	c.mu.RLock()
	gen, epoch := c.gens[key], c.epoch
	c.mu.RUnlock()

	start := time.Now()
	t, err := c.loader.Load(ctx, key)
	rows := 0
	if t != nil {
		rows = t.Len()
	}
	c.metrics.RecordDatasetLoad(ctx, formatOf(key), rows, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	c.loads.Add(1)

	c.mu.Lock()
	if c.gens[key] == gen && c.epoch == epoch {
		c.tables[key] = t
	}
	c.mu.Unlock()

	c.logger.InfoContext(ctx, "Table cached",
		slog.String("path", key),
		slog.Int("rows", rows),
		slog.Duration("duration", time.Since(start)))
	return t, nil
}

// Invalidate drops the entry for path and reports whether one existed.
func (c *TableCache) Invalidate(path string) bool {
	key := CacheKey(path)

	c.mu.Lock()
	_, ok := c.tables[key]
	delete(c.tables, key)
	c.gens[key]++
	c.mu.Unlock()

	c.group.Forget(key)
	if ok {
		c.invalidations.Add(1)
		c.metrics.CacheInvalidations.Add(context.Background(), 1)
	}
	c.logger.Info("Table cache entry invalidated", slog.String("path", key), slog.Bool("existed", ok))
	return ok
}

// InvalidateAll drops every entry and returns how many there were.
func (c *TableCache) InvalidateAll() int {
	c.mu.Lock()
	n := len(c.tables)
	for key := range c.tables {
		c.group.Forget(key)
	}
	c.epoch++
	c.tables = make(map[string]*dataprocessing.Table)
	c.mu.Unlock()

	c.invalidations.Add(uint64(n))
	c.metrics.CacheInvalidations.Add(context.Background(), int64(n))
	c.logger.Info("Table cache cleared", slog.Int("entries", n))
	return n
}

// Stats returns the current counters.
func (c *TableCache) Stats() CacheStats {
	c.mu.RLock()
	entries := len(c.tables)
	c.mu.RUnlock()

	return CacheStats{
		Entries:       entries,
		Hits:          c.hits.Load(),
		Misses:        c.misses.Load(),
		Loads:         c.loads.Load(),
		Invalidations: c.invalidations.Load(),
	}
}

func formatOf(path string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
}
