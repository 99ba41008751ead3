package census

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/KaramelBytes/census-explorer/internal/metrics"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// Fetcher is anything that can run a bulk query. *Client implements it.
type Fetcher interface {
	Fetch(ctx context.Context, q Query) (*RawTable, error)
}

// Snapshot is one successful fetch held by the cache. Table must be treated as read-only.
type Snapshot struct {
	ID        string
	Query     Query
	FetchedAt time.Time
	Table     *RawTable
}

// Cache memoizes fetch results keyed by Query.Key. Entries expire after ttl
// (ttl <= 0 keeps them until invalidated). Concurrent lookups of a missing key
// share one underlying fetch; failures are never cached.
type Cache struct {
	fetcher Fetcher
	ttl     time.Duration
	now     func() time.Time
	metrics *metrics.Collectors
	log     *slog.Logger

	mu      sync.Mutex
	entries map[string]*Snapshot
	group   singleflight.Group
}

// NewCache wraps f with an in-memory cache.
func NewCache(f Fetcher, ttl time.Duration, m *metrics.Collectors, log *slog.Logger) *Cache {
	if log == nil {
		log = slog.Default()
	}
	return &Cache{
		fetcher: f,
		ttl:     ttl,
		now:     time.Now,
		metrics: m,
		log:     log.With(slog.String("component", "fetch_cache")),
		entries: make(map[string]*Snapshot),
	}
}

// Get returns the cached snapshot for q, fetching it when absent or expired.
func (c *Cache) Get(ctx context.Context, q Query) (*Snapshot, error) {
	key := q.Key()
	if s := c.lookup(key); s != nil {
		c.metrics.CacheLookup(true)
		return s, nil
	}
	c.metrics.CacheLookup(false)
	return c.load(ctx, q, key)
}

// Refresh drops any cached snapshot for q and fetches a new one.
func (c *Cache) Refresh(ctx context.Context, q Query) (*Snapshot, error) {
	c.Invalidate(q)
	return c.load(ctx, q, q.Key())
}

// Invalidate drops the snapshot for q, if any.
func (c *Cache) Invalidate(q Query) {
	key := q.Key()
	c.mu.Lock()
	_, ok := c.entries[key]
	delete(c.entries, key)
	c.mu.Unlock()
	if ok {
		c.log.Info("cache entry invalidated", slog.String("key", key))
	}
}

// Purge drops every snapshot.
func (c *Cache) Purge() {
	c.mu.Lock()
	c.entries = make(map[string]*Snapshot)
	c.mu.Unlock()
}

func (c *Cache) lookup(key string) *Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.entries[key]
	if !ok {
		return nil
	}
	if c.ttl > 0 && c.now().Sub(s.FetchedAt) >= c.ttl {
		delete(c.entries, key)
		c.log.Debug("cache entry expired", slog.String("key", key), slog.String("fetch_id", s.ID))
		return nil
	}
	return s
}

// load runs the fetch for key once for all concurrent callers. The shared fetch is
// detached from any single caller's cancellation; each caller stops waiting when its
// own ctx is done. The client's HTTP timeout still bounds the fetch.
func (c *Cache) load(ctx context.Context, q Query, key string) (*Snapshot, error) {
	fetchCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		// Another caller may have filled the entry while we waited on the group.
		if s := c.lookup(key); s != nil {
			return s, nil
		}
		id := uuid.NewString()
		c.log.InfoContext(fetchCtx, "fetching census table", slog.String("fetch_id", id), slog.String("key", key))
		tbl, err := c.fetcher.Fetch(fetchCtx, q)
		if err != nil {
			c.log.ErrorContext(fetchCtx, "census fetch failed", slog.String("fetch_id", id), slog.String("error", err.Error()))
			return nil, err
		}
		s := &Snapshot{ID: id, Query: q, FetchedAt: c.now(), Table: tbl}
		c.mu.Lock()
		c.entries[key] = s
		c.mu.Unlock()
		return s, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			c.log.Debug("joined in-flight fetch", slog.String("key", key))
		}
		return res.Val.(*Snapshot), nil
	}
}
