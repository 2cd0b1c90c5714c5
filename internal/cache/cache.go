// Package cache holds the in-memory catalog with time-based expiry. A fetch
// failure leaves the cache empty rather than poisoning it, so the next read
// retries immediately; concurrent reads during a fetch share one flight.
package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/sworl/mill/internal/catalog"
	"github.com/sworl/mill/internal/db"
)

// DefaultTTL is how long a fetched catalog stays fresh. It is deliberately
// just under a day so a daily work rhythm never sees a same-session refetch.
const DefaultTTL = 23 * time.Hour

// Fetcher produces the creator graph for a session.
type Fetcher interface {
	FetchUserAssets(ctx context.Context, sessionID string) ([]catalog.Creator, error)
}

// Cache is the process-wide catalog cache. The zero value is not usable;
// construct with New.
type Cache struct {
	fetcher Fetcher
	session func() string
	ttl     time.Duration
	now     func() time.Time
	store   *sql.DB

	group singleflight.Group

	mu        sync.Mutex
	creators  []catalog.Creator
	fetchedAt time.Time
}

// Option configures a Cache.
type Option func(*Cache)

// WithTTL overrides the freshness window.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) { c.ttl = ttl }
}

// WithNow overrides the clock, for tests.
func WithNow(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// WithStore persists fetched catalogs to the given database so a later
// process start within the freshness window skips the network entirely.
func WithStore(store *sql.DB) Option {
	return func(c *Cache) { c.store = store }
}

// New creates a cache over the given fetcher. The session callback is read
// on every fetch so a login during the process lifetime takes effect without
// rebuilding the cache. When a store is configured, a persisted snapshot
// still within the freshness window is loaded eagerly.
func New(fetcher Fetcher, session func() string, opts ...Option) *Cache {
	c := &Cache{
		fetcher: fetcher,
		session: session,
		ttl:     DefaultTTL,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.loadSnapshot()
	return c
}

// GetCreators returns the cached creator graph, fetching when the cache is
// empty or stale. A failed fetch returns the error and leaves the cache
// empty: fetchedAt is not advanced, so the next call retries immediately.
func (c *Cache) GetCreators(ctx context.Context) ([]catalog.Creator, error) {
	c.mu.Lock()
	if c.fresh() {
		creators := c.creators
		c.mu.Unlock()
		return creators, nil
	}
	c.mu.Unlock()

	// Coalesce concurrent refreshes into one network fetch.
	v, err, _ := c.group.Do("catalog", func() (any, error) {
		c.mu.Lock()
		if c.fresh() {
			creators := c.creators
			c.mu.Unlock()
			return creators, nil
		}
		c.mu.Unlock()

		creators, err := c.fetcher.FetchUserAssets(ctx, c.session())
		if err != nil {
			c.clearLocked()
			return nil, err
		}

		fetchedAt := c.now()
		c.mu.Lock()
		c.creators = creators
		c.fetchedAt = fetchedAt
		c.mu.Unlock()
		c.saveSnapshot(creators, fetchedAt)
		return creators, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]catalog.Creator), nil
}

// Catalog returns the cached graph as a catalog value. It never fetches.
func (c *Cache) Catalog() catalog.Catalog {
	c.mu.Lock()
	defer c.mu.Unlock()
	return catalog.Catalog{Creators: c.creators, FetchedAt: c.fetchedAt}
}

// Clear discards the cached catalog and any persisted snapshot. Idempotent.
func (c *Cache) Clear() {
	c.clearLocked()
	if c.store != nil {
		_ = db.ClearSnapshot(c.store)
	}
}

func (c *Cache) clearLocked() {
	c.mu.Lock()
	c.creators = nil
	c.fetchedAt = time.Time{}
	c.mu.Unlock()
}

// fresh reports whether the cached catalog is still within the freshness
// window. Callers must hold mu.
func (c *Cache) fresh() bool {
	if len(c.creators) == 0 || c.fetchedAt.IsZero() {
		return false
	}
	return c.now().Sub(c.fetchedAt) < c.ttl
}

func (c *Cache) loadSnapshot() {
	if c.store == nil {
		return
	}
	payload, fetchedAt, ok, err := db.LoadSnapshot(c.store)
	if err != nil || !ok {
		return
	}
	if c.now().Sub(fetchedAt) >= c.ttl {
		return
	}
	var creators []catalog.Creator
	if err := json.Unmarshal(payload, &creators); err != nil || len(creators) == 0 {
		return
	}
	c.mu.Lock()
	c.creators = creators
	c.fetchedAt = fetchedAt
	c.mu.Unlock()
}

// saveSnapshot persists the fetched graph. Best-effort: a storage failure
// never fails the fetch that produced the data.
func (c *Cache) saveSnapshot(creators []catalog.Creator, fetchedAt time.Time) {
	if c.store == nil {
		return
	}
	payload, err := json.Marshal(creators)
	if err != nil {
		return
	}
	_ = db.SaveSnapshot(c.store, payload, fetchedAt)
}
