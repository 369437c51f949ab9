package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var (
	ErrCacheMiss = errors.New("cache: key not found")
)

// Store is the persistent blob store the TTL cache sits on. Entries carry
// the time they were written; freshness is judged by the cache at read time.
type Store interface {
	SetBlob(ctx context.Context, key string, value []byte) error
	GetBlob(ctx context.Context, key string) (value []byte, storedAt time.Time, found bool, err error)
	DeleteBlob(ctx context.Context, key string) error
	ClearAll(ctx context.Context) error
}

// Cache adds read-time TTL semantics and JSON serialization on top of a Store.
// Stale entries persist in the backing store until the next read or an
// explicit Clear; there is no background sweeper.
type Cache struct {
	store      Store
	defaultTTL time.Duration
	now        func() time.Time
}

type Option func(*Cache)

// WithDefaultTTL sets the TTL used when Get is called with ttl <= 0.
func WithDefaultTTL(d time.Duration) Option {
	return func(c *Cache) {
		if d > 0 {
			c.defaultTTL = d
		}
	}
}

// WithClock overrides the time source. Tests only.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// New creates a TTL cache over the given store. Default TTL is 5 minutes.
func New(store Store, opts ...Option) *Cache {
	c := &Cache{
		store:      store,
		defaultTTL: 5 * time.Minute,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get unmarshals the stored value into dest if the entry exists and its age
// is within ttl (ttl <= 0 uses the default). Expired entries are deleted and
// reported as a miss.
func (c *Cache) Get(ctx context.Context, key string, dest interface{}, ttl time.Duration) (bool, error) {
	b, storedAt, found, err := c.store.GetBlob(ctx, key)
	if err != nil {
		return false, fmt.Errorf("cache get %s: %w", key, err)
	}
	if !found {
		return false, nil
	}

	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	if c.now().Sub(storedAt) > ttl {
		_ = c.store.DeleteBlob(ctx, key)
		return false, nil
	}

	if err := json.Unmarshal(b, dest); err != nil {
		// A corrupt entry is as good as a miss; drop it.
		_ = c.store.DeleteBlob(ctx, key)
		return false, nil
	}
	return true, nil
}

// Set serializes value to JSON and writes it through to the backing store.
func (c *Cache) Set(ctx context.Context, key string, value interface{}) error {
	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal %s: %w", key, err)
	}
	if err := c.store.SetBlob(ctx, key, b); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

// Delete removes a single entry.
func (c *Cache) Delete(ctx context.Context, key string) error {
	return c.store.DeleteBlob(ctx, key)
}

// Clear wipes every entry in the backing store.
func (c *Cache) Clear(ctx context.Context) error {
	return c.store.ClearAll(ctx)
}
