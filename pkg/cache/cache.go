// Package cache stores pipeline results (fetched datasets, layouts and
// rendered artifacts) behind a small key/value interface.
//
// # Backends
//
//   - [FileCache]: one file per entry under ~/.cache/treemap (CLI default)
//   - [SQLiteCache]: a single database file
//   - [RedisCache]: shared cache for several server instances
//   - [MongoCache]: document store with a TTL index
//   - [NullCache]: caching disabled
//
// [Open] picks a backend from configuration.
//
// # Keys
//
// A [Keyer] derives keys from content hashes and options, so a changed input
// or option never hits a stale entry. [ScopedKeyer] adds a prefix for
// isolating deployments that share one backend.
package cache

import (
	"context"
	"errors"
	"time"
)

// Default time-to-live per entry type.
const (
	DatasetTTL  = 24 * time.Hour
	LayoutTTL   = 7 * 24 * time.Hour
	ArtifactTTL = 7 * 24 * time.Hour
)

var (
	// ErrNotFound is what GetJSON returns when key has no entry.
	ErrNotFound = errors.New("cache: entry not found")

	// ErrUnknownBackend is returned by Open for a name outside Backends.
	ErrUnknownBackend = errors.New("cache: unknown backend")
)

// Cache is a byte-oriented key/value store with per-entry TTL.
//
// Get reports a miss as (nil, false, nil); errors are reserved for backend
// failures. A TTL of 0 means the entry does not expire.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Clearer is implemented by backends that can drop every entry at once.
type Clearer interface {
	Clear(ctx context.Context) error
}

// NullCache is the backend for --no-cache and backend = "null": every Get
// misses and every write succeeds without storing.
type NullCache struct{}

// NewNullCache returns a cache that stores nothing.
func NewNullCache() *NullCache { return &NullCache{} }

func (*NullCache) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (*NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (*NullCache) Delete(context.Context, string) error                     { return nil }
func (*NullCache) Clear(context.Context) error                              { return nil }
func (*NullCache) Close() error                                             { return nil }

var (
	_ Cache   = (*NullCache)(nil)
	_ Clearer = (*NullCache)(nil)
)
