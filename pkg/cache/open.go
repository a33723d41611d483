package cache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Backend names accepted by [Open].
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
	BackendNull   = "null"
)

// Backends lists the names accepted by [Open].
var Backends = []string{BackendFile, BackendSQLite, BackendRedis, BackendMongo, BackendNull}

// Options selects and configures a backend.
type Options struct {
	Backend string
	// Dir is the FileCache directory and the default location of the SQLite
	// database. Empty means [DefaultDir].
	Dir        string
	SQLitePath string
	Redis      RedisOptions
	Mongo      MongoOptions
}

// Open creates the backend named in opts. An empty backend name means file.
func Open(ctx context.Context, opts Options) (Cache, error) {
	backend := strings.ToLower(opts.Backend)
	if backend == "" {
		backend = BackendFile
	}

	dir := opts.Dir
	if dir == "" && (backend == BackendFile || backend == BackendSQLite) {
		d, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}

	switch backend {
	case BackendFile:
		c, err := NewFileCache(dir)
		if err != nil {
			return nil, err
		}
		return c, nil
	case BackendSQLite:
		path := opts.SQLitePath
		if path == "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, err
			}
			path = filepath.Join(dir, "cache.db")
		}
		c, err := NewSQLiteCache(path)
		if err != nil {
			return nil, err
		}
		return c, nil
	case BackendRedis:
		if opts.Redis.Addr == "" {
			return nil, fmt.Errorf("redis cache: address is required")
		}
		c, err := NewRedisCache(ctx, opts.Redis)
		if err != nil {
			return nil, fmt.Errorf("redis cache: %w", err)
		}
		return c, nil
	case BackendMongo:
		if opts.Mongo.URI == "" {
			return nil, fmt.Errorf("mongo cache: uri is required")
		}
		c, err := NewMongoCache(ctx, opts.Mongo)
		if err != nil {
			return nil, fmt.Errorf("mongo cache: %w", err)
		}
		return c, nil
	case BackendNull:
		return NewNullCache(), nil
	default:
		return nil, fmt.Errorf("%w: %q (must be one of: %s)", ErrUnknownBackend, opts.Backend, strings.Join(Backends, ", "))
	}
}
