package db

import (
	"context"
	"fmt"
	"path/filepath"
)

// Backend names accepted by Open
const (
	BackendFile     = "file"
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// Backends lists every supported backend
var Backends = []string{BackendFile, BackendMemory, BackendSQLite, BackendPostgres, BackendRedis}

// KV is the storage contract every backend satisfies. Get returns nil, nil
// for a missing key.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Options selects and configures a backend
type Options struct {
	Backend       string
	DataDir       string
	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// UnknownBackendError is returned for an unsupported backend name
type UnknownBackendError struct {
	Backend string
}

func (e *UnknownBackendError) Error() string {
	return fmt.Sprintf("unknown storage backend %q (want one of %v)", e.Backend, Backends)
}

// Open connects to the backend named by opts.Backend. An empty name means file.
func Open(ctx context.Context, opts Options) (KV, error) {
	dataDir := opts.DataDir
	if dataDir == "" {
		dataDir = "data"
	}

	switch opts.Backend {
	case "", BackendFile:
		return NewFileKV(filepath.Clean(dataDir))
	case BackendMemory:
		return NewMemoryKV(), nil
	case BackendSQLite:
		return OpenSQLite(dataDir)
	case BackendPostgres:
		if opts.DatabaseURL == "" {
			return nil, fmt.Errorf("postgres backend requires DATABASE_URL")
		}
		return ConnectPostgres(ctx, opts.DatabaseURL)
	case BackendRedis:
		addr := opts.RedisAddr
		if addr == "" {
			addr = "localhost:6379"
		}
		return ConnectRedis(ctx, addr, opts.RedisPassword, opts.RedisDB)
	default:
		return nil, &UnknownBackendError{Backend: opts.Backend}
	}
}
