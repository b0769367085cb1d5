// Package store provides the key-value storage backends the auth and todo
// services persist into. Every backend stores string values under string keys
// and reports a missing key as ok=false rather than an error.
package store

import "context"

// KV is the storage capability shared by every backend.
type KV interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Backend names accepted by Open.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendMongo    = "mongo"
	BackendMinio    = "minio"
)

// Backends lists every supported backend name.
var Backends = []string{
	BackendMemory,
	BackendFile,
	BackendSQLite,
	BackendRedis,
	BackendPostgres,
	BackendMongo,
	BackendMinio,
}
