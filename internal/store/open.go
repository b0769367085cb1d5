package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Options selects and configures a backend for Open.
type Options struct {
	Backend string

	FilePath   string
	SQLitePath string

	PostgresDSN   string
	PostgresTable string

	MongoURI        string
	MongoDB         string
	MongoCollection string

	RedisAddr     string
	RedisPassword string
	RedisPrefix   string

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool
}

// Open connects the configured backend. The returned close func releases any
// client or pool it created and is never nil on success.
func Open(ctx context.Context, opts Options) (KV, func(), error) {
	noop := func() {}

	switch opts.Backend {
	case BackendMemory:
		return NewMemory(), noop, nil

	case BackendFile:
		f, err := NewFileStore(opts.FilePath)
		if err != nil {
			return nil, nil, err
		}
		return f, noop, nil

	case BackendSQLite:
		s, err := OpenSQLite(opts.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil

	case BackendRedis:
		rdb, err := NewRedisClient(ctx, opts.RedisAddr, opts.RedisPassword)
		if err != nil {
			return nil, nil, fmt.Errorf("redis connect: %w", err)
		}
		return NewRedisStore(rdb, opts.RedisPrefix), func() { _ = rdb.Close() }, nil

	case BackendPostgres:
		pool, err := pgxpool.New(ctx, opts.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres connect: %w", err)
		}
		pg := NewPostgresStore(pool, opts.PostgresTable)
		if err := pg.Migrate(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("postgres migrate: %w", err)
		}
		return pg, pool.Close, nil

	case BackendMongo:
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(opts.MongoURI))
		if err != nil {
			return nil, nil, fmt.Errorf("mongo connect: %w", err)
		}
		if err := client.Ping(ctx, nil); err != nil {
			_ = client.Disconnect(ctx)
			return nil, nil, fmt.Errorf("mongo ping: %w", err)
		}
		closeFn := func() { _ = client.Disconnect(context.Background()) }
		return NewMongoStore(client.Database(opts.MongoDB), opts.MongoCollection), closeFn, nil

	case BackendMinio:
		m, err := NewMinioStore(ctx, opts.MinioEndpoint, opts.MinioAccessKey,
			opts.MinioSecretKey, opts.MinioBucket, opts.MinioUseSSL)
		if err != nil {
			return nil, nil, err
		}
		return m, noop, nil
	}

	return nil, nil, fmt.Errorf("unknown storage backend %q", opts.Backend)
}
