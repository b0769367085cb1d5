package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"

	"github.com/ayush/taskgate/internal/store"
)

// FileEnv names the environment variable pointing at an optional TOML file.
const FileEnv = "TASKGATE_CONFIG"

// Password schemes accepted for new registrations.
const (
	SchemePlain  = "plain"
	SchemeBcrypt = "bcrypt"
)

// Config holds all service configuration.
type Config struct {
	Port string `toml:"port" env:"PORT"`

	StorageBackend string `toml:"storage_backend" env:"STORAGE_BACKEND"`
	StorageFile    string `toml:"storage_file"    env:"STORAGE_FILE"`
	SQLitePath     string `toml:"sqlite_path"     env:"SQLITE_PATH"`

	PostgresDSN   string `toml:"postgres_dsn"   env:"POSTGRES_DSN"`
	PostgresTable string `toml:"postgres_table" env:"POSTGRES_TABLE"`

	MongoURI        string `toml:"mongo_uri"        env:"MONGO_URI"`
	MongoDB         string `toml:"mongo_db"         env:"MONGO_DB"`
	MongoCollection string `toml:"mongo_collection" env:"MONGO_COLLECTION"`

	RedisAddr     string `toml:"redis_addr"     env:"REDIS_ADDR"`
	RedisPassword string `toml:"redis_password" env:"REDIS_PASSWORD"`
	RedisPrefix   string `toml:"redis_prefix"   env:"REDIS_PREFIX"`

	MinioEndpoint  string `toml:"minio_endpoint"   env:"MINIO_ENDPOINT"`
	MinioAccessKey string `toml:"minio_access_key" env:"MINIO_ACCESS_KEY"`
	MinioSecretKey string `toml:"minio_secret_key" env:"MINIO_SECRET_KEY"`
	MinioBucket    string `toml:"minio_bucket"     env:"MINIO_BUCKET"`
	MinioUseSSL    bool   `toml:"minio_use_ssl"    env:"MINIO_USE_SSL"`

	AllowedOrigins []string `toml:"allowed_origins" env:"ALLOWED_ORIGINS" envSeparator:","`
	PasswordScheme string   `toml:"password_scheme" env:"PASSWORD_SCHEME"`
	LogLevel       string   `toml:"log_level"       env:"LOG_LEVEL"`
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		Port:            "8080",
		StorageBackend:  store.BackendFile,
		StorageFile:     "data/taskgate.json",
		SQLitePath:      "data/taskgate.db",
		PostgresTable:   "kv",
		MongoDB:         "taskgate",
		MongoCollection: "kv",
		RedisAddr:       "localhost:6379",
		RedisPrefix:     "taskgate:",
		MinioEndpoint:   "localhost:9000",
		MinioBucket:     "taskgate",
		AllowedOrigins:  []string{"http://localhost:5173", "http://localhost:3000"},
		PasswordScheme:  SchemePlain,
		LogLevel:        "info",
	}
}

// Load builds the configuration in priority order:
// 1. Defaults
// 2. TOML file named by TASKGATE_CONFIG, if set
// 3. Environment variables
func Load() (*Config, error) {
	cfg := Default()

	if path := strings.TrimSpace(os.Getenv(FileEnv)); path != "" {
		if err := loadFile(cfg, path); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(cfg *Config, path string) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	return nil
}

// Validate checks that the selected backend has what it needs.
func (c *Config) Validate() error {
	var errs []error

	if !slices.Contains(store.Backends, c.StorageBackend) {
		errs = append(errs, fmt.Errorf("unknown storage backend %q", c.StorageBackend))
	}
	switch c.StorageBackend {
	case store.BackendFile:
		if c.StorageFile == "" {
			errs = append(errs, errors.New("STORAGE_FILE is required for the file backend"))
		}
	case store.BackendSQLite:
		if c.SQLitePath == "" {
			errs = append(errs, errors.New("SQLITE_PATH is required for the sqlite backend"))
		}
	case store.BackendPostgres:
		if c.PostgresDSN == "" {
			errs = append(errs, errors.New("POSTGRES_DSN is required for the postgres backend"))
		}
	case store.BackendMongo:
		if c.MongoURI == "" {
			errs = append(errs, errors.New("MONGO_URI is required for the mongo backend"))
		}
	case store.BackendRedis:
		if c.RedisAddr == "" {
			errs = append(errs, errors.New("REDIS_ADDR is required for the redis backend"))
		}
	case store.BackendMinio:
		if c.MinioEndpoint == "" || c.MinioBucket == "" {
			errs = append(errs, errors.New("MINIO_ENDPOINT and MINIO_BUCKET are required for the minio backend"))
		}
	}

	if c.PasswordScheme != SchemePlain && c.PasswordScheme != SchemeBcrypt {
		errs = append(errs, fmt.Errorf("unknown password scheme %q", c.PasswordScheme))
	}
	if _, err := c.SlogLevel(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// SlogLevel parses LogLevel.
func (c *Config) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	return lvl, nil
}

// StoreOptions maps the storage settings onto store.Options.
func (c *Config) StoreOptions() store.Options {
	return store.Options{
		Backend:         c.StorageBackend,
		FilePath:        c.StorageFile,
		SQLitePath:      c.SQLitePath,
		PostgresDSN:     c.PostgresDSN,
		PostgresTable:   c.PostgresTable,
		MongoURI:        c.MongoURI,
		MongoDB:         c.MongoDB,
		MongoCollection: c.MongoCollection,
		RedisAddr:       c.RedisAddr,
		RedisPassword:   c.RedisPassword,
		RedisPrefix:     c.RedisPrefix,
		MinioEndpoint:   c.MinioEndpoint,
		MinioAccessKey:  c.MinioAccessKey,
		MinioSecretKey:  c.MinioSecretKey,
		MinioBucket:     c.MinioBucket,
		MinioUseSSL:     c.MinioUseSSL,
	}
}
