package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Addr          string `env:"ADDR,           default=:8080"`
	OpsAddr       string `env:"OPS_ADDR,       default=:9090"`
	Env           string `env:"ENV,            default=development"`
	LogLevel      string `env:"LOG_LEVEL,      default=info"`
	LogPretty     bool   `env:"LOG_PRETTY,     default=false"`
	StaticRoot    string `env:"STATIC_ROOT,    default=static"`
	TemplateRoot  string `env:"TEMPLATE_ROOT,  default=templates"`
	VerboseErrors bool   `env:"VERBOSE_ERRORS, default=false"`
	AuditWorkers  int    `env:"AUDIT_WORKERS,  default=4"`

	Server ServerConfig
	DB     DBConfig
	Admin  AdminConfig
	Mongo  MongoConfig
	Redis  RedisConfig
}

type ServerConfig struct {
	ReadBufferSize int           `env:"READ_BUFFER_SIZE, default=4096"`
	ReadTimeout    time.Duration `env:"READ_TIMEOUT,     default=0s"`
}

type DBConfig struct {
	Path     string `env:"DB_PATH,      default=db/database.db"`
	PoolSize int    `env:"DB_POOL_SIZE, default=5"`
}

// AdminConfig seeds the administrator account. PasswordDigest is the
// lowercase hex SHA-256 of the password; the default is the digest of
// "admin123".
type AdminConfig struct {
	Email          string `env:"ADMIN_EMAIL,           default=admin@example.com"`
	PasswordDigest string `env:"ADMIN_PASSWORD_DIGEST, default=240be518fabd2724ddb6f04eeb1da5967448d7e831c08c8fa822809f74c720a9"`
}

// MongoConfig enables the circulation ledger when URI is set.
type MongoConfig struct {
	URI      string `env:"MONGO_URI"`
	Database string `env:"MONGO_DB, default=library_audit"`
}

// RedisConfig enables the book cache when Addr is set.
type RedisConfig struct {
	Addr         string        `env:"REDIS_ADDR"`
	DB           int           `env:"REDIS_DB,       default=0"`
	BookCacheTTL time.Duration `env:"BOOK_CACHE_TTL, default=30s"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if cfg.Server.ReadBufferSize <= 0 {
		return nil, fmt.Errorf("config: READ_BUFFER_SIZE must be positive, got %d", cfg.Server.ReadBufferSize)
	}
	if cfg.DB.PoolSize <= 0 {
		return nil, fmt.Errorf("config: DB_POOL_SIZE must be positive, got %d", cfg.DB.PoolSize)
	}
	return &cfg, nil
}
