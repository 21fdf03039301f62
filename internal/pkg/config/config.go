package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const (
	DriverSupabase = "supabase"
	DriverMongo    = "mongo"
	DriverMemory   = "memory" // local development only

	RateLimitMemory = "memory"
	RateLimitRedis  = "redis"
)

type Config struct {
	Port       string `env:"PORT,        default=8080"`
	Env        string `env:"ENV,         default=development"`
	APIVersion string `env:"API_VERSION, default=v1"`
	LogLevel   string `env:"LOG_LEVEL,   default=info"`
	LogFormat  string `env:"LOG_FORMAT,  default=json"`

	JWT       JWTConfig
	DataStore DataStoreConfig
	Supabase  SupabaseConfig
	Mongo     MongoConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
}

// JWTConfig lifetimes use the compact "<n><unit>" form (s, m, h, d).
type JWTConfig struct {
	Secret           string `env:"JWT_SECRET, required"`
	ExpiresIn        string `env:"JWT_EXPIRES_IN,         default=1h"`
	RefreshExpiresIn string `env:"JWT_REFRESH_EXPIRES_IN, default=7d"`
}

type DataStoreConfig struct {
	Driver  string        `env:"DATASTORE_DRIVER,  default=supabase"`
	Timeout time.Duration `env:"DATASTORE_TIMEOUT, default=10s"`
}

type SupabaseConfig struct {
	URL            string `env:"SUPABASE_URL"`
	AnonKey        string `env:"SUPABASE_ANON_KEY"`
	ServiceRoleKey string `env:"SUPABASE_SERVICE_ROLE_KEY"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=voyage"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR, default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,   default=0"`
}

type RateLimitConfig struct {
	Backend     string        `env:"RATE_LIMIT_BACKEND, default=memory"`
	Window      time.Duration `env:"RATE_LIMIT_WINDOW,  default=15m"`
	MaxRequests int           `env:"RATE_LIMIT_MAX,     default=100"`
}

type CORSConfig struct {
	Origins []string `env:"CORS_ORIGINS, default=*"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith reads configuration through an explicit lookuper.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: failed to load configuration: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.DataStore.Driver {
	case DriverSupabase:
		if c.Supabase.URL == "" || c.Supabase.ServiceRoleKey == "" {
			return errors.New("SUPABASE_URL and SUPABASE_SERVICE_ROLE_KEY are required for the supabase driver")
		}
	case DriverMongo, DriverMemory:
	default:
		return fmt.Errorf("unknown DATASTORE_DRIVER %q", c.DataStore.Driver)
	}

	switch c.RateLimit.Backend {
	case RateLimitMemory, RateLimitRedis:
	default:
		return fmt.Errorf("unknown RATE_LIMIT_BACKEND %q", c.RateLimit.Backend)
	}
	if c.RateLimit.MaxRequests <= 0 || c.RateLimit.Window <= 0 {
		return errors.New("RATE_LIMIT_MAX and RATE_LIMIT_WINDOW must be positive")
	}
	return nil
}

// IsProduction reports whether the service runs with ENV=production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
