package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
)

type Config struct {
	// HTTP service
	App AppConfig `mapstructure:"app"`

	// Record store
	Storage StorageConfig `mapstructure:"storage"`

	// Redis (page cache + rate limit)
	Redis RedisConfig `mapstructure:"redis"`

	// NATS (character events)
	NATS NATSConfig `mapstructure:"nats"`

	// Prometheus
	Prometheus PrometheusConfig `mapstructure:"prometheus"`

	RateLimit RateLimitConfig `mapstructure:"rate_limit"`

	// Client-side base addresses used by charactersctl
	Client ClientConfig `mapstructure:"client"`
}

type AppConfig struct {
	Env             string `mapstructure:"env"`
	Port            int    `mapstructure:"port"`
	BaseURL         string `mapstructure:"base_url"`
	CORSOrigin      string `mapstructure:"cors_origin"`
	CORSCredentials bool   `mapstructure:"cors_credentials"`
	LogLevel        string `mapstructure:"log_level"`
	Version         string `mapstructure:"version"`
}

type StorageConfig struct {
	Driver   string         `mapstructure:"driver"`
	Path     string         `mapstructure:"path"`
	Postgres PostgresConfig `mapstructure:"postgres"`
}

type PostgresConfig struct {
	Host              string `mapstructure:"host"`
	User              string `mapstructure:"user"`
	Password          string `mapstructure:"password"`
	Database          string `mapstructure:"database"`
	Port              int    `mapstructure:"port"`
	SSLMode           string `mapstructure:"sslmode"`
	MaxConns          int32  `mapstructure:"max_conns"`
	MinConns          int32  `mapstructure:"min_conns"`
	MaxConnLifetime   string `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime   string `mapstructure:"max_conn_idle_time"`
	HealthCheckPeriod string `mapstructure:"health_check_period"`
}

type RedisConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Host     string        `mapstructure:"host"`
	Port     int           `mapstructure:"port"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

type NATSConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	// Consumer is this replica's durable consumer name; empty derives one from the hostname.
	Consumer string `mapstructure:"consumer"`
}

type PrometheusConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

type RateLimitConfig struct {
	MaxRequests int           `mapstructure:"max_requests"`
	Window      time.Duration `mapstructure:"window"`
}

type ClientConfig struct {
	LocalBaseURL     string        `mapstructure:"local_base_url"`
	AlternateBaseURL string        `mapstructure:"alternate_base_url"`
	ExternalBaseURL  string        `mapstructure:"external_base_url"`
	Timeout          time.Duration `mapstructure:"timeout"`
}

// IsProduction reports whether internal error details must be withheld from clients.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.App.Env, EnvProduction)
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case StorageSQLite:
		if c.Storage.Path == "" {
			return fmt.Errorf("config: storage.path is required for sqlite")
		}
	case StoragePostgres:
		if c.Storage.Postgres.Database == "" {
			return fmt.Errorf("config: storage.postgres.database is required for postgres")
		}
	default:
		return fmt.Errorf("config: unsupported storage driver %q", c.Storage.Driver)
	}
	if c.App.Port <= 0 || c.App.Port > 65535 {
		return fmt.Errorf("config: invalid app.port %d", c.App.Port)
	}
	if c.App.BaseURL == "" {
		return fmt.Errorf("config: app.base_url is required")
	}
	return nil
}

func Load() (*Config, error) {
	// Load local .env for development (ignored when missing).
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	// Search for config/config.yaml (plus root for overrides).
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// Allow environment variables to override YAML entries.
	v.SetEnvPrefix("")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.App.BaseURL = strings.TrimRight(cfg.App.BaseURL, "/")
	if cfg.App.BaseURL == "" {
		cfg.App.BaseURL = fmt.Sprintf("http://localhost:%d", cfg.App.Port)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", EnvDevelopment)
	v.SetDefault("app.port", 3001)
	v.SetDefault("app.base_url", "")
	v.SetDefault("app.cors_origin", "*")
	v.SetDefault("app.cors_credentials", false)
	v.SetDefault("app.log_level", "")
	v.SetDefault("app.version", "1.0.0")

	v.SetDefault("storage.driver", StorageSQLite)
	v.SetDefault("storage.path", "data/characters.db")
	v.SetDefault("storage.postgres.host", "localhost")
	v.SetDefault("storage.postgres.port", 5432)
	v.SetDefault("storage.postgres.user", "")
	v.SetDefault("storage.postgres.password", "")
	v.SetDefault("storage.postgres.database", "")
	v.SetDefault("storage.postgres.sslmode", "disable")
	v.SetDefault("storage.postgres.max_conns", 0)
	v.SetDefault("storage.postgres.min_conns", 0)
	v.SetDefault("storage.postgres.max_conn_lifetime", "")
	v.SetDefault("storage.postgres.max_conn_idle_time", "")
	v.SetDefault("storage.postgres.health_check_period", "")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.cache_ttl", 30*time.Second)

	v.SetDefault("nats.enabled", false)
	v.SetDefault("nats.host", "localhost")
	v.SetDefault("nats.port", 4222)
	v.SetDefault("nats.user", "")
	v.SetDefault("nats.password", "")
	v.SetDefault("nats.consumer", "")

	v.SetDefault("prometheus.enabled", false)
	v.SetDefault("prometheus.port", 9090)

	v.SetDefault("rate_limit.max_requests", 100)
	v.SetDefault("rate_limit.window", time.Minute)

	v.SetDefault("client.local_base_url", "http://localhost:3001")
	v.SetDefault("client.alternate_base_url", "http://localhost:8081")
	v.SetDefault("client.external_base_url", "https://rickandmortyapi.com/api")
	v.SetDefault("client.timeout", 10*time.Second)
}

func bindEnvVars(v *viper.Viper) {
	// App
	v.BindEnv("app.env", "APP_ENV", "NODE_ENV")
	v.BindEnv("app.port", "PORT")
	v.BindEnv("app.base_url", "API_BASE_URL")
	v.BindEnv("app.cors_origin", "CORS_ORIGIN")
	v.BindEnv("app.log_level", "LOG_LEVEL")

	// Storage
	v.BindEnv("storage.driver", "DATABASE_DRIVER")
	v.BindEnv("storage.path", "DATABASE_PATH")
	v.BindEnv("storage.postgres.host", "PG_HOST")
	v.BindEnv("storage.postgres.user", "PG_USER")
	v.BindEnv("storage.postgres.password", "PG_PASSWORD")
	v.BindEnv("storage.postgres.database", "PG_DB")
	v.BindEnv("storage.postgres.port", "PG_PORT")
	v.BindEnv("storage.postgres.sslmode", "PG_SSLMODE")

	// Redis
	v.BindEnv("redis.enabled", "REDIS_ENABLED")
	v.BindEnv("redis.host", "REDIS_HOST")
	v.BindEnv("redis.port", "REDIS_PORT")
	v.BindEnv("redis.password", "REDIS_PASSWORD")
	v.BindEnv("redis.db", "REDIS_DB")

	// NATS
	v.BindEnv("nats.enabled", "NATS_ENABLED")
	v.BindEnv("nats.host", "NATS_HOST")
	v.BindEnv("nats.port", "NATS_PORT")
	v.BindEnv("nats.user", "NATS_USER")
	v.BindEnv("nats.password", "NATS_PASSWORD")
	v.BindEnv("nats.consumer", "NATS_CONSUMER")

	// Prometheus
	v.BindEnv("prometheus.enabled", "PROM_ENABLED")
	v.BindEnv("prometheus.port", "PROM_PORT")

	// Client
	v.BindEnv("client.local_base_url", "LOCAL_API_URL")
	v.BindEnv("client.alternate_base_url", "ALT_API_URL")
	v.BindEnv("client.external_base_url", "EXTERNAL_API_URL")
}
