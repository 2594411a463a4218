package config

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Log       LogConfig       `mapstructure:"log"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Contracts ContractsConfig `mapstructure:"contracts"`
	Stream    StreamConfig    `mapstructure:"stream"`
	Rate      RateConfig      `mapstructure:"rate"`
}

type ServerConfig struct {
	Port     string `mapstructure:"port"`
	ReadOnly bool   `mapstructure:"read_only"`
	AuditDir string `mapstructure:"audit_dir"`
}

type AuthConfig struct {
	RequireAPIKey bool              `mapstructure:"require_api_key"`
	APIKey        string            `mapstructure:"api_key"`
	Clients       map[string]string `mapstructure:"clients"` // client id -> api key
	AdminKey      string            `mapstructure:"admin_key"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

type DatabaseConfig struct {
	DSN                       string `mapstructure:"dsn"`
	MaxOpenConns              int    `mapstructure:"max_open_conns"`
	MaxIdleConns              int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeMinutes    int    `mapstructure:"conn_max_lifetime_minutes"`
	ConnectTimeoutSeconds     int    `mapstructure:"connect_timeout_seconds"`
	IdempotencyRetentionHours int    `mapstructure:"idempotency_retention_hours"`
	AuditRetentionDays        int    `mapstructure:"audit_retention_days"`
	RejectionRetentionDays    int    `mapstructure:"rejection_retention_days"`
	CleanupIntervalMinutes    int    `mapstructure:"cleanup_interval_minutes"`
}

type RedisConfig struct {
	Addr                  string `mapstructure:"addr"`
	Password              string `mapstructure:"password"`
	DB                    int    `mapstructure:"db"`
	IdempotencyTTLSeconds int    `mapstructure:"idempotency_ttl_seconds"`
	AuditListKey          string `mapstructure:"audit_list_key"`
	AuditListMax          int    `mapstructure:"audit_list_max"`
}

type ContractsConfig struct {
	// Reject payload keys a contract does not declare
	DisallowUnknownFields bool `mapstructure:"disallow_unknown_fields"`
	// Check the raw payload against the generated JSON Schema before decoding
	SchemaPrecheck bool `mapstructure:"schema_precheck"`
}

type StreamConfig struct {
	BufferSize          int `mapstructure:"buffer_size"`
	WriteTimeoutMs      int `mapstructure:"write_timeout_ms"`
	PingIntervalSeconds int `mapstructure:"ping_interval_seconds"`
}

type RateConfig struct {
	QPS   float64 `mapstructure:"qps"`
	Burst int     `mapstructure:"burst"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_only", false)
	v.SetDefault("server.audit_dir", "./logs")
	v.SetDefault("auth.require_api_key", false)
	v.SetDefault("auth.admin_key", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age_days", 14)
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("redis.idempotency_ttl_seconds", 86400)
	v.SetDefault("redis.audit_list_key", "econgate:audit_logs")
	v.SetDefault("redis.audit_list_max", 10000)
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime_minutes", 60)
	v.SetDefault("database.connect_timeout_seconds", 5)
	v.SetDefault("database.idempotency_retention_hours", 168)
	v.SetDefault("database.audit_retention_days", 30)
	v.SetDefault("database.rejection_retention_days", 14)
	v.SetDefault("database.cleanup_interval_minutes", 60)
	v.SetDefault("contracts.disallow_unknown_fields", false)
	v.SetDefault("contracts.schema_precheck", false)
	v.SetDefault("stream.buffer_size", 64)
	v.SetDefault("stream.write_timeout_ms", 5000)
	v.SetDefault("stream.ping_interval_seconds", 30)
	v.SetDefault("rate.qps", 50)
	v.SetDefault("rate.burst", 100)
}

func Load() (*Config, error) {
	return LoadFrom(viper.New(), "")
}

// LoadFrom reads configuration into v. An explicit file path wins over the
// default search locations.
func LoadFrom(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}

	// Environment variables support
	// e.g. ECONGATE_REDIS_ADDR
	v.SetEnvPrefix("econgate")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			log.Println("No config file found, using defaults and env vars")
		} else {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port == "" {
		errs = append(errs, errors.New("server.port is required"))
	}
	if c.Auth.RequireAPIKey && c.Auth.APIKey == "" && len(c.Auth.Clients) == 0 {
		errs = append(errs, errors.New("auth.require_api_key needs auth.api_key or auth.clients"))
	}
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		errs = append(errs, fmt.Errorf("metrics.path %q must start with /", c.Metrics.Path))
	}
	if c.Stream.BufferSize <= 0 {
		errs = append(errs, errors.New("stream.buffer_size must be positive"))
	}
	if c.Stream.PingIntervalSeconds <= 0 {
		errs = append(errs, errors.New("stream.ping_interval_seconds must be positive"))
	}
	if c.Rate.QPS < 0 || c.Rate.Burst < 0 {
		errs = append(errs, errors.New("rate.qps and rate.burst must not be negative"))
	}
	if c.Database.MaxOpenConns < 0 || c.Database.MaxIdleConns < 0 {
		errs = append(errs, errors.New("database pool sizes must not be negative"))
	}
	if c.Database.MaxOpenConns > 0 && c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		errs = append(errs, fmt.Errorf("database.max_idle_conns %d exceeds database.max_open_conns %d",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns))
	}
	if c.Redis.AuditListMax < 0 {
		errs = append(errs, errors.New("redis.audit_list_max must not be negative"))
	}
	return errors.Join(errs...)
}
