package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/turtacn/oralrisk/pkg/constants"
	"github.com/turtacn/oralrisk/pkg/errors"
)

// Config holds the application's configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Session  SessionConfig  `mapstructure:"session"`
	Limits   LimitsConfig   `mapstructure:"rate_limit"`
	Model    ModelConfig    `mapstructure:"model"`
	AWS      AWSConfig      `mapstructure:"aws"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Vault    VaultConfig    `mapstructure:"vault"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Log      LogConfig      `mapstructure:"log"`
	Tracing  TracingConfig  `mapstructure:"tracing"`
}

type ServerConfig struct {
	Host            string   `mapstructure:"host"`
	Port            int      `mapstructure:"port"`
	Environment     string   `mapstructure:"environment"`
	ReadTimeout     int      `mapstructure:"read_timeout"`     // in seconds
	WriteTimeout    int      `mapstructure:"write_timeout"`    // in seconds
	IdleTimeout     int      `mapstructure:"idle_timeout"`     // in seconds
	ShutdownTimeout int      `mapstructure:"shutdown_timeout"` // in seconds
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
}

// Address returns the listen address
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsProduction reports whether debug surfaces should be hidden
func (c *ServerConfig) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// StorageConfig selects where accounts and predictions live.
type StorageConfig struct {
	Backend         string `mapstructure:"backend"` // memory | csv | sql
	AccountsPath    string `mapstructure:"accounts_path"`
	PredictionsPath string `mapstructure:"predictions_path"`
}

type DatabaseConfig struct {
	Driver          string `mapstructure:"driver"` // sqlite | postgres
	Path            string `mapstructure:"path"`   // sqlite file
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database"`
	SSLMode         string `mapstructure:"ssl_mode"`
	MaxConns        int    `mapstructure:"max_conns"`
	MaxConnLifetime int    `mapstructure:"max_conn_lifetime"` // in minutes
}

// GetDSN returns the postgres connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

type SessionConfig struct {
	Backend      string `mapstructure:"backend"` // memory | redis
	TTL          int    `mapstructure:"ttl"`     // in seconds
	CookieSecure bool   `mapstructure:"cookie_secure"`
	KeyPrefix    string `mapstructure:"key_prefix"`
}

// TTLDuration returns the session lifetime
func (c *SessionConfig) TTLDuration() time.Duration {
	if c.TTL <= 0 {
		return constants.DefaultSessionTTL
	}
	return time.Duration(c.TTL) * time.Second
}

// LimitsConfig throttles POST /login, /register and /api/v1/auth/token per client IP.
type LimitsConfig struct {
	Enabled  bool `mapstructure:"enabled"`
	Requests int  `mapstructure:"requests"`
	Window   int  `mapstructure:"window"` // in seconds
}

// WindowDuration returns the refill window
func (c *LimitsConfig) WindowDuration() time.Duration {
	return time.Duration(c.Window) * time.Second
}

// ModelConfig locates the classifier artifact. ArtifactPath is a local path or s3://bucket/key.
type ModelConfig struct {
	ArtifactPath string `mapstructure:"artifact_path"`
	DatasetPath  string `mapstructure:"dataset_path"`
}

type AWSConfig struct {
	Region       string `mapstructure:"region"`
	Endpoint     string `mapstructure:"endpoint"`
	UsePathStyle bool   `mapstructure:"use_path_style"`
}

type JWTConfig struct {
	Secret   string `mapstructure:"secret"`
	TokenTTL int    `mapstructure:"token_ttl"` // in seconds
	Issuer   string `mapstructure:"issuer"`
}

// TTLDuration returns the bearer token lifetime
func (c *JWTConfig) TTLDuration() time.Duration {
	if c.TokenTTL <= 0 {
		return constants.DefaultTokenTTL
	}
	return time.Duration(c.TokenTTL) * time.Second
}

// VaultConfig is consulted for the JWT secret when enabled.
type VaultConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Address    string `mapstructure:"address"`
	Token      string `mapstructure:"token"`
	MountPath  string `mapstructure:"mount_path"`
	SecretPath string `mapstructure:"secret_path"`
	SecretKey  string `mapstructure:"secret_key"`
}

type KafkaConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json | console
}

type TracingConfig struct {
	Enabled      bool    `mapstructure:"enabled"`
	Endpoint     string  `mapstructure:"endpoint"`
	Insecure     bool    `mapstructure:"insecure"`
	ServiceName  string  `mapstructure:"service_name"`
	SamplingRate float64 `mapstructure:"sampling_rate"`
}

// Validate checks for essential configuration values.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return errors.ErrInvalidField("server.port", "must be between 1 and 65535")
	}
	switch constants.StorageBackend(c.Storage.Backend) {
	case constants.StorageMemory:
	case constants.StorageCSV:
		if c.Storage.AccountsPath == "" || c.Storage.PredictionsPath == "" {
			return errors.ErrMissingField("storage.accounts_path and storage.predictions_path")
		}
	case constants.StorageSQL:
		switch c.Database.Driver {
		case "sqlite":
			if c.Database.Path == "" {
				return errors.ErrMissingField("database.path")
			}
		case "postgres":
			if c.Database.Host == "" || c.Database.Database == "" {
				return errors.ErrMissingField("database.host and database.database")
			}
		default:
			return errors.ErrInvalidField("database.driver", "must be sqlite or postgres")
		}
	default:
		return errors.ErrInvalidField("storage.backend", "must be memory, csv or sql")
	}
	switch constants.SessionBackend(c.Session.Backend) {
	case constants.SessionMemory:
	case constants.SessionRedis:
		if c.Redis.Address == "" {
			return errors.ErrMissingField("redis.address")
		}
	default:
		return errors.ErrInvalidField("session.backend", "must be memory or redis")
	}
	if c.Limits.Enabled && (c.Limits.Requests <= 0 || c.Limits.Window <= 0) {
		return errors.ErrInvalidField("rate_limit", "requests and window must be positive")
	}
	if c.Model.ArtifactPath == "" {
		return errors.ErrMissingField("model.artifact_path")
	}
	if c.Kafka.Enabled && (len(c.Kafka.Brokers) == 0 || c.Kafka.Topic == "") {
		return errors.ErrMissingField("kafka.brokers and kafka.topic")
	}
	if c.Vault.Enabled && (c.Vault.Address == "" || c.Vault.SecretPath == "") {
		return errors.ErrMissingField("vault.address and vault.secret_path")
	}
	if c.Server.IsProduction() && !c.Vault.Enabled && c.JWT.Secret == "" {
		return errors.ErrMissingField("jwt.secret")
	}
	if c.Tracing.Enabled && c.Tracing.Endpoint == "" {
		return errors.ErrMissingField("tracing.endpoint")
	}
	return nil
}
