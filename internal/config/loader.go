package config

import (
	"context"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/turtacn/oralrisk/pkg/constants"
	"github.com/turtacn/oralrisk/pkg/errors"
	"github.com/turtacn/oralrisk/pkg/logger"
)

// Loader reads configuration from file, .env and environment variables and can watch the file for changes.
type Loader struct {
	v   *viper.Viper
	log logger.Logger
}

// NewLoader creates a loader. An empty configFile searches ./config.yaml and /etc/oralrisk/config.yaml.
func NewLoader(configFile string, log logger.Logger) *Loader {
	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("/etc/oralrisk/")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &Loader{v: v, log: log}
}

// LoadConfig loads the configuration using the default search paths.
func LoadConfig(log logger.Logger) (*Config, error) {
	return NewLoader("", log).Load()
}

// Load reads and validates the configuration.
func (l *Loader) Load() (*Config, error) {
	// .env is optional; values there only seed the process environment.
	if err := godotenv.Load(); err == nil {
		l.log.Debug(context.Background(), "Loaded .env file")
	}

	if err := l.v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errors.ErrInvalidRequest.WithMessage("failed to read config file").WithCause(err)
		}
		l.log.Info(context.Background(), "No config file found, using defaults and environment")
	} else {
		l.log.Info(context.Background(), "Loaded config file", logger.Fields{"file": l.v.ConfigFileUsed()})
	}

	return l.decode()
}

func (l *Loader) decode() (*Config, error) {
	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, errors.ErrInvalidRequest.WithMessage("failed to unmarshal config").WithCause(err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Watch invokes onChange with the re-read configuration whenever the config file changes.
// Invalid updates are logged and skipped.
func (l *Loader) Watch(onChange func(*Config)) {
	l.v.OnConfigChange(func(e fsnotify.Event) {
		cfg, err := l.decode()
		if err != nil {
			l.log.Warn(context.Background(), "Ignoring invalid config change", logger.Fields{"file": e.Name, "error": err.Error()})
			return
		}
		l.log.Info(context.Background(), "Config file changed", logger.Fields{"file": e.Name, "op": e.Op.String()})
		onChange(cfg)
	})
	l.v.WatchConfig()
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.read_timeout", 15)
	v.SetDefault("server.write_timeout", 15)
	v.SetDefault("server.idle_timeout", 60)
	v.SetDefault("server.shutdown_timeout", 30)
	v.SetDefault("server.allowed_origins", []string{"*"})

	v.SetDefault("storage.backend", string(constants.StorageCSV))
	v.SetDefault("storage.accounts_path", "data/users.csv")
	v.SetDefault("storage.predictions_path", "data/predictions.csv")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "data/oralrisk.db")
	v.SetDefault("database.host", "")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.database", "")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.max_conn_lifetime", 30)

	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 10)

	v.SetDefault("session.backend", string(constants.SessionMemory))
	v.SetDefault("session.ttl", int(constants.DefaultSessionTTL.Seconds()))
	v.SetDefault("session.cookie_secure", false)
	v.SetDefault("session.key_prefix", "oralrisk:session:")

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests", 10)
	v.SetDefault("rate_limit.window", 60)

	v.SetDefault("model.artifact_path", "models/oral_cancer_model.json")
	v.SetDefault("model.dataset_path", "data/sample_oral_cancer_data.csv")

	v.SetDefault("aws.region", "us-east-1")
	v.SetDefault("aws.endpoint", "")
	v.SetDefault("aws.use_path_style", false)

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.token_ttl", int(constants.DefaultTokenTTL.Seconds()))
	v.SetDefault("jwt.issuer", constants.TokenIssuer)

	v.SetDefault("vault.enabled", false)
	v.SetDefault("vault.address", "")
	v.SetDefault("vault.token", "")
	v.SetDefault("vault.secret_path", "")
	v.SetDefault("vault.mount_path", "secret")
	v.SetDefault("vault.secret_key", "jwt_secret")

	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic", "oralrisk.predictions")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.endpoint", "")
	v.SetDefault("tracing.service_name", constants.ServiceName)
	v.SetDefault("tracing.sampling_rate", 1.0)
	v.SetDefault("tracing.insecure", true)
}
