package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

var (
	ErrStorageProviderUnknown  = errors.New("polycontent config: storage provider is invalid")
	ErrStorageDialectUnknown   = errors.New("polycontent config: storage dialect is invalid")
	ErrStorageDSNRequired      = errors.New("polycontent config: storage dsn is required for the bun provider")
	ErrCacheTTLInvalid         = errors.New("polycontent config: cache ttl must be positive when cache is enabled")
	ErrEventsBufferInvalid     = errors.New("polycontent config: events buffer must be zero or positive")
	ErrLoggingProviderRequired = errors.New("polycontent config: logging provider is required when logging feature is enabled")
	ErrLoggingProviderUnknown  = errors.New("polycontent config: logging provider is invalid")
	ErrLoggingLevelInvalid     = errors.New("polycontent config: logging level is invalid")
	ErrLoggingFormatInvalid    = errors.New("polycontent config: logging format is invalid")
	ErrCommandTimeoutInvalid   = errors.New("polycontent config: command timeout must be zero or positive")
)

const (
	ProviderMemory = "memory"
	ProviderBun    = "bun"

	DialectSQLite   = "sqlite"
	DialectPostgres = "postgres"
)

// Config aggregates storage, event, logging and metrics settings. Every
// leaf can be set from the environment; Load also reads yaml, json, toml or
// env files.
type Config struct {
	Storage  StorageConfig  `yaml:"storage" json:"storage"`
	Cache    CacheConfig    `yaml:"cache" json:"cache"`
	Events   EventsConfig   `yaml:"events" json:"events"`
	Logging  LoggingConfig  `yaml:"logging" json:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics" json:"metrics"`
	Commands CommandsConfig `yaml:"commands" json:"commands"`
	Features Features       `yaml:"features" json:"features"`
}

// StorageConfig selects the persistence backend.
type StorageConfig struct {
	Provider string `yaml:"provider" json:"provider" env:"POLYCONTENT_STORAGE_PROVIDER" env-default:"memory"`
	Dialect  string `yaml:"dialect" json:"dialect" env:"POLYCONTENT_STORAGE_DIALECT" env-default:"sqlite"`
	DSN      string `yaml:"dsn" json:"dsn" env:"POLYCONTENT_STORAGE_DSN" env-default:"file::memory:?cache=shared"`
	// Migrate creates missing tables on startup.
	Migrate bool `yaml:"migrate" json:"migrate" env:"POLYCONTENT_STORAGE_MIGRATE" env-default:"true"`
}

// CacheConfig wraps bun repositories in go-repository-cache.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled" json:"enabled" env:"POLYCONTENT_CACHE_ENABLED" env-default:"false"`
	TTL     time.Duration `yaml:"ttl" json:"ttl" env:"POLYCONTENT_CACHE_TTL" env-default:"1m"`
}

// EventsConfig controls lifecycle event delivery.
type EventsConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled" env:"POLYCONTENT_EVENTS_ENABLED" env-default:"true"`
	Async   bool   `yaml:"async" json:"async" env:"POLYCONTENT_EVENTS_ASYNC" env-default:"true"`
	Buffer  int    `yaml:"buffer" json:"buffer" env:"POLYCONTENT_EVENTS_BUFFER" env-default:"256"`
	Channel string `yaml:"channel" json:"channel" env:"POLYCONTENT_EVENTS_CHANNEL" env-default:"polycontent"`
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string   `yaml:"provider" json:"provider" env:"POLYCONTENT_LOG_PROVIDER" env-default:"console"`
	Level     string   `yaml:"level" json:"level" env:"POLYCONTENT_LOG_LEVEL" env-default:"info"`
	Format    string   `yaml:"format" json:"format" env:"POLYCONTENT_LOG_FORMAT"`
	AddSource bool     `yaml:"add_source" json:"add_source" env:"POLYCONTENT_LOG_ADD_SOURCE" env-default:"false"`
	Focus     []string `yaml:"focus" json:"focus" env:"POLYCONTENT_LOG_FOCUS" env-separator:","`
}

type MetricsConfig struct {
	Namespace string `yaml:"namespace" json:"namespace" env:"POLYCONTENT_METRICS_NAMESPACE" env-default:"polycontent"`
}

// CommandsConfig tunes the go-command handlers.
type CommandsConfig struct {
	Timeout time.Duration `yaml:"timeout" json:"timeout" env:"POLYCONTENT_COMMAND_TIMEOUT" env-default:"30s"`
}

// Features toggles optional collaborators.
type Features struct {
	Logger   bool `yaml:"logger" json:"logger" env:"POLYCONTENT_FEATURE_LOGGER" env-default:"false"`
	Activity bool `yaml:"activity" json:"activity" env:"POLYCONTENT_FEATURE_ACTIVITY" env-default:"false"`
	Metrics  bool `yaml:"metrics" json:"metrics" env:"POLYCONTENT_FEATURE_METRICS" env-default:"false"`
}

// DefaultConfig returns the in-memory profile used by tests and the demo.
func DefaultConfig() Config {
	return Config{
		Storage: StorageConfig{
			Provider: ProviderMemory,
			Dialect:  DialectSQLite,
			DSN:      "file::memory:?cache=shared",
			Migrate:  true,
		},
		Cache: CacheConfig{
			TTL: time.Minute,
		},
		Events: EventsConfig{
			Enabled: true,
			Async:   true,
			Buffer:  256,
			Channel: "polycontent",
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
		Metrics: MetricsConfig{
			Namespace: "polycontent",
		},
		Commands: CommandsConfig{
			Timeout: 30 * time.Second,
		},
	}
}

// Load reads configuration from path, when given, and then from the
// environment. Unset values take the env-default tag values.
func Load(path string) (Config, error) {
	var cfg Config
	var err error
	if strings.TrimSpace(path) != "" {
		err = cleanenv.ReadConfig(path, &cfg)
	} else {
		err = cleanenv.ReadEnv(&cfg)
	}
	if err != nil {
		return Config{}, fmt.Errorf("polycontent config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	provider := normalize(cfg.Storage.Provider)
	switch provider {
	case ProviderMemory:
	case ProviderBun:
		if !isSupportedDialect(normalize(cfg.Storage.Dialect)) {
			return fmt.Errorf("%w: %s", ErrStorageDialectUnknown, cfg.Storage.Dialect)
		}
		if strings.TrimSpace(cfg.Storage.DSN) == "" {
			return ErrStorageDSNRequired
		}
	default:
		return fmt.Errorf("%w: %s", ErrStorageProviderUnknown, cfg.Storage.Provider)
	}
	if cfg.Cache.Enabled && cfg.Cache.TTL <= 0 {
		return ErrCacheTTLInvalid
	}
	if cfg.Events.Buffer < 0 {
		return ErrEventsBufferInvalid
	}
	if cfg.Commands.Timeout < 0 {
		return ErrCommandTimeoutInvalid
	}
	if cfg.Features.Logger {
		provider := normalize(cfg.Logging.Provider)
		if provider == "" {
			return ErrLoggingProviderRequired
		}
		if !isSupportedProvider(provider) {
			return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
		}
		if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
			return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
		}
		if provider == "gologger" {
			if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
				return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
			}
		}
	}
	return nil
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func isSupportedDialect(dialect string) bool {
	switch dialect {
	case DialectSQLite, DialectPostgres:
		return true
	default:
		return false
	}
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch normalize(level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch normalize(format) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
