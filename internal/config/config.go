// Package config provides configuration loading and validation for the application.
package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Default configuration constants.
const (
	DefaultHost            = "0.0.0.0"
	DefaultPort            = 8080
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultShutdownTimeout = 10 * time.Second

	DefaultMongoDBTimeout     = 10 * time.Second
	DefaultMongoDBMaxPoolSize = 100

	DefaultRedisPoolSize = 10

	DefaultPageSize    = 20
	DefaultMaxPageSize = 100
	DefaultThreadDepth = 2
	MaxThreadDepth     = 10

	DefaultProfileEditPath = "/profile/edit"

	DefaultWriteLimit       = 30
	DefaultWriteLimitWindow = time.Minute
	DefaultWriteLimitBurst  = 10

	DefaultWorkerRetryInterval = 5 * time.Second
)

// Revalidation transports.
const (
	RevalidationRedis = "redis"
	RevalidationNoop  = "noop"
)

// Config holds the complete application configuration.
type Config struct {
	App          AppConfig          `yaml:"app"`
	Server       ServerConfig       `yaml:"server"`
	MongoDB      MongoDBConfig      `yaml:"mongodb"`
	Redis        RedisConfig        `yaml:"redis"`
	Revalidation RevalidationConfig `yaml:"revalidation"`
	Feed         FeedConfig         `yaml:"feed"`
	RateLimit    RateLimitConfig    `yaml:"rate_limit"`
	Worker       WorkerConfig       `yaml:"worker"`
	Log          LogConfig          `yaml:"log"`
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	// Name is the application name used in logs and metrics.
	Name        string `yaml:"name" env:"APP_NAME"`
	Environment string `yaml:"environment" env:"APP_ENV"` // development | production
}

// ServerConfig holds HTTP server configuration.
//
//nolint:golines // Struct tags require longer lines for readability
type ServerConfig struct {
	Host            string        `yaml:"host" env:"SERVER_HOST"`
	Port            int           `yaml:"port" env:"SERVER_PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT"`
	BodyLimit       string        `yaml:"body_limit" env:"SERVER_BODY_LIMIT"`

	// CORSOrigins is a comma-separated origin list; "*" allows any origin.
	CORSOrigins string `yaml:"cors_origins" env:"SERVER_CORS_ORIGINS"`
}

// AllowedOrigins splits CORSOrigins into a list.
func (c ServerConfig) AllowedOrigins() []string {
	var origins []string
	for o := range strings.SplitSeq(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

// Address returns the full server address (host:port).
func (c ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// MongoDBConfig holds MongoDB connection configuration.
//
//nolint:golines // Struct tags require longer lines for readability
type MongoDBConfig struct {
	URI         string        `yaml:"uri" env:"MONGODB_URI"`
	Database    string        `yaml:"database" env:"MONGODB_DATABASE"`
	Timeout     time.Duration `yaml:"timeout" env:"MONGODB_TIMEOUT"`
	MaxPoolSize uint64        `yaml:"max_pool_size" env:"MONGODB_MAX_POOL_SIZE"`

	// Transactions wraps multi-document writes (thread + author link,
	// reply + parent link) in a session transaction. Requires a replica set.
	Transactions bool `yaml:"transactions" env:"MONGODB_TRANSACTIONS"`
}

// RedisConfig holds Redis connection configuration.
//
//nolint:golines // Struct tags require longer lines for readability
type RedisConfig struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB"`
	PoolSize int    `yaml:"pool_size" env:"REDIS_POOL_SIZE"`
}

// RevalidationConfig controls how cached views are marked stale after writes.
//
//nolint:golines // Struct tags require longer lines for readability
type RevalidationConfig struct {
	Type            string `yaml:"type" env:"REVALIDATION_TYPE"` // redis | noop
	Channel         string `yaml:"channel" env:"REVALIDATION_CHANNEL"`
	CachePrefix     string `yaml:"cache_prefix" env:"REVALIDATION_CACHE_PREFIX"`
	ProfileEditPath string `yaml:"profile_edit_path" env:"REVALIDATION_PROFILE_EDIT_PATH"`
}

// FeedConfig holds pagination and tree expansion limits.
//
//nolint:golines // Struct tags require longer lines for readability
type FeedConfig struct {
	DefaultPageSize int `yaml:"default_page_size" env:"FEED_DEFAULT_PAGE_SIZE"`
	MaxPageSize     int `yaml:"max_page_size" env:"FEED_MAX_PAGE_SIZE"`
	ThreadDepth     int `yaml:"thread_depth" env:"FEED_THREAD_DEPTH"`

	// LinkRepliesToAuthor also appends reply IDs to the commenter's threads list.
	LinkRepliesToAuthor bool `yaml:"link_replies_to_author" env:"FEED_LINK_REPLIES_TO_AUTHOR"`
}

// RateLimitConfig throttles write requests per client IP. Counters live in
// Redis when redis.addr is set, in memory otherwise.
//
//nolint:golines // Struct tags require longer lines for readability
type RateLimitConfig struct {
	Enabled bool          `yaml:"enabled" env:"RATE_LIMIT_ENABLED"`
	Limit   int           `yaml:"limit" env:"RATE_LIMIT_LIMIT"`
	Window  time.Duration `yaml:"window" env:"RATE_LIMIT_WINDOW"`
	Burst   int           `yaml:"burst" env:"RATE_LIMIT_BURST"`
}

// WorkerConfig configures the revalidation listener process.
//
//nolint:golines // Struct tags require longer lines for readability
type WorkerConfig struct {
	RetryInterval time.Duration `yaml:"retry_interval" env:"WORKER_RETRY_INTERVAL"`

	// MetricsAddr serves /metrics and /health; empty disables the listener.
	MetricsAddr string `yaml:"metrics_addr" env:"WORKER_METRICS_ADDR"`
}

// LogConfig holds logging configuration.
//
//nolint:golines // Struct tags require longer lines for readability
type LogConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`   // debug | info | warn | error
	Format string `yaml:"format" env:"LOG_FORMAT"` // json | text
}

// Configuration errors.
var (
	ErrConfigNotFound          = errors.New("configuration file not found")
	ErrConfigInvalid           = errors.New("invalid configuration")
	ErrInvalidDuration         = errors.New("invalid duration format")
	ErrInvalidLogLevel         = errors.New("invalid log level: must be debug, info, warn, or error")
	ErrInvalidLogFormat        = errors.New("invalid log format: must be json or text")
	ErrInvalidRevalidationType = errors.New("invalid revalidation type: must be redis or noop")
)

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Name:        "threads",
			Environment: "development",
		},
		Server: ServerConfig{
			Host:            DefaultHost,
			Port:            DefaultPort,
			ReadTimeout:     DefaultReadTimeout,
			WriteTimeout:    DefaultWriteTimeout,
			ShutdownTimeout: DefaultShutdownTimeout,
			BodyLimit:       "1M",
			CORSOrigins:     "*",
		},
		MongoDB: MongoDBConfig{
			URI:         "mongodb://localhost:27017",
			Database:    "threads",
			Timeout:     DefaultMongoDBTimeout,
			MaxPoolSize: DefaultMongoDBMaxPoolSize,
		},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			PoolSize: DefaultRedisPoolSize,
		},
		Revalidation: RevalidationConfig{
			Type:            RevalidationRedis,
			Channel:         "revalidate",
			CachePrefix:     "page:",
			ProfileEditPath: DefaultProfileEditPath,
		},
		Feed: FeedConfig{
			DefaultPageSize: DefaultPageSize,
			MaxPageSize:     DefaultMaxPageSize,
			ThreadDepth:     DefaultThreadDepth,
		},
		RateLimit: RateLimitConfig{
			Enabled: true,
			Limit:   DefaultWriteLimit,
			Window:  DefaultWriteLimitWindow,
			Burst:   DefaultWriteLimitBurst,
		},
		Worker: WorkerConfig{
			RetryInterval: DefaultWorkerRetryInterval,
			MetricsAddr:   ":9091",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	var errs []error

	errs = c.validateServer(errs)
	errs = c.validateMongoDB(errs)
	errs = c.validateRevalidation(errs)
	errs = c.validateFeed(errs)
	errs = c.validateRateLimit(errs)
	errs = c.validateLog(errs)

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrConfigInvalid, errors.Join(errs...))
	}

	return nil
}

// validateServer validates server configuration.
func (c *Config) validateServer(errs []error) []error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, errors.New("server.read_timeout must be positive"))
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, errors.New("server.write_timeout must be positive"))
	}
	return errs
}

// validateMongoDB validates MongoDB configuration.
func (c *Config) validateMongoDB(errs []error) []error {
	if c.MongoDB.URI == "" {
		errs = append(errs, errors.New("mongodb.uri is required"))
	}
	if c.MongoDB.Database == "" {
		errs = append(errs, errors.New("mongodb.database is required"))
	}
	if c.MongoDB.Timeout <= 0 {
		errs = append(errs, errors.New("mongodb.timeout must be positive"))
	}
	return errs
}

// validateRevalidation validates the revalidation hook; redis needs an address.
func (c *Config) validateRevalidation(errs []error) []error {
	switch strings.ToLower(c.Revalidation.Type) {
	case RevalidationRedis:
		if c.Redis.Addr == "" {
			errs = append(errs, errors.New("redis.addr is required for redis revalidation"))
		}
		if c.Revalidation.Channel == "" {
			errs = append(errs, errors.New("revalidation.channel is required"))
		}
	case RevalidationNoop:
	default:
		errs = append(errs, ErrInvalidRevalidationType)
	}
	return errs
}

// validateFeed validates pagination and depth limits.
func (c *Config) validateFeed(errs []error) []error {
	if c.Feed.DefaultPageSize <= 0 {
		errs = append(errs, errors.New("feed.default_page_size must be positive"))
	}
	if c.Feed.MaxPageSize < c.Feed.DefaultPageSize {
		errs = append(errs, errors.New("feed.max_page_size must be at least feed.default_page_size"))
	}
	if c.Feed.ThreadDepth < 0 || c.Feed.ThreadDepth > MaxThreadDepth {
		errs = append(errs, fmt.Errorf("feed.thread_depth must be between 0 and %d, got %d",
			MaxThreadDepth, c.Feed.ThreadDepth))
	}
	return errs
}

// validateRateLimit validates write throttling; disabled limits are not checked.
func (c *Config) validateRateLimit(errs []error) []error {
	if !c.RateLimit.Enabled {
		return errs
	}
	if c.RateLimit.Limit <= 0 {
		errs = append(errs, errors.New("rate_limit.limit must be positive"))
	}
	if c.RateLimit.Window <= 0 {
		errs = append(errs, errors.New("rate_limit.window must be positive"))
	}
	if c.RateLimit.Burst < 0 {
		errs = append(errs, errors.New("rate_limit.burst must not be negative"))
	}
	return errs
}

// validateLog validates logging configuration.
func (c *Config) validateLog(errs []error) []error {
	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[strings.ToLower(c.Log.Level)] {
		errs = append(errs, ErrInvalidLogLevel)
	}
	validLogFormats := map[string]bool{"json": true, "text": true}
	if !validLogFormats[strings.ToLower(c.Log.Format)] {
		errs = append(errs, ErrInvalidLogFormat)
	}
	return errs
}

// Load loads configuration from the default config file and environment variables.
func Load() (*Config, error) {
	return LoadFromPath("")
}

// LoadFromPath loads configuration from a specific file path.
// If path is empty, it tries to find the config file in standard locations.
func LoadFromPath(path string) (*Config, error) {
	loader := NewLoader()
	return loader.Load(path)
}

// Loader handles configuration loading from files and environment variables.
type Loader struct {
	configPaths []string
}

// NewLoader creates a new configuration loader.
func NewLoader() *Loader {
	return &Loader{
		configPaths: []string{
			"configs/config.yaml",
			"config.yaml",
			"/etc/threads/config.yaml",
		},
	}
}

// WithConfigPaths sets custom config paths to search.
func (l *Loader) WithConfigPaths(paths []string) *Loader {
	l.configPaths = paths
	return l
}

// Load loads configuration from file and environment variables.
func (l *Loader) Load(path string) (*Config, error) {
	// Start with default config
	cfg := DefaultConfig()

	// Determine config file path
	configPath := path
	if configPath == "" {
		// Check CONFIG_PATH environment variable first
		if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
			configPath = envPath
		} else {
			// Search in standard locations
			for _, p := range l.configPaths {
				if _, err := os.Stat(p); err == nil {
					configPath = p
					break
				}
			}
		}
	}

	// Load from file if found
	if configPath != "" {
		if err := l.loadFromFile(cfg, configPath); err != nil {
			// Only return error if path was explicitly specified
			if path != "" || os.Getenv("CONFIG_PATH") != "" {
				return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
			}
			// Otherwise, continue with defaults + env vars
		}
	}

	// Override with environment variables
	if err := l.loadFromEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from environment: %w", err)
	}

	// Validate the final configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFromFile loads configuration from a YAML file.
func (l *Loader) loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if unmarshalErr := yaml.Unmarshal(data, cfg); unmarshalErr != nil {
		return fmt.Errorf("failed to parse config file: %w", unmarshalErr)
	}

	return nil
}

// loadFromEnv loads configuration from environment variables.
func (l *Loader) loadFromEnv(cfg *Config) error {
	return l.loadEnvToStruct(reflect.ValueOf(cfg).Elem())
}

// loadEnvToStruct recursively loads environment variables into a struct.
func (l *Loader) loadEnvToStruct(v reflect.Value) error {
	t := v.Type()

	for i := range v.NumField() {
		field := v.Field(i)
		fieldType := t.Field(i)

		// Handle embedded structs
		if field.Kind() == reflect.Struct {
			if err := l.loadEnvToStruct(field); err != nil {
				return err
			}
			continue
		}

		// Get env tag
		envTag := fieldType.Tag.Get("env")
		if envTag == "" {
			continue
		}

		// Get environment variable value
		envValue := os.Getenv(envTag)
		if envValue == "" {
			continue
		}

		// Set field value based on type
		if err := l.setFieldFromEnv(field, envValue); err != nil {
			return fmt.Errorf("failed to set %s from env %s: %w", fieldType.Name, envTag, err)
		}
	}

	return nil
}

// setFieldFromEnv sets a struct field value from an environment variable string.
//
//nolint:exhaustive // We only support a subset of reflect.Kind for config values
func (l *Loader) setFieldFromEnv(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		// Check if it's a time.Duration
		if field.Type() == reflect.TypeFor[time.Duration]() {
			d, err := time.ParseDuration(value)
			if err != nil {
				return fmt.Errorf("%w: %s", ErrInvalidDuration, value)
			}
			field.SetInt(int64(d))
		} else {
			i, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer value: %s", value)
			}
			field.SetInt(i)
		}

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid unsigned integer value: %s", value)
		}
		field.SetUint(u)

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean value: %s", value)
		}
		field.SetBool(b)

	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid float value: %s", value)
		}
		field.SetFloat(f)

	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}

	return nil
}

// IsDevelopment returns true if the log level indicates a development environment.
func (c *Config) IsDevelopment() bool {
	return strings.ToLower(c.Log.Level) == "debug"
}

// IsProduction returns true if the application runs in the production environment.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.App.Environment, "production")
}
