package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/feral-file/ff-13f-indexer/internal/feed"
	"github.com/feral-file/ff-13f-indexer/internal/ingest"
	"github.com/feral-file/ff-13f-indexer/internal/ratelimit"
	"github.com/feral-file/ff-13f-indexer/internal/sweeper"
)

// ENV_PREFIX is the prefix of every environment variable read by the loaders
const ENV_PREFIX = "FF_13F"

// BaseConfig holds base configuration
type BaseConfig struct {
	Debug     bool   `mapstructure:"debug"`
	SentryDSN string `mapstructure:"sentry_dsn"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`     // Maximum number of open connections to the database
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`     // Maximum number of idle connections in the pool
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`  // e.g. "5m", "1h"
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"` // e.g. "10m", "30m"
}

// NATSConfig holds NATS JetStream configuration.
// An empty URL disables run summary publishing.
type NATSConfig struct {
	URL            string        `mapstructure:"url"`
	MaxReconnects  int           `mapstructure:"max_reconnects"`
	ReconnectWait  time.Duration `mapstructure:"reconnect_wait"`
	ConnectionName string        `mapstructure:"connection_name"`
}

// FeedConfig holds the filing feed configuration
type FeedConfig struct {
	URL       string `mapstructure:"url"`
	FormType  string `mapstructure:"form_type"`
	PageSize  int    `mapstructure:"page_size"`
	UserAgent string `mapstructure:"user_agent"`
}

// HTTPConfig holds the outbound HTTP client configuration
type HTTPConfig struct {
	Timeout           time.Duration `mapstructure:"timeout"`
	MaxRetries        uint64        `mapstructure:"max_retries"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"` // 0 disables pacing
	Burst             int           `mapstructure:"burst"`
}

// WorkerConfig holds worker configuration
type WorkerConfig struct {
	PoolSize    int `mapstructure:"pool_size"`
	UpsertLanes int `mapstructure:"upsert_lanes"`
}

// RetentionConfig holds the retention window configuration
type RetentionConfig struct {
	Days int `mapstructure:"days"`
}

// StagingConfig holds the staging artifact configuration
type StagingConfig struct {
	Dir string `mapstructure:"dir"`
}

// PassConfig holds the ingestion pass configuration
type PassConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`  // in seconds
	WriteTimeout int    `mapstructure:"write_timeout"` // in seconds
	IdleTimeout  int    `mapstructure:"idle_timeout"`  // in seconds
}

// IngesterConfig holds configuration for the ingester
type IngesterConfig struct {
	BaseConfig `mapstructure:",squash"`
	Database   DatabaseConfig  `mapstructure:"database"`
	NATS       NATSConfig      `mapstructure:"nats"`
	Feed       FeedConfig      `mapstructure:"feed"`
	HTTP       HTTPConfig      `mapstructure:"http"`
	Worker     WorkerConfig    `mapstructure:"worker"`
	Retention  RetentionConfig `mapstructure:"retention"`
	Staging    StagingConfig   `mapstructure:"staging"`
	Pass       PassConfig      `mapstructure:"pass"`
}

// APIConfig holds configuration for API server
type APIConfig struct {
	BaseConfig `mapstructure:",squash"`
	Server     ServerConfig   `mapstructure:"server"`
	Database   DatabaseConfig `mapstructure:"database"`
}

// LoadIngesterConfig loads configuration for the ingester
func LoadIngesterConfig(configFile string, envPath string) (*IngesterConfig, error) {
	v := configureViper("ingester", configFile, envPath)

	// Set defaults
	setDatabaseDefaults(v)
	v.SetDefault("feed.url", feed.DEFAULT_FEED_URL)
	v.SetDefault("feed.form_type", feed.DEFAULT_FORM_TYPE)
	v.SetDefault("feed.page_size", feed.DEFAULT_PAGE_SIZE)
	v.SetDefault("feed.user_agent", "ff-13f-indexer admin@feralfile.com")
	v.SetDefault("http.timeout", "30s")
	v.SetDefault("http.max_retries", 3)
	v.SetDefault("http.requests_per_second", ratelimit.DEFAULT_REQUESTS_PER_SECOND)
	v.SetDefault("http.burst", 1)
	v.SetDefault("worker.pool_size", ingest.DEFAULT_POOL_SIZE)
	v.SetDefault("worker.upsert_lanes", ingest.DEFAULT_UPSERT_LANES)
	v.SetDefault("retention.days", sweeper.DEFAULT_RETENTION_DAYS)
	v.SetDefault("staging.dir", "data/")
	v.SetDefault("pass.timeout", ingest.DEFAULT_PASS_TIMEOUT.String())
	v.SetDefault("nats.max_reconnects", 10)
	v.SetDefault("nats.reconnect_wait", "2s")
	v.SetDefault("nats.connection_name", "ff-13f-ingester")

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg IngesterConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Database.validate(); err != nil {
		return nil, err
	}
	if cfg.Feed.PageSize <= 0 {
		return nil, errors.New("feed.page_size must be positive")
	}
	if cfg.Retention.Days < 0 {
		return nil, errors.New("retention.days must not be negative")
	}

	return &cfg, nil
}

// LoadAPIConfig loads configuration for API server
func LoadAPIConfig(configFile string, envPath string) (*APIConfig, error) {
	v := configureViper("api", configFile, envPath)

	// Set defaults
	v.SetDefault("debug", false)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("server.idle_timeout", 120)
	setDatabaseDefaults(v)

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg APIConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Database.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDatabaseDefaults(v *viper.Viper) {
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "1h")
	v.SetDefault("database.conn_max_idle_time", "10m")
}

// readConfig reads the config file, falling back to environment variables when there is none
func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}
	return nil
}

// configureViper returns a viper instance with the config file and environment variables set
func configureViper(service string, configFile string, envPath string) *viper.Viper {
	v := viper.New()

	// Load environment variables
	loadEnv(envPath, service)

	// Set config file
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// Search for config.yaml in multiple locations:
		// 1. Current directory
		v.AddConfigPath(".")
		// 2. Service-specific directory (e.g., cmd/ingester/, cmd/api/)
		v.AddConfigPath(fmt.Sprintf("cmd/%s/", service))
		// 3. Config directory
		v.AddConfigPath("config/")
	}

	// Set environment variables
	v.SetEnvPrefix(ENV_PREFIX)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Explicitly bind all environment variables
	bindAllEnvVars(v)
	return v
}

// bindAllEnvVars explicitly binds all possible environment variables
// This is required for viper to map env vars to config struct fields when no config file exists
func bindAllEnvVars(v *viper.Viper) {
	keys := []string{
		"debug",
		"sentry_dsn",
		// Database
		"database.host",
		"database.port",
		"database.user",
		"database.password",
		"database.dbname",
		"database.sslmode",
		"database.max_open_conns",
		"database.max_idle_conns",
		"database.conn_max_lifetime",
		"database.conn_max_idle_time",
		// NATS
		"nats.url",
		"nats.max_reconnects",
		"nats.reconnect_wait",
		"nats.connection_name",
		// Feed
		"feed.url",
		"feed.form_type",
		"feed.page_size",
		"feed.user_agent",
		// HTTP
		"http.timeout",
		"http.max_retries",
		"http.requests_per_second",
		"http.burst",
		// Ingestion
		"worker.pool_size",
		"worker.upsert_lanes",
		"retention.days",
		"staging.dir",
		"pass.timeout",
		// Server
		"server.host",
		"server.port",
		"server.read_timeout",
		"server.write_timeout",
		"server.idle_timeout",
	}

	for _, key := range keys {
		_ = v.BindEnv(key)
	}
}

// loadEnv loads environment variables from the config directory
func loadEnv(envPath string, service string) {
	// Always try shared base first, then local, then optional per-service local.
	envFiles := []string{".env", ".env.local"}
	if service != "" {
		envFiles = append(envFiles, ".env."+service+".local")
	}

	// Default to config directory
	if envPath == "" {
		envPath = "config/"
	}

	for _, envFile := range envFiles {
		candidate := filepath.Join(envPath, envFile)
		_ = godotenv.Overload(candidate) // Overload lets later files override earlier ones
	}
}

// ChdirRepoRoot changes the current working directory to the repository root
func ChdirRepoRoot() {
	cwd, _ := os.Getwd()
	for range 5 {
		if _, err := os.Stat(filepath.Join(cwd, "config")); err == nil {
			_ = os.Chdir(cwd)
			return
		}
		cwd = filepath.Dir(cwd)
	}
}

func (c *DatabaseConfig) validate() error {
	if c.Host == "" {
		return errors.New("database.host is required")
	}
	if c.DBName == "" {
		return errors.New("database.dbname is required")
	}
	return nil
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}
