package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Driver names accepted in database.driver.
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config holds the cardex API configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Cache    CacheConfig    `yaml:"cache"`
	Search   SearchConfig   `yaml:"search"`
	Cards    CardsConfig    `yaml:"cards"`
	Auth     AuthConfig     `yaml:"auth"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig selects and configures the card store.
type DatabaseConfig struct {
	Driver           string         `yaml:"driver"` // mongo, postgres, memory (default: mongo)
	Mongo            MongoConfig    `yaml:"mongo"`
	Postgres         PostgresConfig `yaml:"postgres"`
	Memory           MemoryConfig   `yaml:"memory"`
	ReadinessTimeout int            `yaml:"readiness_timeout_sec"`
}

// MongoConfig holds MongoDB settings.
type MongoConfig struct {
	URI        string `yaml:"uri"`
	Database   string `yaml:"database"`
	Collection string `yaml:"collection"`
}

// PostgresConfig holds PostgreSQL settings.
type PostgresConfig struct {
	DSN                string `yaml:"dsn"`
	MaxConns           int    `yaml:"max_conns"`
	MaxConnLifetimeSec int    `yaml:"max_conn_lifetime_sec"`
	Collation          string `yaml:"collation"`
}

// MemoryConfig holds settings for the in-process store.
type MemoryConfig struct {
	SeedFile string `yaml:"seed_file"` // saved cardinfo.php payload, optional
}

// CacheConfig holds the result page cache settings. Empty Addrs disables the cache.
type CacheConfig struct {
	Addrs      []string `yaml:"addrs"`
	Username   string   `yaml:"username"`
	Password   string   `yaml:"password"`
	DB         int      `yaml:"db"`
	TTLSec     int      `yaml:"ttl_sec"`
	Standalone bool     `yaml:"standalone"` // skip cluster discovery
}

// Enabled reports whether a cache server is configured.
func (c CacheConfig) Enabled() bool { return len(c.Addrs) > 0 }

// SearchConfig holds search pagination and timeout settings.
type SearchConfig struct {
	DefaultLimit    int    `yaml:"default_limit"`
	MaxLimit        int    `yaml:"max_limit"`
	TimeoutMs       int    `yaml:"timeout_ms"`
	CollationLocale string `yaml:"collation_locale"`
}

// CardsConfig holds single-card lookup settings.
type CardsConfig struct {
	LRUSize int `yaml:"lru_size"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.Driver == "" {
		c.Database.Driver = DriverMongo
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Database.Mongo.Database == "" {
		c.Database.Mongo.Database = "cardex"
	}
	if c.Database.Mongo.Collection == "" {
		c.Database.Mongo.Collection = "cards"
	}
	if c.Database.Postgres.MaxConns <= 0 {
		c.Database.Postgres.MaxConns = 10
	}
	if c.Database.Postgres.MaxConnLifetimeSec <= 0 {
		c.Database.Postgres.MaxConnLifetimeSec = 1800
	}
	if c.Cache.TTLSec <= 0 {
		c.Cache.TTLSec = 300
	}
	if c.Search.DefaultLimit <= 0 {
		c.Search.DefaultLimit = 50
	}
	if c.Search.MaxLimit <= 0 {
		c.Search.MaxLimit = 500
	}
	if c.Search.TimeoutMs <= 0 {
		c.Search.TimeoutMs = 5000
	}
	if c.Search.CollationLocale == "" {
		c.Search.CollationLocale = "en"
	}
	if c.Cards.LRUSize <= 0 {
		c.Cards.LRUSize = 4096
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Database.Driver {
	case DriverMongo:
		if c.Database.Mongo.URI == "" {
			return fmt.Errorf("database.mongo.uri is required")
		}
	case DriverPostgres:
		if c.Database.Postgres.DSN == "" {
			return fmt.Errorf("database.postgres.dsn is required")
		}
	case DriverMemory:
		// ok
	default:
		return fmt.Errorf("database.driver must be one of mongo, postgres, memory, got %q", c.Database.Driver)
	}
	if c.Search.DefaultLimit > c.Search.MaxLimit {
		return fmt.Errorf("search.default_limit (%d) exceeds search.max_limit (%d)",
			c.Search.DefaultLimit, c.Search.MaxLimit)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
