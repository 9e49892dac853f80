package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Database type values accepted by DB_TYPE.
const (
	DatabaseTypeMongoDB    = "mongodb"
	DatabaseTypePostgreSQL = "postgresql"
)

// Config represents the service configuration
type Config struct {
	Server    ServerConfig    `json:"server"`
	Database  DatabaseConfig  `json:"database"`
	JWT       JWTConfig       `json:"jwt"`
	Cache     CacheConfig     `json:"cache"`
	Bookmarks BookmarksConfig `json:"bookmarks"`
	RateLimit RateLimitConfig `json:"rateLimit"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Host      string `json:"host"`
	Port      int    `json:"port"`
	BaseRoute string `json:"baseRoute"`
	// PublicAPIURL prefixes the Location header of created bookmarks.
	PublicAPIURL string `json:"publicApiUrl"`
	WebDomain    string `json:"webDomain"`
	Debug        bool   `json:"debug"`
	// MetricsEnabled exposes Prometheus metrics on /metrics.
	MetricsEnabled bool `json:"metricsEnabled"`
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Type     string           `json:"type"`
	MongoDB  MongoDBConfig    `json:"mongodb"`
	Postgres PostgreSQLConfig `json:"postgres"`
}

// MongoDBConfig holds MongoDB-specific configuration
type MongoDBConfig struct {
	URI            string        `json:"uri"`
	Host           string        `json:"host"`
	Port           int           `json:"port"`
	Username       string        `json:"username"`
	Password       string        `json:"password"`
	Database       string        `json:"database"`
	AuthDatabase   string        `json:"authDatabase"`
	MaxPoolSize    int           `json:"maxPoolSize"`
	ConnectTimeout time.Duration `json:"connectTimeout"`
}

// PostgreSQLConfig holds PostgreSQL-specific configuration
type PostgreSQLConfig struct {
	Host            string        `json:"host"`
	Port            int           `json:"port"`
	Username        string        `json:"username"`
	Password        string        `json:"password"`
	Database        string        `json:"database"`
	Schema          string        `json:"schema"`
	SSLMode         string        `json:"sslMode"`
	MaxOpenConns    int           `json:"maxOpenConns"`
	MaxIdleConns    int           `json:"maxIdleConns"`
	ConnMaxLifetime time.Duration `json:"connMaxLifetime"`
}

// JWTConfig holds access token verification settings
type JWTConfig struct {
	PublicKey string `json:"publicKey"`
	AdminRole string `json:"adminRole"`
	Issuer    string `json:"issuer"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	Enabled bool          `json:"enabled"`
	Backend string        `json:"backend"`
	TTL     time.Duration `json:"ttl"`
	Prefix  string        `json:"prefix"`
	Redis   RedisConfig   `json:"redis"`
}

// RedisConfig holds Redis-specific configuration
type RedisConfig struct {
	Address      string        `json:"address"`
	Password     string        `json:"password"`
	Database     int           `json:"database"`
	PoolSize     int           `json:"poolSize"`
	MinIdleConns int           `json:"minIdleConns"`
	MaxConnAge   time.Duration `json:"maxConnAge"`
}

// BookmarksConfig holds bookmark domain tuning knobs
type BookmarksConfig struct {
	DefaultSearchLimit int `json:"defaultSearchLimit"`
	LatestEntriesDays  int `json:"latestEntriesDays"`
	// SearchBreakerTimeout is how long search fails fast once the breaker opens.
	SearchBreakerTimeout     time.Duration `json:"searchBreakerTimeout"`
	SearchBreakerMinRequests int           `json:"searchBreakerMinRequests"`
}

// RateLimitConfig holds per-scope request budgets
type RateLimitConfig struct {
	Enabled   bool          `json:"enabled"`
	PublicMax int           `json:"publicMax"`
	WriteMax  int           `json:"writeMax"`
	Window    time.Duration `json:"window"`
}

// LoadFromEnv loads configuration from the environment.
// Precedence: explicit environment variables, then values from a .env file,
// then hardcoded defaults.
func LoadFromEnv() (*Config, error) {
	envPaths := []string{".env", "../.env", "../../.env"}

	var loadErr error
	for _, envPath := range envPaths {
		loadErr = godotenv.Load(envPath)
		if loadErr == nil {
			break
		}
	}
	if loadErr != nil {
		fmt.Println("INFO: .env file not found, using environment variables and defaults.")
	}

	return load(os.LookupEnv)
}

// LoadFromMap loads configuration from an in-memory map.
// It lets tests exercise configuration logic without touching the process env.
func LoadFromMap(envMap map[string]string) (*Config, error) {
	return load(func(key string) (string, bool) {
		v, ok := envMap[key]
		return v, ok
	})
}

type lookupFunc func(key string) (string, bool)

func load(lookup lookupFunc) (*Config, error) {
	e := env{lookup: lookup}

	config := &Config{
		Server: ServerConfig{
			Host:         e.str("HOST", "localhost"),
			Port:         e.integer("SERVER_PORT", 3000),
			BaseRoute:    e.str("BASE_ROUTE", "/api"),
			PublicAPIURL: e.str("PUBLIC_API_URL", "http://localhost:3000/api/"),
			WebDomain:    e.str("WEB_DOMAIN", "http://localhost:4200"),
			Debug:        e.boolean("DEBUG", false),

			MetricsEnabled: e.boolean("METRICS_ENABLED", true),
		},
		Database: DatabaseConfig{
			Type: e.str("DB_TYPE", DatabaseTypeMongoDB),
			MongoDB: MongoDBConfig{
				URI:            e.str("MONGODB_URI", ""),
				Host:           e.str("MONGODB_HOST", "localhost"),
				Port:           e.integer("MONGODB_PORT", 27017),
				Username:       e.str("MONGODB_USERNAME", ""),
				Password:       e.str("MONGODB_PASSWORD", ""),
				Database:       e.str("MONGODB_DATABASE", "bookmarks"),
				AuthDatabase:   e.str("MONGODB_AUTH_DATABASE", ""),
				MaxPoolSize:    e.integer("MONGODB_MAX_POOL_SIZE", 50),
				ConnectTimeout: e.duration("MONGODB_CONNECT_TIMEOUT", 10*time.Second),
			},
			Postgres: PostgreSQLConfig{
				Host:            e.str("POSTGRES_HOST", "localhost"),
				Port:            e.integer("POSTGRES_PORT", 5432),
				Username:        e.str("POSTGRES_USERNAME", ""),
				Password:        e.str("POSTGRES_PASSWORD", ""),
				Database:        e.str("POSTGRES_DATABASE", "bookmarks"),
				Schema:          e.str("POSTGRES_SCHEMA", ""),
				SSLMode:         e.str("POSTGRES_SSL_MODE", "disable"),
				MaxOpenConns:    e.integer("POSTGRES_MAX_OPEN_CONNS", 25),
				MaxIdleConns:    e.integer("POSTGRES_MAX_IDLE_CONNS", 25),
				ConnMaxLifetime: time.Duration(e.integer("POSTGRES_CONN_MAX_LIFETIME", 300)) * time.Second,
			},
		},
		JWT: JWTConfig{
			PublicKey: e.str("JWT_PUBLIC_KEY", ""),
			AdminRole: e.str("JWT_ADMIN_ROLE", "ROLE_ADMIN"),
			Issuer:    e.str("JWT_ISSUER", ""),
		},
		Cache: CacheConfig{
			Enabled: e.boolean("CACHE_ENABLED", true),
			Backend: e.str("CACHE_BACKEND", "memory"),
			TTL:     e.duration("CACHE_TTL", 5*time.Minute),
			Prefix:  e.str("CACHE_PREFIX", "bookmarks:"),
			Redis: RedisConfig{
				Address:      e.str("REDIS_ADDRESS", "localhost:6379"),
				Password:     e.str("REDIS_PASSWORD", ""),
				Database:     e.integer("REDIS_DATABASE", 0),
				PoolSize:     e.integer("REDIS_POOL_SIZE", 10),
				MinIdleConns: e.integer("REDIS_MIN_IDLE_CONNS", 2),
				MaxConnAge:   time.Duration(e.integer("REDIS_MAX_CONN_AGE", 300)) * time.Second,
			},
		},
		Bookmarks: BookmarksConfig{
			DefaultSearchLimit: e.integer("SEARCH_DEFAULT_LIMIT", 10),
			LatestEntriesDays:  e.integer("LATEST_ENTRIES_DAYS", 7),

			SearchBreakerTimeout:     e.duration("SEARCH_BREAKER_TIMEOUT", 30*time.Second),
			SearchBreakerMinRequests: e.integer("SEARCH_BREAKER_MIN_REQUESTS", 10),
		},
		RateLimit: RateLimitConfig{
			Enabled:   e.boolean("RATE_LIMIT_ENABLED", true),
			PublicMax: e.integer("RATE_LIMIT_PUBLIC_MAX", 120),
			WriteMax:  e.integer("RATE_LIMIT_WRITE_MAX", 30),
			Window:    e.duration("RATE_LIMIT_WINDOW", time.Minute),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration for required fields
func (c *Config) Validate() error {
	var errors []string

	if strings.TrimSpace(c.JWT.PublicKey) == "" {
		errors = append(errors, "JWT_PUBLIC_KEY is required")
	}

	validDbTypes := []string{DatabaseTypeMongoDB, DatabaseTypePostgreSQL}
	if !contains(validDbTypes, c.Database.Type) {
		errors = append(errors, fmt.Sprintf("DB_TYPE must be one of: %s", strings.Join(validDbTypes, ", ")))
	}

	validBackends := []string{"memory", "redis"}
	if c.Cache.Enabled && !contains(validBackends, c.Cache.Backend) {
		errors = append(errors, fmt.Sprintf("CACHE_BACKEND must be one of: %s", strings.Join(validBackends, ", ")))
	}

	if c.Bookmarks.DefaultSearchLimit <= 0 {
		errors = append(errors, "SEARCH_DEFAULT_LIMIT must be positive")
	}

	if len(errors) > 0 {
		return fmt.Errorf("validation errors: %s", strings.Join(errors, "; "))
	}

	return nil
}

// env wraps a lookup function with typed, defaulting accessors.
type env struct {
	lookup lookupFunc
}

func (e env) str(key, defaultValue string) string {
	if value, ok := e.lookup(key); ok && value != "" {
		return value
	}
	return defaultValue
}

func (e env) integer(key string, defaultValue int) int {
	if value, ok := e.lookup(key); ok && value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func (e env) boolean(key string, defaultValue bool) bool {
	if value, ok := e.lookup(key); ok && value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func (e env) duration(key string, defaultValue time.Duration) time.Duration {
	if value, ok := e.lookup(key); ok && value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
