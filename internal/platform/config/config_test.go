package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestLoadFromMap tests configuration loading from an in-memory map.
// This test is parallel-safe and has no side effects.
func TestLoadFromMap(t *testing.T) {
	t.Parallel()

	t.Run("Loads all provided values correctly", func(t *testing.T) {
		t.Parallel()

		testEnv := map[string]string{
			"JWT_PUBLIC_KEY":             "test-public-key",
			"JWT_ADMIN_ROLE":             "admin",
			"DB_TYPE":                    "postgresql",
			"POSTGRES_HOST":              "test-host",
			"POSTGRES_PORT":              "5433",
			"POSTGRES_DATABASE":          "test-db",
			"POSTGRES_SCHEMA":            "custom",
			"POSTGRES_CONN_MAX_LIFETIME": "321",
			"SERVER_PORT":                "9090",
			"PUBLIC_API_URL":             "https://www.bookmarks.dev/api/",
			"DEBUG":                      "true",
			"CACHE_TTL":                  "30m",
			"CACHE_BACKEND":              "redis",
			"REDIS_ADDRESS":              "redis:6380",
			"SEARCH_DEFAULT_LIMIT":       "25",
		}

		cfg, err := LoadFromMap(testEnv)
		require.NoError(t, err)

		require.Equal(t, "test-public-key", cfg.JWT.PublicKey)
		require.Equal(t, "admin", cfg.JWT.AdminRole)
		require.Equal(t, DatabaseTypePostgreSQL, cfg.Database.Type)
		require.Equal(t, "test-host", cfg.Database.Postgres.Host)
		require.Equal(t, 5433, cfg.Database.Postgres.Port)
		require.Equal(t, "test-db", cfg.Database.Postgres.Database)
		require.Equal(t, "custom", cfg.Database.Postgres.Schema)
		require.Equal(t, 321*time.Second, cfg.Database.Postgres.ConnMaxLifetime)
		require.Equal(t, 9090, cfg.Server.Port)
		require.Equal(t, "https://www.bookmarks.dev/api/", cfg.Server.PublicAPIURL)
		require.True(t, cfg.Server.Debug)
		require.Equal(t, 30*time.Minute, cfg.Cache.TTL)
		require.Equal(t, "redis", cfg.Cache.Backend)
		require.Equal(t, "redis:6380", cfg.Cache.Redis.Address)
		require.Equal(t, 25, cfg.Bookmarks.DefaultSearchLimit)
	})

	t.Run("Applies defaults for missing values", func(t *testing.T) {
		t.Parallel()

		cfg, err := LoadFromMap(map[string]string{"JWT_PUBLIC_KEY": "test-public-key"})
		require.NoError(t, err)

		require.Equal(t, 3000, cfg.Server.Port)
		require.False(t, cfg.Server.Debug)
		require.Equal(t, DatabaseTypeMongoDB, cfg.Database.Type)
		require.Equal(t, "bookmarks", cfg.Database.MongoDB.Database)
		require.Equal(t, "ROLE_ADMIN", cfg.JWT.AdminRole)
		require.Equal(t, 5*time.Minute, cfg.Cache.TTL)
		require.Equal(t, 10, cfg.Bookmarks.DefaultSearchLimit)
		require.Equal(t, 7, cfg.Bookmarks.LatestEntriesDays)
		require.True(t, cfg.RateLimit.Enabled)
		require.Equal(t, 120, cfg.RateLimit.PublicMax)
		require.Equal(t, time.Minute, cfg.RateLimit.Window)
		require.True(t, cfg.Server.MetricsEnabled)
		require.Equal(t, 30*time.Second, cfg.Bookmarks.SearchBreakerTimeout)
		require.Equal(t, 10, cfg.Bookmarks.SearchBreakerMinRequests)
	})

	t.Run("Ignores malformed numbers", func(t *testing.T) {
		t.Parallel()

		cfg, err := LoadFromMap(map[string]string{
			"JWT_PUBLIC_KEY": "k",
			"SERVER_PORT":    "not-a-port",
			"CACHE_TTL":      "soon",
		})
		require.NoError(t, err)
		require.Equal(t, 3000, cfg.Server.Port)
		require.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	})
}

func TestValidate(t *testing.T) {
	t.Parallel()

	t.Run("Missing public key", func(t *testing.T) {
		t.Parallel()
		_, err := LoadFromMap(map[string]string{})
		require.Error(t, err)
		require.Contains(t, err.Error(), "JWT_PUBLIC_KEY is required")
	})

	t.Run("Unknown database type", func(t *testing.T) {
		t.Parallel()
		_, err := LoadFromMap(map[string]string{"JWT_PUBLIC_KEY": "k", "DB_TYPE": "sqlite"})
		require.Error(t, err)
		require.Contains(t, err.Error(), "DB_TYPE must be one of")
	})

	t.Run("Unknown cache backend", func(t *testing.T) {
		t.Parallel()
		_, err := LoadFromMap(map[string]string{"JWT_PUBLIC_KEY": "k", "CACHE_BACKEND": "memcached"})
		require.Error(t, err)

		_, err = LoadFromMap(map[string]string{"JWT_PUBLIC_KEY": "k", "CACHE_BACKEND": "memcached", "CACHE_ENABLED": "false"})
		require.NoError(t, err)
	})
}
