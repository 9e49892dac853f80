// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package postgres

import (
	"context"
	"os"
	"testing"

	dbi "github.com/bookmarksdev/api/internal/database/interfaces"
	"github.com/stretchr/testify/require"
)

func TestBuildConnectionString(t *testing.T) {
	t.Run("minimal", func(t *testing.T) {
		s := buildConnectionString(&dbi.PostgreSQLConfig{Host: "localhost", Port: 5432, Database: "bookmarks"})
		require.Equal(t, "host=localhost port=5432 dbname=bookmarks sslmode=disable", s)
	})

	t.Run("full", func(t *testing.T) {
		s := buildConnectionString(&dbi.PostgreSQLConfig{
			Host:           "pg",
			Port:           5433,
			Database:       "bookmarks",
			Username:       "app",
			Password:       "it's secret",
			SSLMode:        "require",
			ConnectTimeout: 5,
			Schema:         "dev",
		})
		require.Equal(t, `host=pg port=5433 dbname=bookmarks user=app password='it\'s secret' sslmode=require connect_timeout=5 search_path=dev`, s)
	})
}

func TestNewClient(t *testing.T) {
	if os.Getenv("RUN_DB_TESTS") != "1" {
		t.Skip("set RUN_DB_TESTS=1 to run PostgreSQL tests")
	}
	ctx := context.Background()

	config := &dbi.PostgreSQLConfig{
		Host:               "localhost",
		Port:               5432,
		Username:           "postgres",
		Password:           "postgres",
		Database:           "bookmarks_test",
		SSLMode:            "disable",
		MaxOpenConnections: 25,
		MaxIdleConnections: 10,
		MaxLifetime:        300,
		ConnectTimeout:     10,
	}

	client, err := NewClient(ctx, config)
	if err != nil {
		t.Skipf("Skipping test: PostgreSQL not available: %v", err)
	}
	defer client.Close()

	require.NoError(t, client.Ping(ctx))
	require.NotNil(t, client.DB())
}
