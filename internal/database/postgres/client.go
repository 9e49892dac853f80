// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	dbi "github.com/bookmarksdev/api/internal/database/interfaces"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Client wraps sqlx.DB with pool configuration and health checks
type Client struct {
	db *sqlx.DB
}

// NewClient creates a new PostgreSQL client wrapper
func NewClient(ctx context.Context, config *dbi.PostgreSQLConfig) (*Client, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", buildConnectionString(config))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	if config.MaxOpenConnections > 0 {
		db.SetMaxOpenConns(config.MaxOpenConnections)
	}
	if config.MaxIdleConnections > 0 {
		db.SetMaxIdleConns(config.MaxIdleConnections)
	}
	if config.MaxLifetime > 0 {
		db.SetConnMaxLifetime(time.Duration(config.MaxLifetime) * time.Second)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}

	return &Client{db: db}, nil
}

// buildConnectionString builds a key/value libpq connection string.
// A non-empty schema is applied through search_path.
func buildConnectionString(config *dbi.PostgreSQLConfig) string {
	parts := []string{
		fmt.Sprintf("host=%s", config.Host),
		fmt.Sprintf("port=%d", config.Port),
		fmt.Sprintf("dbname=%s", config.Database),
	}

	if config.Username != "" {
		parts = append(parts, fmt.Sprintf("user=%s", config.Username))
	}
	if config.Password != "" {
		parts = append(parts, fmt.Sprintf("password=%s", quoteValue(config.Password)))
	}

	sslMode := config.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	parts = append(parts, fmt.Sprintf("sslmode=%s", sslMode))

	if config.ConnectTimeout > 0 {
		parts = append(parts, fmt.Sprintf("connect_timeout=%d", config.ConnectTimeout))
	}
	if config.Schema != "" {
		parts = append(parts, fmt.Sprintf("search_path=%s", config.Schema))
	}

	return strings.Join(parts, " ")
}

// quoteValue quotes a libpq value that contains spaces or quotes.
func quoteValue(v string) string {
	if !strings.ContainsAny(v, ` '\`) {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}

// DB returns the underlying *sqlx.DB connection
func (c *Client) DB() *sqlx.DB {
	return c.db
}

// Ping tests the database connection
func (c *Client) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// Close closes the database connection
func (c *Client) Close() error {
	return c.db.Close()
}
