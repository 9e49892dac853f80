// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package platform

import (
	"context"
	"fmt"
	"time"

	"github.com/bookmarksdev/api/internal/database/interfaces"
	"github.com/bookmarksdev/api/internal/database/mongodb"
	"github.com/bookmarksdev/api/internal/database/postgres"
	"github.com/bookmarksdev/api/internal/pkg/log"
	platformconfig "github.com/bookmarksdev/api/internal/platform/config"
)

// Backend holds the connected store selected by DB_TYPE. Exactly one client is set.
type Backend struct {
	Type     string
	Mongo    *mongodb.Client
	Postgres *postgres.Client
	// Schema prefixes PostgreSQL tables. Empty means the search_path default.
	Schema string
}

// ConnectOptions tunes how the backend connection is retried at startup.
type ConnectOptions struct {
	MaxRetries int
	Backoff    time.Duration
}

// DefaultConnectOptions returns three retries with a one second initial backoff
func DefaultConnectOptions() ConnectOptions {
	return ConnectOptions{MaxRetries: 3, Backoff: time.Second}
}

// NewBackend connects to the configured database
func NewBackend(ctx context.Context, cfg *platformconfig.Config, opts ConnectOptions) (*Backend, error) {
	if cfg == nil {
		return nil, fmt.Errorf("platform configuration is required")
	}

	backend := &Backend{Type: cfg.Database.Type}
	var connect func() error

	switch cfg.Database.Type {
	case interfaces.DatabaseTypeMongoDB:
		mongoConfig := MongoConfig(cfg)
		connect = func() error {
			client, err := mongodb.NewClient(ctx, mongoConfig, cfg.Database.MongoDB.Database)
			if err != nil {
				return err
			}
			backend.Mongo = client
			return nil
		}
	case interfaces.DatabaseTypePostgreSQL:
		pgConfig := PostgresConfig(cfg)
		backend.Schema = pgConfig.Schema
		connect = func() error {
			client, err := postgres.NewClient(ctx, pgConfig)
			if err != nil {
				return err
			}
			backend.Postgres = client
			return nil
		}
	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.Database.Type)
	}

	if err := ExecuteWithRetry(ctx, opts, connect); err != nil {
		return nil, err
	}
	return backend, nil
}

// MongoConfig converts platform config to the driver config
func MongoConfig(cfg *platformconfig.Config) *interfaces.MongoDBConfig {
	m := cfg.Database.MongoDB
	return &interfaces.MongoDBConfig{
		URI:            m.URI,
		Host:           m.Host,
		Port:           m.Port,
		Username:       m.Username,
		Password:       m.Password,
		AuthDatabase:   m.AuthDatabase,
		MaxPoolSize:    m.MaxPoolSize,
		ConnectTimeout: m.ConnectTimeout,
	}
}

// PostgresConfig converts platform config to the driver config
func PostgresConfig(cfg *platformconfig.Config) *interfaces.PostgreSQLConfig {
	p := cfg.Database.Postgres
	return &interfaces.PostgreSQLConfig{
		Host:               p.Host,
		Port:               p.Port,
		Username:           p.Username,
		Password:           p.Password,
		Database:           p.Database,
		SSLMode:            p.SSLMode,
		ConnectTimeout:     10,
		MaxOpenConnections: p.MaxOpenConns,
		MaxIdleConnections: p.MaxIdleConns,
		MaxLifetime:        int(p.ConnMaxLifetime.Seconds()),
		Schema:             p.Schema,
	}
}

// ExecuteWithRetry runs fn until it succeeds, doubling the backoff after each failure.
func ExecuteWithRetry(ctx context.Context, opts ConnectOptions, fn func() error) error {
	var lastErr error
	backoff := opts.Backoff

	for i := 0; i <= opts.MaxRetries; i++ {
		if lastErr = fn(); lastErr == nil {
			return nil
		}
		if i == opts.MaxRetries {
			break
		}

		log.Warn("Database connection attempt %d failed: %v", i+1, lastErr)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}

	return fmt.Errorf("operation failed after %d retries: %w", opts.MaxRetries, lastErr)
}

// HealthCheck pings the connected store
func (b *Backend) HealthCheck(ctx context.Context) error {
	switch {
	case b.Mongo != nil:
		return b.Mongo.Ping(ctx)
	case b.Postgres != nil:
		return b.Postgres.Ping(ctx)
	default:
		return interfaces.ErrConnectionFailed
	}
}

// Close releases the connection pool
func (b *Backend) Close(ctx context.Context) error {
	switch {
	case b.Mongo != nil:
		return b.Mongo.Close(ctx)
	case b.Postgres != nil:
		return b.Postgres.Close()
	}
	return nil
}
