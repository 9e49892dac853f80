// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package mongodb

import (
	"context"
	"fmt"
	"net/url"

	"github.com/bookmarksdev/api/internal/database/interfaces"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Client wraps a connected mongo.Client bound to one database.
type Client struct {
	client   *mongo.Client
	database *mongo.Database
}

// NewClient connects to MongoDB and verifies the connection with a primary ping.
func NewClient(ctx context.Context, config *interfaces.MongoDBConfig, databaseName string) (*Client, error) {
	clientOptions := options.Client().ApplyURI(BuildConnectionURI(config))

	if config.MaxPoolSize > 0 {
		clientOptions.SetMaxPoolSize(uint64(config.MaxPoolSize))
	}
	if config.ConnectTimeout > 0 {
		clientOptions.SetConnectTimeout(config.ConnectTimeout)
		clientOptions.SetServerSelectionTimeout(config.ConnectTimeout)
	}

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return &Client{client: client, database: client.Database(databaseName)}, nil
}

// BuildConnectionURI builds a MongoDB connection URI from config.
// An explicit URI wins over the host/port fields.
func BuildConnectionURI(config *interfaces.MongoDBConfig) string {
	if config.URI != "" {
		return config.URI
	}

	u := url.URL{
		Scheme: "mongodb",
		Host:   fmt.Sprintf("%s:%d", config.Host, config.Port),
		Path:   "/",
	}
	if config.Username != "" && config.Password != "" {
		u.User = url.UserPassword(config.Username, config.Password)
	}
	if config.AuthDatabase != "" {
		q := url.Values{}
		q.Set("authSource", config.AuthDatabase)
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// Database returns the bound database handle.
func (c *Client) Database() *mongo.Database {
	return c.database
}

// Collection returns a collection of the bound database.
func (c *Client) Collection(name string) *mongo.Collection {
	return c.database.Collection(name)
}

// Ping tests the database connection
func (c *Client) Ping(ctx context.Context) error {
	return c.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client.
func (c *Client) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}
