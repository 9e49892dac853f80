// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package interfaces

import "time"

// Database type identifiers
const (
	DatabaseTypeMongoDB    = "mongodb"
	DatabaseTypePostgreSQL = "postgresql"
)

// MongoDBConfig represents MongoDB specific configuration
type MongoDBConfig struct {
	URI            string
	Host           string
	Port           int
	Username       string
	Password       string
	AuthDatabase   string
	MaxPoolSize    int
	ConnectTimeout time.Duration
}

// PostgreSQLConfig represents PostgreSQL specific configuration
type PostgreSQLConfig struct {
	Host               string
	Port               int
	Username           string
	Password           string
	Database           string
	SSLMode            string
	ConnectTimeout     int
	MaxOpenConnections int
	MaxIdleConnections int
	MaxLifetime        int
	Schema             string
}
