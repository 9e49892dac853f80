// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package mongodb

import (
	"testing"

	"github.com/bookmarksdev/api/internal/database/interfaces"
	"github.com/stretchr/testify/require"
)

func TestBuildConnectionURI(t *testing.T) {
	t.Run("host and port only", func(t *testing.T) {
		uri := BuildConnectionURI(&interfaces.MongoDBConfig{Host: "localhost", Port: 27017})
		require.Equal(t, "mongodb://localhost:27017/", uri)
	})

	t.Run("credentials and auth source", func(t *testing.T) {
		uri := BuildConnectionURI(&interfaces.MongoDBConfig{
			Host:         "db",
			Port:         27018,
			Username:     "bookmarks",
			Password:     "s3cr@t",
			AuthDatabase: "admin",
		})
		require.Equal(t, "mongodb://bookmarks:s3cr%40t@db:27018/?authSource=admin", uri)
	})

	t.Run("explicit uri wins", func(t *testing.T) {
		uri := BuildConnectionURI(&interfaces.MongoDBConfig{URI: "mongodb+srv://cluster.example.net", Host: "ignored"})
		require.Equal(t, "mongodb+srv://cluster.example.net", uri)
	})
}
