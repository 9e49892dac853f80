package testutil

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"
	"testing"

	"github.com/bookmarksdev/api/internal/database/mongodb"
	"github.com/bookmarksdev/api/internal/database/postgres"
	"github.com/gofrs/uuid"
)

// RequireDBTests skips the test unless RUN_DB_TESTS=1.
func RequireDBTests(t *testing.T) {
	t.Helper()
	if os.Getenv("RUN_DB_TESTS") != "1" {
		t.Skip("RUN_DB_TESTS not set, skipping database test")
	}
}

// IsolatedMongo connects to a database unique to the test and drops it on cleanup.
func IsolatedMongo(t *testing.T) *mongodb.Client {
	t.Helper()
	RequireDBTests(t)

	ctx := context.Background()
	name := fmt.Sprintf("test_%s_%s", SanitizeTestName(t.Name()), uniqueSuffix(8))

	client, err := mongodb.NewClient(ctx, LoadTestConfig().MongoConfig(), name)
	if err != nil {
		t.Skipf("Skipping test: MongoDB not available: %v", err)
	}

	t.Cleanup(func() {
		_ = client.Database().Drop(ctx)
		_ = client.Close(ctx)
	})
	return client
}

// IsolatedPostgres connects with a schema unique to the test and drops it on cleanup.
func IsolatedPostgres(t *testing.T) (*postgres.Client, string) {
	t.Helper()
	RequireDBTests(t)

	ctx := context.Background()
	schema := fmt.Sprintf("test_%s_%s", SanitizeTestName(t.Name()), uniqueSuffix(16))

	client, err := postgres.NewClient(ctx, LoadTestConfig().PostgresConfig(schema))
	if err != nil {
		t.Skipf("Skipping test: PostgreSQL not available: %v", err)
	}
	if _, err := client.DB().ExecContext(ctx, "CREATE SCHEMA "+schema); err != nil {
		client.Close()
		t.Fatalf("Failed to create isolated schema %s: %v", schema, err)
	}

	t.Cleanup(func() {
		_, _ = client.DB().ExecContext(ctx, "DROP SCHEMA IF EXISTS "+schema+" CASCADE")
		_ = client.Close()
	})
	return client, schema
}

func uniqueSuffix(n int) string {
	return strings.ReplaceAll(uuid.Must(uuid.NewV4()).String(), "-", "")[:n]
}

var nonIdentifier = regexp.MustCompile(`[^a-zA-Z0-9_]+`)

// SanitizeTestName sanitizes a test name for use as a database identifier
func SanitizeTestName(name string) string {
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, " ", "_")
	name = strings.ToLower(nonIdentifier.ReplaceAllString(name, ""))

	// MongoDB database names stop at 63 characters. "test_" plus "_" plus a 16 char suffix leaves 41.
	const maxTestNameLength = 41
	if len(name) > maxTestNameLength {
		name = name[:maxTestNameLength]
	}
	return name
}
