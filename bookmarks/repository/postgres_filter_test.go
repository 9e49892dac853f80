package repository

import (
	"testing"
	"time"

	"github.com/bookmarksdev/api/bookmarks/query"
	uuid "github.com/gofrs/uuid"
	"github.com/stretchr/testify/require"
)

func TestPostgresWhere(t *testing.T) {
	t.Parallel()

	t.Run("owner scoped id", func(t *testing.T) {
		id := uuid.Must(uuid.NewV4())
		where, args, err := PostgresWhere(query.ByID(id.String(), "user-1"), 0)
		require.NoError(t, err)
		require.Equal(t, "id = $1 AND user_id = $2", where)
		require.Equal(t, []interface{}{id, "user-1"}, args)
	})

	t.Run("placeholders continue after offset", func(t *testing.T) {
		where, args, err := PostgresWhere(query.PublicByLocation("https://go.dev"), 12)
		require.NoError(t, err)
		require.Equal(t, "shared = $13 AND location = $14", where)
		require.Equal(t, []interface{}{true, "https://go.dev"}, args)
	})

	t.Run("tag equality matches any element", func(t *testing.T) {
		where, args, err := PostgresWhere(query.PublicByTag("golang", 10), 0)
		require.NoError(t, err)
		require.Equal(t, "shared = $1 AND $2 = ANY(tags)", where)
		require.Equal(t, []interface{}{true, "golang"}, args)
	})

	t.Run("or groups", func(t *testing.T) {
		where, args, err := PostgresWhere(query.AccessibleTags("user-1"), 0)
		require.NoError(t, err)
		require.Equal(t, "((user_id = $1) OR (shared = $2))", where)
		require.Equal(t, []interface{}{"user-1", true}, args)
	})

	t.Run("time range", func(t *testing.T) {
		now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
		spec, err := query.RecentPublic(query.TimeWindow{Days: 2}, now)
		require.NoError(t, err)

		where, args, err := PostgresWhere(spec, 0)
		require.NoError(t, err)
		require.Equal(t, "shared = $1 AND created_at >= $2", where)
		require.Equal(t, []interface{}{true, now.Add(-48 * time.Hour)}, args)
	})

	t.Run("invalid id never matches", func(t *testing.T) {
		_, _, err := PostgresWhere(query.ByID("42", "user-1"), 0)
		require.ErrorIs(t, err, errInvalidID)
	})

	t.Run("empty spec", func(t *testing.T) {
		where, args, err := PostgresWhere(query.Spec{}, 0)
		require.NoError(t, err)
		require.Equal(t, "TRUE", where)
		require.Empty(t, args)
	})
}

func TestPostgresOrderBy(t *testing.T) {
	t.Parallel()

	require.Equal(t, " ORDER BY last_accessed_at DESC LIMIT 100", PostgresOrderBy(query.Personal("user-1")))
	require.Equal(t, " ORDER BY created_at DESC", PostgresOrderBy(query.AdminList(query.AdminFilter{})))
	require.Equal(t, "", PostgresOrderBy(query.Spec{}))
}
