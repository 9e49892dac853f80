package repository

import (
	"testing"
	"time"

	"github.com/bookmarksdev/api/bookmarks/query"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestMongoFilter(t *testing.T) {
	t.Parallel()

	t.Run("owner scoped id", func(t *testing.T) {
		id := primitive.NewObjectID()
		filter, err := MongoFilter(query.ByID(id.Hex(), "user-1"))
		require.NoError(t, err)
		require.Equal(t, bson.M{"_id": id, "userId": "user-1"}, filter)
	})

	t.Run("invalid id never matches", func(t *testing.T) {
		_, err := MongoFilter(query.ByID("not-an-object-id", ""))
		require.ErrorIs(t, err, errInvalidID)
	})

	t.Run("invalid excluded id is dropped", func(t *testing.T) {
		filter, err := MongoFilter(query.SharedLocationConflict("https://go.dev", "", "bogus"))
		require.NoError(t, err)
		require.Equal(t, bson.M{"shared": true, "location": "https://go.dev"}, filter)
	})

	t.Run("conflict excludes owner and record", func(t *testing.T) {
		id := primitive.NewObjectID()
		filter, err := MongoFilter(query.SharedLocationConflict("https://go.dev", "user-1", id.Hex()))
		require.NoError(t, err)
		require.Equal(t, bson.M{
			"shared":   true,
			"location": "https://go.dev",
			"userId":   bson.M{"$ne": "user-1"},
			"_id":      bson.M{"$ne": id},
		}, filter)
	})

	t.Run("location accessible to owner or shared", func(t *testing.T) {
		filter, err := MongoFilter(query.ByLocation("https://go.dev", "user-1"))
		require.NoError(t, err)
		require.Equal(t, bson.M{
			"location": "https://go.dev",
			"$or": bson.A{
				bson.M{"userId": "user-1"},
				bson.M{"shared": true},
			},
		}, filter)
	})

	t.Run("time range merges on one field", func(t *testing.T) {
		since := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		to := since.Add(48 * time.Hour)
		spec, err := query.RecentPublic(query.TimeWindow{Since: &since, To: &to}, to)
		require.NoError(t, err)

		filter, err := MongoFilter(spec)
		require.NoError(t, err)
		require.Equal(t, bson.M{
			"shared":    true,
			"createdAt": bson.M{"$gte": since, "$lte": to},
		}, filter)
	})

	t.Run("empty spec matches everything", func(t *testing.T) {
		filter, err := MongoFilter(query.Spec{})
		require.NoError(t, err)
		require.Empty(t, filter)
	})
}

func TestMongoSort(t *testing.T) {
	t.Parallel()

	require.Nil(t, MongoSort(query.Spec{}))
	require.Equal(t,
		bson.D{{Key: "lastAccessedAt", Value: -1}},
		MongoSort(query.Personal("user-1")))
}
