package search

import (
	"context"
	"fmt"

	"github.com/bookmarksdev/api/bookmarks/models"
	"github.com/bookmarksdev/api/bookmarks/query"
	"github.com/bookmarksdev/api/bookmarks/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoSearcher struct {
	collection *mongo.Collection
}

// NewMongoSearcher searches through the text index of the bookmarks collection.
func NewMongoSearcher(db *mongo.Database) Searcher {
	return &mongoSearcher{collection: db.Collection(repository.BookmarksCollection)}
}

func (s *mongoSearcher) Search(ctx context.Context, spec query.SearchSpec) ([]models.Bookmark, error) {
	text := normalize(spec.Text)
	if text == "" {
		return []models.Bookmark{}, nil
	}

	filter, err := mongoSearchFilter(spec, text)
	if err != nil {
		return nil, err
	}

	score := bson.M{"$meta": "textScore"}
	opts := options.Find().
		SetProjection(bson.M{"score": score}).
		SetSort(bson.D{{Key: "score", Value: score}, {Key: query.FieldCreatedAt, Value: -1}})
	if spec.Limit > 0 {
		opts.SetLimit(int64(spec.Limit))
	}

	cursor, err := s.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("search bookmarks: %w", err)
	}
	return repository.DecodeMongoBookmarks(ctx, cursor)
}

func mongoSearchFilter(spec query.SearchSpec, text string) (bson.M, error) {
	filter, err := repository.MongoFilter(spec.Filter())
	if err != nil {
		return nil, fmt.Errorf("build search scope: %w", err)
	}
	filter["$text"] = bson.M{"$search": text}
	return filter, nil
}
