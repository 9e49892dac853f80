package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bookmarksdev/api/bookmarks/models"
	"github.com/bookmarksdev/api/bookmarks/query"
	dbi "github.com/bookmarksdev/api/internal/database/interfaces"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type bookmarkDocument struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	UserID          string             `bson:"userId"`
	Name            string             `bson:"name"`
	Location        string             `bson:"location"`
	Description     string             `bson:"description,omitempty"`
	DescriptionHTML string             `bson:"descriptionHtml,omitempty"`
	Tags            []string           `bson:"tags"`
	Shared          bool               `bson:"shared"`
	Language        string             `bson:"language,omitempty"`
	Stars           int                `bson:"stars,omitempty"`
	GithubURL       string             `bson:"githubURL,omitempty"`
	CreatedAt       time.Time          `bson:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt"`
	LastAccessedAt  time.Time          `bson:"lastAccessedAt"`
}

func toDocument(b *models.Bookmark) bookmarkDocument {
	doc := bookmarkDocument{
		UserID:          b.UserID,
		Name:            b.Name,
		Location:        b.Location,
		Description:     b.Description,
		DescriptionHTML: b.DescriptionHTML,
		Tags:            b.Tags,
		Shared:          b.Shared,
		Language:        b.Language,
		Stars:           b.Stars,
		GithubURL:       b.GithubURL,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
		LastAccessedAt:  b.LastAccessedAt,
	}
	if oid, err := primitive.ObjectIDFromHex(b.ID); err == nil {
		doc.ID = oid
	}
	return doc
}

func (d bookmarkDocument) toModel() models.Bookmark {
	return models.Bookmark{
		ID:              d.ID.Hex(),
		UserID:          d.UserID,
		Name:            d.Name,
		Location:        d.Location,
		Description:     d.Description,
		DescriptionHTML: d.DescriptionHTML,
		Tags:            d.Tags,
		Shared:          d.Shared,
		Language:        d.Language,
		Stars:           d.Stars,
		GithubURL:       d.GithubURL,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
		LastAccessedAt:  d.LastAccessedAt,
	}
}

// DecodeMongoBookmarks drains cursor into bookmarks and closes it.
func DecodeMongoBookmarks(ctx context.Context, cursor *mongo.Cursor) ([]models.Bookmark, error) {
	defer cursor.Close(ctx)

	var docs []bookmarkDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode bookmarks: %w", err)
	}

	bookmarks := make([]models.Bookmark, 0, len(docs))
	for _, d := range docs {
		bookmarks = append(bookmarks, d.toModel())
	}
	return bookmarks, nil
}

type mongoRepository struct {
	collection *mongo.Collection
}

// NewMongoRepository creates a bookmark repository on the bookmarks collection of db.
func NewMongoRepository(db *mongo.Database) Repository {
	return &mongoRepository{collection: db.Collection(BookmarksCollection)}
}

func (r *mongoRepository) FindOne(ctx context.Context, spec query.Spec) (*models.Bookmark, error) {
	filter, err := MongoFilter(spec)
	if err != nil {
		return nil, notFoundOnInvalidID(err)
	}

	var doc bookmarkDocument
	if err := r.collection.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, dbi.ErrNoDocuments
		}
		return nil, fmt.Errorf("find bookmark: %w", err)
	}

	b := doc.toModel()
	return &b, nil
}

func (r *mongoRepository) Find(ctx context.Context, spec query.Spec) ([]models.Bookmark, error) {
	filter, err := MongoFilter(spec)
	if err != nil {
		if errors.Is(err, errInvalidID) {
			return []models.Bookmark{}, nil
		}
		return nil, err
	}

	opts := options.Find()
	if sort := MongoSort(spec); sort != nil {
		opts.SetSort(sort)
	}
	if spec.Limit > 0 {
		opts.SetLimit(spec.Limit)
	}

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find bookmarks: %w", err)
	}
	return DecodeMongoBookmarks(ctx, cursor)
}

func (r *mongoRepository) Distinct(ctx context.Context, field string, spec query.Spec) ([]string, error) {
	filter, err := MongoFilter(spec)
	if err != nil {
		if errors.Is(err, errInvalidID) {
			return []string{}, nil
		}
		return nil, err
	}

	values, err := r.collection.Distinct(ctx, field, filter)
	if err != nil {
		return nil, fmt.Errorf("distinct %s: %w", field, err)
	}

	result := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			result = append(result, s)
		}
	}
	return result, nil
}

func (r *mongoRepository) AggregateTags(ctx context.Context, spec query.Spec) ([]models.TagCount, error) {
	filter, err := MongoFilter(spec)
	if err != nil {
		if errors.Is(err, errInvalidID) {
			return []models.TagCount{}, nil
		}
		return nil, err
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: filter}},
		{{Key: "$project", Value: bson.M{query.FieldTags: 1}}},
		{{Key: "$unwind", Value: "$" + query.FieldTags}},
		{{Key: "$group", Value: bson.M{"_id": "$" + query.FieldTags, query.FieldCount: bson.M{"$sum": 1}}}},
		{{Key: "$sort", Value: bson.D{{Key: query.FieldCount, Value: -1}, {Key: "_id", Value: 1}}}},
	}
	if spec.Limit > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$limit", Value: spec.Limit}})
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate tags: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Tag   string `bson:"_id"`
		Count int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode tag counts: %w", err)
	}

	counts := make([]models.TagCount, 0, len(rows))
	for _, row := range rows {
		counts = append(counts, models.TagCount{Tag: row.Tag, Count: row.Count})
	}
	return counts, nil
}

func (r *mongoRepository) Insert(ctx context.Context, b *models.Bookmark) (string, error) {
	doc := toDocument(b)
	doc.ID = primitive.NewObjectID()

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", fmt.Errorf("%w: %v", dbi.ErrDuplicateKey, err)
		}
		return "", fmt.Errorf("insert bookmark: %w", err)
	}
	return doc.ID.Hex(), nil
}

func (r *mongoRepository) Replace(ctx context.Context, spec query.Spec, b *models.Bookmark) (*models.Bookmark, error) {
	filter, err := MongoFilter(spec)
	if err != nil {
		return nil, notFoundOnInvalidID(err)
	}

	set := bson.M{
		"userId":          b.UserID,
		"name":            b.Name,
		"location":        b.Location,
		"description":     b.Description,
		"descriptionHtml": b.DescriptionHTML,
		"tags":            b.Tags,
		"shared":          b.Shared,
		"language":        b.Language,
		"stars":           b.Stars,
		"githubURL":       b.GithubURL,
		"updatedAt":       b.UpdatedAt,
	}
	if !b.LastAccessedAt.IsZero() {
		set["lastAccessedAt"] = b.LastAccessedAt
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc bookmarkDocument
	err = r.collection.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, dbi.ErrNoDocuments
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("%w: %v", dbi.ErrDuplicateKey, err)
		}
		return nil, fmt.Errorf("update bookmark: %w", err)
	}

	updated := doc.toModel()
	return &updated, nil
}

func (r *mongoRepository) DeleteOne(ctx context.Context, spec query.Spec) (bool, error) {
	filter, err := MongoFilter(spec)
	if err != nil {
		if errors.Is(err, errInvalidID) {
			return false, nil
		}
		return false, err
	}

	result, err := r.collection.DeleteOne(ctx, filter)
	if err != nil {
		return false, fmt.Errorf("delete bookmark: %w", err)
	}
	return result.DeletedCount > 0, nil
}

func (r *mongoRepository) DeleteMany(ctx context.Context, spec query.Spec) (int64, error) {
	if spec.IsEmpty() {
		return 0, dbi.ErrInvalidFilter
	}
	filter, err := MongoFilter(spec)
	if err != nil {
		if errors.Is(err, errInvalidID) {
			return 0, nil
		}
		return 0, err
	}

	result, err := r.collection.DeleteMany(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("delete bookmarks: %w", err)
	}
	return result.DeletedCount, nil
}

func (r *mongoRepository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "name", Value: "text"},
				{Key: "location", Value: "text"},
				{Key: "description", Value: "text"},
				{Key: "tags", Value: "text"},
			},
			Options: options.Index().
				SetName("full_text_search").
				SetWeights(bson.M{"name": 8, "tags": 13, "location": 5, "description": 2}),
		},
		{
			Keys: bson.D{{Key: "location", Value: 1}},
			Options: options.Index().
				SetName("unique_shared_location").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"shared": true}),
		},
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "lastAccessedAt", Value: -1}},
			Options: options.Index().SetName("user_last_accessed"),
		},
		{
			Keys:    bson.D{{Key: "shared", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("shared_created"),
		},
	}

	if _, err := r.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("create bookmark indexes: %w", err)
	}
	return nil
}

func notFoundOnInvalidID(err error) error {
	if errors.Is(err, errInvalidID) {
		return dbi.ErrNoDocuments
	}
	return err
}

type mongoUserRepository struct {
	collection *mongo.Collection
}

// NewMongoUserRepository creates a user reference repository on the users collection of db.
func NewMongoUserRepository(db *mongo.Database) UserRepository {
	return &mongoUserRepository{collection: db.Collection(UsersCollection)}
}

func (r *mongoUserRepository) PullBookmarkReferences(ctx context.Context, bookmarkID string) (int64, error) {
	match := make(bson.A, 0, len(models.ReverseReferenceFields))
	pull := bson.M{}
	for _, field := range models.ReverseReferenceFields {
		match = append(match, bson.M{field: bookmarkID})
		pull[field] = bookmarkID
	}

	result, err := r.collection.UpdateMany(ctx, bson.M{"$or": match}, bson.M{"$pull": pull})
	if err != nil {
		return 0, fmt.Errorf("pull bookmark references: %w", err)
	}
	return result.ModifiedCount, nil
}
