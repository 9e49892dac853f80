package repository

import (
	"context"
	"errors"

	"github.com/bookmarksdev/api/bookmarks/models"
	"github.com/bookmarksdev/api/bookmarks/query"
)

const (
	BookmarksCollection = "bookmarks"
	UsersCollection     = "users"
)

// errInvalidID marks an id that can never exist in the store, so the query matches nothing.
var errInvalidID = errors.New("invalid bookmark id")

// Repository defines data access for bookmarks.
// Lookups that match nothing return interfaces.ErrNoDocuments and unique index
// violations return interfaces.ErrDuplicateKey, both wrapped.
type Repository interface {
	FindOne(ctx context.Context, spec query.Spec) (*models.Bookmark, error)

	Find(ctx context.Context, spec query.Spec) ([]models.Bookmark, error)

	// Distinct returns the distinct values of field (only query.FieldTags is supported) in no particular order.
	Distinct(ctx context.Context, field string, spec query.Spec) ([]string, error)

	// AggregateTags counts tag occurrences across the matched bookmarks, most used first.
	AggregateTags(ctx context.Context, spec query.Spec) ([]models.TagCount, error)

	// Insert stores b and returns its new id.
	Insert(ctx context.Context, b *models.Bookmark) (string, error)

	// Replace overwrites every user editable field of the single matched bookmark and returns the result.
	Replace(ctx context.Context, spec query.Spec, b *models.Bookmark) (*models.Bookmark, error)

	// DeleteOne reports whether a bookmark was deleted.
	DeleteOne(ctx context.Context, spec query.Spec) (bool, error)

	DeleteMany(ctx context.Context, spec query.Spec) (int64, error)

	// EnsureIndexes creates the text index, the unique index on shared locations and lookup indexes.
	EnsureIndexes(ctx context.Context) error
}

// UserRepository is the part of the user store this service mutates.
type UserRepository interface {
	// PullBookmarkReferences removes bookmarkID from every user's reverse reference lists
	// and returns how many users were modified.
	PullBookmarkReferences(ctx context.Context, bookmarkID string) (int64, error)
}
