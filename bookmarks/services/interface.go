package services

import (
	"context"

	"github.com/bookmarksdev/api/bookmarks/models"
	"github.com/bookmarksdev/api/bookmarks/query"
	"github.com/bookmarksdev/api/internal/types"
)

// BookmarkService defines the bookmark lifecycle and read operations.
// Every method that takes a principal authorizes it before touching the store.
type BookmarkService interface {
	// Create operations
	CreateForUser(ctx context.Context, p types.Principal, ownerID string, b *models.Bookmark) (string, error)
	CreateAsAdmin(ctx context.Context, p types.Principal, b *models.Bookmark) (string, error)
	EnsureIndexes(ctx context.Context) error

	// Personal read operations
	GetPersonal(ctx context.Context, p types.Principal, ownerID, bookmarkID string) (*models.Bookmark, error)
	FindPersonalByLocation(ctx context.Context, p types.Principal, ownerID, location string) (*models.Bookmark, error)
	SearchPersonal(ctx context.Context, p types.Principal, ownerID, text string, limit int) ([]models.Bookmark, error)
	LatestPersonal(ctx context.Context, p types.Principal, ownerID string) ([]models.Bookmark, error)
	AccessibleTags(ctx context.Context, p types.Principal, ownerID string) ([]string, error)

	// Public read operations
	GetPublic(ctx context.Context, bookmarkID string) (*models.Bookmark, error)
	FindPublicByLocation(ctx context.Context, location string) (*models.Bookmark, error)
	SearchPublic(ctx context.Context, text string, limit int) ([]models.Bookmark, error)
	ListPublic(ctx context.Context, limit int) ([]models.Bookmark, error)
	ListPublicByTag(ctx context.Context, tag string, limit int) ([]models.Bookmark, error)
	LatestEntries(ctx context.Context, window query.TimeWindow) ([]models.Bookmark, error)
	PublicTags(ctx context.Context) ([]models.TagCount, error)

	// Admin read operations
	GetAsAdmin(ctx context.Context, p types.Principal, bookmarkID string) (*models.Bookmark, error)
	AdminList(ctx context.Context, p types.Principal, filter query.AdminFilter) ([]models.Bookmark, error)
	AdminTags(ctx context.Context, p types.Principal) ([]models.TagCount, error)
	AdminLatestEntries(ctx context.Context, p types.Principal, window query.TimeWindow) ([]models.Bookmark, error)

	// Update operations
	UpdateForUser(ctx context.Context, p types.Principal, ownerID, bookmarkID string, b *models.Bookmark) (*models.Bookmark, error)
	UpdateAsAdmin(ctx context.Context, p types.Principal, bookmarkID string, b *models.Bookmark) (*models.Bookmark, error)

	// Delete operations
	DeleteForUser(ctx context.Context, p types.Principal, ownerID, bookmarkID string) error
	DeleteAsAdmin(ctx context.Context, p types.Principal, bookmarkID string) error
	BulkDelete(ctx context.Context, p types.Principal, location, userID string) (int64, error)
}
