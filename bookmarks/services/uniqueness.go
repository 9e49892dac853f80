package services

import (
	"context"
	"errors"

	bookmarksErrors "github.com/bookmarksdev/api/bookmarks/errors"
	"github.com/bookmarksdev/api/bookmarks/models"
	"github.com/bookmarksdev/api/bookmarks/query"
	dbi "github.com/bookmarksdev/api/internal/database/interfaces"
)

// checkUniqueness fails with ErrDuplicatePublicLocation when another shared bookmark already
// holds the location. Create passes no exclusions. An owner update excludes the owner's own
// bookmarks and an admin update excludes only the record being replaced.
func (s *bookmarkService) checkUniqueness(ctx context.Context, b *models.Bookmark, excludeUserID, excludeID string) error {
	if !b.Shared {
		return nil
	}

	existing, err := s.repo.FindOne(ctx, query.SharedLocationConflict(b.Location, excludeUserID, excludeID))
	if err != nil {
		if errors.Is(err, dbi.ErrNoDocuments) {
			return nil
		}
		return translateStoreError(err, "check shared location")
	}
	if existing != nil {
		return bookmarksErrors.ErrDuplicatePublicLocation
	}
	return nil
}
