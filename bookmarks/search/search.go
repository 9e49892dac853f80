// Package search runs free text bookmark searches against the configured store.
package search

import (
	"context"
	"strings"

	"github.com/bookmarksdev/api/bookmarks/models"
	"github.com/bookmarksdev/api/bookmarks/query"
)

// Searcher returns the bookmarks of a domain that best match a text, best match first.
type Searcher interface {
	Search(ctx context.Context, spec query.SearchSpec) ([]models.Bookmark, error)
}

// normalize collapses whitespace. A blank result means there is nothing to search for.
func normalize(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
