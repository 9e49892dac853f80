package search

import (
	"context"
	"fmt"

	"github.com/bookmarksdev/api/bookmarks/models"
	"github.com/bookmarksdev/api/bookmarks/query"
	"github.com/bookmarksdev/api/bookmarks/repository"
	"github.com/bookmarksdev/api/internal/database/postgres"
)

type postgresSearcher struct {
	client *postgres.Client
	schema string
}

// NewPostgresSearcher ranks bookmarks by their search_vector column.
func NewPostgresSearcher(client *postgres.Client, schema string) Searcher {
	return &postgresSearcher{client: client, schema: schema}
}

func (s *postgresSearcher) Search(ctx context.Context, spec query.SearchSpec) ([]models.Bookmark, error) {
	text := normalize(spec.Text)
	if text == "" {
		return []models.Bookmark{}, nil
	}

	sqlStr, args, err := postgresSearchQuery(spec, text, s.schema)
	if err != nil {
		return nil, err
	}

	bookmarks, err := repository.ScanPostgresBookmarks(ctx, s.client.DB(), sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("search bookmarks: %w", err)
	}
	return bookmarks, nil
}

func postgresSearchQuery(spec query.SearchSpec, text, schema string) (string, []interface{}, error) {
	where, args, err := repository.PostgresWhere(spec.Filter(), 1)
	if err != nil {
		return "", nil, fmt.Errorf("build search scope: %w", err)
	}

	prefix := ""
	if schema != "" {
		prefix = schema + "."
	}

	sqlStr := fmt.Sprintf(`
		SELECT %s
		FROM %sbookmarks
		WHERE %s AND search_vector @@ websearch_to_tsquery('english', $1)
		ORDER BY ts_rank(search_vector, websearch_to_tsquery('english', $1)) DESC, created_at DESC`,
		repository.BookmarkColumns, prefix, where)
	if spec.Limit > 0 {
		sqlStr += fmt.Sprintf(" LIMIT %d", spec.Limit)
	}

	return sqlStr, append([]interface{}{text}, args...), nil
}
