package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bookmarksdev/api/bookmarks/models"
	"github.com/bookmarksdev/api/bookmarks/query"
	dbi "github.com/bookmarksdev/api/internal/database/interfaces"
	"github.com/bookmarksdev/api/internal/database/postgres"
	uuid "github.com/gofrs/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const uniqueViolation = "23505"

// BookmarkColumns is the select list matching bookmarkRow.
const BookmarkColumns = `id, user_id, name, location, description, description_html, tags, shared,
	language, stars, github_url, created_at, updated_at, last_accessed_at`

type bookmarkRow struct {
	ID              uuid.UUID      `db:"id"`
	UserID          string         `db:"user_id"`
	Name            string         `db:"name"`
	Location        string         `db:"location"`
	Description     string         `db:"description"`
	DescriptionHTML string         `db:"description_html"`
	Tags            pq.StringArray `db:"tags"`
	Shared          bool           `db:"shared"`
	Language        string         `db:"language"`
	Stars           int            `db:"stars"`
	GithubURL       string         `db:"github_url"`
	CreatedAt       time.Time      `db:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at"`
	LastAccessedAt  time.Time      `db:"last_accessed_at"`
}

func (r bookmarkRow) toModel() models.Bookmark {
	tags := []string(r.Tags)
	if tags == nil {
		tags = []string{}
	}
	return models.Bookmark{
		ID:              r.ID.String(),
		UserID:          r.UserID,
		Name:            r.Name,
		Location:        r.Location,
		Description:     r.Description,
		DescriptionHTML: r.DescriptionHTML,
		Tags:            tags,
		Shared:          r.Shared,
		Language:        r.Language,
		Stars:           r.Stars,
		GithubURL:       r.GithubURL,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
		LastAccessedAt:  r.LastAccessedAt,
	}
}

// ScanPostgresBookmarks runs a select of BookmarkColumns and converts the rows.
func ScanPostgresBookmarks(ctx context.Context, db sqlx.QueryerContext, sqlStr string, args ...interface{}) ([]models.Bookmark, error) {
	var rows []bookmarkRow
	if err := sqlx.SelectContext(ctx, db, &rows, sqlStr, args...); err != nil {
		return nil, err
	}
	bookmarks := make([]models.Bookmark, 0, len(rows))
	for _, row := range rows {
		bookmarks = append(bookmarks, row.toModel())
	}
	return bookmarks, nil
}

// searchVectorExpr weights name and tags above location and description.
const searchVectorExpr = `setweight(to_tsvector('english', %[1]s), 'A') ||
	setweight(to_tsvector('english', array_to_string(%[2]s::text[], ' ')), 'A') ||
	setweight(to_tsvector('english', %[3]s), 'B') ||
	setweight(to_tsvector('english', %[4]s), 'C')`

type postgresRepository struct {
	client *postgres.Client
	schema string
}

// NewPostgresRepository creates a repository using the default schema.
func NewPostgresRepository(client *postgres.Client) Repository {
	return &postgresRepository{client: client, schema: ""}
}

// NewPostgresRepositoryWithSchema creates a repository using a specific schema.
func NewPostgresRepositoryWithSchema(client *postgres.Client, schema string) Repository {
	return &postgresRepository{client: client, schema: schema}
}

func (r *postgresRepository) FindOne(ctx context.Context, spec query.Spec) (*models.Bookmark, error) {
	where, args, err := PostgresWhere(spec, 0)
	if err != nil {
		return nil, notFoundOnInvalidID(err)
	}

	sqlStr := fmt.Sprintf("SELECT %s FROM %sbookmarks WHERE %s%s LIMIT 1",
		BookmarkColumns, r.schemaPrefix(), where, orderOnly(spec))

	var row bookmarkRow
	if err := sqlx.GetContext(ctx, r.client.DB(), &row, sqlStr, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, dbi.ErrNoDocuments
		}
		return nil, fmt.Errorf("find bookmark: %w", err)
	}

	b := row.toModel()
	return &b, nil
}

func (r *postgresRepository) Find(ctx context.Context, spec query.Spec) ([]models.Bookmark, error) {
	where, args, err := PostgresWhere(spec, 0)
	if err != nil {
		if errors.Is(err, errInvalidID) {
			return []models.Bookmark{}, nil
		}
		return nil, err
	}

	sqlStr := fmt.Sprintf("SELECT %s FROM %sbookmarks WHERE %s%s",
		BookmarkColumns, r.schemaPrefix(), where, PostgresOrderBy(spec))

	bookmarks, err := ScanPostgresBookmarks(ctx, r.client.DB(), sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("find bookmarks: %w", err)
	}
	return bookmarks, nil
}

func (r *postgresRepository) Distinct(ctx context.Context, field string, spec query.Spec) ([]string, error) {
	if field != query.FieldTags {
		return nil, fmt.Errorf("%w: distinct on %q", dbi.ErrInvalidFilter, field)
	}

	where, args, err := PostgresWhere(spec, 0)
	if err != nil {
		if errors.Is(err, errInvalidID) {
			return []string{}, nil
		}
		return nil, err
	}

	sqlStr := fmt.Sprintf("SELECT DISTINCT unnest(tags) AS tag FROM %sbookmarks WHERE %s",
		r.schemaPrefix(), where)

	tags := []string{}
	if err := sqlx.SelectContext(ctx, r.client.DB(), &tags, sqlStr, args...); err != nil {
		return nil, fmt.Errorf("distinct tags: %w", err)
	}
	return tags, nil
}

func (r *postgresRepository) AggregateTags(ctx context.Context, spec query.Spec) ([]models.TagCount, error) {
	where, args, err := PostgresWhere(spec, 0)
	if err != nil {
		if errors.Is(err, errInvalidID) {
			return []models.TagCount{}, nil
		}
		return nil, err
	}

	sqlStr := fmt.Sprintf(`
		SELECT t.tag, COUNT(*) AS count
		FROM %sbookmarks b, unnest(b.tags) AS t(tag)
		WHERE %s
		GROUP BY t.tag
		ORDER BY count DESC, t.tag ASC`, r.schemaPrefix(), where)
	if spec.Limit > 0 {
		sqlStr += fmt.Sprintf(" LIMIT %d", spec.Limit)
	}

	var rows []struct {
		Tag   string `db:"tag"`
		Count int64  `db:"count"`
	}
	if err := sqlx.SelectContext(ctx, r.client.DB(), &rows, sqlStr, args...); err != nil {
		return nil, fmt.Errorf("aggregate tags: %w", err)
	}

	counts := make([]models.TagCount, 0, len(rows))
	for _, row := range rows {
		counts = append(counts, models.TagCount{Tag: row.Tag, Count: row.Count})
	}
	return counts, nil
}

func (r *postgresRepository) Insert(ctx context.Context, b *models.Bookmark) (string, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return "", fmt.Errorf("generate bookmark id: %w", err)
	}

	sqlStr := fmt.Sprintf(`
		INSERT INTO %sbookmarks (id, user_id, name, location, description, description_html, tags, shared,
			language, stars, github_url, created_at, updated_at, last_accessed_at, search_vector)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, %s)`,
		r.schemaPrefix(), fmt.Sprintf(searchVectorExpr, "$3", "$7", "$4", "$5"))

	_, err = r.client.DB().ExecContext(ctx, sqlStr,
		id, b.UserID, b.Name, b.Location, b.Description, b.DescriptionHTML, pq.StringArray(b.Tags), b.Shared,
		b.Language, b.Stars, b.GithubURL, b.CreatedAt, b.UpdatedAt, b.LastAccessedAt)
	if err != nil {
		return "", translateWriteError("insert bookmark", err)
	}
	return id.String(), nil
}

func (r *postgresRepository) Replace(ctx context.Context, spec query.Spec, b *models.Bookmark) (*models.Bookmark, error) {
	var lastAccessed interface{}
	if !b.LastAccessedAt.IsZero() {
		lastAccessed = b.LastAccessedAt
	}
	args := []interface{}{
		b.UserID, b.Name, b.Location, b.Description, b.DescriptionHTML, pq.StringArray(b.Tags), b.Shared,
		b.Language, b.Stars, b.GithubURL, b.UpdatedAt, lastAccessed,
	}

	where, whereArgs, err := PostgresWhere(spec, len(args))
	if err != nil {
		return nil, notFoundOnInvalidID(err)
	}
	args = append(args, whereArgs...)

	sqlStr := fmt.Sprintf(`
		UPDATE %sbookmarks SET
			user_id = $1, name = $2, location = $3, description = $4, description_html = $5, tags = $6,
			shared = $7, language = $8, stars = $9, github_url = $10, updated_at = $11,
			last_accessed_at = COALESCE($12, last_accessed_at),
			search_vector = %s
		WHERE %s
		RETURNING %s`,
		r.schemaPrefix(), fmt.Sprintf(searchVectorExpr, "$2", "$6", "$3", "$4"), where, BookmarkColumns)

	var row bookmarkRow
	if err := sqlx.GetContext(ctx, r.client.DB(), &row, sqlStr, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, dbi.ErrNoDocuments
		}
		return nil, translateWriteError("update bookmark", err)
	}

	updated := row.toModel()
	return &updated, nil
}

func (r *postgresRepository) DeleteOne(ctx context.Context, spec query.Spec) (bool, error) {
	where, args, err := PostgresWhere(spec, 0)
	if err != nil {
		if errors.Is(err, errInvalidID) {
			return false, nil
		}
		return false, err
	}

	sqlStr := fmt.Sprintf(`
		DELETE FROM %[1]sbookmarks WHERE id IN (
			SELECT id FROM %[1]sbookmarks WHERE %[2]s LIMIT 1
		)`, r.schemaPrefix(), where)

	rows, err := r.exec(ctx, sqlStr, args...)
	if err != nil {
		return false, fmt.Errorf("delete bookmark: %w", err)
	}
	return rows > 0, nil
}

func (r *postgresRepository) DeleteMany(ctx context.Context, spec query.Spec) (int64, error) {
	if spec.IsEmpty() {
		return 0, dbi.ErrInvalidFilter
	}
	where, args, err := PostgresWhere(spec, 0)
	if err != nil {
		if errors.Is(err, errInvalidID) {
			return 0, nil
		}
		return 0, err
	}

	sqlStr := fmt.Sprintf("DELETE FROM %sbookmarks WHERE %s", r.schemaPrefix(), where)
	rows, err := r.exec(ctx, sqlStr, args...)
	if err != nil {
		return 0, fmt.Errorf("delete bookmarks: %w", err)
	}
	return rows, nil
}

// EnsureIndexes also creates the bookmarks and user reference tables when missing.
func (r *postgresRepository) EnsureIndexes(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS %[1]sbookmarks (
			id UUID PRIMARY KEY,
			user_id TEXT NOT NULL,
			name TEXT NOT NULL,
			location TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			description_html TEXT NOT NULL DEFAULT '',
			tags TEXT[] NOT NULL DEFAULT '{}',
			shared BOOLEAN NOT NULL DEFAULT FALSE,
			language TEXT NOT NULL DEFAULT '',
			stars INTEGER NOT NULL DEFAULT 0,
			github_url TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			last_accessed_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			search_vector TSVECTOR
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS bookmarks_unique_shared_location
			ON %[1]sbookmarks (location) WHERE shared`,
		`CREATE INDEX IF NOT EXISTS bookmarks_user_last_accessed
			ON %[1]sbookmarks (user_id, last_accessed_at DESC)`,
		`CREATE INDEX IF NOT EXISTS bookmarks_shared_created
			ON %[1]sbookmarks (shared, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS bookmarks_tags ON %[1]sbookmarks USING GIN (tags)`,
		`CREATE INDEX IF NOT EXISTS bookmarks_search ON %[1]sbookmarks USING GIN (search_vector)`,
		`CREATE TABLE IF NOT EXISTS %[1]suser_bookmark_refs (
			user_id TEXT PRIMARY KEY,
			read_later TEXT[] NOT NULL DEFAULT '{}',
			likes TEXT[] NOT NULL DEFAULT '{}',
			pinned TEXT[] NOT NULL DEFAULT '{}',
			history TEXT[] NOT NULL DEFAULT '{}',
			favorites TEXT[] NOT NULL DEFAULT '{}'
		)`,
	}

	for _, stmt := range statements {
		if _, err := r.client.DB().ExecContext(ctx, fmt.Sprintf(stmt, r.schemaPrefix())); err != nil {
			return fmt.Errorf("ensure bookmark schema: %w", err)
		}
	}
	return nil
}

func (r *postgresRepository) exec(ctx context.Context, sqlStr string, args ...interface{}) (int64, error) {
	result, err := r.client.DB().ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return 0, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return rows, nil
}

func (r *postgresRepository) schemaPrefix() string {
	return schemaPrefix(r.schema)
}

func schemaPrefix(schema string) string {
	if schema == "" {
		return ""
	}
	return schema + "."
}

// orderOnly renders the ORDER BY part of spec without its limit.
func orderOnly(spec query.Spec) string {
	spec.Limit = 0
	return PostgresOrderBy(spec)
}

func translateWriteError(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", dbi.ErrDuplicateKey, pqErr.Message)
	}
	return fmt.Errorf("%s: %w", op, err)
}

type postgresUserRepository struct {
	client *postgres.Client
	schema string
}

// NewPostgresUserRepository creates a user reference repository on the user_bookmark_refs table.
func NewPostgresUserRepository(client *postgres.Client, schema string) UserRepository {
	return &postgresUserRepository{client: client, schema: schema}
}

var referenceColumns = map[string]string{
	models.RefReadLater: "read_later",
	models.RefLikes:     "likes",
	models.RefPinned:    "pinned",
	models.RefHistory:   "history",
	models.RefFavorites: "favorites",
}

func (r *postgresUserRepository) PullBookmarkReferences(ctx context.Context, bookmarkID string) (int64, error) {
	sets := make([]string, 0, len(models.ReverseReferenceFields))
	matches := make([]string, 0, len(models.ReverseReferenceFields))
	for _, field := range models.ReverseReferenceFields {
		column := referenceColumns[field]
		sets = append(sets, fmt.Sprintf("%[1]s = array_remove(%[1]s, $1)", column))
		matches = append(matches, fmt.Sprintf("$1 = ANY(%s)", column))
	}

	sqlStr := fmt.Sprintf("UPDATE %suser_bookmark_refs SET %s WHERE %s",
		schemaPrefix(r.schema), strings.Join(sets, ", "), strings.Join(matches, " OR "))

	result, err := r.client.DB().ExecContext(ctx, sqlStr, bookmarkID)
	if err != nil {
		return 0, fmt.Errorf("pull bookmark references: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return rows, nil
}
