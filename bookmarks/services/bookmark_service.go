package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookmarksErrors "github.com/bookmarksdev/api/bookmarks/errors"
	"github.com/bookmarksdev/api/bookmarks/markdown"
	"github.com/bookmarksdev/api/bookmarks/models"
	"github.com/bookmarksdev/api/bookmarks/query"
	"github.com/bookmarksdev/api/bookmarks/repository"
	"github.com/bookmarksdev/api/bookmarks/search"
	"github.com/bookmarksdev/api/bookmarks/security"
	"github.com/bookmarksdev/api/bookmarks/validation"
	"github.com/bookmarksdev/api/internal/cache"
	dbi "github.com/bookmarksdev/api/internal/database/interfaces"
	"github.com/bookmarksdev/api/internal/pkg/log"
	"github.com/bookmarksdev/api/internal/types"
)

const publicTagsCacheKey = "tags:public"

// Config tunes defaults the HTTP layer does not pin down.
type Config struct {
	DefaultSearchLimit int
	LatestEntriesDays  int
}

type bookmarkService struct {
	repo         repository.Repository
	users        repository.UserRepository
	searcher     search.Searcher
	renderer     markdown.Renderer
	cacheService *cache.GenericCacheService
	config       Config
	now          func() time.Time
}

// NewBookmarkService wires the lifecycle around its collaborators. cacheService may be nil.
func NewBookmarkService(
	repo repository.Repository,
	users repository.UserRepository,
	searcher search.Searcher,
	renderer markdown.Renderer,
	cacheService *cache.GenericCacheService,
	config Config,
) BookmarkService {
	if config.DefaultSearchLimit <= 0 {
		config.DefaultSearchLimit = query.DefaultSearchLimit
	}
	if config.LatestEntriesDays <= 0 {
		config.LatestEntriesDays = query.DefaultLatestEntriesDays
	}
	return &bookmarkService{
		repo:         repo,
		users:        users,
		searcher:     searcher,
		renderer:     renderer,
		cacheService: cacheService,
		config:       config,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func (s *bookmarkService) EnsureIndexes(ctx context.Context) error {
	return s.repo.EnsureIndexes(ctx)
}

func (s *bookmarkService) CreateForUser(ctx context.Context, p types.Principal, ownerID string, b *models.Bookmark) (string, error) {
	if b == nil {
		return "", bookmarksErrors.ErrInvalidRequestBody
	}
	if err := security.Authorize(p, security.OpCreate, ownerID, b.UserID); err != nil {
		return "", err
	}
	if err := s.validate(ctx, b, validation.Options{}); err != nil {
		return "", err
	}
	return s.create(ctx, b)
}

func (s *bookmarkService) CreateAsAdmin(ctx context.Context, p types.Principal, b *models.Bookmark) (string, error) {
	if err := security.Authorize(p, security.OpAdmin, "", ""); err != nil {
		return "", err
	}
	if b == nil {
		return "", bookmarksErrors.ErrInvalidRequestBody
	}
	if err := s.validate(ctx, b, validation.Options{Admin: true, RequireUserID: true}); err != nil {
		return "", err
	}
	return s.create(ctx, b)
}

// validate dumps rejected payloads when debug logging is on.
func (s *bookmarkService) validate(ctx context.Context, b *models.Bookmark, opts validation.Options) error {
	err := validation.ValidateBookmark(b, opts)
	if err != nil {
		log.DebugWithContext(ctx, "Rejected bookmark payload: %v", err)
		log.InfoStruct(b)
	}
	return err
}

func (s *bookmarkService) create(ctx context.Context, b *models.Bookmark) (string, error) {
	if err := s.checkUniqueness(ctx, b, "", ""); err != nil {
		return "", err
	}

	now := s.now()
	b.ID = ""
	b.CreatedAt = now
	b.UpdatedAt = now
	if b.LastAccessedAt.IsZero() {
		b.LastAccessedAt = now
	}
	s.backfillDescriptionHTML(b)

	id, err := s.repo.Insert(ctx, b)
	if err != nil {
		return "", translateStoreError(err, "insert bookmark")
	}
	b.ID = id

	s.invalidatePublicTags(ctx, b.Shared)
	return id, nil
}

func (s *bookmarkService) GetPersonal(ctx context.Context, p types.Principal, ownerID, bookmarkID string) (*models.Bookmark, error) {
	if err := security.Authorize(p, security.OpReadOwn, ownerID, ""); err != nil {
		return nil, err
	}
	return s.findOne(ctx, query.ByID(bookmarkID, ownerID))
}

func (s *bookmarkService) FindPersonalByLocation(ctx context.Context, p types.Principal, ownerID, location string) (*models.Bookmark, error) {
	if err := security.Authorize(p, security.OpReadOwn, ownerID, ""); err != nil {
		return nil, err
	}
	return s.findOne(ctx, query.ByLocation(location, ownerID))
}

func (s *bookmarkService) SearchPersonal(ctx context.Context, p types.Principal, ownerID, text string, limit int) ([]models.Bookmark, error) {
	if err := security.Authorize(p, security.OpReadOwn, ownerID, ""); err != nil {
		return nil, err
	}
	return s.search(ctx, text, limit, query.DomainPersonal, ownerID)
}

func (s *bookmarkService) LatestPersonal(ctx context.Context, p types.Principal, ownerID string) ([]models.Bookmark, error) {
	if err := security.Authorize(p, security.OpReadOwn, ownerID, ""); err != nil {
		return nil, err
	}
	return s.find(ctx, query.Personal(ownerID))
}

func (s *bookmarkService) AccessibleTags(ctx context.Context, p types.Principal, ownerID string) ([]string, error) {
	if err := security.Authorize(p, security.OpReadOwn, ownerID, ""); err != nil {
		return nil, err
	}
	tags, err := s.repo.Distinct(ctx, query.FieldTags, query.AccessibleTags(ownerID))
	if err != nil {
		return nil, translateStoreError(err, "distinct tags")
	}
	return tags, nil
}

func (s *bookmarkService) GetPublic(ctx context.Context, bookmarkID string) (*models.Bookmark, error) {
	return s.findOne(ctx, query.PublicByID(bookmarkID))
}

func (s *bookmarkService) FindPublicByLocation(ctx context.Context, location string) (*models.Bookmark, error) {
	return s.findOne(ctx, query.PublicByLocation(location))
}

func (s *bookmarkService) SearchPublic(ctx context.Context, text string, limit int) ([]models.Bookmark, error) {
	return s.search(ctx, text, limit, query.DomainPublic, "")
}

func (s *bookmarkService) ListPublic(ctx context.Context, limit int) ([]models.Bookmark, error) {
	return s.find(ctx, query.PublicList(limit))
}

func (s *bookmarkService) ListPublicByTag(ctx context.Context, tag string, limit int) ([]models.Bookmark, error) {
	return s.find(ctx, query.PublicByTag(tag, limit))
}

func (s *bookmarkService) LatestEntries(ctx context.Context, window query.TimeWindow) ([]models.Bookmark, error) {
	if window.Since == nil && window.Days <= 0 {
		window.Days = s.config.LatestEntriesDays
	}
	spec, err := query.RecentPublic(window, s.now())
	if err != nil {
		return nil, err
	}
	return s.find(ctx, spec)
}

func (s *bookmarkService) PublicTags(ctx context.Context) ([]models.TagCount, error) {
	var cached []models.TagCount
	if s.cacheService.IsEnabled() {
		if err := s.cacheService.GetCached(ctx, publicTagsCacheKey, &cached); err == nil {
			return cached, nil
		}
	}

	tags, err := s.repo.AggregateTags(ctx, query.TagAggregate())
	if err != nil {
		return nil, translateStoreError(err, "aggregate tags")
	}

	if s.cacheService.IsEnabled() {
		_ = s.cacheService.CacheData(ctx, publicTagsCacheKey, tags)
	}
	return tags, nil
}

func (s *bookmarkService) GetAsAdmin(ctx context.Context, p types.Principal, bookmarkID string) (*models.Bookmark, error) {
	if err := security.Authorize(p, security.OpAdmin, "", ""); err != nil {
		return nil, err
	}
	return s.findOne(ctx, query.ByID(bookmarkID, ""))
}

func (s *bookmarkService) AdminList(ctx context.Context, p types.Principal, filter query.AdminFilter) ([]models.Bookmark, error) {
	if err := security.Authorize(p, security.OpAdmin, "", ""); err != nil {
		return nil, err
	}
	return s.find(ctx, query.AdminList(filter))
}

func (s *bookmarkService) AdminTags(ctx context.Context, p types.Principal) ([]models.TagCount, error) {
	if err := security.Authorize(p, security.OpAdmin, "", ""); err != nil {
		return nil, err
	}
	tags, err := s.repo.AggregateTags(ctx, query.TagAggregate())
	if err != nil {
		return nil, translateStoreError(err, "aggregate tags")
	}
	return tags, nil
}

func (s *bookmarkService) AdminLatestEntries(ctx context.Context, p types.Principal, window query.TimeWindow) ([]models.Bookmark, error) {
	if err := security.Authorize(p, security.OpAdmin, "", ""); err != nil {
		return nil, err
	}
	return s.LatestEntries(ctx, window)
}

func (s *bookmarkService) UpdateForUser(ctx context.Context, p types.Principal, ownerID, bookmarkID string, b *models.Bookmark) (*models.Bookmark, error) {
	if b == nil {
		return nil, bookmarksErrors.ErrInvalidRequestBody
	}
	if err := security.Authorize(p, security.OpUpdate, ownerID, b.UserID); err != nil {
		return nil, err
	}
	if err := s.validate(ctx, b, validation.Options{}); err != nil {
		return nil, err
	}

	if p.IsAdmin() {
		if b.UserID == "" {
			b.UserID = ownerID
		}
		return s.replace(ctx, query.ByID(bookmarkID, ""), b, "", bookmarkID)
	}
	return s.replace(ctx, query.ByID(bookmarkID, ownerID), b, ownerID, "")
}

func (s *bookmarkService) UpdateAsAdmin(ctx context.Context, p types.Principal, bookmarkID string, b *models.Bookmark) (*models.Bookmark, error) {
	if err := security.Authorize(p, security.OpAdmin, "", ""); err != nil {
		return nil, err
	}
	if b == nil {
		return nil, bookmarksErrors.ErrInvalidRequestBody
	}
	if err := s.validate(ctx, b, validation.Options{Admin: true, RequireUserID: true}); err != nil {
		return nil, err
	}
	return s.replace(ctx, query.ByID(bookmarkID, ""), b, "", bookmarkID)
}

func (s *bookmarkService) replace(ctx context.Context, spec query.Spec, b *models.Bookmark, excludeUserID, excludeID string) (*models.Bookmark, error) {
	if err := s.checkUniqueness(ctx, b, excludeUserID, excludeID); err != nil {
		return nil, err
	}

	b.UpdatedAt = s.now()
	s.backfillDescriptionHTML(b)

	updated, err := s.repo.Replace(ctx, spec, b)
	if err != nil {
		return nil, translateStoreError(err, "update bookmark")
	}

	s.invalidatePublicTags(ctx, true)
	return updated, nil
}

func (s *bookmarkService) DeleteForUser(ctx context.Context, p types.Principal, ownerID, bookmarkID string) error {
	if err := security.Authorize(p, security.OpDelete, ownerID, ""); err != nil {
		return err
	}
	if p.IsAdmin() {
		return s.delete(ctx, query.ByID(bookmarkID, ""), bookmarkID)
	}
	return s.delete(ctx, query.ByID(bookmarkID, ownerID), bookmarkID)
}

func (s *bookmarkService) DeleteAsAdmin(ctx context.Context, p types.Principal, bookmarkID string) error {
	if err := security.Authorize(p, security.OpAdmin, "", ""); err != nil {
		return err
	}
	return s.delete(ctx, query.ByID(bookmarkID, ""), bookmarkID)
}

func (s *bookmarkService) delete(ctx context.Context, spec query.Spec, bookmarkID string) error {
	deleted, err := s.repo.DeleteOne(ctx, spec)
	if err != nil {
		return translateStoreError(err, "delete bookmark")
	}
	if !deleted {
		return bookmarksErrors.ErrBookmarkNotFound
	}

	s.invalidatePublicTags(ctx, true)
	s.pullReferences(ctx, bookmarkID)
	return nil
}

// pullReferences is best effort: the bookmark is already gone when it runs.
func (s *bookmarkService) pullReferences(ctx context.Context, bookmarkID string) {
	if s.users == nil {
		return
	}
	modified, err := s.users.PullBookmarkReferences(ctx, bookmarkID)
	if err != nil {
		log.ErrorWithContext(ctx, "Failed to remove references to deleted bookmark %s: %v", bookmarkID, err)
		return
	}
	log.Debug("Removed references to bookmark %s from %d users", bookmarkID, modified)
}

func (s *bookmarkService) BulkDelete(ctx context.Context, p types.Principal, location, userID string) (int64, error) {
	if err := security.Authorize(p, security.OpAdmin, "", ""); err != nil {
		return 0, err
	}
	spec, err := query.BulkDelete(location, userID)
	if err != nil {
		return 0, err
	}

	deleted, err := s.repo.DeleteMany(ctx, spec)
	if err != nil {
		return 0, translateStoreError(err, "delete bookmarks")
	}

	log.InfoWithContext(ctx, "Deleted %d bookmarks (location=%q userId=%q)", deleted, location, userID)
	s.invalidatePublicTags(ctx, deleted > 0)
	return deleted, nil
}

func (s *bookmarkService) findOne(ctx context.Context, spec query.Spec) (*models.Bookmark, error) {
	b, err := s.repo.FindOne(ctx, spec)
	if err != nil {
		return nil, translateStoreError(err, "find bookmark")
	}
	return b, nil
}

func (s *bookmarkService) find(ctx context.Context, spec query.Spec) ([]models.Bookmark, error) {
	bookmarks, err := s.repo.Find(ctx, spec)
	if err != nil {
		return nil, translateStoreError(err, "find bookmarks")
	}
	return bookmarks, nil
}

func (s *bookmarkService) search(ctx context.Context, text string, limit int, domain query.Domain, ownerID string) ([]models.Bookmark, error) {
	if limit <= 0 {
		limit = s.config.DefaultSearchLimit
	}
	spec, err := query.Search(text, limit, domain, ownerID)
	if err != nil {
		return nil, err
	}
	bookmarks, err := s.searcher.Search(ctx, spec)
	if errors.Is(err, bookmarksErrors.ErrSearchUnavailable) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("%w: search bookmarks: %v", bookmarksErrors.ErrDatabaseOperation, err)
	}
	return bookmarks, nil
}

func (s *bookmarkService) backfillDescriptionHTML(b *models.Bookmark) {
	if b.DescriptionHTML != "" || b.Description == "" || s.renderer == nil {
		return
	}
	b.DescriptionHTML = s.renderer.Render(b.Description)
}

func (s *bookmarkService) invalidatePublicTags(ctx context.Context, affected bool) {
	if !affected || !s.cacheService.IsEnabled() {
		return
	}
	_ = s.cacheService.InvalidateKey(ctx, publicTagsCacheKey)
}

// translateStoreError maps repository failures onto the bookmark error taxonomy.
func translateStoreError(err error, op string) error {
	switch {
	case errors.Is(err, dbi.ErrNoDocuments):
		return bookmarksErrors.ErrBookmarkNotFound
	case errors.Is(err, dbi.ErrDuplicateKey):
		return bookmarksErrors.NewBookmarkError(
			bookmarksErrors.CodeDuplicateKey,
			"Duplicate key",
			fmt.Errorf("%w: %v", bookmarksErrors.ErrDuplicateKey, err),
		)
	default:
		return fmt.Errorf("%w: %s: %v", bookmarksErrors.ErrDatabaseOperation, op, err)
	}
}
