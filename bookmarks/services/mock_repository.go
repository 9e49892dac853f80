package services

import (
	"context"

	"github.com/bookmarksdev/api/bookmarks/models"
	"github.com/bookmarksdev/api/bookmarks/query"
	"github.com/bookmarksdev/api/bookmarks/repository"
	"github.com/bookmarksdev/api/bookmarks/search"
	"github.com/stretchr/testify/mock"
)

// MockRepository is a test double for the bookmark repository.
type MockRepository struct {
	mock.Mock
}

var _ repository.Repository = (*MockRepository)(nil)

func (m *MockRepository) FindOne(ctx context.Context, spec query.Spec) (*models.Bookmark, error) {
	args := m.Called(ctx, spec)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Bookmark), args.Error(1)
}

func (m *MockRepository) Find(ctx context.Context, spec query.Spec) ([]models.Bookmark, error) {
	args := m.Called(ctx, spec)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Bookmark), args.Error(1)
}

func (m *MockRepository) Distinct(ctx context.Context, field string, spec query.Spec) ([]string, error) {
	args := m.Called(ctx, field, spec)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockRepository) AggregateTags(ctx context.Context, spec query.Spec) ([]models.TagCount, error) {
	args := m.Called(ctx, spec)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.TagCount), args.Error(1)
}

func (m *MockRepository) Insert(ctx context.Context, b *models.Bookmark) (string, error) {
	args := m.Called(ctx, b)
	return args.String(0), args.Error(1)
}

func (m *MockRepository) Replace(ctx context.Context, spec query.Spec, b *models.Bookmark) (*models.Bookmark, error) {
	args := m.Called(ctx, spec, b)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Bookmark), args.Error(1)
}

func (m *MockRepository) DeleteOne(ctx context.Context, spec query.Spec) (bool, error) {
	args := m.Called(ctx, spec)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) DeleteMany(ctx context.Context, spec query.Spec) (int64, error) {
	args := m.Called(ctx, spec)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) EnsureIndexes(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockUserRepository is a test double for the user reference store.
type MockUserRepository struct {
	mock.Mock
}

var _ repository.UserRepository = (*MockUserRepository)(nil)

func (m *MockUserRepository) PullBookmarkReferences(ctx context.Context, bookmarkID string) (int64, error) {
	args := m.Called(ctx, bookmarkID)
	return args.Get(0).(int64), args.Error(1)
}

// MockSearcher is a test double for the text search backend.
type MockSearcher struct {
	mock.Mock
}

var _ search.Searcher = (*MockSearcher)(nil)

func (m *MockSearcher) Search(ctx context.Context, spec query.SearchSpec) ([]models.Bookmark, error) {
	args := m.Called(ctx, spec)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Bookmark), args.Error(1)
}
