package search

import (
	"context"
	"errors"
	"testing"
	"time"

	bookmarksErrors "github.com/bookmarksdev/api/bookmarks/errors"
	"github.com/bookmarksdev/api/bookmarks/models"
	"github.com/bookmarksdev/api/bookmarks/query"
	"github.com/stretchr/testify/require"
)

type stubSearcher struct {
	calls int
	err   error
}

func (s *stubSearcher) Search(ctx context.Context, spec query.SearchSpec) ([]models.Bookmark, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return []models.Bookmark{{ID: "b-1"}}, nil
}

func TestBreakerSearcher(t *testing.T) {
	cfg := BreakerConfig{Name: "test", MaxRequests: 1, Interval: time.Minute, Timeout: time.Hour, MinRequests: 2, FailureThreshold: 0.5}
	spec := query.SearchSpec{Text: "go", Limit: 10, Domain: query.DomainPublic}
	ctx := context.Background()

	t.Run("passes results through", func(t *testing.T) {
		inner := &stubSearcher{}
		results, err := NewBreakerSearcher(inner, cfg).Search(ctx, spec)
		require.NoError(t, err)
		require.Len(t, results, 1)
	})

	t.Run("opens after repeated failures", func(t *testing.T) {
		boom := errors.New("text index missing")
		inner := &stubSearcher{err: boom}
		searcher := NewBreakerSearcher(inner, cfg)

		for i := 0; i < 2; i++ {
			_, err := searcher.Search(ctx, spec)
			require.ErrorIs(t, err, boom)
		}

		_, err := searcher.Search(ctx, spec)
		require.ErrorIs(t, err, bookmarksErrors.ErrSearchUnavailable)
		require.Equal(t, 2, inner.calls)
	})

	t.Run("cancelled searches do not trip", func(t *testing.T) {
		inner := &stubSearcher{err: context.Canceled}
		searcher := NewBreakerSearcher(inner, cfg)

		for i := 0; i < 3; i++ {
			_, err := searcher.Search(ctx, spec)
			require.ErrorIs(t, err, context.Canceled)
		}
		require.Equal(t, 3, inner.calls)
	})
}
