package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookmarksErrors "github.com/bookmarksdev/api/bookmarks/errors"
	"github.com/bookmarksdev/api/bookmarks/models"
	"github.com/bookmarksdev/api/bookmarks/query"
	"github.com/bookmarksdev/api/internal/pkg/log"
	"github.com/sony/gobreaker"
)

// BreakerConfig tunes the circuit breaker placed in front of a Searcher.
type BreakerConfig struct {
	Name string
	// MaxRequests is the number of trial searches allowed while half open.
	MaxRequests uint32
	Interval    time.Duration
	// Timeout is how long the breaker stays open before trying again.
	Timeout          time.Duration
	MinRequests      uint32
	FailureThreshold float64
}

// DefaultBreakerConfig trips at half of at least ten searches failing and retries after 30s.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Name:             "bookmark-search",
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		MinRequests:      10,
		FailureThreshold: 0.5,
	}
}

type breakerSearcher struct {
	inner Searcher
	cb    *gobreaker.CircuitBreaker
}

// NewBreakerSearcher fails fast with ErrSearchUnavailable while inner keeps failing.
func NewBreakerSearcher(inner Searcher, cfg BreakerConfig) Searcher {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return ratio >= cfg.FailureThreshold
		},
		IsSuccessful: func(err error) bool {
			// cancelled requests say nothing about the backend
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("Circuit breaker %s state change: %s -> %s", name, from, to)
		},
	})
	return &breakerSearcher{inner: inner, cb: cb}
}

func (s *breakerSearcher) Search(ctx context.Context, spec query.SearchSpec) ([]models.Bookmark, error) {
	result, err := s.cb.Execute(func() (interface{}, error) {
		return s.inner.Search(ctx, spec)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %v", bookmarksErrors.ErrSearchUnavailable, err)
	}
	if err != nil {
		return nil, err
	}
	return result.([]models.Bookmark), nil
}
