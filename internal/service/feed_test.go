package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itsiBahar/IMRS-V2/internal/domain"
	"github.com/itsiBahar/IMRS-V2/internal/log"
)

func summary(id int64, title string) domain.MovieSummary {
	return domain.MovieSummary{ID: id, Title: title}
}

func recItem(id int64, title, reason string, stream domain.SourceStream) domain.RecommendationItem {
	return domain.RecommendationItem{
		MovieSummary: summary(id, title),
		ReasonLabel:  reason,
		Stream:       stream,
	}
}

func TestLoadHomeAssemblesAllStreams(t *testing.T) {
	repo := &stubRepo{
		GetPopularFn: func(ctx context.Context) ([]domain.MovieSummary, error) {
			return []domain.MovieSummary{summary(1, "Heat")}, nil
		},
		GetRecommendationsFn: func(ctx context.Context, userID string) ([]domain.RecommendationItem, error) {
			return []domain.RecommendationItem{
				recItem(2, "Ronin", "Because you liked Heat", domain.StreamPersonalized),
			}, nil
		},
		GetHiddenGemsFn: func(ctx context.Context, userID string) ([]domain.RecommendationItem, error) {
			return []domain.RecommendationItem{
				recItem(3, "Thief", "Hidden gem", domain.StreamHiddenGem),
			}, nil
		},
		GetTimeAwareFn: func(ctx context.Context) (*domain.TimeAwareFeed, error) {
			return &domain.TimeAwareFeed{
				ContextLabel: "Friday Night Thrillers",
				Items:        []domain.RecommendationItem{recItem(4, "Collateral", "", domain.StreamTimeAware)},
			}, nil
		},
	}

	a := NewFeedAggregator(repo, log.NullLogger())
	feed := a.LoadHome(context.Background(), "u1")

	assert.False(t, feed.Degraded())
	assert.Len(t, feed.Bundle.Trending, 1)
	assert.Len(t, feed.Bundle.Personalized, 1)
	assert.Len(t, feed.Bundle.HiddenGems, 1)
	require.NotNil(t, feed.Bundle.TimeAware)
	assert.Equal(t, "Friday Night Thrillers", feed.Bundle.TimeAware.ContextLabel)
	assert.Equal(t, "Because you liked Heat", feed.Bundle.Reason)
	assert.True(t, a.IsCurrent(feed))
}

func TestLoadHomeIsolatesStreamFailure(t *testing.T) {
	repo := &stubRepo{
		GetPopularFn: func(ctx context.Context) ([]domain.MovieSummary, error) {
			return []domain.MovieSummary{summary(1, "Heat")}, nil
		},
		GetRecommendationsFn: func(ctx context.Context, userID string) ([]domain.RecommendationItem, error) {
			return nil, errors.New("model service down")
		},
		GetHiddenGemsFn: func(ctx context.Context, userID string) ([]domain.RecommendationItem, error) {
			return []domain.RecommendationItem{recItem(3, "Thief", "", domain.StreamHiddenGem)}, nil
		},
		GetTimeAwareFn: func(ctx context.Context) (*domain.TimeAwareFeed, error) {
			return nil, errors.New("model service down")
		},
	}

	a := NewFeedAggregator(repo, log.NullLogger())
	feed := a.LoadHome(context.Background(), "u1")

	assert.True(t, feed.Degraded())
	assert.Contains(t, feed.StreamErrors, domain.StreamPersonalized)
	assert.Contains(t, feed.StreamErrors, domain.StreamTimeAware)

	// Healthy streams survive a sibling's failure
	assert.Len(t, feed.Bundle.Trending, 1)
	assert.Len(t, feed.Bundle.HiddenGems, 1)
	assert.Empty(t, feed.Bundle.Personalized)
	assert.Nil(t, feed.Bundle.TimeAware)
	assert.False(t, feed.Bundle.IsEmpty())
}

func TestLoadHomeStaleSuppression(t *testing.T) {
	release := make(chan struct{})
	var first atomic.Bool
	first.Store(true)
	repo := &stubRepo{
		GetPopularFn: func(ctx context.Context) ([]domain.MovieSummary, error) {
			if first.CompareAndSwap(true, false) {
				<-release
				return []domain.MovieSummary{summary(1, "Old")}, nil
			}
			return []domain.MovieSummary{summary(2, "New")}, nil
		},
	}

	a := NewFeedAggregator(repo, log.NullLogger())

	slow := make(chan HomeFeed, 1)
	go func() {
		slow <- a.LoadHome(context.Background(), "u1")
	}()

	// Give the slow load time to claim its generation before superseding it
	for a.generation.Load() == 0 {
		time.Sleep(time.Millisecond)
	}

	fresh := a.LoadHome(context.Background(), "u1")
	require.True(t, a.IsCurrent(fresh))

	close(release)
	stale := <-slow

	assert.False(t, a.IsCurrent(stale))

	// The committed bundle is the fresh one, not the late arrival
	last := a.LastBundle()
	require.NotNil(t, last)
	require.Len(t, last.Trending, 1)
	assert.Equal(t, "New", last.Trending[0].Title)
}

func TestFeedClear(t *testing.T) {
	repo := &stubRepo{
		GetPopularFn: func(ctx context.Context) ([]domain.MovieSummary, error) {
			return []domain.MovieSummary{summary(1, "Heat")}, nil
		},
	}

	a := NewFeedAggregator(repo, log.NullLogger())
	feed := a.LoadHome(context.Background(), "u1")
	require.NotNil(t, a.LastBundle())

	a.Clear()

	assert.Nil(t, a.LastBundle())
	assert.False(t, a.IsCurrent(feed))
}
