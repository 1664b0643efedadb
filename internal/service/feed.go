package service

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/itsiBahar/IMRS-V2/internal/domain"
)

// HomeFeed is the result of one feed load. Generation ties it to the
// invocation that produced it so superseded loads can be discarded.
type HomeFeed struct {
	Generation   uint64
	Bundle       domain.FeedBundle
	StreamErrors map[domain.SourceStream]error
}

// Degraded reports whether any stream failed during the load
func (f HomeFeed) Degraded() bool {
	return len(f.StreamErrors) > 0
}

// FeedAggregator assembles the home feed by fanning out the four
// recommendation streams concurrently. A stream failure degrades that
// stream to empty; the bundle itself always comes back. Only the most
// recent load is current: results from an older invocation that
// resolve late report as stale.
type FeedAggregator struct {
	repo   domain.RecommenderRepository
	logger *slog.Logger

	generation atomic.Uint64

	mu       sync.RWMutex
	lastGood *domain.FeedBundle
}

// NewFeedAggregator creates a new feed aggregator
func NewFeedAggregator(repo domain.RecommenderRepository, logger *slog.Logger) *FeedAggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FeedAggregator{
		repo:   repo,
		logger: logger,
	}
}

// LoadHome fetches all four streams concurrently and returns the
// assembled bundle. The returned feed carries the generation claimed at
// call time; check IsCurrent before rendering it.
func (a *FeedAggregator) LoadHome(ctx context.Context, userID string) HomeFeed {
	gen := a.generation.Add(1)

	var (
		bundle domain.FeedBundle
		errs   = make(map[domain.SourceStream]error)
		errsMu sync.Mutex
		wg     sync.WaitGroup
	)

	record := func(stream domain.SourceStream, err error) {
		errsMu.Lock()
		errs[stream] = err
		errsMu.Unlock()
		a.logger.Warn("feed stream failed", "stream", stream.String(), "error", err)
	}

	wg.Add(4)

	go func() {
		defer wg.Done()
		items, err := a.repo.GetPopular(ctx)
		if err != nil {
			record(domain.StreamTrending, err)
			return
		}
		bundle.Trending = items
	}()

	go func() {
		defer wg.Done()
		items, err := a.repo.GetRecommendations(ctx, userID)
		if err != nil {
			record(domain.StreamPersonalized, err)
			return
		}
		bundle.Personalized = items
	}()

	go func() {
		defer wg.Done()
		items, err := a.repo.GetHiddenGems(ctx, userID)
		if err != nil {
			record(domain.StreamHiddenGem, err)
			return
		}
		bundle.HiddenGems = items
	}()

	go func() {
		defer wg.Done()
		feed, err := a.repo.GetTimeAware(ctx)
		if err != nil {
			record(domain.StreamTimeAware, err)
			return
		}
		bundle.TimeAware = feed
	}()

	wg.Wait()

	bundle.Reason = deriveReason(bundle.Personalized)

	if a.markCurrent(gen, &bundle) {
		a.logger.Info("home feed loaded", "user", userID,
			"trending", len(bundle.Trending),
			"personalized", len(bundle.Personalized),
			"hiddenGems", len(bundle.HiddenGems),
			"failedStreams", len(errs))
	}

	return HomeFeed{Generation: gen, Bundle: bundle, StreamErrors: errs}
}

// markCurrent commits the bundle if gen is still the newest invocation
func (a *FeedAggregator) markCurrent(gen uint64, bundle *domain.FeedBundle) bool {
	if gen != a.generation.Load() {
		a.logger.Debug("discarding stale feed", "generation", gen)
		return false
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lastGood = bundle
	return true
}

// IsCurrent reports whether a feed is still the newest load
func (a *FeedAggregator) IsCurrent(f HomeFeed) bool {
	return f.Generation == a.generation.Load()
}

// LastBundle returns the most recently committed bundle, or nil
func (a *FeedAggregator) LastBundle() *domain.FeedBundle {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.lastGood
}

// Clear drops the committed bundle and invalidates in-flight loads,
// used on sign-out
func (a *FeedAggregator) Clear() {
	a.generation.Add(1)
	a.mu.Lock()
	a.lastGood = nil
	a.mu.Unlock()
}

// deriveReason picks the bundle-level reason from the first
// personalized item that carries one
func deriveReason(items []domain.RecommendationItem) string {
	for _, item := range items {
		if item.ReasonLabel != "" {
			return item.ReasonLabel
		}
	}
	return ""
}
